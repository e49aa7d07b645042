// Package observe provides observability primitives for outbound
// platform calls.
//
// It is a pure instrumentation library: no execution, no transport, no
// I/O beyond exporter setup. The resilience and container packages log
// through [Logger]; services wrap their SDK calls with [Middleware] to
// get spans, metrics and structured logs for every outbound call.
package observe
