package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON body served by the status and probe
// endpoints.
type HealthResponse struct {
	Status         string                   `json:"status"`
	Timestamp      string                   `json:"timestamp"`
	Version        string                   `json:"version,omitempty"`
	ResponseTimeMs float64                  `json:"response_time_ms"`
	Summary        map[string]int           `json:"summary,omitempty"`
	Checks         map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON body for a single component's result.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// LivenessHandler returns an HTTP handler for liveness probes. It
// answers 200 whenever the process can serve requests; component
// checks never run here.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// Healthy and Degraded answer 200; Unhealthy answers 503.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, snap := agg.Readiness(r.Context())
		writeSnapshot(w, snap, ready)
	}
}

// StartupHandler returns an HTTP handler for startup probes. It runs
// a fresh check and answers 200 only when every critical component is
// healthy.
func StartupHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started, snap := agg.Startup(r.Context())
		writeSnapshot(w, snap, started)
	}
}

// StatusHandler returns an HTTP handler serving the detailed health
// snapshot with per-component results and summary counts.
func StatusHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := agg.Snapshot(r.Context(), true)
		ok := snap.Status == StatusHealthy || snap.Status == StatusDegraded
		writeSnapshot(w, snap, ok)
	}
}

// SingleCheckHandler returns an HTTP handler for checking one named
// component, bypassing the snapshot cache.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := agg.Check(r.Context(), name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if result.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(checkResponse(result))
	}
}

// RegisterHandlers mounts the health endpoints on the given mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/health/live", LivenessHandler())
	mux.HandleFunc("/health/ready", ReadinessHandler(agg))
	mux.HandleFunc("/health/startup", StartupHandler(agg))
	mux.HandleFunc("/health/status", StatusHandler(agg))
}

func writeSnapshot(w http.ResponseWriter, snap Snapshot, ok bool) {
	response := HealthResponse{
		Status:         snap.Status.String(),
		Timestamp:      snap.Timestamp.UTC().Format(time.RFC3339),
		Version:        snap.Version,
		ResponseTimeMs: float64(snap.Elapsed) / float64(time.Millisecond),
		Summary:        snap.Counts,
		Checks:         make(map[string]CheckResponse, len(snap.Checks)),
	}
	for name, result := range snap.Checks {
		response.Checks[name] = checkResponse(result)
	}

	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response)
}

func checkResponse(result Result) CheckResponse {
	check := CheckResponse{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		check.Error = result.Error.Error()
	}
	return check
}
