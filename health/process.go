package health

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// ProcessCheckerConfig configures the process health checker.
type ProcessCheckerConfig struct {
	// MemoryWarning is the heap allocation ratio that triggers degraded
	// status. Value should be between 0 and 1. Default: 0.8 (80%)
	MemoryWarning float64

	// MemoryCritical is the heap allocation ratio that triggers
	// unhealthy status. Value should be between 0 and 1. Default: 0.95
	MemoryCritical float64

	// MaxAlloc is the maximum expected allocation in bytes. If zero,
	// the runtime's obtained-from-system figure is used.
	MaxAlloc uint64

	// MaxGoroutines triggers degraded status when exceeded.
	// Default: 0 (no limit)
	MaxGoroutines int
}

// ProcessChecker reports on the Go process itself: heap usage,
// goroutine count, GC activity and uptime. Useful as a baseline
// component in the aggregator.
type ProcessChecker struct {
	config  ProcessCheckerConfig
	started time.Time
}

// NewProcessChecker creates a new process health checker.
func NewProcessChecker(config ProcessCheckerConfig) *ProcessChecker {
	if config.MemoryWarning <= 0 || config.MemoryWarning >= 1 {
		config.MemoryWarning = 0.8
	}
	if config.MemoryCritical <= 0 || config.MemoryCritical >= 1 {
		config.MemoryCritical = 0.95
	}
	if config.MemoryCritical < config.MemoryWarning {
		config.MemoryCritical = config.MemoryWarning + 0.1
		if config.MemoryCritical > 1 {
			config.MemoryCritical = 0.99
		}
	}

	return &ProcessChecker{
		config:  config,
		started: time.Now(),
	}
}

// Name returns the name of this checker.
func (p *ProcessChecker) Name() string {
	return "process"
}

// Check performs the process health check.
func (p *ProcessChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := p.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	goroutines := runtime.NumGoroutine()
	details := map[string]any{
		"alloc_bytes":    stats.Alloc,
		"alloc_mb":       float64(stats.Alloc) / (1024 * 1024),
		"max_alloc":      maxAlloc,
		"heap_in_use":    stats.HeapInuse,
		"heap_objects":   stats.HeapObjects,
		"gc_pause_total": stats.PauseTotalNs,
		"num_gc":         stats.NumGC,
		"goroutines":     goroutines,
		"uptime_seconds": time.Since(p.started).Seconds(),
	}

	if maxAlloc == 0 {
		return Healthy("memory stats unavailable").WithDetails(details)
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)
	details["usage_percent"] = usageRatio * 100

	if usageRatio >= p.config.MemoryCritical {
		return Unhealthy(
			fmt.Sprintf("memory usage critical: %.1f%%", usageRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}
	if usageRatio >= p.config.MemoryWarning {
		return Degraded(
			fmt.Sprintf("memory usage high: %.1f%%", usageRatio*100),
		).WithDetails(details)
	}
	if p.config.MaxGoroutines > 0 && goroutines > p.config.MaxGoroutines {
		return Degraded(
			fmt.Sprintf("goroutine count high: %d", goroutines),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100),
	).WithDetails(details)
}
