package health

import "errors"

var (
	// ErrCheckFailed indicates a health check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked indicates a health check panicked.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrMonitorRunning indicates the monitor is already started.
	ErrMonitorRunning = errors.New("health: monitor already running")
)
