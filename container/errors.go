package container

import "errors"

// Sentinel errors for container operations.
var (
	// ErrNotRegistered is returned when a service name is unknown at any
	// depth of a resolution. This is a configuration error, not a
	// runtime lookup miss.
	ErrNotRegistered = errors.New("container: service not registered")

	// ErrAlreadyRegistered is returned when a name is registered twice.
	ErrAlreadyRegistered = errors.New("container: service already registered")

	// ErrCycle is returned when resolution revisits a name already being
	// constructed on the current resolution stack.
	ErrCycle = errors.New("container: cyclic dependency")

	// ErrWrongType is returned by the typed Get helper when the resolved
	// instance does not have the requested type.
	ErrWrongType = errors.New("container: service has wrong type")
)
