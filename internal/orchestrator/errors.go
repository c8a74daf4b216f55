package orchestrator

import "errors"

// Sentinel errors for orchestrator operations. ErrInvalidRequest is the only
// error Execute returns besides caller cancellation; the remainder surface at
// construction time.
var (
	ErrInvalidRequest       = errors.New("invalid run request")
	ErrInvalidRegistration  = errors.New("invalid workflow registration")
	ErrDuplicateWorkflow    = errors.New("workflow already registered")
	ErrUnregisteredWorkflow = errors.New("workflow has no registered entry point")
)
