package catalog

import "errors"

// Sentinel errors for catalog operations.
var (
	ErrUnknownWorkflow     = errors.New("unknown workflow")
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrCyclicDependency    = errors.New("cyclic workflow dependency")
)
