package orchestrator

import (
	"context"
	"fmt"

	"github.com/fieldline/supervisor/internal/catalog"
)

// OutcomeStatus marks a workflow invocation as succeeded or failed.
type OutcomeStatus string

// Invocation statuses.
const (
	StatusOK    OutcomeStatus = "ok"
	StatusError OutcomeStatus = "error"
)

// Outcome is the result of one workflow invocation. Payload is opaque to the
// supervisor; it is produced by the workflow and interpreted only by the
// consumer of the RunResult.
type Outcome struct {
	Status      OutcomeStatus `json:"status"`
	Payload     any           `json:"payload,omitempty"`
	ErrorDetail string        `json:"error_detail,omitempty"`
}

// InvokeFunc is the entry point of a downstream capability workflow. Prior
// holds the outcomes of workflows already executed during this run, keyed by
// workflow identifier, so later workflows can consume earlier output.
type InvokeFunc func(ctx context.Context, req *RunRequest, prior map[catalog.WorkflowID]Outcome) (Outcome, error)

// Registry maps catalog workflow identifiers to their invocation entry
// points. It is populated once at startup and read-only afterward; unknown
// identifiers are a registration-time error, never a runtime branch.
type Registry struct {
	invokers map[catalog.WorkflowID]InvokeFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{invokers: make(map[catalog.WorkflowID]InvokeFunc)}
}

// Register binds fn as the entry point for id.
// Returns catalog.ErrUnknownWorkflow when id is not in the catalog and
// ErrDuplicateWorkflow when id already has an entry point.
func (r *Registry) Register(id catalog.WorkflowID, fn InvokeFunc) error {
	if !catalog.Contains(id) {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownWorkflow, id)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil entry point for %s", ErrInvalidRegistration, id)
	}
	if _, exists := r.invokers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWorkflow, id)
	}

	r.invokers[id] = fn
	return nil
}

// validate confirms every catalog workflow has a registered entry point.
func (r *Registry) validate() error {
	for _, id := range catalog.Workflows() {
		if _, ok := r.invokers[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnregisteredWorkflow, id)
		}
	}
	return nil
}

func (r *Registry) invoker(id catalog.WorkflowID) (InvokeFunc, bool) {
	fn, ok := r.invokers[id]
	return fn, ok
}
