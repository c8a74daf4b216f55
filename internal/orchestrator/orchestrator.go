// Package orchestrator sequences one run through the supervisor pipeline:
// intent classification, precondition checking, the routing decision, and —
// when the decision is to proceed — invocation of each prescribed workflow in
// catalog order. Failures of external dependencies are absorbed into the run
// result; only a malformed request or caller cancellation fails Execute.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/internal/classifier"
	"github.com/fieldline/supervisor/internal/readiness"
)

// Stage duration keys recorded in RunResult.StageDurations. Per-workflow
// invocation durations use "invoke." + the workflow identifier.
const (
	StageClassify = "classify"
	StageCheck    = "check"
	StageInvoke   = "invoke"
)

// DefaultWorkflowTimeout bounds a single downstream workflow invocation.
const DefaultWorkflowTimeout = 30 * time.Second

// Orchestrator executes supervisor runs. It holds no per-run state; concurrent
// Execute calls are fully independent.
type Orchestrator struct {
	classifier      classifier.System
	readiness       readiness.System
	registry        *Registry
	workflowTimeout time.Duration
	logger          *slog.Logger
}

// Options tunes orchestrator construction.
type Options struct {
	// WorkflowTimeout bounds each downstream workflow invocation.
	// Zero applies DefaultWorkflowTimeout.
	WorkflowTimeout time.Duration
}

// New creates an Orchestrator. It validates the catalog and confirms every
// catalog workflow has a registered entry point; both are startup-time
// failures, never request-time ones.
func New(
	cls classifier.System,
	rdy readiness.System,
	registry *Registry,
	opts Options,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}
	if err := registry.validate(); err != nil {
		return nil, fmt.Errorf("registry validation failed: %w", err)
	}

	timeout := opts.WorkflowTimeout
	if timeout == 0 {
		timeout = DefaultWorkflowTimeout
	}

	return &Orchestrator{
		classifier:      cls,
		readiness:       rdy,
		registry:        registry,
		workflowTimeout: timeout,
		logger:          logger.With("system", "orchestrator"),
	}, nil
}

// Execute runs one request through the full pipeline and returns the terminal
// RunResult. It fails only on a caller-contract violation (ErrInvalidRequest)
// or caller cancellation; no partial result is returned in either case.
func (o *Orchestrator) Execute(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rs := newRunState(req)

	o.logger.Info("run started",
		"run_id", rs.runID,
		"user_id", req.UserID,
	)

	if err := o.classify(ctx, rs); err != nil {
		return nil, err
	}
	if err := o.check(ctx, rs); err != nil {
		return nil, err
	}

	o.decide(rs)

	if rs.decision == DecisionProceed && len(rs.prescription.ExecutionOrder) > 0 {
		if err := o.invokeAll(ctx, rs); err != nil {
			return nil, err
		}
		rs.phase = PhaseExecuted
	}

	rs.phase = PhaseTerminated
	result := rs.result()

	o.logger.Info("run terminated",
		"run_id", rs.runID,
		"decision", rs.decision,
		"executed", len(rs.executed),
		"errors", len(rs.errors),
		"duration", result.TotalDuration,
	)

	return result, nil
}

// classify transitions started → classified. The classifier absorbs every
// model-side failure into a fallback prescription, so the only errors here
// are caller bugs already ruled out by Validate, or cancellation.
func (o *Orchestrator) classify(ctx context.Context, rs *runState) error {
	start := time.Now()

	prescription, err := o.classifier.Classify(ctx, rs.request.Query)
	rs.durations[StageClassify] = time.Since(start)
	if err != nil {
		return err
	}

	rs.prescription = prescription
	rs.phase = PhaseClassified

	o.logger.Info("run classified",
		"run_id", rs.runID,
		"workflows", prescription.Workflows,
		"confidence", prescription.Confidence,
		"fallback", prescription.Fallback,
	)

	return nil
}

// check transitions classified → checked. The checker degrades a store outage
// to "not ready", so the only error here is cancellation.
func (o *Orchestrator) check(ctx context.Context, rs *runState) error {
	start := time.Now()

	result, err := o.readiness.Check(ctx, rs.prescription.Workflows, rs.request.UserID)
	rs.durations[StageCheck] = time.Since(start)
	if err != nil {
		return err
	}

	rs.readiness = result
	rs.phase = PhaseChecked

	return nil
}

// decide transitions checked → decided. The decision is a pure function of
// readiness: proceed when every required document is present, collect
// otherwise.
func (o *Orchestrator) decide(rs *runState) {
	if rs.readiness.Ready {
		rs.decision = DecisionProceed
	} else {
		rs.decision = DecisionCollect
	}
	rs.phase = PhaseDecided
}

// invokeAll runs every prescribed workflow once, in execution order. A
// workflow-level failure is recorded and execution continues with the next
// workflow: partial success is preferable to total failure. Only caller
// cancellation aborts the loop.
func (o *Orchestrator) invokeAll(ctx context.Context, rs *runState) error {
	rs.phase = PhaseExecuting

	for _, id := range rs.prescription.ExecutionOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rs.invoked(id) {
			continue
		}

		o.invoke(ctx, rs, id)
	}

	return nil
}

func (o *Orchestrator) invoke(ctx context.Context, rs *runState, id catalog.WorkflowID) {
	// Appending before the call guarantees at-most-once invocation per run,
	// even if a future caller wraps Execute in retry logic.
	rs.executed = append(rs.executed, id)

	fn, ok := o.registry.invoker(id)
	if !ok {
		// Construction-time validation makes this unreachable.
		rs.recordFailure(id, fmt.Errorf("%w: %s", ErrUnregisteredWorkflow, id))
		return
	}

	ictx, cancel := context.WithTimeout(ctx, o.workflowTimeout)
	defer cancel()

	start := time.Now()
	outcome, err := fn(ictx, rs.request, rs.outcomes)
	rs.durations[StageInvoke+"."+string(id)] = time.Since(start)

	if err != nil {
		o.logger.Warn("workflow invocation failed",
			"run_id", rs.runID,
			"workflow", id,
			"error", err,
		)
		rs.recordFailure(id, err)
		return
	}

	rs.outcomes[id] = outcome
}

func (rs *runState) recordFailure(id catalog.WorkflowID, err error) {
	rs.errors = append(rs.errors, StageError{
		Stage:    StageInvoke,
		Workflow: id,
		Detail:   err.Error(),
	})
	rs.outcomes[id] = Outcome{
		Status:      StatusError,
		ErrorDetail: err.Error(),
	}
}
