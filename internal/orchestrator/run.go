package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/internal/classifier"
	"github.com/fieldline/supervisor/internal/readiness"
)

// RunRequest is one user interaction to be routed. It is constructed by the
// caller, validated at Execute entry, and never mutated by the supervisor.
// PriorContext is carried through to workflow invocations unmodified.
type RunRequest struct {
	Query        string         `json:"query"`
	UserID       string         `json:"user_id"`
	PriorContext map[string]any `json:"prior_context,omitempty"`
}

// Validate reports whether the request satisfies the caller contract.
func (r *RunRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if r.Query == "" {
		return fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: empty user_id", ErrInvalidRequest)
	}
	return nil
}

// Decision is the routing outcome computed once readiness is known.
type Decision string

// Routing decisions.
const (
	// DecisionProceed routes the run into workflow execution.
	DecisionProceed Decision = "proceed"
	// DecisionCollect halts the run so the caller can gather the missing
	// documents. This is an expected outcome, never an error.
	DecisionCollect Decision = "collect"
)

// Phase tracks where a run is in its lifecycle. Transitions are strictly
// sequential; terminated is the only terminal phase.
type Phase string

// Run phases.
const (
	PhaseStarted    Phase = "started"
	PhaseClassified Phase = "classified"
	PhaseChecked    Phase = "checked"
	PhaseDecided    Phase = "decided"
	PhaseExecuting  Phase = "executing"
	PhaseExecuted   Phase = "executed"
	PhaseTerminated Phase = "terminated"
)

// StageError records a failure absorbed during a run: which stage it occurred
// in, the workflow involved when applicable, and the failure detail.
type StageError struct {
	Stage    string             `json:"stage"`
	Workflow catalog.WorkflowID `json:"workflow,omitempty"`
	Detail   string             `json:"detail"`
}

// RunResult is the immutable terminal output of one Execute call.
type RunResult struct {
	RunID          uuid.UUID                         `json:"run_id"`
	Decision       Decision                          `json:"decision"`
	Prescription   *classifier.Prescription          `json:"prescription"`
	Readiness      *readiness.Readiness              `json:"readiness"`
	Executed       []catalog.WorkflowID              `json:"executed"`
	Outcomes       map[catalog.WorkflowID]Outcome    `json:"outcomes"`
	Errors         []StageError                      `json:"errors,omitempty"`
	StageDurations map[string]time.Duration          `json:"stage_durations"`
	TotalDuration  time.Duration                     `json:"total_duration"`
}

// runState is the mutable working record for one in-flight run. It is owned
// exclusively by a single Execute call and never shared across runs.
type runState struct {
	runID        uuid.UUID
	phase        Phase
	request      *RunRequest
	prescription *classifier.Prescription
	readiness    *readiness.Readiness
	decision     Decision
	executed     []catalog.WorkflowID
	outcomes     map[catalog.WorkflowID]Outcome
	durations    map[string]time.Duration
	errors       []StageError
	started      time.Time
}

func newRunState(req *RunRequest) *runState {
	return &runState{
		runID:     uuid.New(),
		phase:     PhaseStarted,
		request:   req,
		executed:  []catalog.WorkflowID{},
		outcomes:  make(map[catalog.WorkflowID]Outcome),
		durations: make(map[string]time.Duration),
		started:   time.Now(),
	}
}

// invoked reports whether id has already been invoked during this run.
func (rs *runState) invoked(id catalog.WorkflowID) bool {
	for _, done := range rs.executed {
		if done == id {
			return true
		}
	}
	return false
}

func (rs *runState) result() *RunResult {
	return &RunResult{
		RunID:          rs.runID,
		Decision:       rs.decision,
		Prescription:   rs.prescription,
		Readiness:      rs.readiness,
		Executed:       rs.executed,
		Outcomes:       rs.outcomes,
		Errors:         rs.errors,
		StageDurations: rs.durations,
		TotalDuration:  time.Since(rs.started),
	}
}
