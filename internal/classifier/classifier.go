// Package classifier maps a natural-language request to a prescription: the
// set of capability workflows judged applicable, with a confidence score and
// rationale. Routing must always produce some decision, so every downstream
// failure (model timeout, transport error, unusable response) degrades to a
// deterministic low-confidence fallback instead of propagating.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/pkg/formatting"
	"github.com/fieldline/supervisor/pkg/modelclient"
)

// Confidence bands. Fallback results stay at or below FallbackConfidenceMax
// so callers can distinguish "classifier unsure" from "classifier unavailable".
const (
	// FallbackConfidenceUnavailable marks results produced without a usable
	// model response (call failed, timed out, or was unparseable).
	FallbackConfidenceUnavailable = 0.3
	// FallbackConfidenceUnusable marks results where the call succeeded but
	// the content named no catalog workflows.
	FallbackConfidenceUnusable = 0.5
	// FallbackConfidenceMax is the ceiling of the fallback band.
	FallbackConfidenceMax = 0.5

	heuristicComplete = 0.9
	heuristicPartial  = 0.7
	confidenceFloor   = 0.6
	confidenceCeiling = 0.95
)

// Prescription is the classifier's output: the prescribed workflows, resolved
// into catalog execution order, with the classifier's self-assessment.
// Workflows may be empty — "no applicable capability" is a valid outcome,
// not an error.
type Prescription struct {
	Workflows      []catalog.WorkflowID `json:"workflows"`
	Confidence     float64              `json:"confidence"`
	Rationale      string               `json:"rationale"`
	ExecutionOrder []catalog.WorkflowID `json:"execution_order"`
	Fallback       bool                 `json:"fallback"`
}

// System defines the public contract for intent classification.
type System interface {
	// Classify maps query to a Prescription. It fails only on a caller bug
	// (blank query) or caller cancellation; every model-side failure is
	// absorbed into a fallback Prescription.
	Classify(ctx context.Context, query string) (*Prescription, error)
}

type system struct {
	model  modelclient.Client
	logger *slog.Logger
}

// New creates a classifier System backed by the given model client.
func New(model modelclient.Client, logger *slog.Logger) System {
	return &system{
		model:  model,
		logger: logger.With("system", "classifier"),
	}
}

// modelResponse is the structured record the prompt instructs the model to emit.
type modelResponse struct {
	Workflows  []string `json:"workflows"`
	Confidence *float64 `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

func (s *system) Classify(ctx context.Context, query string) (*Prescription, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	content, err := s.model.Generate(ctx, BuildPrompt(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("model call failed, using fallback", "error", err)
		return s.fallback(FallbackConfidenceUnavailable, fmt.Sprintf("model call failed: %v", err))
	}

	parsed, err := formatting.Parse[modelResponse](content)
	if err != nil {
		s.logger.Warn("unparseable model response, using fallback", "error", err)
		return s.fallback(FallbackConfidenceUnavailable, "model response was not parseable")
	}

	prescribed, dropped := resolveNames(parsed.Workflows)
	if len(prescribed) == 0 && dropped > 0 {
		// The call succeeded but the content was unusable: partial trust.
		s.logger.Warn("no recognized workflows in model response", "dropped", dropped)
		return s.fallback(FallbackConfidenceUnusable, "model response named no known workflows")
	}

	order, err := catalog.ResolveOrder(prescribed)
	if err != nil {
		// Unreachable once catalog.Validate has passed at startup.
		return nil, fmt.Errorf("resolve execution order: %w", err)
	}

	return &Prescription{
		Workflows:      prescribed,
		Confidence:     confidence(parsed, dropped),
		Rationale:      parsed.Rationale,
		ExecutionOrder: order,
	}, nil
}

// fallback produces the deterministic least-committal prescription:
// information retrieval alone, in the low-confidence band.
func (s *system) fallback(conf float64, reason string) (*Prescription, error) {
	workflows := []catalog.WorkflowID{catalog.InformationRetrieval}

	order, err := catalog.ResolveOrder(workflows)
	if err != nil {
		return nil, fmt.Errorf("resolve execution order: %w", err)
	}

	return &Prescription{
		Workflows:      workflows,
		Confidence:     conf,
		Rationale:      "fallback prescription: " + reason,
		ExecutionOrder: order,
		Fallback:       true,
	}, nil
}

// resolveNames keeps the catalog-valid workflow names, deduplicated and
// sorted, and counts how many were dropped as unrecognized.
func resolveNames(names []string) ([]catalog.WorkflowID, int) {
	var valid []catalog.WorkflowID
	dropped := 0

	for _, name := range names {
		id, err := catalog.ParseWorkflow(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			dropped++
			continue
		}
		if !slices.Contains(valid, id) {
			valid = append(valid, id)
		}
	}

	slices.Sort(valid)
	return valid, dropped
}

// confidence prefers the model's self-reported value, clamped into the
// non-fallback band; without one it derives a heuristic from completeness.
func confidence(resp modelResponse, dropped int) float64 {
	if resp.Confidence != nil && *resp.Confidence > 0 && *resp.Confidence < 1 {
		return min(max(*resp.Confidence, confidenceFloor), confidenceCeiling)
	}

	if dropped == 0 && resp.Rationale != "" {
		return heuristicComplete
	}
	return heuristicPartial
}
