package classifier_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/internal/classifier"
)

type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		err            error
		wantWorkflows  []catalog.WorkflowID
		wantOrder      []catalog.WorkflowID
		wantConfidence float64
		wantFallback   bool
	}{
		{
			name:           "single workflow",
			response:       `{"workflows": ["information_retrieval"], "confidence": 0.92, "rationale": "facts from case materials"}`,
			wantWorkflows:  []catalog.WorkflowID{catalog.InformationRetrieval},
			wantOrder:      []catalog.WorkflowID{catalog.InformationRetrieval},
			wantConfidence: 0.92,
		},
		{
			name:          "multi workflow resolves dependency order",
			response:      `{"workflows": ["strategy", "information_retrieval"], "confidence": 0.8, "rationale": "both apply"}`,
			wantWorkflows: []catalog.WorkflowID{catalog.InformationRetrieval, catalog.Strategy},
			wantOrder: []catalog.WorkflowID{
				catalog.InformationRetrieval,
				catalog.Strategy,
			},
			wantConfidence: 0.8,
		},
		{
			name:           "out of scope maps to empty set",
			response:       `{"workflows": [], "confidence": 0.95, "rationale": "not case assistance"}`,
			wantWorkflows:  []catalog.WorkflowID{},
			wantOrder:      []catalog.WorkflowID{},
			wantConfidence: 0.95,
		},
		{
			name:           "fenced response still parses",
			response:       "```json\n{\"workflows\": [\"eligibility\"], \"confidence\": 0.7, \"rationale\": \"qualification question\"}\n```",
			wantWorkflows:  []catalog.WorkflowID{catalog.Eligibility},
			wantOrder:      []catalog.WorkflowID{catalog.Eligibility},
			wantConfidence: 0.7,
		},
		{
			name:           "unknown names dropped, remainder kept",
			response:       `{"workflows": ["divination", "strategy"], "rationale": "mixed"}`,
			wantWorkflows:  []catalog.WorkflowID{catalog.Strategy},
			wantOrder:      []catalog.WorkflowID{catalog.Strategy},
			wantConfidence: 0.7,
		},
		{
			name:           "all names unknown falls back with partial trust",
			response:       `{"workflows": ["divination"], "rationale": "unusable"}`,
			wantWorkflows:  []catalog.WorkflowID{catalog.InformationRetrieval},
			wantOrder:      []catalog.WorkflowID{catalog.InformationRetrieval},
			wantConfidence: classifier.FallbackConfidenceUnusable,
			wantFallback:   true,
		},
		{
			name:           "malformed response falls back",
			response:       "I think you should probably retrieve some information.",
			wantWorkflows:  []catalog.WorkflowID{catalog.InformationRetrieval},
			wantOrder:      []catalog.WorkflowID{catalog.InformationRetrieval},
			wantConfidence: classifier.FallbackConfidenceUnavailable,
			wantFallback:   true,
		},
		{
			name:           "model error falls back",
			err:            errors.New("connection refused"),
			wantWorkflows:  []catalog.WorkflowID{catalog.InformationRetrieval},
			wantOrder:      []catalog.WorkflowID{catalog.InformationRetrieval},
			wantConfidence: classifier.FallbackConfidenceUnavailable,
			wantFallback:   true,
		},
		{
			name:           "model timeout falls back",
			err:            context.DeadlineExceeded,
			wantWorkflows:  []catalog.WorkflowID{catalog.InformationRetrieval},
			wantOrder:      []catalog.WorkflowID{catalog.InformationRetrieval},
			wantConfidence: classifier.FallbackConfidenceUnavailable,
			wantFallback:   true,
		},
		{
			name:           "missing confidence derives completeness heuristic",
			response:       `{"workflows": ["eligibility"], "rationale": "qualification question"}`,
			wantWorkflows:  []catalog.WorkflowID{catalog.Eligibility},
			wantOrder:      []catalog.WorkflowID{catalog.Eligibility},
			wantConfidence: 0.9,
		},
		{
			name:           "self-reported confidence clamped into non-fallback band",
			response:       `{"workflows": ["strategy"], "confidence": 0.2, "rationale": "weak signal"}`,
			wantWorkflows:  []catalog.WorkflowID{catalog.Strategy},
			wantOrder:      []catalog.WorkflowID{catalog.Strategy},
			wantConfidence: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{response: tt.response, err: tt.err}
			sys := classifier.New(model, discard())

			got, err := sys.Classify(context.Background(), "what does my file say?")
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}

			if !slices.Equal(got.Workflows, tt.wantWorkflows) {
				t.Errorf("Workflows = %v, want %v", got.Workflows, tt.wantWorkflows)
			}
			if !slices.Equal(got.ExecutionOrder, tt.wantOrder) {
				t.Errorf("ExecutionOrder = %v, want %v", got.ExecutionOrder, tt.wantOrder)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %v, want %v", got.Fallback, tt.wantFallback)
			}
			if got.Rationale == "" {
				t.Error("Rationale is empty")
			}
		})
	}
}

func TestClassifyConfidenceBands(t *testing.T) {
	// Fallback results stay at or below the fallback ceiling; non-fallback
	// results stay above it.
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"fallback on error", "", errors.New("boom")},
		{"fallback on garbage", "not json at all", nil},
		{"fallback on unusable content", `{"workflows": ["nonsense"]}`, nil},
		{"non-fallback", `{"workflows": ["strategy"], "confidence": 0.51, "rationale": "r"}`, nil},
		{"non-fallback heuristic", `{"workflows": ["strategy"]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := classifier.New(&fakeModel{response: tt.response, err: tt.err}, discard())
			got, err := sys.Classify(context.Background(), "query")
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}

			if got.Fallback && got.Confidence > classifier.FallbackConfidenceMax {
				t.Errorf("fallback confidence %v above band ceiling", got.Confidence)
			}
			if !got.Fallback && got.Confidence <= classifier.FallbackConfidenceMax {
				t.Errorf("non-fallback confidence %v inside fallback band", got.Confidence)
			}
			if got.Confidence <= 0 || got.Confidence >= 1 {
				t.Errorf("confidence %v outside (0,1)", got.Confidence)
			}
		})
	}
}

func TestClassifyEmptyQuery(t *testing.T) {
	sys := classifier.New(&fakeModel{}, discard())

	for _, query := range []string{"", "   ", "\n\t"} {
		if _, err := sys.Classify(context.Background(), query); !errors.Is(err, classifier.ErrEmptyQuery) {
			t.Errorf("Classify(%q) = %v, want ErrEmptyQuery", query, err)
		}
	}
}

func TestClassifyCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sys := classifier.New(&fakeModel{err: context.Canceled}, discard())
	if _, err := sys.Classify(ctx, "query"); !errors.Is(err, context.Canceled) {
		t.Errorf("Classify on cancelled context = %v, want context.Canceled", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := classifier.BuildPrompt("do I qualify for relief?")

	for _, id := range catalog.Workflows() {
		if !strings.Contains(prompt, string(id)) {
			t.Errorf("prompt does not mention workflow %s", id)
		}
	}
	if !strings.Contains(prompt, `"do I qualify for relief?"`) {
		t.Error("prompt does not embed the query")
	}
}
