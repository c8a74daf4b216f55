// Package readiness verifies that the documents required by a set of
// prescribed workflows are present for the requesting user. A store outage
// degrades to "nothing is available" rather than failing the run: collecting
// more information is always a safe routing outcome.
package readiness

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/pkg/docstore"
)

// Readiness reports whether the prescribed workflows can run for a user.
// Available and Missing are disjoint and their union is exactly the set of
// document types the workflows require; Ready holds when Missing is empty.
type Readiness struct {
	Ready     bool                   `json:"ready"`
	Available []catalog.DocumentType `json:"available_documents"`
	Missing   []catalog.DocumentType `json:"missing_documents"`
}

// System defines the public contract for precondition checking.
type System interface {
	// Check queries document presence for every type the given workflows
	// require. It fails only on caller cancellation; a store outage returns
	// a degraded not-ready result with every required type marked missing.
	Check(ctx context.Context, workflows []catalog.WorkflowID, userID string) (*Readiness, error)
}

type system struct {
	store  docstore.Store
	logger *slog.Logger
}

// New creates a readiness System backed by the given document store.
func New(store docstore.Store, logger *slog.Logger) System {
	return &system{
		store:  store,
		logger: logger.With("system", "readiness"),
	}
}

func (s *system) Check(ctx context.Context, workflows []catalog.WorkflowID, userID string) (*Readiness, error) {
	required := catalog.RequiredDocuments(workflows)
	if len(required) == 0 {
		// A prescription with no document requirements is always ready.
		return &Readiness{Ready: true}, nil
	}

	keys := make([]string, len(required))
	for i, doc := range required {
		keys[i] = string(doc)
	}

	start := time.Now()
	presence, err := s.store.CheckPresence(ctx, userID, keys)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("document store query failed, degrading to not ready",
			"user_id", userID,
			"required", len(required),
			"error", err,
		)
		return &Readiness{Missing: required}, nil
	}

	result := &Readiness{}
	for _, doc := range required {
		if presence[string(doc)] {
			result.Available = append(result.Available, doc)
		} else {
			result.Missing = append(result.Missing, doc)
		}
	}
	result.Ready = len(result.Missing) == 0

	s.logger.Debug("readiness check complete",
		"user_id", userID,
		"ready", result.Ready,
		"missing", len(result.Missing),
		"duration", time.Since(start),
	)

	return result, nil
}
