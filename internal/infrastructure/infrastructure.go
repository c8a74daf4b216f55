// Package infrastructure assembles the supervisor's shared dependencies:
// lifecycle coordination, logging, the model client, and the document store.
// It is the composition root a surrounding service uses to build a runnable
// orchestrator from configuration.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fieldline/supervisor/internal/catalog"
	"github.com/fieldline/supervisor/internal/classifier"
	"github.com/fieldline/supervisor/internal/config"
	"github.com/fieldline/supervisor/internal/orchestrator"
	"github.com/fieldline/supervisor/internal/readiness"
	"github.com/fieldline/supervisor/pkg/docstore"
	"github.com/fieldline/supervisor/pkg/lifecycle"
	"github.com/fieldline/supervisor/pkg/modelclient"
)

// Infrastructure holds the shared, process-wide systems. The model client and
// document store are connection-pooled and safe for concurrent runs; nothing
// here is per-run state.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Model     modelclient.Client
	Store     docstore.Store
}

// New creates an Infrastructure from the application configuration. The
// catalog is validated here: a broken catalog is fatal at boot, never at
// request time.
func New(cfg *config.Config) (*Infrastructure, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	model, err := modelclient.New(&cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("model client init failed: %w", err)
	}

	store, err := docstore.New(&cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("docstore init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Model:     model,
		Store:     store,
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Store.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("docstore start failed: %w", err)
	}
	return nil
}

// Orchestrator composes the supervisor pipeline on top of the infrastructure:
// classifier and readiness systems wired to the shared clients, plus the
// caller's workflow registry.
func (i *Infrastructure) Orchestrator(
	cfg *config.Config,
	registry *orchestrator.Registry,
) (*orchestrator.Orchestrator, error) {
	cls := classifier.New(i.Model, i.Logger)
	rdy := readiness.New(i.Store, i.Logger)

	return orchestrator.New(cls, rdy, registry, orchestrator.Options{
		WorkflowTimeout: cfg.Orchestrator.WorkflowTimeoutDuration(),
	}, i.Logger)
}
