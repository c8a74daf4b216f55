package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvWorkflowTimeout = "SUPERVISOR_WORKFLOW_TIMEOUT"

	defaultWorkflowTimeout = "30s"
)

// OrchestratorConfig tunes run execution.
type OrchestratorConfig struct {
	// WorkflowTimeout bounds each downstream workflow invocation.
	WorkflowTimeout string `toml:"workflow_timeout"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *OrchestratorConfig) Finalize() error {
	if c.WorkflowTimeout == "" {
		c.WorkflowTimeout = defaultWorkflowTimeout
	}
	if v := os.Getenv(EnvWorkflowTimeout); v != "" {
		c.WorkflowTimeout = v
	}
	if _, err := time.ParseDuration(c.WorkflowTimeout); err != nil {
		return fmt.Errorf("invalid workflow_timeout: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *OrchestratorConfig) Merge(overlay *OrchestratorConfig) {
	if overlay.WorkflowTimeout != "" {
		c.WorkflowTimeout = overlay.WorkflowTimeout
	}
}

// WorkflowTimeoutDuration returns WorkflowTimeout as a time.Duration.
func (c *OrchestratorConfig) WorkflowTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WorkflowTimeout)
	return d
}
