// Package config loads and finalizes the supervisor's configuration: a base
// TOML file, an optional environment overlay, then environment variable
// overrides and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/fieldline/supervisor/pkg/docstore"
	"github.com/fieldline/supervisor/pkg/modelclient"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSupervisorEnv             = "SUPERVISOR_ENV"
	EnvSupervisorShutdownTimeout = "SUPERVISOR_SHUTDOWN_TIMEOUT"
)

var modelEnv = &modelclient.Env{
	Model:     "SUPERVISOR_MODEL_NAME",
	APIKey:    "SUPERVISOR_MODEL_API_KEY",
	MaxTokens: "SUPERVISOR_MODEL_MAX_TOKENS",
	Timeout:   "SUPERVISOR_MODEL_TIMEOUT",
}

var storeEnv = &docstore.Env{
	ContainerName:    "SUPERVISOR_STORE_CONTAINER_NAME",
	ConnectionString: "SUPERVISOR_STORE_CONNECTION_STRING",
	Timeout:          "SUPERVISOR_STORE_TIMEOUT",
}

// Config is the root configuration for the supervisor.
type Config struct {
	Model           modelclient.Config `toml:"model"`
	Store           docstore.Config    `toml:"store"`
	Orchestrator    OrchestratorConfig `toml:"orchestrator"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
}

// Env returns the SUPERVISOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSupervisorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Model.Merge(&overlay.Model)
	c.Store.Merge(&overlay.Store)
	c.Orchestrator.Merge(&overlay.Orchestrator)
}

// Finalize applies defaults, environment variable overrides, and validation
// across all sub-configs.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Model.Finalize(modelEnv); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Store.Finalize(storeEnv); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Orchestrator.Finalize(); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSupervisorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSupervisorEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
