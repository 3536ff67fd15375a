// Package config provides configuration loading for FlowMesh workflows.
package config

import (
	"fmt"
	"time"

	"github.com/flowmesh-ai/flowmesh/topology"
)

// HandleMode selects how agent handles are bound for a loaded workflow.
type HandleMode string

const (
	// HandleModeModel binds each agent to the model named by its model id.
	HandleModeModel HandleMode = "model"
	// HandleModeEcho binds each agent to a deterministic echo handle, for
	// dry runs without API credentials.
	HandleModeEcho HandleMode = "echo"
)

// Logging configures the structured logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Config is the full configuration surface consumed by the CLI and the root
// façade: the workflow declaration plus run settings. Malformed raw syntax
// is this package's concern; the topology package receives already-parsed
// declarations.
type Config struct {
	Task              string        `yaml:"task"`
	Workflow          topology.Decl `yaml:"workflow"`
	Handles           HandleMode    `yaml:"handles"`
	InvocationTimeout time.Duration `yaml:"invocation_timeout"`
	Logging           Logging       `yaml:"logging"`
}

// Default returns the baseline configuration applied before file and
// environment overrides.
func Default() *Config {
	return &Config{
		Handles: HandleModeModel,
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// Validate checks the parts of the configuration this package owns. Full
// topology validation happens in topology.Build.
func (c *Config) Validate() error {
	if c.Task == "" {
		return fmt.Errorf("config: task must not be empty")
	}
	if !c.Workflow.Kind.Valid() {
		return fmt.Errorf("config: unknown workflow kind %q", c.Workflow.Kind)
	}
	switch c.Handles {
	case HandleModeModel, HandleModeEcho:
	default:
		return fmt.Errorf("config: unknown handle mode %q", c.Handles)
	}
	if c.InvocationTimeout < 0 {
		return fmt.Errorf("config: invocation_timeout must not be negative")
	}
	return nil
}
