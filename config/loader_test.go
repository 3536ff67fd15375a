package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh-ai/flowmesh/topology"
)

const sequentialYAML = `
task: write a launch announcement
handles: echo
invocation_timeout: 30s
logging:
  level: debug
  format: text
workflow:
  kind: sequential
  start: draft
  agents:
    - name: draft
      instructions: Draft the announcement.
      model: gpt-4o-mini
    - name: review
      instructions: Review and tighten the draft.
  edges:
    - from: draft
      to: review
`

func TestParseSequential(t *testing.T) {
	cfg, err := Parse([]byte(sequentialYAML))
	require.NoError(t, err)

	assert.Equal(t, "write a launch announcement", cfg.Task)
	assert.Equal(t, HandleModeEcho, cfg.Handles)
	assert.Equal(t, 30*time.Second, cfg.InvocationTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.Equal(t, topology.KindSequential, cfg.Workflow.Kind)
	assert.Equal(t, "draft", cfg.Workflow.Start)
	require.Len(t, cfg.Workflow.Agents, 2)
	assert.Equal(t, "gpt-4o-mini", cfg.Workflow.Agents[0].Model)
	require.Len(t, cfg.Workflow.Edges, 1)
	assert.Equal(t, "review", cfg.Workflow.Edges[0].To)

	// A parsed declaration must build cleanly.
	_, err = topology.Build(cfg.Workflow)
	assert.NoError(t, err)
}

func TestParseConcurrent(t *testing.T) {
	cfg, err := Parse([]byte(`
task: assess the proposal
workflow:
  kind: concurrent
  agents:
    - name: legal
    - name: finance
    - name: engineering
  group:
    participants: [legal, finance, engineering]
    strategy: vote
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Workflow.Group)
	assert.Equal(t, []string{"legal", "finance", "engineering"}, cfg.Workflow.Group.Participants)

	_, err = topology.Build(cfg.Workflow)
	assert.NoError(t, err)
}

func TestParseMagentic(t *testing.T) {
	cfg, err := Parse([]byte(`
task: refactor the billing module
workflow:
  kind: magentic
  agents:
    - name: coder
    - name: reviewer
  manager:
    model: gpt-4o
    max_rounds: 8
    max_stalls: 2
    max_resets: 1
    plan_review: true
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Workflow.Manager)
	assert.Equal(t, 8, cfg.Workflow.Manager.MaxRounds)
	assert.Equal(t, 2, cfg.Workflow.Manager.MaxStalls)
	assert.True(t, cfg.Workflow.Manager.PlanReview)

	_, err = topology.Build(cfg.Workflow)
	assert.NoError(t, err)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
task: anything
workflow:
  kind: sequential
  start: solo
  agents:
    - name: solo
`))
	require.NoError(t, err)

	assert.Equal(t, HandleModeModel, cfg.Handles)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Zero(t, cfg.InvocationTimeout)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing task", yaml: "workflow:\n  kind: sequential\n"},
		{name: "unknown kind", yaml: "task: t\nworkflow:\n  kind: circular\n"},
		{name: "unknown handle mode", yaml: "task: t\nhandles: psychic\nworkflow:\n  kind: sequential\n"},
		{name: "negative timeout", yaml: "task: t\ninvocation_timeout: -5s\nworkflow:\n  kind: sequential\n"},
		{name: "malformed yaml", yaml: "task: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sequentialYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "write a launch announcement", cfg.Task)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sequentialYAML), 0o644))

	t.Setenv("FLOWMESH_TASK", "task from the environment")
	t.Setenv("FLOWMESH_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "task from the environment", cfg.Task)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
