package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/logging"
	"github.com/flowmesh-ai/flowmesh/model"
)

// ModelManager implements Manager on top of a model.Model. Each Propose call
// asks the model for a JSON delegation plan; each Evaluate call asks for a
// JSON completion verdict. Reset clears the running plan note so the next
// Propose starts from a clean slate.
type ModelManager struct {
	model  model.Model
	logger logging.Logger

	mu       sync.Mutex
	planNote string
}

// ModelManagerOptions configure a ModelManager.
type ModelManagerOptions struct {
	Logger logging.Logger
}

// NewModelManager creates a manager backed by the given model.
func NewModelManager(m model.Model, optFns ...func(o *ModelManagerOptions)) *ModelManager {
	opts := ModelManagerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelManager{model: m, logger: opts.Logger}
}

const proposeInstructions = `You are the coordination manager of a team of agents.
Given the task, the team roster and the results so far, decide which agents
to delegate to next. Respond with JSON only, no prose:
{"assignments":[{"agent":"<name>","subtask":"<text>"}],"note":"<plan summary>"}
Delegate to zero agents (empty list) only if no useful work remains.`

const evaluateInstructions = `You are the coordination manager of a team of agents.
Given the task and the results so far, decide whether the task is complete.
Respond with JSON only, no prose:
{"complete":true|false,"final_result":"<combined answer when complete>"}`

// Propose implements Manager.
func (m *ModelManager) Propose(ctx context.Context, snap core.Snapshot, roster []core.AgentDef) (*Plan, error) {
	m.mu.Lock()
	note := m.planNote
	m.mu.Unlock()

	out, err := m.model.Complete(ctx, model.Request{
		Instructions: proposeInstructions,
		Prompt:       proposePrompt(snap, roster, note),
	})
	if err != nil {
		return nil, fmt.Errorf("manager model call failed: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(stripFences(out)), &plan); err != nil {
		return nil, fmt.Errorf("manager returned unparseable plan: %w", err)
	}

	m.mu.Lock()
	m.planNote = plan.Note
	m.mu.Unlock()

	m.logger.Debug("manager proposed plan", "assignments", len(plan.Assignments))

	return &plan, nil
}

// Evaluate implements Manager.
func (m *ModelManager) Evaluate(ctx context.Context, snap core.Snapshot) (*Verdict, error) {
	out, err := m.model.Complete(ctx, model.Request{
		Instructions: evaluateInstructions,
		Prompt:       evaluatePrompt(snap),
	})
	if err != nil {
		return nil, fmt.Errorf("manager model call failed: %w", err)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(stripFences(out)), &verdict); err != nil {
		return nil, fmt.Errorf("manager returned unparseable verdict: %w", err)
	}
	return &verdict, nil
}

// Reset implements Manager. Only the plan note is discarded; result history
// lives in the execution context and is untouched.
func (m *ModelManager) Reset(context.Context) error {
	m.mu.Lock()
	m.planNote = ""
	m.mu.Unlock()
	m.logger.Debug("manager plan reset")
	return nil
}

func proposePrompt(snap core.Snapshot, roster []core.AgentDef, note string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n\nTeam:\n", snap.Task)
	for _, a := range roster {
		fmt.Fprintf(&sb, "- %s: %s\n", a.Name, a.Description)
	}
	if note != "" {
		fmt.Fprintf(&sb, "\nCurrent plan: %s\n", note)
	}
	writeResults(&sb, snap)
	fmt.Fprintf(&sb, "\nRound %d. Propose the next assignments.", snap.Round)
	return sb.String()
}

func evaluatePrompt(snap core.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n", snap.Task)
	writeResults(&sb, snap)
	sb.WriteString("\nIs the task complete?")
	return sb.String()
}

func writeResults(sb *strings.Builder, snap core.Snapshot) {
	if len(snap.Results) == 0 {
		sb.WriteString("\nNo results yet.\n")
		return
	}
	sb.WriteString("\nResults so far:\n")
	for _, r := range snap.Results {
		fmt.Fprintf(sb, "- [%s] %s\n", r.Agent, r.Output)
	}
}

// stripFences removes a markdown code fence wrapper, which models add even
// when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
