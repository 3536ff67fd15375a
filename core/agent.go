package core

import "context"

// AgentDef describes a declared agent. Definitions are created once when a
// workflow is loaded and are immutable for the duration of a run; the
// topology graph owns them exclusively.
//
// Name is the unique, case-sensitive identity used by edges, groups and
// result slots. Model is an opaque identifier naming the backing capability
// (resolved by a HandleResolver); the engine never interprets it.
type AgentDef struct {
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions string            `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Model        string            `json:"model,omitempty" yaml:"model,omitempty"`
	Tools        []string          `json:"tools,omitempty" yaml:"tools,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Handle is the capability reference through which the engine invokes an
// agent. Given the task description and accumulated context it produces a
// result string or fails. Invoke must respect ctx cancellation and any
// deadline imposed by the caller; a blocked handle is cancelled, not waited
// for.
type Handle interface {
	Invoke(ctx context.Context, task, contextText string) (string, error)
}

// HandleFunc adapts an ordinary function to the Handle interface.
type HandleFunc func(ctx context.Context, task, contextText string) (string, error)

// Invoke implements Handle.
func (f HandleFunc) Invoke(ctx context.Context, task, contextText string) (string, error) {
	return f(ctx, task, contextText)
}

// HandleResolver binds agent definitions to concrete handles at run start.
// Resolution failures surface before any agent is invoked.
type HandleResolver interface {
	Resolve(agent AgentDef) (Handle, error)
}

// HandleMap is a HandleResolver backed by a name -> Handle map.
type HandleMap map[string]Handle

// Resolve implements HandleResolver. Unknown names fail with an
// AgentInvocationError so the cause carries the agent identity.
func (m HandleMap) Resolve(agent AgentDef) (Handle, error) {
	h, ok := m[agent.Name]
	if !ok {
		return nil, &AgentInvocationError{Agent: agent.Name, Cause: ErrNoHandle}
	}
	return h, nil
}
