package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowmesh-ai/flowmesh/core"
)

// Request captures the normalized model input produced by handles and the
// manager: a behavioral directive plus the prompt text.
type Request struct {
	Instructions string `json:"instructions,omitempty"`
	Prompt       string `json:"prompt"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive text generation. The
// call must honor ctx cancellation and deadlines.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// NewHandle adapts a Model to the core.Handle capability for one agent.
// The agent's instructions become the request directive; task and
// accumulated context compose the prompt.
func NewHandle(m Model, agent core.AgentDef) core.Handle {
	return core.HandleFunc(func(ctx context.Context, task, contextText string) (string, error) {
		prompt := task
		if contextText != "" {
			prompt = fmt.Sprintf("%s\n\nContext from previous steps:\n%s", task, contextText)
		}
		out, err := m.Complete(ctx, Request{Instructions: agent.Instructions, Prompt: prompt})
		if err != nil {
			return "", &core.AgentInvocationError{Agent: agent.Name, Cause: err}
		}
		return out, nil
	})
}

// MockModel is a lightweight in-memory Model useful for tests, examples and
// CLI dry runs. Responses are keyed by prompt substring; unmatched prompts
// echo back a deterministic placeholder.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion returned when the prompt
// contains the given substring.
func (m *MockModel) AddResponse(promptContains, response string) {
	m.responses[promptContains] = response
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	for needle, resp := range m.responses {
		if strings.Contains(req.Prompt, needle) {
			return resp, nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", req.Prompt), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
