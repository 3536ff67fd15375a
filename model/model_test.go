package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh-ai/flowmesh/core"
)

func TestMockModelCannedResponses(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("weather", "It is sunny.")

	out, err := m.Complete(context.Background(), Request{Prompt: "What is the weather like?"})
	require.NoError(t, err)
	assert.Equal(t, "It is sunny.", out)

	out, err = m.Complete(context.Background(), Request{Prompt: "Unrelated question"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: Unrelated question", out)

	assert.Equal(t, "mock", m.Info().Provider)
	assert.Equal(t, "test-model", m.Info().Name)
}

func TestMockModelRespectsContext(t *testing.T) {
	m := NewMockModel("test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Complete(ctx, Request{Prompt: "anything"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewHandlePromptComposition(t *testing.T) {
	var got Request
	m := &capturingModel{reply: "handled"}
	h := NewHandle(m, core.AgentDef{Name: "writer", Instructions: "Write concisely."})

	out, err := h.Invoke(context.Background(), "summarize the doc", "")
	require.NoError(t, err)
	assert.Equal(t, "handled", out)

	got = m.last
	assert.Equal(t, "Write concisely.", got.Instructions)
	assert.Equal(t, "summarize the doc", got.Prompt)

	_, err = h.Invoke(context.Background(), "summarize the doc", "the earlier summary")
	require.NoError(t, err)
	got = m.last
	assert.Contains(t, got.Prompt, "summarize the doc")
	assert.Contains(t, got.Prompt, "Context from previous steps:")
	assert.Contains(t, got.Prompt, "the earlier summary")
}

func TestNewHandleWrapsErrors(t *testing.T) {
	boom := errors.New("rate limited")
	h := NewHandle(&capturingModel{err: boom}, core.AgentDef{Name: "writer"})

	_, err := h.Invoke(context.Background(), "task", "")
	require.Error(t, err)

	var aie *core.AgentInvocationError
	require.True(t, errors.As(err, &aie))
	assert.Equal(t, "writer", aie.Agent)
	assert.True(t, errors.Is(err, boom))
}

// capturingModel records the last request for assertion.
type capturingModel struct {
	last  Request
	reply string
	err   error
}

func (m *capturingModel) Complete(_ context.Context, req Request) (string, error) {
	m.last = req
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *capturingModel) Info() Info { return Info{Name: "capturing", Provider: "test"} }
