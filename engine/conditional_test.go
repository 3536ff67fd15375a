package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/internal/testutil"
	"github.com/flowmesh-ai/flowmesh/policy"
	"github.com/flowmesh-ai/flowmesh/topology"
)

func TestConditionalRoutesSingleCandidate(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "fast", "slow"),
		Start:  "router",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"fast", "slow"}, Policy: policy.First},
		},
	})
	sink := &testutil.CollectSink{}

	slowInvoked := false
	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("routing decision"),
		"fast":   testutil.StaticHandle("fast lane output"),
		"slow": core.HandleFunc(func(context.Context, string, string) (string, error) {
			slowInvoked = true
			return "slow lane output", nil
		}),
	}, func(o *Options) {
		o.Sink = sink
	})
	require.NoError(t, err)

	result, err := e.Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, "fast lane output", result.Output)
	assert.False(t, slowInvoked, "unchosen candidate must not run")

	require.Len(t, result.Results, 2)
	assert.Equal(t, "router", result.Results[0].Agent)
	assert.Equal(t, "fast", result.Results[1].Agent)

	var decision *core.Event
	for _, ev := range sink.Events() {
		if ev.Type == core.EventDecisionMade {
			d := ev
			decision = &d
		}
	}
	require.NotNil(t, decision)
	assert.Equal(t, "router", decision.Agent)
	assert.Contains(t, decision.Detail, "chosen=fast")
}

func TestConditionalKeywordRouting(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("triage", "billing", "support"),
		Start:  "triage",
		ConditionalEdges: []topology.ConditionalEdge{
			{
				From:       "triage",
				Candidates: []string{"billing", "support"},
				Policy:     policy.Keyword,
				Params:     map[string]string{"billing": "invoice", "support": "outage"},
			},
		},
	})

	e, err := New(g, core.HandleMap{
		"triage":  testutil.StaticHandle("customer asks about an invoice discrepancy"),
		"billing": testutil.StaticHandle("billing resolved it"),
		"support": testutil.StaticHandle("support resolved it"),
	})
	require.NoError(t, err)

	result, err := e.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "billing resolved it", result.Output)
}

func TestConditionalMultiTargetFansOutAndTerminates(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "a", "b", "after"),
		Start:  "router",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"a", "b"}, Policy: policy.All},
			// Edges beyond the fan-out level are never followed.
			{From: "a", Candidates: []string{"after"}, Policy: policy.First},
		},
	})

	afterInvoked := false
	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("split"),
		"a":      testutil.StaticHandle("branch a"),
		"b":      testutil.StaticHandle("branch b"),
		"after": core.HandleFunc(func(context.Context, string, string) (string, error) {
			afterInvoked = true
			return "too far", nil
		}),
	})
	require.NoError(t, err)

	result, err := e.Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, "a: branch a\nb: branch b", result.Output)
	assert.False(t, afterInvoked, "fan-out terminates the walk")
	assert.Len(t, result.Results, 3)
}

func TestConditionalUnknownPolicyFails(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "a"),
		Start:  "router",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"a"}, Policy: "nonexistent"},
		},
	})

	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("out"),
		"a":      testutil.StaticHandle("out"),
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), "task")
	ee, ok := core.AsExecution(err)
	require.True(t, ok)
	assert.Equal(t, core.ExecutionSelectionFailed, ee.Kind)

	var perr *core.PolicyError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "nonexistent", perr.Policy)
}

func TestConditionalEmptySelectionFails(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "a"),
		Start:  "router",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"a"}, Policy: "nothing"},
		},
	})

	registry := policy.NewRegistry()
	require.NoError(t, registry.Register("nothing", policy.Func(
		func(context.Context, core.Snapshot, []string, map[string]string) ([]string, error) {
			return nil, nil
		})))

	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("out"),
		"a":      testutil.StaticHandle("out"),
	}, func(o *Options) {
		o.Policies = registry
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), "task")
	ee, ok := core.AsExecution(err)
	require.True(t, ok)
	assert.Equal(t, core.ExecutionSelectionFailed, ee.Kind)
}

func TestConditionalOutOfSetSelectionFails(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "a", "b"),
		Start:  "router",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"a"}, Policy: "rogue"},
		},
	})

	registry := policy.NewRegistry()
	require.NoError(t, registry.Register("rogue", policy.Func(
		func(context.Context, core.Snapshot, []string, map[string]string) ([]string, error) {
			return []string{"b"}, nil
		})))

	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("out"),
		"a":      testutil.StaticHandle("out"),
		"b":      testutil.StaticHandle("out"),
	}, func(o *Options) {
		o.Policies = registry
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), "task")
	ee, ok := core.AsExecution(err)
	require.True(t, ok)
	assert.Equal(t, core.ExecutionSelectionFailed, ee.Kind)

	var perr *core.PolicyError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "outside the candidate set")
}

func TestConditionalPlainEdgeFallback(t *testing.T) {
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("router", "chosen", "tail"),
		Start:  "router",
		Edges:  []topology.Edge{{From: "chosen", To: "tail"}},
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "router", Candidates: []string{"chosen"}, Policy: policy.First},
		},
	})

	e, err := New(g, core.HandleMap{
		"router": testutil.StaticHandle("route"),
		"chosen": testutil.StaticHandle("chosen output"),
		"tail":   testutil.StaticHandle("tail output"),
	})
	require.NoError(t, err)

	result, err := e.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "tail output", result.Output)
	assert.Len(t, result.Results, 3)
}

func TestConditionalRevisitFails(t *testing.T) {
	// The selection loop routes back to the start agent; the runtime revisit
	// check stops it.
	g := buildGraph(t, topology.Decl{
		Kind:   topology.KindConditional,
		Agents: roster("a", "b"),
		Start:  "a",
		ConditionalEdges: []topology.ConditionalEdge{
			{From: "a", Candidates: []string{"b"}, Policy: policy.First},
			{From: "b", Candidates: []string{"a"}, Policy: policy.First},
		},
	})

	e, err := New(g, core.HandleMap{
		"a": testutil.StaticHandle("one"),
		"b": testutil.StaticHandle("two"),
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), "task")
	ee, ok := core.AsExecution(err)
	require.True(t, ok)
	assert.Equal(t, core.ExecutionRevisitDetected, ee.Kind)
	assert.Equal(t, "a", ee.Agent)
}
