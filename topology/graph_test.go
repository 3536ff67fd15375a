package topology

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh-ai/flowmesh/aggregate"
	"github.com/flowmesh-ai/flowmesh/core"
)

func roster(names ...string) []core.AgentDef {
	out := make([]core.AgentDef, 0, len(names))
	for _, n := range names {
		out = append(out, core.AgentDef{Name: n, Instructions: "You are " + n + "."})
	}
	return out
}

func TestBuildSequential(t *testing.T) {
	g, err := Build(Decl{
		Kind:   KindSequential,
		Agents: roster("draft", "review", "publish"),
		Start:  "draft",
		Edges: []Edge{
			{From: "draft", To: "review"},
			{From: "review", To: "publish"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, KindSequential, g.Kind())
	assert.Equal(t, "draft", g.Start())
	assert.Len(t, g.Agents(), 3)

	a, ok := g.Agent("review")
	require.True(t, ok)
	assert.Equal(t, "review", a.Name)

	out := g.Outgoing("draft")
	require.Len(t, out, 1)
	assert.Equal(t, "review", out[0].To)
	assert.Empty(t, g.Outgoing("publish"))
}

func TestBuildRejectsDanglingReference(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindSequential,
		Agents: roster("draft"),
		Start:  "draft",
		Edges:  []Edge{{From: "draft", To: "ghost"}},
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationDanglingReference, verr.Kind)
	assert.Contains(t, verr.Detail, "ghost")
}

func TestBuildRejectsDuplicateName(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindSequential,
		Agents: append(roster("draft", "review"), core.AgentDef{Name: "draft"}),
		Start:  "draft",
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationDuplicateName, verr.Kind)
}

func TestBuildRejectsMissingStart(t *testing.T) {
	for _, kind := range []Kind{KindSequential, KindConditional} {
		_, err := Build(Decl{Kind: kind, Agents: roster("a", "b")})

		verr, ok := core.AsValidation(err)
		require.True(t, ok, "kind %s", kind)
		assert.Equal(t, core.ValidationMissingStart, verr.Kind)
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindSequential,
		Agents: roster("a", "b", "c"),
		Start:  "a",
		Edges: []Edge{
			{From: "a", To: "b"},
			{From: "b", To: "c"},
			{From: "c", To: "a"},
		},
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationCyclicTopology, verr.Kind)
}

func TestBuildAcceptsSelfUnreachableCycle(t *testing.T) {
	// The cycle lives among b and c but is unreachable from the start
	// agent, so a run over the edge set still terminates.
	_, err := Build(Decl{
		Kind:   KindSequential,
		Agents: roster("a", "b", "c"),
		Start:  "a",
		Edges: []Edge{
			{From: "b", To: "c"},
			{From: "c", To: "b"},
		},
	})
	assert.NoError(t, err)
}

func TestBuildRejectsSelfLoop(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindSequential,
		Agents: roster("a"),
		Start:  "a",
		Edges:  []Edge{{From: "a", To: "a"}},
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationCyclicTopology, verr.Kind)
}

func TestBuildConcurrentGroup(t *testing.T) {
	g, err := Build(Decl{
		Kind:   KindConcurrent,
		Agents: roster("a", "b", "c"),
		Group:  &ConcurrentGroup{Participants: []string{"a", "b", "c"}, Strategy: aggregate.Vote},
	})
	require.NoError(t, err)

	grp := g.Group()
	require.NotNil(t, grp)
	assert.Equal(t, []string{"a", "b", "c"}, grp.Participants)
	assert.Equal(t, aggregate.Vote, grp.Strategy)
}

func TestBuildRejectsEmptyGroup(t *testing.T) {
	_, err := Build(Decl{Kind: KindConcurrent, Agents: roster("a")})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationEmptyGroup, verr.Kind)
}

func TestBuildRejectsBadStrategy(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindConcurrent,
		Agents: roster("a"),
		Group:  &ConcurrentGroup{Participants: []string{"a"}, Strategy: "consensus"},
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationBadStrategy, verr.Kind)
}

func TestBuildRejectsUndeclaredParticipant(t *testing.T) {
	_, err := Build(Decl{
		Kind:   KindConcurrent,
		Agents: roster("a"),
		Group:  &ConcurrentGroup{Participants: []string{"a", "ghost"}, Strategy: aggregate.Collect},
	})

	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationDanglingReference, verr.Kind)
}

func TestBuildValidatesPolicyNames(t *testing.T) {
	decl := Decl{
		Kind:   KindConditional,
		Agents: roster("router", "a", "b"),
		Start:  "router",
		ConditionalEdges: []ConditionalEdge{
			{From: "router", Candidates: []string{"a", "b"}, Policy: "nonexistent"},
		},
	}

	// Without a policy predicate the name passes through unchecked.
	_, err := Build(decl)
	assert.NoError(t, err)

	_, err = Build(decl, WithKnownPolicies(func(name string) bool { return name == "first" }))
	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationUnknownPolicy, verr.Kind)
}

func TestBuildMagenticBounds(t *testing.T) {
	base := Decl{Kind: KindMagentic, Agents: roster("worker")}

	_, err := Build(base)
	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationBadPolicy, verr.Kind)

	bad := base
	bad.Manager = &ManagerPolicy{MaxRounds: 0}
	_, err = Build(bad)
	verr, ok = core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationBadPolicy, verr.Kind)

	bad.Manager = &ManagerPolicy{MaxRounds: 3, MaxStalls: -1}
	_, err = Build(bad)
	verr, ok = core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, core.ValidationBadPolicy, verr.Kind)

	good := base
	good.Manager = &ManagerPolicy{MaxRounds: 5, MaxStalls: 2, MaxResets: 1}
	g, err := Build(good)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Manager().MaxRounds)
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(Decl{Kind: "circular", Agents: roster("a")})
	assert.Error(t, err)
}

func TestBuildRandomDAGs(t *testing.T) {
	// Forward-only edge sets over a random chain are acyclic and must always
	// build; adding one back edge along the chain must always be rejected.
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(10)
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("n%02d", i)
		}

		decl := Decl{Kind: KindSequential, Agents: roster(names...), Start: names[0]}
		for i := 0; i < n-1; i++ {
			decl.Edges = append(decl.Edges, Edge{From: names[i], To: names[i+1]})
		}
		// Extra forward edges keep the graph a DAG.
		for i := 0; i < n; i++ {
			if j := i + 1 + rng.Intn(n); j < n && rng.Intn(2) == 0 {
				decl.Edges = append(decl.Edges, Edge{From: names[i], To: names[j]})
			}
		}

		_, err := Build(decl)
		require.NoError(t, err, "trial %d: acyclic edge set rejected", trial)

		// One back edge makes a cycle reachable from the start agent.
		from := 1 + rng.Intn(n-1)
		cyclic := decl
		cyclic.Edges = append(append([]Edge(nil), decl.Edges...),
			Edge{From: names[from], To: names[rng.Intn(from+1)]})

		_, err = Build(cyclic)
		verr, ok := core.AsValidation(err)
		require.True(t, ok, "trial %d: cyclic edge set accepted", trial)
		assert.Equal(t, core.ValidationCyclicTopology, verr.Kind)
	}
}

func TestDeclRoundTrip(t *testing.T) {
	decls := []Decl{
		{
			Kind:   KindSequential,
			Agents: roster("draft", "review"),
			Start:  "draft",
			Edges:  []Edge{{From: "draft", To: "review", Label: "handoff"}},
		},
		{
			Kind:   KindConcurrent,
			Agents: roster("a", "b", "c"),
			Group:  &ConcurrentGroup{Participants: []string{"a", "b", "c"}, Strategy: aggregate.Merge},
		},
		{
			Kind:   KindConditional,
			Agents: roster("router", "fast", "slow"),
			Start:  "router",
			ConditionalEdges: []ConditionalEdge{
				{From: "router", Candidates: []string{"fast", "slow"}, Policy: "keyword", Params: map[string]string{"fast": "urgent"}},
			},
		},
		{
			Kind:    KindMagentic,
			Agents:  roster("coder", "tester"),
			Manager: &ManagerPolicy{Model: "gpt-4o-mini", MaxRounds: 10, MaxStalls: 3, MaxResets: 2, PlanReview: true},
		},
	}

	for i, decl := range decls {
		t.Run(fmt.Sprintf("decl_%d_%s", i, decl.Kind), func(t *testing.T) {
			g1, err := Build(decl)
			require.NoError(t, err)

			data, err := g1.Decl().YAML()
			require.NoError(t, err)

			reloaded, err := DeclFromYAML(data)
			require.NoError(t, err)

			g2, err := Build(reloaded)
			require.NoError(t, err)

			assert.Equal(t, g1.Decl(), g2.Decl())
			assert.Equal(t, g1.Kind(), g2.Kind())
			assert.Equal(t, g1.Agents(), g2.Agents())
		})
	}
}
