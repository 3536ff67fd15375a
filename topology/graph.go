package topology

import (
	"github.com/flowmesh-ai/flowmesh/core"
)

// Graph is the validated, immutable form of a workflow declaration. The
// engine only reads it; all mutation happens before Build returns.
type Graph struct {
	kind    Kind
	agents  []core.AgentDef
	byName  map[string]core.AgentDef
	start   string
	edges   []Edge
	cond    []ConditionalEdge
	group   *ConcurrentGroup
	manager ManagerPolicy
}

// BuildOption customizes validation.
type BuildOption func(*buildOptions)

type buildOptions struct {
	knownPolicy func(name string) bool
}

// WithKnownPolicies validates conditional edge policy names against the
// given predicate at build time, so unknown selection functions fail fast
// instead of at invocation time.
func WithKnownPolicies(known func(name string) bool) BuildOption {
	return func(o *buildOptions) { o.knownPolicy = known }
}

// Build validates a declaration and produces a Graph, or fails with a
// *core.ValidationError. Checks run in a fixed order: referenced names
// exist, names are unique, a start agent is present where required, group
// and strategy are well formed, and the sequential edge set admits no cycle
// reachable from the start agent.
func Build(decl Decl, opts ...BuildOption) (*Graph, error) {
	var bo buildOptions
	for _, o := range opts {
		o(&bo)
	}

	if !decl.Kind.Valid() {
		return nil, core.NewValidationError(core.ValidationBadStrategy, "unknown workflow kind %q", decl.Kind)
	}
	if len(decl.Agents) == 0 {
		return nil, core.NewValidationError(core.ValidationEmptyGroup, "no agents declared")
	}

	byName := make(map[string]core.AgentDef, len(decl.Agents))
	declared := func(name string) bool { _, ok := byName[name]; return ok }
	for _, a := range decl.Agents {
		if a.Name == "" {
			return nil, core.NewValidationError(core.ValidationDanglingReference, "agent with empty name")
		}
		byName[a.Name] = a
	}

	// (a) every referenced name must be declared
	for _, e := range decl.Edges {
		if !declared(e.From) {
			return nil, core.NewValidationError(core.ValidationDanglingReference, "edge from undeclared agent %q", e.From)
		}
		if !declared(e.To) {
			return nil, core.NewValidationError(core.ValidationDanglingReference, "edge to undeclared agent %q", e.To)
		}
	}
	for _, ce := range decl.ConditionalEdges {
		if !declared(ce.From) {
			return nil, core.NewValidationError(core.ValidationDanglingReference, "conditional edge from undeclared agent %q", ce.From)
		}
		if len(ce.Candidates) == 0 {
			return nil, core.NewValidationError(core.ValidationEmptyGroup, "conditional edge from %q has no candidates", ce.From)
		}
		for _, c := range ce.Candidates {
			if !declared(c) {
				return nil, core.NewValidationError(core.ValidationDanglingReference, "conditional edge candidate %q is undeclared", c)
			}
		}
		if bo.knownPolicy != nil && !bo.knownPolicy(ce.Policy) {
			return nil, core.NewValidationError(core.ValidationUnknownPolicy, "selection policy %q is not registered", ce.Policy)
		}
	}
	if decl.Group != nil {
		for _, p := range decl.Group.Participants {
			if !declared(p) {
				return nil, core.NewValidationError(core.ValidationDanglingReference, "group participant %q is undeclared", p)
			}
		}
	}
	if decl.Start != "" && !declared(decl.Start) {
		return nil, core.NewValidationError(core.ValidationDanglingReference, "start agent %q is undeclared", decl.Start)
	}

	// (b) names are unique
	if len(byName) != len(decl.Agents) {
		seen := make(map[string]bool, len(decl.Agents))
		for _, a := range decl.Agents {
			if seen[a.Name] {
				return nil, core.NewValidationError(core.ValidationDuplicateName, "agent %q declared more than once", a.Name)
			}
			seen[a.Name] = true
		}
	}

	g := &Graph{
		kind:   decl.Kind,
		agents: append([]core.AgentDef(nil), decl.Agents...),
		byName: byName,
		start:  decl.Start,
		edges:  append([]Edge(nil), decl.Edges...),
		cond:   append([]ConditionalEdge(nil), decl.ConditionalEdges...),
	}

	switch decl.Kind {
	case KindSequential, KindConditional:
		// (c) a start agent is required
		if decl.Start == "" {
			return nil, core.NewValidationError(core.ValidationMissingStart, "%s workflow declares no start agent", decl.Kind)
		}
	case KindConcurrent:
		// (d) participant list and aggregation strategy must be valid
		if decl.Group == nil || len(decl.Group.Participants) == 0 {
			return nil, core.NewValidationError(core.ValidationEmptyGroup, "concurrent workflow declares no participants")
		}
		if !decl.Group.Strategy.Valid() {
			return nil, core.NewValidationError(core.ValidationBadStrategy, "unknown aggregation strategy %q", decl.Group.Strategy)
		}
		grp := *decl.Group
		grp.Participants = append([]string(nil), decl.Group.Participants...)
		g.group = &grp
	case KindMagentic:
		if decl.Manager == nil {
			return nil, core.NewValidationError(core.ValidationBadPolicy, "magentic workflow declares no manager policy")
		}
		if decl.Manager.MaxRounds < 1 {
			return nil, core.NewValidationError(core.ValidationBadPolicy, "manager max_rounds must be >= 1, got %d", decl.Manager.MaxRounds)
		}
		if decl.Manager.MaxStalls < 0 || decl.Manager.MaxResets < 0 {
			return nil, core.NewValidationError(core.ValidationBadPolicy, "manager stall/reset bounds must be >= 0")
		}
		g.manager = *decl.Manager
	}

	// (e) the sequential edge set must not allow a cycle reachable from the
	// start agent; naive traversal-until-no-outgoing-edge would never
	// terminate on one.
	if decl.Kind == KindSequential {
		if cyclic := g.hasCycleFrom(decl.Start); cyclic {
			return nil, core.NewValidationError(core.ValidationCyclicTopology, "edge set admits a cycle reachable from %q", decl.Start)
		}
	}

	return g, nil
}

// hasCycleFrom runs a three-color depth-first search over the unconditional
// edges reachable from start.
func (g *Graph) hasCycleFrom(start string) bool {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)
	color := make(map[string]int, len(g.byName))

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		for _, e := range g.edges {
			if e.From != name {
				continue
			}
			switch color[e.To] {
			case gray:
				return true
			case white:
				if visit(e.To) {
					return true
				}
			}
		}
		color[name] = black
		return false
	}
	return visit(start)
}

// Kind returns the active workflow discipline.
func (g *Graph) Kind() Kind { return g.kind }

// Agents returns the declared roster in declaration order.
func (g *Graph) Agents() []core.AgentDef {
	return append([]core.AgentDef(nil), g.agents...)
}

// Agent looks up one declared agent by name.
func (g *Graph) Agent(name string) (core.AgentDef, bool) {
	a, ok := g.byName[name]
	return a, ok
}

// Start returns the declared start agent ("" for concurrent and magentic
// workflows).
func (g *Graph) Start() string { return g.start }

// Outgoing returns the unconditional edges leaving the named agent.
func (g *Graph) Outgoing(from string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

// ConditionalFrom returns the conditional edge leaving the named agent, if
// one is declared.
func (g *Graph) ConditionalFrom(from string) (ConditionalEdge, bool) {
	for _, ce := range g.cond {
		if ce.From == from {
			return ce, true
		}
	}
	return ConditionalEdge{}, false
}

// Group returns the concurrent group (nil unless Kind is concurrent).
func (g *Graph) Group() *ConcurrentGroup {
	if g.group == nil {
		return nil
	}
	grp := *g.group
	grp.Participants = append([]string(nil), g.group.Participants...)
	return &grp
}

// Manager returns the manager policy (zero value unless Kind is magentic).
func (g *Graph) Manager() ManagerPolicy { return g.manager }

// Decl renders the graph back into its declaration form. Building the
// returned declaration yields a graph identical to g.
func (g *Graph) Decl() Decl {
	d := Decl{
		Kind:   g.kind,
		Agents: g.Agents(),
		Start:  g.start,
		Edges:  append([]Edge(nil), g.edges...),
	}
	if len(g.cond) > 0 {
		d.ConditionalEdges = append([]ConditionalEdge(nil), g.cond...)
	}
	if g.group != nil {
		d.Group = g.Group()
	}
	if g.kind == KindMagentic {
		mp := g.manager
		d.Manager = &mp
	}
	return d
}
