package topology

import (
	"gopkg.in/yaml.v3"

	"github.com/flowmesh-ai/flowmesh/aggregate"
	"github.com/flowmesh-ai/flowmesh/core"
)

// Kind selects which of the four execution disciplines a workflow uses.
// Exactly one is active per run; the engine dispatches on it once at run
// start with an exhaustive switch.
type Kind string

const (
	// KindSequential runs a linear pipeline along unconditional edges.
	KindSequential Kind = "sequential"
	// KindConcurrent fans the task out to a participant group and aggregates.
	KindConcurrent Kind = "concurrent"
	// KindConditional routes between agents via registered selection policies.
	KindConditional Kind = "conditional"
	// KindMagentic iterates under an external manager capability.
	KindMagentic Kind = "magentic"
)

// Valid reports whether k names a known workflow kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSequential, KindConcurrent, KindConditional, KindMagentic:
		return true
	}
	return false
}

// Edge is an unconditional sequential handoff between two declared agents.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ConditionalEdge routes from one agent to a policy-chosen subset of
// candidates. Params are passed through to the policy untouched.
type ConditionalEdge struct {
	From       string            `json:"from" yaml:"from"`
	Candidates []string          `json:"candidates" yaml:"candidates"`
	Policy     string            `json:"policy" yaml:"policy"`
	Params     map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// ConcurrentGroup declares the participants of a fan-out step and the
// aggregation strategy applied at fan-in.
type ConcurrentGroup struct {
	Participants []string           `json:"participants" yaml:"participants"`
	Strategy     aggregate.Strategy `json:"strategy" yaml:"strategy"`
}

// ManagerPolicy bounds the magentic strategy: which model backs the manager,
// how many coordination rounds may run, how many stalled rounds trigger a
// plan reset, how many resets are budgeted, and whether each round's plan is
// surfaced for external review before delegation.
type ManagerPolicy struct {
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxRounds  int    `json:"max_rounds" yaml:"max_rounds"`
	MaxStalls  int    `json:"max_stalls" yaml:"max_stalls"`
	MaxResets  int    `json:"max_resets" yaml:"max_resets"`
	PlanReview bool   `json:"plan_review,omitempty" yaml:"plan_review,omitempty"`
}

// Decl is the serializable workflow declaration consumed by Build. It is
// the already-parsed configuration surface: raw syntax concerns belong to
// the loader, not here.
type Decl struct {
	Kind             Kind              `json:"kind" yaml:"kind"`
	Agents           []core.AgentDef   `json:"agents" yaml:"agents"`
	Start            string            `json:"start,omitempty" yaml:"start,omitempty"`
	Edges            []Edge            `json:"edges,omitempty" yaml:"edges,omitempty"`
	ConditionalEdges []ConditionalEdge `json:"conditional_edges,omitempty" yaml:"conditional_edges,omitempty"`
	Group            *ConcurrentGroup  `json:"group,omitempty" yaml:"group,omitempty"`
	Manager          *ManagerPolicy    `json:"manager,omitempty" yaml:"manager,omitempty"`
}

// YAML renders the declaration, suitable for re-loading with DeclFromYAML.
// Building a graph from the round-tripped declaration yields an identical
// graph.
func (d Decl) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// DeclFromYAML parses a declaration previously rendered by YAML (or written
// by hand with the same schema).
func DeclFromYAML(data []byte) (Decl, error) {
	var d Decl
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Decl{}, err
	}
	return d, nil
}
