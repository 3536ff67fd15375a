package manager

import (
	"context"
	"sync"

	"github.com/flowmesh-ai/flowmesh/core"
)

// ScriptedManager replays a fixed sequence of plans and verdicts. The last
// entry of each sequence repeats once the script runs out, so a short script
// can drive an arbitrarily long loop. Useful for tests and CLI dry runs.
type ScriptedManager struct {
	mu       sync.Mutex
	plans    []Plan
	verdicts []Verdict
	planIdx  int
	verdIdx  int
	resets   int
}

// NewScriptedManager builds a manager replaying the given script. Empty
// sequences fall back to an empty plan / not-complete verdict.
func NewScriptedManager(plans []Plan, verdicts []Verdict) *ScriptedManager {
	return &ScriptedManager{plans: plans, verdicts: verdicts}
}

// Propose implements Manager.
func (s *ScriptedManager) Propose(context.Context, core.Snapshot, []core.AgentDef) (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.plans) == 0 {
		return &Plan{}, nil
	}
	p := s.plans[s.planIdx]
	if s.planIdx < len(s.plans)-1 {
		s.planIdx++
	}
	return &p, nil
}

// Evaluate implements Manager.
func (s *ScriptedManager) Evaluate(context.Context, core.Snapshot) (*Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.verdicts) == 0 {
		return &Verdict{}, nil
	}
	v := s.verdicts[s.verdIdx]
	if s.verdIdx < len(s.verdicts)-1 {
		s.verdIdx++
	}
	return &v, nil
}

// Reset implements Manager.
func (s *ScriptedManager) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

// Resets reports how many times the plan was reset.
func (s *ScriptedManager) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}
