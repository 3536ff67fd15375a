package policy

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowmesh-ai/flowmesh/core"
)

// Policy decides which of the candidate agents to activate next. The
// returned subset must be non-empty and drawn from candidates; the engine
// treats anything else as a fatal selection failure. Select receives an
// immutable snapshot of the execution context and the parameter mapping
// declared on the conditional edge.
//
// Policies are expected to be fast. They may block (for example a policy
// that consults a model), in which case they must respect ctx.
type Policy interface {
	Select(ctx context.Context, snap core.Snapshot, candidates []string, params map[string]string) ([]string, error)
}

// Func adapts an ordinary function to the Policy interface.
type Func func(ctx context.Context, snap core.Snapshot, candidates []string, params map[string]string) ([]string, error)

// Select implements Policy.
func (f Func) Select(ctx context.Context, snap core.Snapshot, candidates []string, params map[string]string) ([]string, error) {
	return f(ctx, snap, candidates, params)
}

// Registry maps policy names to implementations. A fresh registry carries
// the builtin policies; Register adds or replaces entries. Safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates a registry pre-populated with the builtin policies.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	for name, p := range builtins() {
		r.policies[name] = p
	}
	return r
}

// Register binds a policy under a name, replacing any previous binding.
func (r *Registry) Register(name string, p Policy) error {
	if name == "" {
		return fmt.Errorf("policy name must not be empty")
	}
	if p == nil {
		return fmt.Errorf("policy %q must not be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[name] = p
	return nil
}

// Resolve returns the policy registered under name, or a *core.PolicyError
// when the name is unknown.
func (r *Registry) Resolve(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, &core.PolicyError{Policy: name, Reason: "not registered"}
	}
	return p, nil
}

// Known reports whether a policy is registered under name. Used by topology
// validation to fail fast on unknown selection functions.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.policies[name]
	return ok
}

// Names returns the registered policy names, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for n := range r.policies {
		names = append(names, n)
	}
	return names
}
