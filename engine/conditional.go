package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowmesh-ai/flowmesh/aggregate"
	"github.com/flowmesh-ai/flowmesh/core"
)

// runConditional walks from the start agent, consulting the selection policy
// at every agent that declares a conditional edge. A single chosen candidate
// continues the walk; multiple candidates become one implicit concurrent
// sub-step aggregated with Collect, after which the run terminates:
// conditional branches do not branch further. Agents without a conditional
// edge fall back to plain edge semantics.
func (e *Engine) runConditional(ctx context.Context, rt *run) (string, error) {
	current := e.graph.Start()
	visited := map[string]bool{}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := e.invoke(ctx, rt, current, rt.ec.Task, rt.ec.LastOutput())
		if err != nil {
			return "", err
		}
		rt.ec.Record(current, out)
		visited[current] = true

		ce, ok := e.graph.ConditionalFrom(current)
		if !ok {
			// Plain edge fallback, sequential semantics.
			edges := e.graph.Outgoing(current)
			switch {
			case len(edges) == 0:
				return rt.ec.LastOutput(), nil
			case len(edges) > 1:
				return "", core.NewValidationError(core.ValidationAmbiguousEdge,
					"agent %q has %d outgoing edges", current, len(edges))
			}
			next := edges[0].To
			if visited[next] {
				return "", &core.ExecutionError{
					Kind:   core.ExecutionRevisitDetected,
					Agent:  next,
					Detail: "conditional walk revisited an agent",
				}
			}
			current = next
			continue
		}

		chosen, err := e.selectNext(ctx, rt, ce.Policy, ce.Candidates, ce.Params)
		if err != nil {
			return "", err
		}

		ev := core.NewEvent(rt.id, core.EventDecisionMade)
		ev.Agent = current
		ev.Detail = fmt.Sprintf("policy=%s chosen=%s", ce.Policy, strings.Join(chosen, ","))
		e.sink.Emit(ev)
		e.logger.Debug("routing decision", "run_id", rt.id, "from", current, "chosen", chosen)

		if len(chosen) == 1 {
			next := chosen[0]
			if visited[next] {
				return "", &core.ExecutionError{
					Kind:   core.ExecutionRevisitDetected,
					Agent:  next,
					Detail: "conditional walk revisited an agent",
				}
			}
			current = next
			continue
		}

		// Multi-target decision: one level of fan-out, then terminate.
		return e.fanOut(ctx, rt, chosen, aggregate.Collect)
	}
}

// selectNext resolves and applies the named selection policy, enforcing the
// contract that the choice is a non-empty subset of the candidates. Any
// violation is fatal to the run.
func (e *Engine) selectNext(ctx context.Context, rt *run, policyName string, candidates []string, params map[string]string) ([]string, error) {
	fail := func(cause error) error {
		return &core.ExecutionError{Kind: core.ExecutionSelectionFailed, Cause: cause}
	}

	pol, err := e.policies.Resolve(policyName)
	if err != nil {
		return nil, fail(err)
	}

	chosen, err := pol.Select(ctx, rt.ec.Snapshot(), candidates, params)
	if err != nil {
		return nil, fail(err)
	}
	if len(chosen) == 0 {
		return nil, fail(&core.PolicyError{Policy: policyName, Reason: "returned no candidates"})
	}

	allowed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		allowed[c] = true
	}
	for _, c := range chosen {
		if !allowed[c] {
			return nil, fail(&core.PolicyError{
				Policy: policyName,
				Reason: fmt.Sprintf("chose %q outside the candidate set", c),
			})
		}
	}

	return chosen, nil
}
