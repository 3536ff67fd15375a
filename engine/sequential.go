package engine

import (
	"context"

	"github.com/flowmesh-ai/flowmesh/core"
)

// runSequential walks the unconditional edge chain from the start agent.
// Each agent receives the task plus the prior result as context; the walk
// ends at the first agent without an outgoing edge. A node with more than
// one outgoing edge is a configuration ambiguity and fails rather than
// silently picking one; reaching an already-visited agent fails as the
// runtime backstop to the static cycle check.
func (e *Engine) runSequential(ctx context.Context, rt *run) (string, error) {
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
				Detail: "sequential walk revisited an agent",
			}
		}
		current = next
	}
}
