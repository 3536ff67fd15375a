package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowmesh-ai/flowmesh/aggregate"
	"github.com/flowmesh-ai/flowmesh/core"
)

// runConcurrent fans the task out to the declared group and aggregates under
// the group's strategy.
func (e *Engine) runConcurrent(ctx context.Context, rt *run) (string, error) {
	group := e.graph.Group()
	return e.fanOut(ctx, rt, group.Participants, group.Strategy)
}

// fanOut invokes every participant concurrently with the same task, waits
// for all of them, then applies the aggregation strategy. Participant
// failure fails the whole step: completed results are discarded, nothing is
// recorded, and cancellation propagates to the remaining in-flight
// invocations without waiting on them individually.
//
// Aggregation ordering is deterministic: outputs line up with the declared
// participant order no matter which invocation finishes first.
func (e *Engine) fanOut(ctx context.Context, rt *run, participants []string, strategy aggregate.Strategy) (string, error) {
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outputs := make([]string, len(participants))
	errCh := make(chan error, len(participants))

	var wg sync.WaitGroup
	for i, name := range participants {
		wg.Add(1)
		go func(slot int, agent string) {
			defer wg.Done()
			out, err := e.invoke(fanCtx, rt, agent, rt.ec.Task, "")
			if err != nil {
				errCh <- &core.ExecutionError{
					Kind:  core.ExecutionParticipantFailed,
					Agent: agent,
					Cause: err,
				}
				cancel()
				return
			}
			outputs[slot] = out
		}(i, name)
	}

	wg.Wait()
	close(errCh)

	// First failure wins; partial results are deliberately not aggregated.
	if err := <-errCh; err != nil {
		return "", err
	}

	for i, name := range participants {
		rt.ec.Record(name, outputs[i])
	}

	combined, err := aggregate.Apply(strategy, participants, outputs)
	if err != nil {
		return "", err
	}

	ev := core.NewEvent(rt.id, core.EventAggregationPerformed)
	ev.Detail = fmt.Sprintf("strategy=%s participants=%d", strategy, len(participants))
	e.sink.Emit(ev)
	e.logger.Debug("aggregation performed", "run_id", rt.id, "strategy", string(strategy))

	return combined, nil
}
