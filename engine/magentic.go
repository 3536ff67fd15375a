package engine

import (
	"context"
	"fmt"

	"github.com/flowmesh-ai/flowmesh/core"
)

// runMagentic drives the manager-coordinated loop bounded by the graph's
// manager policy. Each round the manager proposes assignments, optionally
// passes plan review, the assigned agents run, and the manager evaluates
// completion. A round that produces no new information increments the stall
// counter; hitting the stall bound resets the plan within the reset budget.
func (e *Engine) runMagentic(ctx context.Context, rt *run) (string, error) {
	pol := e.graph.Manager()
	roster := e.graph.Agents()

	managerErr := func(cause error) error {
		return &core.ExecutionError{Kind: core.ExecutionManagerFailed, Cause: cause}
	}

	for round := 1; round <= pol.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rt.ec.Round = round
		ev := core.NewEvent(rt.id, core.EventRoundStarted)
		ev.Round = round
		e.sink.Emit(ev)
		e.logger.Debug("round started", "run_id", rt.id, "round", round)

		plan, err := e.manager.Propose(ctx, rt.ec.Snapshot(), roster)
		if err != nil {
			return "", managerErr(err)
		}

		pev := core.NewEvent(rt.id, core.EventPlanProposed)
		pev.Round = round
		pev.Detail = fmt.Sprintf("assignments=%d", len(plan.Assignments))
		e.sink.Emit(pev)

		rejected := false
		if pol.PlanReview {
			// The loop suspends here until the reviewer answers.
			approved, err := e.reviewer.Review(ctx, *plan)
			if err != nil {
				return "", managerErr(err)
			}
			rev := core.NewEvent(rt.id, core.EventPlanReviewed)
			rev.Round = round
			rev.Detail = fmt.Sprintf("approved=%t", approved)
			e.sink.Emit(rev)
			rejected = !approved
		}

		// Delegate. Rejection forces a stall for the round; delegation that
		// only reproduces already-known results stalls too.
		progressed := false
		if !rejected {
			for _, as := range plan.Assignments {
				task := as.Subtask
				if task == "" {
					task = rt.ec.Task
				}
				out, err := e.invoke(ctx, rt, as.Agent, task, rt.ec.LastOutput())
				if err != nil {
					return "", &core.ExecutionError{
						Kind:  core.ExecutionParticipantFailed,
						Agent: as.Agent,
						Cause: err,
					}
				}
				if !rt.ec.HasResult(as.Agent, out) {
					progressed = true
				}
				rt.ec.Record(as.Agent, out)
			}
		}

		verdict, err := e.manager.Evaluate(ctx, rt.ec.Snapshot())
		if err != nil {
			return "", managerErr(err)
		}
		if verdict.Complete {
			if verdict.FinalResult != "" {
				return verdict.FinalResult, nil
			}
			return rt.ec.LastOutput(), nil
		}

		if progressed {
			rt.ec.StallCount = 0
			continue
		}

		rt.ec.StallCount++
		e.logger.Debug("round stalled", "run_id", rt.id, "round", round, "stall_count", rt.ec.StallCount)
		if rt.ec.StallCount < pol.MaxStalls {
			continue
		}

		// Stall bound hit: discard the plan, keep the recorded results.
		rt.ec.ResetCount++
		rt.ec.StallCount = 0
		if rt.ec.ResetCount > pol.MaxResets {
			return "", &core.ExecutionError{
				Kind:   core.ExecutionResetLimitExceeded,
				Detail: fmt.Sprintf("reset budget %d exhausted at round %d", pol.MaxResets, round),
			}
		}
		if err := e.manager.Reset(ctx); err != nil {
			return "", managerErr(err)
		}
		rev := core.NewEvent(rt.id, core.EventPlanReset)
		rev.Round = round
		rev.Detail = fmt.Sprintf("reset_count=%d", rt.ec.ResetCount)
		e.sink.Emit(rev)
		e.logger.Info("plan reset", "run_id", rt.id, "round", round, "reset_count", rt.ec.ResetCount)
	}

	return "", &core.ExecutionError{
		Kind:   core.ExecutionRoundLimitExceeded,
		Detail: fmt.Sprintf("no completion after %d rounds", pol.MaxRounds),
	}
}
