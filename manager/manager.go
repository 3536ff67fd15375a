package manager

import (
	"context"

	"github.com/flowmesh-ai/flowmesh/core"
)

// Assignment delegates a subtask to one agent for the current round. An
// empty Subtask delegates the run's original task unchanged.
type Assignment struct {
	Agent   string `json:"agent"`
	Subtask string `json:"subtask,omitempty"`
}

// Plan is one round's proposed delegation. No assignments means the manager
// found nothing to delegate this round, which counts as a stall.
type Plan struct {
	Assignments []Assignment `json:"assignments"`
	Note        string       `json:"note,omitempty"`
}

// Verdict is the manager's post-round completion evaluation.
type Verdict struct {
	Complete    bool   `json:"complete"`
	FinalResult string `json:"final_result,omitempty"`
}

// Manager is the decision capability coordinating a magentic run. Propose
// and Evaluate are called once per round; Reset discards accumulated plan
// state after repeated stalls (recorded agent results are retained by the
// engine, only the plan is reset).
type Manager interface {
	Propose(ctx context.Context, snap core.Snapshot, roster []core.AgentDef) (*Plan, error)
	Evaluate(ctx context.Context, snap core.Snapshot) (*Verdict, error)
	Reset(ctx context.Context) error
}

// Reviewer approves or rejects a proposed plan before delegation proceeds.
// Rejection is a forced stall for the round, not a fatal error.
type Reviewer interface {
	Review(ctx context.Context, plan Plan) (approved bool, err error)
}

// ReviewerFunc adapts a function to the Reviewer interface.
type ReviewerFunc func(ctx context.Context, plan Plan) (bool, error)

// Review implements Reviewer.
func (f ReviewerFunc) Review(ctx context.Context, plan Plan) (bool, error) {
	return f(ctx, plan)
}

// AutoApprove is a Reviewer that approves every plan.
var AutoApprove = ReviewerFunc(func(context.Context, Plan) (bool, error) { return true, nil })
