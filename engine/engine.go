package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/logging"
	"github.com/flowmesh-ai/flowmesh/manager"
	"github.com/flowmesh-ai/flowmesh/policy"
	"github.com/flowmesh-ai/flowmesh/topology"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Logger receives structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Sink receives the execution trace. Defaults to NoopSink. Sinks are
	// fire-and-forget; a slow sink never blocks the run.
	Sink core.Sink
	// Policies resolves selection policy names for conditional routing.
	// Defaults to a registry with the builtin policies.
	Policies *policy.Registry
	// Manager is the planning capability for magentic workflows. Required
	// when the graph kind is magentic.
	Manager manager.Manager
	// Reviewer approves plans when the manager policy enables plan review.
	// Defaults to manager.AutoApprove.
	Reviewer manager.Reviewer
	// InvocationTimeout bounds each individual handle invocation. Zero means
	// no per-invocation deadline.
	InvocationTimeout time.Duration
}

// Engine executes runs of one validated topology graph. It is safe for
// concurrent use: every Run gets its own execution context and the graph is
// read-only.
type Engine struct {
	graph    *topology.Graph
	resolver core.HandleResolver

	logger   logging.Logger
	sink     core.Sink
	policies *policy.Registry
	manager  manager.Manager
	reviewer manager.Reviewer
	timeout  time.Duration

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs an Engine for a graph with optional overrides. It fails
// when a magentic graph has no manager wired, so misconfiguration surfaces
// at build time rather than mid-run.
func New(graph *topology.Graph, resolver core.HandleResolver, optFns ...func(o *Options)) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("engine: graph must not be nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("engine: handle resolver must not be nil")
	}

	opts := Options{
		Logger:   logging.NoOpLogger{},
		Sink:     core.NoopSink{},
		Policies: policy.NewRegistry(),
		Reviewer: manager.AutoApprove,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if graph.Kind() == topology.KindMagentic && opts.Manager == nil {
		return nil, fmt.Errorf("engine: magentic workflow requires a manager")
	}

	return &Engine{
		graph:      graph,
		resolver:   resolver,
		logger:     opts.Logger,
		sink:       opts.Sink,
		policies:   opts.Policies,
		manager:    opts.Manager,
		reviewer:   opts.Reviewer,
		timeout:    opts.InvocationTimeout,
		activeRuns: make(map[string]context.CancelFunc),
	}, nil
}

// Outcome is the terminal state of a run.
type Outcome string

const (
	// OutcomeCompleted: an explicit terminal condition was reached.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed: the run aborted with a fatal error.
	OutcomeFailed Outcome = "failed"
)

// Result is the aggregated outcome of a completed run: the final combined
// output plus the full ordered result trail.
type Result struct {
	RunID   string
	Outcome Outcome
	Output  string
	Results []core.AgentResult
}

// run bundles the per-run state threaded through the strategy functions.
type run struct {
	id      string
	ec      *core.ExecutionContext
	handles map[string]core.Handle
}

// Run executes the workflow for one task description and blocks until a
// terminal outcome. The returned Result is non-nil only on success; on
// failure the error carries the full causal chain and any already-recorded
// results are discarded.
func (e *Engine) Run(ctx context.Context, task string) (*Result, error) {
	runID := core.NewID()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.mu.Lock()
	e.activeRuns[runID] = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.activeRuns, runID)
		e.mu.Unlock()
	}()

	ev := core.NewEvent(runID, core.EventRunStarted)
	ev.Detail = string(e.graph.Kind())
	e.sink.Emit(ev)
	e.logger.Info("run started", "run_id", runID, "kind", string(e.graph.Kind()))

	rt := &run{id: runID, ec: core.NewExecutionContext(task), handles: make(map[string]core.Handle)}

	// Bind every declared agent up front so a missing handle fails before
	// any invocation happens.
	for _, a := range e.graph.Agents() {
		h, err := e.resolver.Resolve(a)
		if err != nil {
			return nil, e.terminate(rt, "", err)
		}
		rt.handles[a.Name] = h
	}

	var output string
	var err error
	switch e.graph.Kind() {
	case topology.KindSequential:
		output, err = e.runSequential(ctx, rt)
	case topology.KindConcurrent:
		output, err = e.runConcurrent(ctx, rt)
	case topology.KindConditional:
		output, err = e.runConditional(ctx, rt)
	case topology.KindMagentic:
		output, err = e.runMagentic(ctx, rt)
	default:
		err = fmt.Errorf("engine: unknown workflow kind %q", e.graph.Kind())
	}

	if err = e.terminate(rt, output, err); err != nil {
		return nil, err
	}

	return &Result{
		RunID:   rt.id,
		Outcome: OutcomeCompleted,
		Output:  output,
		Results: rt.ec.Results(),
	}, nil
}

// Cancel aborts a running run by ID, propagating cancellation to all
// in-flight invocations.
func (e *Engine) Cancel(runID string) error {
	e.mu.Lock()
	cancel, exists := e.activeRuns[runID]
	e.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// terminate emits the terminal trace event and logs the outcome.
func (e *Engine) terminate(rt *run, output string, err error) error {
	ev := core.NewEvent(rt.id, core.EventRunTerminated)
	if err != nil {
		ev.Detail = string(OutcomeFailed)
		ev.Error = err.Error()
		e.sink.Emit(ev)
		e.logger.Error("run failed", "run_id", rt.id, "error", err)
		return err
	}
	ev.Detail = string(OutcomeCompleted)
	e.sink.Emit(ev)
	e.logger.Info("run completed", "run_id", rt.id, "results", rt.ec.Len())
	return nil
}

// invoke executes one handle invocation with trace events and the
// per-invocation timeout applied. A timed-out invocation is
// indistinguishable from a failed one to callers.
func (e *Engine) invoke(ctx context.Context, rt *run, agent, task, contextText string) (string, error) {
	ev := core.NewEvent(rt.id, core.EventAgentInvoked)
	ev.Agent = agent
	ev.Round = rt.ec.Round
	e.sink.Emit(ev)

	invCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		invCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := rt.handles[agent].Invoke(invCtx, task, contextText)
	if err != nil {
		var inv *core.AgentInvocationError
		if !errors.As(err, &inv) {
			err = &core.AgentInvocationError{Agent: agent, Cause: err}
		}
		fail := core.NewEvent(rt.id, core.EventAgentFailed)
		fail.Agent = agent
		fail.Round = rt.ec.Round
		fail.Error = err.Error()
		e.sink.Emit(fail)
		e.logger.Warn("agent invocation failed", "run_id", rt.id, "agent", agent, "error", err)
		return "", err
	}

	done := core.NewEvent(rt.id, core.EventAgentCompleted)
	done.Agent = agent
	done.Round = rt.ec.Round
	e.sink.Emit(done)
	e.logger.Debug("agent completed", "run_id", rt.id, "agent", agent, "duration", time.Since(start))

	return out, nil
}
