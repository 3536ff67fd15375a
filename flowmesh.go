// Package flowmesh provides a high-level façade over the topology, policy
// and engine packages enabling rapid construction of agent workflow runs.
// Most applications interact with this package by:
//  1. Creating a FlowMesh via New() from a workflow declaration and a
//     handle resolver (optionally overriding policies, manager, logging)
//  2. Running tasks with Run, collecting the trace via an event sink
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply model-backed handles
// and a structured logger.
package flowmesh

import (
	"context"
	"time"

	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/engine"
	"github.com/flowmesh-ai/flowmesh/logging"
	"github.com/flowmesh-ai/flowmesh/manager"
	"github.com/flowmesh-ai/flowmesh/policy"
	"github.com/flowmesh-ai/flowmesh/topology"
)

// Options configures the FlowMesh instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Sink receives the execution trace (defaults to NoopSink)
	Sink core.Sink

	// Policies resolves selection policy names; defaults to the builtin
	// registry. Conditional edges naming unregistered policies fail at
	// build time.
	Policies *policy.Registry

	// Manager drives magentic workflows; required for that kind.
	Manager manager.Manager

	// Reviewer approves magentic plans when plan review is enabled.
	Reviewer manager.Reviewer

	// InvocationTimeout bounds each handle invocation (0 = unbounded).
	InvocationTimeout time.Duration
}

// FlowMesh is the high-level façade aggregating a validated graph and its
// execution engine.
type FlowMesh struct {
	graph  *topology.Graph
	engine *engine.Engine
}

// New validates the declaration and builds an execution engine for it. Any
// unset dependency is initialized with a safe default.
func New(decl topology.Decl, resolver core.HandleResolver, optFns ...func(o *Options)) (*FlowMesh, error) {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Sink:     core.NoopSink{},
		Policies: policy.NewRegistry(),
		Reviewer: manager.AutoApprove,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	graph, err := topology.Build(decl, topology.WithKnownPolicies(opts.Policies.Known))
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(graph, resolver, func(o *engine.Options) {
		o.Logger = opts.Logger
		o.Sink = opts.Sink
		o.Policies = opts.Policies
		o.Manager = opts.Manager
		o.Reviewer = opts.Reviewer
		o.InvocationTimeout = opts.InvocationTimeout
	})
	if err != nil {
		return nil, err
	}

	return &FlowMesh{graph: graph, engine: eng}, nil
}

// Graph exposes the validated topology.
func (m *FlowMesh) Graph() *topology.Graph { return m.graph }

// Run executes the workflow for one task and blocks until a terminal
// outcome.
func (m *FlowMesh) Run(ctx context.Context, task string) (*engine.Result, error) {
	return m.engine.Run(ctx, task)
}

// Cancel aborts a running run by ID.
func (m *FlowMesh) Cancel(runID string) error { return m.engine.Cancel(runID) }
