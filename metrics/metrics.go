// Package metrics exposes run-level Prometheus metrics as a trace sink.
// Wire a Collector into the engine's sink (alone or via core.MultiSink) and
// every run, invocation, round and reset is counted; emission never blocks.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flowmesh-ai/flowmesh/core"
)

var (
	globalCollector *Collector
	collectorOnce   sync.Once
)

// Collector holds Prometheus metrics for the orchestration engine and
// implements core.Sink.
type Collector struct {
	// Run lifecycle
	RunsTotal *prometheus.CounterVec

	// Agent invocations
	InvocationsTotal     prometheus.Counter
	InvocationFailsTotal *prometheus.CounterVec

	// Strategy activity
	AggregationsTotal      prometheus.Counter
	DecisionsTotal         prometheus.Counter
	ManagerRoundsTotal     prometheus.Counter
	ManagerPlanResetsTotal prometheus.Counter
}

// NewCollector creates and registers the engine metrics.
//
// A sync.Once guard ensures metrics register only once globally, preventing
// duplicate collector registration panics when several engines run in one
// process.
//
// Metrics:
//   - flowmesh_runs_total{outcome}        - terminated runs by outcome
//   - flowmesh_invocations_total          - handle invocations dispatched
//   - flowmesh_invocation_failures_total{agent} - failed/timed-out invocations
//   - flowmesh_aggregations_total         - fan-in aggregations applied
//   - flowmesh_decisions_total            - selection policy decisions
//   - flowmesh_manager_rounds_total       - magentic coordination rounds
//   - flowmesh_manager_plan_resets_total  - magentic plan resets
func NewCollector() *Collector {
	collectorOnce.Do(func() {
		globalCollector = &Collector{
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "flowmesh_runs_total",
					Help: "Total number of terminated workflow runs",
				},
				[]string{"outcome"}, // "completed" or "failed"
			),
			InvocationsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "flowmesh_invocations_total",
					Help: "Total number of agent handle invocations dispatched",
				},
			),
			InvocationFailsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "flowmesh_invocation_failures_total",
					Help: "Total number of failed or timed-out agent invocations",
				},
				[]string{"agent"},
			),
			AggregationsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "flowmesh_aggregations_total",
					Help: "Total number of fan-in aggregations applied",
				},
			),
			DecisionsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "flowmesh_decisions_total",
					Help: "Total number of selection policy decisions",
				},
			),
			ManagerRoundsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "flowmesh_manager_rounds_total",
					Help: "Total number of magentic coordination rounds",
				},
			),
			ManagerPlanResetsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "flowmesh_manager_plan_resets_total",
					Help: "Total number of magentic plan resets",
				},
			),
		}
	})
	return globalCollector
}

// Emit implements core.Sink. Counter increments never block.
func (c *Collector) Emit(ev core.Event) {
	switch ev.Type {
	case core.EventRunTerminated:
		c.RunsTotal.WithLabelValues(ev.Detail).Inc()
	case core.EventAgentInvoked:
		c.InvocationsTotal.Inc()
	case core.EventAgentFailed:
		c.InvocationFailsTotal.WithLabelValues(ev.Agent).Inc()
	case core.EventAggregationPerformed:
		c.AggregationsTotal.Inc()
	case core.EventDecisionMade:
		c.DecisionsTotal.Inc()
	case core.EventRoundStarted:
		c.ManagerRoundsTotal.Inc()
	case core.EventPlanReset:
		c.ManagerPlanResetsTotal.Inc()
	}
}
