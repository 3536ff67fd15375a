package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the discrete trace events a run emits.
type EventType string

const (
	// EventRunStarted marks the start of a workflow run.
	EventRunStarted EventType = "run_started"
	// EventRoundStarted marks the start of a manager coordination round.
	EventRoundStarted EventType = "round_started"
	// EventAgentInvoked marks the dispatch of a handle invocation.
	EventAgentInvoked EventType = "agent_invoked"
	// EventAgentCompleted marks a successful handle invocation.
	EventAgentCompleted EventType = "agent_completed"
	// EventAgentFailed marks a failed or timed-out handle invocation.
	EventAgentFailed EventType = "agent_failed"
	// EventDecisionMade marks a selection policy or manager routing decision.
	EventDecisionMade EventType = "decision_made"
	// EventAggregationPerformed marks application of an aggregation strategy.
	EventAggregationPerformed EventType = "aggregation_performed"
	// EventPlanProposed marks a manager plan for the current round.
	EventPlanProposed EventType = "plan_proposed"
	// EventPlanReviewed marks the outcome of an external plan review.
	EventPlanReviewed EventType = "plan_reviewed"
	// EventPlanReset marks a manager plan reset after repeated stalls.
	EventPlanReset EventType = "plan_reset"
	// EventRunTerminated marks the terminal outcome of a run.
	EventRunTerminated EventType = "run_terminated"
)

// Event is one entry in the ordered execution trace. After emission it is
// immutable. Events are delivered to sinks in real time; a slow consumer
// never blocks the run.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Agent     string    `json:"agent,omitempty"`
	Round     int       `json:"round,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event bound to a run with a fresh ID and UTC timestamp.
func NewEvent(runID string, t EventType) Event {
	return Event{ID: NewID(), RunID: runID, Type: t, Timestamp: time.Now().UTC()}
}

// NewID generates a unique identifier for runs and events.
func NewID() string { return uuid.NewString() }

// Sink consumes trace events. Implementations must not block: the engine
// emits with fire-and-forget semantics and a sink that cannot keep up is
// expected to drop rather than stall the run.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) { f(ev) }

// NoopSink discards all events.
type NoopSink struct{}

// Emit implements Sink.
func (NoopSink) Emit(Event) {}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

// Emit implements Sink.
func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// ChannelSink buffers events on a channel for external observers. When the
// buffer is full the event is dropped, keeping emission non-blocking.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Emit implements Sink, dropping the event when the buffer is full.
func (s *ChannelSink) Emit(ev Event) {
	select {
	case s.ch <- ev:
	default:
	}
}

// Events exposes the buffered event stream.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Close closes the event stream. Emit must not be called after Close.
func (s *ChannelSink) Close() { close(s.ch) }
