package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowmesh-ai/flowmesh/core"
)

// StaticHandle returns the same output for every invocation.
func StaticHandle(output string) core.Handle {
	return core.HandleFunc(func(context.Context, string, string) (string, error) {
		return output, nil
	})
}

// EchoHandle renders the agent name and received task deterministically.
func EchoHandle(name string) core.Handle {
	return core.HandleFunc(func(_ context.Context, task, _ string) (string, error) {
		return fmt.Sprintf("%s handled %q", name, task), nil
	})
}

// FailingHandle always fails with the given error.
func FailingHandle(err error) core.Handle {
	return core.HandleFunc(func(context.Context, string, string) (string, error) {
		return "", err
	})
}

// SlowHandle returns output after the delay, or the context error if the
// invocation is cancelled first.
func SlowHandle(output string, delay time.Duration) core.Handle {
	return core.HandleFunc(func(ctx context.Context, _, _ string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
			return output, nil
		}
	})
}

// CollectSink records every emitted event, safe for concurrent emission.
type CollectSink struct {
	mu     sync.Mutex
	events []core.Event
}

// Emit implements core.Sink.
func (s *CollectSink) Emit(ev core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of the recorded events in emission order.
func (s *CollectSink) Events() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns the recorded event types in emission order.
func (s *CollectSink) Types() []core.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.EventType, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}
