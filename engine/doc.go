// Package engine drives a validated topology graph to a terminal outcome.
// The four execution disciplines (sequential, concurrent, conditional,
// magentic) form a closed set dispatched once at run start with an
// exhaustive switch; there is no open-ended strategy registration.
//
// One run executes on a single logical control flow except the concurrent
// fan-out step, which invokes all participants in parallel and suspends the
// run until all complete or one fails. Handle invocations are the only
// operations that may block; each is boundable by a caller-supplied timeout
// and a timed-out invocation is treated exactly like a failed one.
package engine
