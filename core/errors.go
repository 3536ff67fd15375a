package core

import (
	"errors"
	"fmt"
)

// ErrNoHandle is returned when a handle resolver has no binding for a
// declared agent.
var ErrNoHandle = errors.New("no handle bound for agent")

// ValidationKind classifies topology validation failures. Validation errors
// are always fatal before execution begins and are never retried.
type ValidationKind string

const (
	// ValidationDanglingReference: an edge, group or start field names an
	// undeclared agent.
	ValidationDanglingReference ValidationKind = "dangling_reference"
	// ValidationDuplicateName: two declared agents share a name.
	ValidationDuplicateName ValidationKind = "duplicate_name"
	// ValidationMissingStart: a sequential or conditional workflow declares
	// no start agent.
	ValidationMissingStart ValidationKind = "missing_start"
	// ValidationAmbiguousEdge: more than one unconditional edge leaves the
	// same agent.
	ValidationAmbiguousEdge ValidationKind = "ambiguous_edge"
	// ValidationCyclicTopology: the edge set allows a directed cycle
	// reachable from the start agent.
	ValidationCyclicTopology ValidationKind = "cyclic_topology"
	// ValidationUnknownPolicy: a conditional edge names a selection policy
	// that is not registered.
	ValidationUnknownPolicy ValidationKind = "unknown_policy"
	// ValidationBadStrategy: a concurrent group names an unknown aggregation
	// strategy.
	ValidationBadStrategy ValidationKind = "bad_strategy"
	// ValidationEmptyGroup: a concurrent group or conditional candidate set
	// has no members.
	ValidationEmptyGroup ValidationKind = "empty_group"
	// ValidationBadPolicy: a manager policy carries out-of-range bounds.
	ValidationBadPolicy ValidationKind = "bad_policy"
)

// ValidationError reports a malformed topology declaration.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("topology validation failed (%s): %s", e.Kind, e.Detail)
}

// NewValidationError builds a ValidationError with a formatted detail.
func NewValidationError(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ExecutionKind classifies failures raised while a run is in flight.
type ExecutionKind string

const (
	// ExecutionParticipantFailed: a member of a concurrent group failed or
	// timed out; the group as a whole fails without partial aggregation.
	ExecutionParticipantFailed ExecutionKind = "participant_failed"
	// ExecutionSelectionFailed: a selection policy failed, returned an empty
	// set or chose an agent outside the candidate set.
	ExecutionSelectionFailed ExecutionKind = "selection_failed"
	// ExecutionRevisitDetected: a sequential or conditional walk reached an
	// already-visited agent. Runtime backstop to the static cycle check.
	ExecutionRevisitDetected ExecutionKind = "revisit_detected"
	// ExecutionRoundLimitExceeded: the manager loop ran out of rounds before
	// signalling completion.
	ExecutionRoundLimitExceeded ExecutionKind = "round_limit_exceeded"
	// ExecutionResetLimitExceeded: the manager loop exhausted its plan reset
	// budget.
	ExecutionResetLimitExceeded ExecutionKind = "reset_limit_exceeded"
	// ExecutionManagerFailed: the manager capability itself returned an error.
	ExecutionManagerFailed ExecutionKind = "manager_failed"
)

// ExecutionError is fatal to the current run. The engine surfaces the first
// one encountered and aborts remaining in-flight work; it never reports
// partial results on failure.
type ExecutionError struct {
	Kind   ExecutionKind
	Agent  string // offending agent, when one is identifiable
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("execution failed (%s)", e.Kind)
	if e.Agent != "" {
		msg += fmt.Sprintf(" agent=%s", e.Agent)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the causal chain for errors.Is / errors.As.
func (e *ExecutionError) Unwrap() error { return e.Cause }

// AgentInvocationError wraps a failure (or timeout) of a single handle
// invocation. It is isolated to that invocation and propagated upward as the
// cause of the enclosing ExecutionError, never swallowed.
type AgentInvocationError struct {
	Agent string
	Cause error
}

// Error implements the error interface.
func (e *AgentInvocationError) Error() string {
	return fmt.Sprintf("agent %q invocation failed: %v", e.Agent, e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *AgentInvocationError) Unwrap() error { return e.Cause }

// PolicyError reports a selection policy failure: unknown function name, an
// empty choice, or a choice outside the candidate set.
type PolicyError struct {
	Policy string
	Reason string
}

// Error implements the error interface.
func (e *PolicyError) Error() string {
	return fmt.Sprintf("selection policy %q failed: %s", e.Policy, e.Reason)
}

// AsValidation returns the ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// AsExecution returns the ExecutionError in err's chain, if any.
func AsExecution(err error) (*ExecutionError, bool) {
	var ee *ExecutionError
	ok := errors.As(err, &ee)
	return ee, ok
}
