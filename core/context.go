package core

// AgentResult is one recorded agent output. Round is zero outside the
// manager strategy.
type AgentResult struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
	Round  int    `json:"round,omitempty"`
}

// ExecutionContext is the mutable run-scoped state: the task description,
// accumulated results in insertion order, and the manager loop's round,
// stall and reset counters.
//
// The context is owned exclusively by the engine for the duration of one run
// and is destroyed when the run completes or fails. It is intentionally not
// synchronized: within a concurrent fan-out each participant's output is
// collected into a disjoint slot by the engine and recorded sequentially
// after fan-in, so the single-owner rule holds.
type ExecutionContext struct {
	Task string

	Round      int
	StallCount int
	ResetCount int

	results []AgentResult
	byAgent map[string][]int // indexes into results, per agent
}

// NewExecutionContext creates the state for one run of the given task.
func NewExecutionContext(task string) *ExecutionContext {
	return &ExecutionContext{Task: task, byAgent: make(map[string][]int)}
}

// Record appends an agent result, preserving insertion order.
func (c *ExecutionContext) Record(agent, output string) {
	c.byAgent[agent] = append(c.byAgent[agent], len(c.results))
	c.results = append(c.results, AgentResult{Agent: agent, Output: output, Round: c.Round})
}

// Results returns a copy of all recorded results in insertion order.
func (c *ExecutionContext) Results() []AgentResult {
	out := make([]AgentResult, len(c.results))
	copy(out, c.results)
	return out
}

// ResultsFor returns the outputs recorded for one agent, oldest first.
func (c *ExecutionContext) ResultsFor(agent string) []string {
	idxs := c.byAgent[agent]
	out := make([]string, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.results[i].Output)
	}
	return out
}

// HasResult reports whether the agent already produced exactly this output
// in an earlier record. Used by the manager loop's stall detection.
func (c *ExecutionContext) HasResult(agent, output string) bool {
	for _, i := range c.byAgent[agent] {
		if c.results[i].Output == output {
			return true
		}
	}
	return false
}

// LastOutput returns the most recently recorded output, or "" when nothing
// has been recorded. Sequential steps pass this as the context text for the
// next invocation.
func (c *ExecutionContext) LastOutput() string {
	if len(c.results) == 0 {
		return ""
	}
	return c.results[len(c.results)-1].Output
}

// Len returns the number of recorded results.
func (c *ExecutionContext) Len() int { return len(c.results) }

// Snapshot is an immutable view of the execution context handed to selection
// policies and managers. Mutating a snapshot has no effect on the run.
type Snapshot struct {
	Task       string        `json:"task"`
	Results    []AgentResult `json:"results"`
	Round      int           `json:"round"`
	StallCount int           `json:"stall_count"`
	ResetCount int           `json:"reset_count"`
}

// Snapshot captures the current state as an immutable view.
func (c *ExecutionContext) Snapshot() Snapshot {
	return Snapshot{
		Task:       c.Task,
		Results:    c.Results(),
		Round:      c.Round,
		StallCount: c.StallCount,
		ResetCount: c.ResetCount,
	}
}
