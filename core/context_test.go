package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContextRecord(t *testing.T) {
	ec := NewExecutionContext("write a report")

	assert.Equal(t, 0, ec.Len())
	assert.Empty(t, ec.LastOutput())

	ec.Record("draft", "first draft")
	ec.Record("review", "looks good")
	ec.Record("draft", "second draft")

	assert.Equal(t, 3, ec.Len())
	assert.Equal(t, "second draft", ec.LastOutput())

	results := ec.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "draft", results[0].Agent)
	assert.Equal(t, "review", results[1].Agent)
	assert.Equal(t, "draft", results[2].Agent)

	assert.Equal(t, []string{"first draft", "second draft"}, ec.ResultsFor("draft"))
	assert.Equal(t, []string{"looks good"}, ec.ResultsFor("review"))
	assert.Empty(t, ec.ResultsFor("unknown"))
}

func TestExecutionContextHasResult(t *testing.T) {
	ec := NewExecutionContext("task")
	ec.Record("a", "output one")

	assert.True(t, ec.HasResult("a", "output one"))
	assert.False(t, ec.HasResult("a", "output two"))
	assert.False(t, ec.HasResult("b", "output one"))
}

func TestExecutionContextRoundStamping(t *testing.T) {
	ec := NewExecutionContext("task")
	ec.Round = 2
	ec.Record("worker", "round two output")

	results := ec.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Round)
}

func TestSnapshotIsDetached(t *testing.T) {
	ec := NewExecutionContext("task")
	ec.Record("a", "one")
	ec.StallCount = 1

	snap := ec.Snapshot()
	assert.Equal(t, "task", snap.Task)
	assert.Equal(t, 1, snap.StallCount)
	require.Len(t, snap.Results, 1)

	// Mutating the snapshot must not leak back into the run state.
	snap.Results[0].Output = "tampered"
	assert.Equal(t, "one", ec.Results()[0].Output)
}
