package aggregate

import (
	"fmt"
	"strings"
)

// Strategy names a rule for combining parallel results.
type Strategy string

const (
	// Collect keeps every result as an ordered list, rendered one line per
	// participant.
	Collect Strategy = "collect"
	// Merge concatenates results with a deterministic separator. No semantic
	// summarization happens here.
	Merge Strategy = "merge"
	// Vote picks the result with the highest occurrence count (exact string
	// equality); ties break to the earliest declared participant.
	Vote Strategy = "vote"
)

// MergeSeparator joins results under the Merge strategy.
const MergeSeparator = "\n\n---\n\n"

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case Collect, Merge, Vote:
		return true
	}
	return false
}

// Parse normalizes a strategy name from configuration.
func Parse(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown aggregation strategy %q", name)
	}
	return s, nil
}

// Apply combines outputs under the given strategy and returns the single
// combined result. participants and outputs are aligned slices in declared
// participant order; callers guarantee equal lengths.
func Apply(strategy Strategy, participants, outputs []string) (string, error) {
	if len(participants) != len(outputs) {
		return "", fmt.Errorf("aggregate: %d participants but %d outputs", len(participants), len(outputs))
	}
	switch strategy {
	case Collect:
		lines := make([]string, len(participants))
		for i, p := range participants {
			lines[i] = fmt.Sprintf("%s: %s", p, outputs[i])
		}
		return strings.Join(lines, "\n"), nil
	case Merge:
		return strings.Join(outputs, MergeSeparator), nil
	case Vote:
		return vote(outputs), nil
	default:
		return "", fmt.Errorf("unknown aggregation strategy %q", strategy)
	}
}

// vote returns the output with the highest occurrence count. On a tie the
// output of the earliest participant among the tied values wins, which makes
// the result independent of completion order.
func vote(outputs []string) string {
	if len(outputs) == 0 {
		return ""
	}
	counts := make(map[string]int, len(outputs))
	for _, o := range outputs {
		counts[o]++
	}
	best := outputs[0]
	for _, o := range outputs[1:] {
		if counts[o] > counts[best] {
			best = o
		}
	}
	return best
}
