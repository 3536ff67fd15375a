package policy

import (
	"context"
	"strings"

	"github.com/flowmesh-ai/flowmesh/core"
)

// Builtin policy names.
const (
	// First routes to the first declared candidate unconditionally.
	First = "first"
	// All activates every candidate (fan-out at the decision point).
	All = "all"
	// Keyword routes on substring matches between the previous output and
	// per-candidate keywords supplied via edge params.
	Keyword = "keyword"
)

func builtins() map[string]Policy {
	return map[string]Policy{
		First:   Func(selectFirst),
		All:     Func(selectAll),
		Keyword: Func(selectKeyword),
	}
}

func selectFirst(_ context.Context, _ core.Snapshot, candidates []string, _ map[string]string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, &core.PolicyError{Policy: First, Reason: "no candidates"}
	}
	return candidates[:1], nil
}

func selectAll(_ context.Context, _ core.Snapshot, candidates []string, _ map[string]string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, &core.PolicyError{Policy: All, Reason: "no candidates"}
	}
	return append([]string(nil), candidates...), nil
}

// selectKeyword matches each candidate's keyword (params[candidate], falling
// back to the candidate name) against the most recent recorded output,
// case-insensitively. Candidates match in declared order; no match falls
// back to the first candidate so routing always proceeds.
func selectKeyword(_ context.Context, snap core.Snapshot, candidates []string, params map[string]string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, &core.PolicyError{Policy: Keyword, Reason: "no candidates"}
	}
	var last string
	if n := len(snap.Results); n > 0 {
		last = strings.ToLower(snap.Results[n-1].Output)
	}
	var chosen []string
	for _, c := range candidates {
		kw := params[c]
		if kw == "" {
			kw = c
		}
		if strings.Contains(last, strings.ToLower(kw)) {
			chosen = append(chosen, c)
		}
	}
	if len(chosen) == 0 {
		return candidates[:1], nil
	}
	return chosen, nil
}
