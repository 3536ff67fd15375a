// Package aggregate implements the pure fan-in step of concurrent
// execution: combining an ordered collection of per-agent results into one
// result under a named strategy (Collect, Merge or Vote). All functions are
// deterministic; ordering always follows the declared participant order,
// never completion order.
package aggregate
