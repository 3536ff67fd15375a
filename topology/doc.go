// Package topology holds the validated in-memory representation of a
// declared workflow: the agent roster plus one of four shapes (sequential
// pipeline, concurrent group, conditional routing, or manager-coordinated
// collaboration). A Graph is built once from a Decl, validated eagerly, and
// is read-only for the engine afterwards.
package topology
