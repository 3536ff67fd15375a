// Package core contains the shared leaf types of the FlowMesh framework:
// agent definitions, the Handle capability used to invoke an agent, the
// run-scoped execution context, the trace event model and the error
// taxonomy. Higher-level packages (topology, policy, engine, manager)
// depend on core; core depends on nothing but the standard library and
// uuid.
package core
