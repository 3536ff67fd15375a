// Package manager defines the planning capability that drives the magentic
// workflow: an injected decision procedure with a narrow contract (propose
// assignments, report completion, reset plan state). The engine never looks
// inside the manager's reasoning; it only requires that zero or more agent
// invocations were proposed for the round.
//
// ModelManager backs the contract with a model.Model; ScriptedManager
// provides deterministic behavior for tests and dry runs.
package manager
