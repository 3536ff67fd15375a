// Package policy implements the pluggable selection capability used by
// conditional routing and by the manager loop. Policies are registered by
// name and resolved at load time, so a declaration naming an unknown
// selection function fails fast instead of at invocation time.
package policy
