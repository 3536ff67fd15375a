// Package model abstracts the text-generation capability that backs agent
// handles and the magentic manager. The Model interface is a narrow
// prompt-in, text-out contract; provider adapters live in the openai and
// anthropic subpackages. NewHandle bridges a Model to the core.Handle
// capability the engine invokes.
package model
