// Package llm provides the language-model completion client used by slot
// extraction, topic extraction, and graph-fragment generation.
//
// The model itself is a hosted proxy exposing an OpenAI-compatible chat
// completions API; this package only defines the client boundary. Any schema
// violation in the returned content is the caller's concern (extraction
// errors), never a fatal process error.
package llm

import "context"

// Completer produces one completion for a prompt.
type Completer interface {
	// Complete sends the prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface. Used in tests
// to script completions without a live proxy.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
