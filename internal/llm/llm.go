package llm

import "context"

// Completer is the single-shot text completion contract the rest of the
// service depends on. Implementations own their own timeouts and transport.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
