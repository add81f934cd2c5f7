package llm

import "context"

// Completer is the single operation the pipeline needs from a language
// model: prompt in, raw text out. Implementations own their transport,
// timeouts and model-level concerns.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
