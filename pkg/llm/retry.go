package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ctu-chatbot/harvester/pkg/logging"
)

// RetryCompleter wraps a Completer with bounded retries and exponential
// backoff. Parsing of the response stays out of scope here: the pipeline
// never retries because a model answered with bad JSON, only because the
// call itself failed.
type RetryCompleter struct {
	inner     Completer
	attempts  int
	baseDelay time.Duration
}

func NewRetryCompleter(inner Completer, attempts int, baseDelay time.Duration) *RetryCompleter {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &RetryCompleter{inner: inner, attempts: attempts, baseDelay: baseDelay}
}

func (r *RetryCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := r.baseDelay
	for attempt := 1; attempt <= r.attempts; attempt++ {
		result, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		logger := logging.GetLogger("llm")
		logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Completion failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", r.attempts, lastErr)
}
