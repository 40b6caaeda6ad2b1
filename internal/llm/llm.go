package llm

import (
	"context"
	"fmt"
)

// Request is a single completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result carries the completion text and the provider-reported usage.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer is the completion API boundary. Retries and backoff are the
// caller's concern, not the implementation's.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}

// RetryableError indicates a transient provider failure (rate limit or
// server error) that is worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
