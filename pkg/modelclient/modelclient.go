// Package modelclient wraps a text-generation model behind a minimal
// text-in/text-out contract with a hard per-call timeout.
package modelclient

import (
	"context"
)

// Client is the text-generation contract the supervisor core depends on.
// Implementations must be safe for concurrent use and must bound each call
// with their configured timeout.
type Client interface {
	// Generate sends prompt to the model and returns the text response.
	// Returns ErrTimeout when the call exceeds the configured deadline and
	// ErrGenerateFailed for transport or API errors.
	Generate(ctx context.Context, prompt string) (string, error)
}
