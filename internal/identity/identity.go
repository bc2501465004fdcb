// Package identity turns bearer tokens into subject identifiers.
package identity

import (
	"context"
	"fmt"

	"plenio/internal/core"
)

// Verifier validates a bearer token and returns the subject it names.
// Every rejection wraps core.ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (string, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

func reject(reason string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrUnauthenticated, reason, err)
	}
	return fmt.Errorf("%w: %s", core.ErrUnauthenticated, reason)
}
