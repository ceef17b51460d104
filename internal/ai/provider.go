// Package ai composes prayer responses with a generative text provider.
package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a provider that has no credentials.
var ErrNotConfigured = errors.New("ai provider not configured")

// Provider completes a single user prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
