// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the text-generation API behind a single GenerateText
// call. Other stages depend on the Client interface so tests can supply
// a mock.
package llm

import (
	"context"
	"fmt"
)

// Client produces text from a prompt. Implementations must be safe for
// sequential reuse across stages.
type Client interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ServiceError indicates the text-generation service could not produce a
// response after exhausting every configured model and retry.
type ServiceError struct {
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("text-generation service exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
