// Package llm provides the model client used for narrative calls.
package llm

import (
	"context"
	"time"
)

const (
	defaultAPIKeyEnv = "GEMINI_API_KEY"
	defaultTimeout   = 60 * time.Second
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// Options tunes a single call.
type Options struct {
	MaxTokens   int
	Temperature *float32
}

// Response is the model's reply.
type Response struct {
	Content    string
	TokensUsed int
}

// Client makes a single model call. Implementations are expected to be
// retryable and rate-limited on their side; callers hold no locks across
// Respond and must pass a cancellable context.
type Client interface {
	Respond(ctx context.Context, messages []Message, opts Options) (Response, error)
}

// Config is model client configuration.
type Config struct {
	Model     string
	APIKey    string
	APIKeyEnv string
	Timeout   time.Duration
}
