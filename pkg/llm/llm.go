package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers that have no credentials.
var ErrNotConfigured = errors.New("llm provider is not configured")

// Completion is a model reply together with the tokens it consumed.
type Completion struct {
	Content     string
	TotalTokens int
}

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)
	Name() string
}
