package llm

import (
	"context"
	"fmt"

	"quill/internal/domain"
)

// LocalProvider is a deterministic stub for manual testing without API keys.
// It never selects a tool; it echoes the last user message with an optional
// prefix. Implements domain.CompletionProvider.
type LocalProvider struct {
	Prefix string
}

// NewLocalProvider returns a local provider that echoes the last user turn.
func NewLocalProvider(prefix string) *LocalProvider {
	return &LocalProvider{Prefix: prefix}
}

// Complete implements domain.CompletionProvider.
func (p *LocalProvider) Complete(ctx context.Context, messages []domain.Message, _ []domain.ToolDefinition) (*domain.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var last string
	for _, m := range messages {
		if m.Role == domain.RoleUser {
			last = m.Content
		}
	}
	if p.Prefix == "" {
		return &domain.Completion{Content: last}, nil
	}
	return &domain.Completion{Content: fmt.Sprintf("%s%s", p.Prefix, last)}, nil
}

var _ domain.CompletionProvider = (*LocalProvider)(nil)
