package llm

import (
	"context"
	"testing"

	"quill/internal/domain"
)

func TestLocalProvider_Complete_ShouldEchoLastUserMessage(t *testing.T) {
	p := NewLocalProvider("")
	msgs := []domain.Message{
		{Role: domain.RoleSystem, Content: "system"},
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleUser, Content: "second"},
	}
	got, err := p.Complete(context.Background(), msgs, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "second" {
		t.Errorf("expected last user message, got %q", got.Content)
	}
	if len(got.ToolCalls) != 0 {
		t.Error("local provider must never select tools")
	}
}

func TestLocalProvider_Complete_ShouldApplyPrefix(t *testing.T) {
	p := NewLocalProvider("local: ")
	msgs := []domain.Message{{Role: domain.RoleUser, Content: "hi"}}
	got, err := p.Complete(context.Background(), msgs, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != "local: hi" {
		t.Errorf("expected prefixed echo, got %q", got.Content)
	}
}

func TestLocalProvider_Complete_WhenContextCanceled_ShouldReturnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewLocalProvider("")
	if _, err := p.Complete(ctx, nil, nil); err == nil {
		t.Error("expected error for canceled context")
	}
}
