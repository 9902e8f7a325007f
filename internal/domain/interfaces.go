package domain

import "context"

// CompletionProvider is the model-agnostic chat-completions interface.
// Implementations may be OpenAI, OpenRouter, or a local stub. A nil tools
// slice asks for a plain text answer; a non-nil slice offers the tools with
// "auto" selection.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Completion, error)
}

// Embedder generates a dense vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Tokenizer counts tokens for prompt budget reporting.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	CountConversation(messages []Message) (int, error)
}
