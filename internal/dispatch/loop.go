package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"quill/internal/domain"
)

// Option is a functional option for configuring Loop.
type Option func(*Loop)

// WithLogger sets a structured logger. If l is nil it is ignored and the
// default slog logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithTokenizer enables prompt token reporting. The loop warns when a prompt
// exceeds budget but never truncates — the conversation is two turns plus at
// most one tool exchange. budget <= 0 disables the warning.
func WithTokenizer(t domain.Tokenizer, budget int) Option {
	return func(lp *Loop) {
		if t != nil {
			lp.tokenizer = t
			lp.tokenBudget = budget
		}
	}
}

// Loop is the single-turn tool-dispatch loop. Every Run builds a fresh
// conversation; no state is shared between invocations.
type Loop struct {
	provider     domain.CompletionProvider
	dispatcher   *Dispatcher
	systemPrompt string
	logger       *slog.Logger
	tokenizer    domain.Tokenizer
	tokenBudget  int
}

// New returns a Loop. Provider and dispatcher must not be nil.
func New(provider domain.CompletionProvider, dispatcher *Dispatcher, systemPrompt string, opts ...Option) *Loop {
	if provider == nil {
		panic("dispatch: provider must not be nil")
	}
	if dispatcher == nil {
		panic("dispatch: dispatcher must not be nil")
	}
	l := &Loop{provider: provider, dispatcher: dispatcher, systemPrompt: systemPrompt}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

// Run answers one user utterance. It makes exactly one completion call when
// the model answers directly, or exactly two completion calls and one tool
// call when the model selects a tool. Errors from the completion provider or
// the tool handler propagate to the caller; there is no retry. Tool side
// effects happen at most once per Run and are never deduplicated across runs.
func (l *Loop) Run(ctx context.Context, userInput string) (string, error) {
	if userInput == "" {
		return "", fmt.Errorf("dispatch: user input must not be empty")
	}

	conversation := []domain.Message{
		{Role: domain.RoleSystem, Content: l.systemPrompt},
		{Role: domain.RoleUser, Content: userInput},
	}
	l.reportTokens(conversation)

	first, err := l.provider.Complete(ctx, conversation, l.dispatcher.Definitions())
	if err != nil {
		return "", fmt.Errorf("dispatch: completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		return first.Content, nil
	}

	// The loop executes a single tool per turn. Providers constrained to one
	// call normally return one; if the model asks for more, only the first
	// runs and the rest are dropped.
	call := first.ToolCalls[0]
	if len(first.ToolCalls) > 1 {
		l.log().Warn("model requested multiple tool calls, executing only the first",
			"executed", call.Name,
			"dropped", len(first.ToolCalls)-1,
		)
	}

	l.log().Debug("executing tool", "tool", call.Name, "call_id", call.ID)
	result, err := l.dispatcher.Handle(ctx, call)
	if err != nil {
		return "", fmt.Errorf("dispatch: tool %q: %w", call.Name, err)
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("dispatch: serialize tool result: %w", err)
	}

	conversation = append(conversation,
		domain.Message{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{call}},
		domain.Message{Role: domain.RoleTool, Content: string(serialized), ToolCallID: call.ID},
	)
	l.reportTokens(conversation)

	// Second call carries no tools: the model must summarize, not chain.
	second, err := l.provider.Complete(ctx, conversation, nil)
	if err != nil {
		return "", fmt.Errorf("dispatch: summary completion: %w", err)
	}
	return second.Content, nil
}

// reportTokens logs the prompt size and warns above the configured budget.
// Counting failures are ignored; token reporting is best-effort.
func (l *Loop) reportTokens(conversation []domain.Message) {
	if l.tokenizer == nil {
		return
	}
	total, err := l.tokenizer.CountConversation(conversation)
	if err != nil {
		return
	}
	l.log().Debug("prompt tokens", "tokens", total)
	if l.tokenBudget > 0 && total > l.tokenBudget {
		l.log().Warn("prompt exceeds token budget", "tokens", total, "budget", l.tokenBudget)
	}
}
