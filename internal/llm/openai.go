package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"quill/internal/domain"
)

// OpenAIProvider calls an OpenAI-compatible Chat Completions API with
// function-calling support. Tool choice is always "auto" — the model may
// answer directly or select tools, but is never forced.
type OpenAIProvider struct {
	apiKey      string
	model       string
	client      *http.Client
	baseURL     string
	headers     map[string]string                  // extra request headers (OpenRouter attribution)
	marshalFunc func(v interface{}) ([]byte, error) // for testing
}

// NewOpenAIProvider returns an OpenAI-backed CompletionProvider.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:      apiKey,
		model:       model,
		client:      &http.Client{},
		baseURL:     "https://api.openai.com/v1/chat/completions",
		marshalFunc: json.Marshal,
	}
}

// =============================================================================
// Wire types (chat-completions JSON)
// =============================================================================

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements domain.CompletionProvider. When tools is non-empty the
// request carries the tool definitions with tool_choice "auto"; otherwise no
// tools are offered and the model must answer with text.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolDefinition) (*domain.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body := chatRequest{
		Model:    p.model,
		Messages: encodeMessages(messages),
	}
	if len(tools) > 0 {
		body.Tools = encodeTools(tools)
		body.ToolChoice = "auto"
	}
	raw, err := p.marshalFunc(body)
	if err != nil {
		return nil, fmt.Errorf("openai marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai api: %s", resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openai decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}
	return decodeCompletion(out.Choices[0].Message), nil
}

// encodeMessages converts domain messages to the wire representation.
func encodeMessages(messages []domain.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		cm := chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wire := chatToolCall{ID: tc.ID, Type: "function"}
			wire.Function.Name = tc.Name
			wire.Function.Arguments = tc.Arguments
			cm.ToolCalls = append(cm.ToolCalls, wire)
		}
		out = append(out, cm)
	}
	return out
}

// encodeTools converts tool definitions to the function-calling wire format.
func encodeTools(tools []domain.ToolDefinition) []chatTool {
	out := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

// decodeCompletion maps the assistant wire message to a domain.Completion.
func decodeCompletion(m chatMessage) *domain.Completion {
	c := &domain.Completion{Content: m.Content}
	for _, tc := range m.ToolCalls {
		c.ToolCalls = append(c.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return c
}

var _ domain.CompletionProvider = (*OpenAIProvider)(nil)
