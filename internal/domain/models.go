package domain

import (
	"encoding/json"
	"time"
)

// =============================================================================
// Conversation
// =============================================================================

// Conversation roles. These match the chat-completions wire values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one conversation turn. Assistant turns may carry tool calls;
// tool turns carry the result of exactly one call, referenced by ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to invoke one named tool. Arguments is
// the raw JSON object string produced by the model; it is validated against
// the tool's schema before the handler runs.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Completion is the single choice returned by a completion provider: either
// plain assistant text or one or more tool calls. When a provider returns
// both, ToolCalls wins.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// =============================================================================
// Tools
// =============================================================================

// ToolDefinition describes one tool for the function-calling API.
// InputSchema is a JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolResult is the outcome of executing a tool. Data is the serialized
// output fed back to the model; Metadata carries structured details for
// logging and the CLI.
type ToolResult struct {
	Data     string            `json:"data"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// =============================================================================
// Knowledge base & archive
// =============================================================================

// Document is a knowledge-base entry, scored when returned from a search.
type Document struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArchiveObject describes a stored archive entry. The body is kept in the
// database and omitted from listings; Size always reflects its length.
type ArchiveObject struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"storedAt"`
}

// =============================================================================
// Configuration
// =============================================================================

// Config is the quill.json configuration. API keys are never stored here;
// they resolve from the process environment (see internal/secrets).
type Config struct {
	Provider    string       `json:"provider"` // "openai" | "openrouter" | "local"
	Model       string       `json:"model"`
	EmbedModel  string       `json:"embedModel"`
	DatabaseURL string       `json:"databaseUrl"` // file: or libsql: URL
	Search      SearchConfig `json:"search"`
	Cases       CasesConfig  `json:"cases"`
	PersonaPath string       `json:"personaPath,omitempty"`
	TokenBudget int          `json:"tokenBudget"` // warn when a prompt exceeds this (0 = off)
	Infra       InfraConfig  `json:"infra"`
}

// SearchConfig points the web_search tool at a Custom Search JSON API.
type SearchConfig struct {
	Endpoint   string `json:"endpoint"`
	EngineID   string `json:"engineId"`
	MaxResults int    `json:"maxResults"`
}

// CasesConfig points the case_lookup tool at a case-management REST API.
type CasesConfig struct {
	BaseURL string `json:"baseUrl"`
}

type InfraConfig struct {
	LogFormat string `json:"logFormat"` // "json" | "text"
	LogLevel  string `json:"logLevel"`
}
