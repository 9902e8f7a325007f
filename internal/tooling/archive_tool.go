package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"quill/internal/archive"
	"quill/internal/domain"
)

// ArchiveInput is the model-facing input for the archive tool. One operation
// per call: "put" stores content under name, "get" retrieves it, "list"
// enumerates stored objects.
type ArchiveInput struct {
	Operation string `json:"operation" jsonschema:"enum=put,enum=get,enum=list,description=The archive operation to perform"`
	Name      string `json:"name,omitempty" jsonschema:"description=Object name (required for put and get)"`
	Content   string `json:"content,omitempty" jsonschema:"description=Text content to store (required for put)"`
}

// ArchiveTool exposes the named-blob archive to the model.
type ArchiveTool struct {
	store *archive.Store
}

// NewArchiveTool creates an ArchiveTool over the given store.
func NewArchiveTool(store *archive.Store) *ArchiveTool {
	return &ArchiveTool{store: store}
}

// Name returns the tool name used in function-calling.
func (a *ArchiveTool) Name() string { return "archive" }

// Description returns a human-readable description for the LLM.
func (a *ArchiveTool) Description() string {
	return "Stores, retrieves, or lists named text documents in the archive (operations: put, get, list)"
}

// Definition returns the JSON Schema for archive input.
func (a *ArchiveTool) Definition() string {
	return GenerateSchema(ArchiveInput{})
}

// Call performs exactly one archive operation. Re-running the same put is a
// second write — the tool gives no idempotency guarantee.
func (a *ArchiveTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var input ArchiveInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	switch input.Operation {
	case "put":
		if input.Name == "" || input.Content == "" {
			return nil, fmt.Errorf("put requires both name and content")
		}
		if err := a.store.Put(ctx, input.Name, []byte(input.Content), "text/plain"); err != nil {
			return nil, fmt.Errorf("archive put: %w", err)
		}
		return &domain.ToolResult{
			Data:     fmt.Sprintf("stored %q (%d bytes)", input.Name, len(input.Content)),
			Metadata: map[string]string{"operation": "put", "name": input.Name},
		}, nil

	case "get":
		if input.Name == "" {
			return nil, fmt.Errorf("get requires name")
		}
		body, obj, err := a.store.Get(ctx, input.Name)
		if err != nil {
			return nil, fmt.Errorf("archive get: %w", err)
		}
		return &domain.ToolResult{
			Data: string(body),
			Metadata: map[string]string{
				"operation":   "get",
				"name":        obj.Name,
				"contentType": obj.ContentType,
			},
		}, nil

	case "list":
		objects, err := a.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("archive list: %w", err)
		}
		data, err := json.Marshal(objects)
		if err != nil {
			return nil, fmt.Errorf("archive marshal listing: %w", err)
		}
		return &domain.ToolResult{
			Data:     string(data),
			Metadata: map[string]string{"operation": "list", "objects": fmt.Sprintf("%d", len(objects))},
		}, nil

	default:
		return nil, fmt.Errorf("unknown operation: %s", input.Operation)
	}
}

var _ SchemaTool = (*ArchiveTool)(nil)
