package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"quill/internal/domain"
	"quill/internal/vectorstore"
)

// KBInput is the model-facing input for the kb_search tool.
type KBInput struct {
	Query string `json:"query" jsonschema:"minLength=1,description=What to look up in the knowledge base"`
	TopK  int    `json:"topK,omitempty" jsonschema:"minimum=1,maximum=20,description=How many documents to return (default 3)"`
}

// KBHit is one knowledge-base match returned to the model.
type KBHit struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// defaultKBTopK is used when the model omits topK.
const defaultKBTopK = 3

// KBTool embeds the query and runs cosine-similarity KNN over the local
// knowledge base.
type KBTool struct {
	embedder domain.Embedder
	store    *vectorstore.Store
}

// NewKBTool creates a KBTool over the given embedder and vector store.
func NewKBTool(embedder domain.Embedder, store *vectorstore.Store) *KBTool {
	return &KBTool{embedder: embedder, store: store}
}

// Name returns the tool name used in function-calling.
func (k *KBTool) Name() string { return "kb_search" }

// Description returns a human-readable description for the LLM.
func (k *KBTool) Description() string {
	return "Searches the local knowledge base by semantic similarity and returns the best-matching documents as JSON"
}

// Definition returns the JSON Schema for knowledge-base input.
func (k *KBTool) Definition() string {
	return GenerateSchema(KBInput{})
}

// Call embeds the query and returns the topK nearest documents.
func (k *KBTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var input KBInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	topK := input.TopK
	if topK <= 0 {
		topK = defaultKBTopK
	}

	vec, err := k.embedder.Embed(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("kb embed: %w", err)
	}
	docs, err := k.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("kb search: %w", err)
	}

	hits := make([]KBHit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, KBHit{Content: d.Content, Score: d.Score})
	}
	data, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("kb marshal hits: %w", err)
	}
	return &domain.ToolResult{
		Data: string(data),
		Metadata: map[string]string{
			"query": input.Query,
			"hits":  strconv.Itoa(len(hits)),
		},
	}, nil
}

var _ SchemaTool = (*KBTool)(nil)
