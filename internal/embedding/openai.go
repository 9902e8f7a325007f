package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"quill/internal/domain"
)

// JSONMarshaller abstracts JSON encoding for testability.
type JSONMarshaller interface {
	Marshal(v interface{}) ([]byte, error)
}

type defaultMarshaller struct{}

func (m *defaultMarshaller) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// OpenAIEmbedder generates vector embeddings via the OpenAI /v1/embeddings
// endpoint.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	client     *http.Client
	baseURL    string
	marshaller JSONMarshaller
}

// NewOpenAIEmbedder returns an Embedder backed by the OpenAI embeddings API.
func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		client:     &http.Client{},
		baseURL:    "https://api.openai.com/v1/embeddings",
		marshaller: &defaultMarshaller{},
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements domain.Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}

	raw, err := e.marshaller.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embed marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings api: %s", resp.Status)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed decode: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings api: empty embedding in response")
	}
	return out.Data[0].Embedding, nil
}

var _ domain.Embedder = (*OpenAIEmbedder)(nil)
