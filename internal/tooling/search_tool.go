package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"quill/internal/domain"
)

// SearchInput is the model-facing input for the web_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"minLength=1,description=The search query"`
}

// SearchResult is one hit returned to the model.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchTool queries a Google Custom Search-compatible JSON API.
type SearchTool struct {
	fetcher    HTTPFetcher
	endpoint   string
	engineID   string
	apiKey     string
	maxResults int
}

// NewSearchTool creates a SearchTool. maxResults values outside 1..10 are
// clamped to 5 (the API rejects num > 10).
func NewSearchTool(fetcher HTTPFetcher, endpoint, engineID, apiKey string, maxResults int) *SearchTool {
	if maxResults < 1 || maxResults > 10 {
		maxResults = 5
	}
	return &SearchTool{
		fetcher:    fetcher,
		endpoint:   endpoint,
		engineID:   engineID,
		apiKey:     apiKey,
		maxResults: maxResults,
	}
}

// Name returns the tool name used in function-calling.
func (s *SearchTool) Name() string { return "web_search" }

// Description returns a human-readable description for the LLM.
func (s *SearchTool) Description() string {
	return "Searches the web and returns the top result titles, links, and snippets as JSON"
}

// Definition returns the JSON Schema for search input.
func (s *SearchTool) Definition() string {
	return GenerateSchema(SearchInput{})
}

// searchResponse mirrors the Custom Search JSON API response items.
type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Call executes the search and returns the results serialized as JSON.
func (s *SearchTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var input SearchInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("cx", s.engineID)
	q.Set("q", input.Query)
	q.Set("num", strconv.Itoa(s.maxResults))

	raw, err := s.fetcher.Fetch(ctx, s.endpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("search decode: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, SearchResult{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
	}

	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("search marshal results: %w", err)
	}
	return &domain.ToolResult{
		Data: string(data),
		Metadata: map[string]string{
			"query":   input.Query,
			"results": strconv.Itoa(len(results)),
		},
	}, nil
}

var _ SchemaTool = (*SearchTool)(nil)
