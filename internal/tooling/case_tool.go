package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quill/internal/domain"
)

// CaseInput is the model-facing input for the case_lookup tool.
type CaseInput struct {
	Subject string `json:"subject" jsonschema:"minLength=1,description=Words to match against case subjects"`
	Status  string `json:"status,omitempty" jsonschema:"enum=open,enum=closed,description=Optional status filter"`
}

// CaseRecord is one case returned to the model.
type CaseRecord struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// CaseTool queries a case-management REST API
// (GET {base}/cases?subject=...&status=... with a bearer token).
type CaseTool struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewCaseTool creates a CaseTool for the given API base URL and token.
func NewCaseTool(baseURL, token string) *CaseTool {
	return &CaseTool{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the tool name used in function-calling.
func (c *CaseTool) Name() string { return "case_lookup" }

// Description returns a human-readable description for the LLM.
func (c *CaseTool) Description() string {
	return "Looks up support cases by subject, optionally filtered by status, and returns the matching records as JSON"
}

// Definition returns the JSON Schema for case input.
func (c *CaseTool) Definition() string {
	return GenerateSchema(CaseInput{})
}

// caseResponse mirrors the case API's list envelope.
type caseResponse struct {
	Records []CaseRecord `json:"records"`
}

// Call queries the case API and returns matching records serialized as JSON.
func (c *CaseTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var input CaseInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	q := url.Values{}
	q.Set("subject", input.Subject)
	if input.Status != "" {
		q.Set("status", input.Status)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cases?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("case request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("case api: %s: %s", resp.Status, body)
	}

	var out caseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("case decode: %w", err)
	}

	data, err := json.Marshal(out.Records)
	if err != nil {
		return nil, fmt.Errorf("case marshal records: %w", err)
	}
	return &domain.ToolResult{
		Data: string(data),
		Metadata: map[string]string{
			"subject": input.Subject,
			"matches": strconv.Itoa(len(out.Records)),
		},
	}, nil
}

var _ SchemaTool = (*CaseTool)(nil)
