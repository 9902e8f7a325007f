package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

// fakeFetcher returns canned bytes and records the requested URL. Shared by
// the search and page tool tests.
type fakeFetcher struct {
	body    []byte
	err     error
	gotURL  string
	fetches int
}

func (f *fakeFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	f.fetches++
	f.gotURL = u
	return f.body, f.err
}

func TestSearchTool_Call_ShouldReturnResultsAsJSON(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{"items":[
		{"title":"Go","link":"https://go.dev","snippet":"The Go language"},
		{"title":"Docs","link":"https://go.dev/doc","snippet":"Documentation"}]}`)}
	tool := NewSearchTool(fetcher, "https://search.example.com/v1", "engine-1", "key-1", 5)

	res, err := tool.Call(context.Background(), json.RawMessage(`{"query":"golang"}`))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	var results []SearchResult
	if err := json.Unmarshal([]byte(res.Data), &results); err != nil {
		t.Fatalf("result data is not JSON: %v", err)
	}
	if len(results) != 2 || results[0].Title != "Go" {
		t.Errorf("unexpected results: %+v", results)
	}
	if res.Metadata["results"] != "2" {
		t.Errorf("expected results metadata 2, got %q", res.Metadata["results"])
	}
}

func TestSearchTool_Call_ShouldBuildQueryURL(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{"items":[]}`)}
	tool := NewSearchTool(fetcher, "https://search.example.com/v1", "engine-1", "key-1", 7)

	if _, err := tool.Call(context.Background(), json.RawMessage(`{"query":"hello world"}`)); err != nil {
		t.Fatalf("Call: %v", err)
	}
	parsed, err := url.Parse(fetcher.gotURL)
	if err != nil {
		t.Fatalf("fetched URL not parseable: %v", err)
	}
	q := parsed.Query()
	if q.Get("q") != "hello world" || q.Get("cx") != "engine-1" || q.Get("key") != "key-1" {
		t.Errorf("unexpected query params: %v", q)
	}
	if q.Get("num") != "7" {
		t.Errorf("expected num 7, got %q", q.Get("num"))
	}
}

func TestNewSearchTool_ShouldClampMaxResults(t *testing.T) {
	tool := NewSearchTool(&fakeFetcher{}, "", "", "", 50)
	if tool.maxResults != 5 {
		t.Errorf("expected clamp to 5, got %d", tool.maxResults)
	}
	tool = NewSearchTool(&fakeFetcher{}, "", "", "", 0)
	if tool.maxResults != 5 {
		t.Errorf("expected clamp to 5, got %d", tool.maxResults)
	}
}

func TestSearchTool_Call_WhenFetchFails_ShouldReturnError(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("connection refused")}
	tool := NewSearchTool(fetcher, "https://search.example.com/v1", "e", "k", 5)
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"query":"x"}`)); err == nil {
		t.Error("expected error when fetch fails")
	}
}

func TestSearchTool_Call_WhenResponseNotJSON_ShouldReturnError(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte("<html>quota exceeded</html>")}
	tool := NewSearchTool(fetcher, "https://search.example.com/v1", "e", "k", 5)
	if _, err := tool.Call(context.Background(), json.RawMessage(`{"query":"x"}`)); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestSearchTool_Definition_ShouldValidateItsOwnInput(t *testing.T) {
	tool := NewSearchTool(&fakeFetcher{}, "", "", "", 5)
	schema := tool.Definition()
	if err := ValidateAgainstSchema(json.RawMessage(`{"query":"ok"}`), schema); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
	if err := ValidateAgainstSchema(json.RawMessage(`{}`), schema); err == nil {
		t.Error("expected empty input to be rejected")
	}
	if !strings.Contains(schema, "query") {
		t.Error("schema missing query property")
	}
}
