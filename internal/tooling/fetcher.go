package tooling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFetcher abstracts HTTP GET requests for testability.
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// maxFetchBytes caps response bodies so a tool cannot pull an unbounded
// payload into the conversation.
const maxFetchBytes = 4 << 20

// DefaultFetcher fetches over a plain http.Client with a request timeout.
type DefaultFetcher struct {
	Client *http.Client
}

// NewDefaultFetcher returns a fetcher with a 30-second timeout.
func NewDefaultFetcher() *DefaultFetcher {
	return &DefaultFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch implements HTTPFetcher.
func (f *DefaultFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	req.Header.Set("User-Agent", "quill/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch read: %w", err)
	}
	return body, nil
}
