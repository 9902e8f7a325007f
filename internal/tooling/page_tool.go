package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"quill/internal/domain"
)

// PageInput is the model-facing input for the read_page tool.
type PageInput struct {
	URL string `json:"url" jsonschema:"minLength=1,description=The http(s) URL of the page to read"`
}

// maxPageChars caps extracted text so a long article does not blow the
// prompt budget; the model summarizes from this excerpt.
const maxPageChars = 8000

// PageTool fetches a URL, strips script and style tags with goquery, and
// extracts the main article content with go-readability.
type PageTool struct {
	fetcher HTTPFetcher
}

// NewPageTool creates a PageTool with the given HTTP fetcher.
func NewPageTool(fetcher HTTPFetcher) *PageTool {
	return &PageTool{fetcher: fetcher}
}

// Name returns the tool name used in function-calling.
func (p *PageTool) Name() string { return "read_page" }

// Description returns a human-readable description for the LLM.
func (p *PageTool) Description() string {
	return "Fetches a web page and returns its main article content as clean text"
}

// Definition returns the JSON Schema for page input.
func (p *PageTool) Definition() string {
	return GenerateSchema(PageInput{})
}

// Call fetches the page and extracts readable text.
func (p *PageTool) Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var input PageInput
	if err := json.Unmarshal(args, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return nil, fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	rawHTML, err := p.fetcher.Fetch(ctx, input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	text, title, err := extractReadable(rawHTML, input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to process HTML: %w", err)
	}
	truncated := false
	if len(text) > maxPageChars {
		// Back off to a rune boundary so the cut never tears a multi-byte
		// character.
		cut := maxPageChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
		truncated = true
	}

	return &domain.ToolResult{
		Data: text,
		Metadata: map[string]string{
			"url":       input.URL,
			"title":     title,
			"truncated": strconv.FormatBool(truncated),
		},
	}, nil
}

// extractReadable strips scripts/styles and runs readability extraction.
// When readability finds no article body it falls back to the document's
// plain text.
func extractReadable(rawHTML []byte, pageURL string) (text, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rawHTML)))
	if err != nil {
		return "", "", fmt.Errorf("parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", "", fmt.Errorf("render HTML: %w", err)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", "", fmt.Errorf("parse URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), parsed)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		// Not every page is an article; fall back to the stripped text.
		return normalizeWhitespace(doc.Text()), doc.Find("title").First().Text(), nil
	}
	return normalizeWhitespace(article.TextContent), article.Title, nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ SchemaTool = (*PageTool)(nil)
