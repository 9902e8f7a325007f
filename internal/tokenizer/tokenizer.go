package tokenizer

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"quill/internal/domain"
)

// TikToken wraps tiktoken-go to implement domain.Tokenizer. quill uses it to
// report prompt sizes before completion calls, not to truncate them.
type TikToken struct {
	encoding *tiktoken.Tiktoken
}

// NewTikToken creates a tokenizer for the given encoding name.
// Common encodings: "cl100k_base" (GPT-4/3.5), "o200k_base" (GPT-4o).
func NewTikToken(encodingName string) (*TikToken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: unknown encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: enc}, nil
}

// CountTokens returns the number of tokens in the given text.
func (t *TikToken) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(t.encoding.Encode(text, nil, nil)), nil
}

// CountConversation sums the token counts of every turn's content. Wire
// framing overhead is not modeled; the result is a lower bound used only for
// budget warnings.
func (t *TikToken) CountConversation(messages []domain.Message) (int, error) {
	total := 0
	for _, m := range messages {
		n, err := t.CountTokens(m.Content)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

var _ domain.Tokenizer = (*TikToken)(nil)
