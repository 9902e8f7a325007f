package llm

import (
	"fmt"

	"quill/internal/domain"
	"quill/internal/secrets"
)

// NewProvider returns a CompletionProvider for the configured provider name.
// Provider may be "local", "openai", or "openrouter"; empty defaults to
// "local". getSecret resolves the API key for keyed providers.
func NewProvider(cfg *domain.Config, getSecret secrets.Getter) (domain.CompletionProvider, error) {
	if cfg == nil {
		return NewLocalProvider("local: "), nil
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "local"
	}
	switch provider {
	case "local":
		return NewLocalProvider("local: "), nil
	case "openai":
		key, err := getSecret("openai_api_key")
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		return NewOpenAIProvider(key, cfg.Model), nil
	case "openrouter":
		key, err := getSecret("openrouter_api_key")
		if err != nil {
			return nil, fmt.Errorf("openrouter provider: %w", err)
		}
		return NewOpenRouterProvider(key, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q (use: local, openai, openrouter)", provider)
	}
}
