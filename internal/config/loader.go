package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quill/internal/domain"
)

// marshalIndent and writeFile are used by WriteDefault and Save; tests may replace to force errors.
var (
	marshalIndent = json.MarshalIndent
	writeFile     = os.WriteFile
)

// WriteDefault writes a default Config to path (e.g. quill.json).
// Parent directories are not created.
func WriteDefault(path string) error {
	cfg := Default()
	data, err := marshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data, 0644)
}

// Default returns the built-in configuration: local provider, local SQLite
// database, Google Custom Search endpoint, no case API.
func Default() *domain.Config {
	return &domain.Config{
		Provider:    "local",
		Model:       "gpt-4o-mini",
		EmbedModel:  "text-embedding-3-small",
		DatabaseURL: "file:quill.db",
		Search: domain.SearchConfig{
			Endpoint:   "https://www.googleapis.com/customsearch/v1",
			MaxResults: 5,
		},
		Cases:       domain.CasesConfig{},
		TokenBudget: 6000,
		Infra:       domain.InfraConfig{LogFormat: "text", LogLevel: "info"},
	}
}

// Load reads path (e.g. quill.json), unmarshals into domain.Config, and cleans
// the persona path to mitigate path traversal. Returns an error if the file is
// missing or invalid JSON.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	var c domain.Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	CleanPaths(&c)
	return &c, nil
}

// CleanPaths applies filepath.Clean to path fields in cfg.
func CleanPaths(cfg *domain.Config) {
	if cfg == nil {
		return
	}
	if cfg.PersonaPath != "" {
		cfg.PersonaPath = filepath.Clean(cfg.PersonaPath)
	}
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg *domain.Config) error {
	if cfg == nil {
		return fmt.Errorf("config save: nil config")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config save mkdir: %w", err)
	}
	data, err := marshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config save marshal: %w", err)
	}
	if err := writeFile(path, data, 0644); err != nil {
		return fmt.Errorf("config save write: %w", err)
	}
	return nil
}
