package secrets

import (
	"errors"
	"testing"
)

func TestFromEnv_WhenSet_ShouldReturnValue(t *testing.T) {
	t.Setenv("QUILL_OPENAI_API_KEY", "sk-test")
	got, err := FromEnv("openai_api_key")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if got != "sk-test" {
		t.Errorf("expected sk-test, got %q", got)
	}
}

func TestFromEnv_ShouldTrimWhitespace(t *testing.T) {
	t.Setenv("QUILL_SEARCH_API_KEY", "  key  ")
	got, err := FromEnv("search_api_key")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if got != "key" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}

func TestFromEnv_WhenUnset_ShouldReturnErrNotFound(t *testing.T) {
	orig := lookupEnv
	lookupEnv = func(string) (string, bool) { return "", false }
	defer func() { lookupEnv = orig }()

	_, err := FromEnv("openai_api_key")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFromEnv_WhenBlank_ShouldReturnErrNotFound(t *testing.T) {
	t.Setenv("QUILL_CASES_API_TOKEN", "   ")
	_, err := FromEnv("cases_api_token")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for blank value, got %v", err)
	}
}

func TestFromEnv_WhenEmptyName_ShouldReturnError(t *testing.T) {
	if _, err := FromEnv(""); err == nil {
		t.Error("expected error for empty name")
	}
}
