// Package secrets resolves credential material from the process environment.
// quill never persists API keys; they are supplied per run as QUILL_* env vars.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a secret is not set in the environment.
var ErrNotFound = errors.New("secret not found")

// Getter resolves a secret by logical name (e.g. "openai_api_key").
type Getter func(name string) (string, error)

// envPrefix namespaces quill's environment variables.
const envPrefix = "QUILL_"

// lookupEnv is os.LookupEnv; tests may replace it.
var lookupEnv = os.LookupEnv

// FromEnv resolves the logical secret name "openai_api_key" to the
// environment variable QUILL_OPENAI_API_KEY. Empty values count as unset.
func FromEnv(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secrets: name must not be empty")
	}
	key := envPrefix + strings.ToUpper(name)
	val, ok := lookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("%w: %s (set %s)", ErrNotFound, name, key)
	}
	return strings.TrimSpace(val), nil
}
