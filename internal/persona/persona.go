// Package persona loads system prompts from Markdown files with YAML
// front matter. A persona scopes the assistant's behaviour: what domain it
// answers in and when it should ask a clarifying question instead of
// guessing tool arguments.
package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPrompt is used when no persona file is configured. It instructs the
// model to prefer a clarifying question over guessing tool arguments, which
// is the only guard against ambiguous input — the dispatch loop does not
// second-guess the model.
const DefaultPrompt = `You are quill, a concise assistant. You may call at most one tool per request.
If the user's request is ambiguous or is missing details a tool needs, ask one clarifying question instead of guessing.
Answer directly when no tool is needed.`

// Persona is a named system prompt.
type Persona struct {
	Name        string
	Description string
	Prompt      string
}

// frontmatter holds the YAML header parsed from a persona .md file.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Default returns the built-in persona.
func Default() *Persona {
	return &Persona{Name: "default", Description: "built-in persona", Prompt: DefaultPrompt}
}

// Load reads a persona file. An empty path returns the built-in default.
func Load(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona load: %w", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", path, err)
	}
	return p, nil
}

// Parse splits a Markdown string into YAML front matter and a prompt body.
// The front matter must be delimited by "---" lines and name both `name`
// and `description`; the body must be non-empty.
func Parse(content string) (*Persona, error) {
	const delimiter = "---"

	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, delimiter) {
		return nil, fmt.Errorf("no front matter found: content must start with ---")
	}
	rest := trimmed[len(delimiter):]

	closingIdx := strings.Index(rest, "\n"+delimiter)
	if closingIdx == -1 {
		return nil, fmt.Errorf("no closing --- delimiter found")
	}
	header := rest[:closingIdx]
	body := strings.TrimSpace(rest[closingIdx+len("\n"+delimiter):])

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("invalid YAML front matter: %w", err)
	}
	if fm.Name == "" {
		return nil, fmt.Errorf("front matter missing required field: name")
	}
	if fm.Description == "" {
		return nil, fmt.Errorf("front matter missing required field: description")
	}
	if body == "" {
		return nil, fmt.Errorf("persona body must not be empty")
	}

	return &Persona{Name: fm.Name, Description: fm.Description, Prompt: body}, nil
}
