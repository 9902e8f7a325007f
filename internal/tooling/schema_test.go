package tooling

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateSchema_ShouldProduceObjectSchemaWithRequiredFields(t *testing.T) {
	schema := GenerateSchema(SearchInput{})
	if schema == "" {
		t.Fatal("expected non-empty schema")
	}
	var parsed struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if parsed.Type != "object" {
		t.Errorf("expected object schema, got %q", parsed.Type)
	}
	if _, ok := parsed.Properties["query"]; !ok {
		t.Error("expected query property")
	}
	found := false
	for _, r := range parsed.Required {
		if r == "query" {
			found = true
		}
	}
	if !found {
		t.Error("expected query to be required")
	}
}

func TestGenerateSchema_ShouldMarkOptionalFieldsNotRequired(t *testing.T) {
	schema := GenerateSchema(KBInput{})
	if strings.Contains(schema, `"required": [`) && strings.Contains(schema, `"topK"`) {
		var parsed struct {
			Required []string `json:"required"`
		}
		if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
			t.Fatal(err)
		}
		for _, r := range parsed.Required {
			if r == "topK" {
				t.Error("topK must not be required")
			}
		}
	}
}

func TestValidateAgainstSchema_WhenValid_ShouldPass(t *testing.T) {
	schema := GenerateSchema(SearchInput{})
	if err := ValidateAgainstSchema(json.RawMessage(`{"query":"golang"}`), schema); err != nil {
		t.Errorf("expected valid input to pass, got %v", err)
	}
}

func TestValidateAgainstSchema_WhenMissingRequired_ShouldFail(t *testing.T) {
	schema := GenerateSchema(SearchInput{})
	if err := ValidateAgainstSchema(json.RawMessage(`{}`), schema); err == nil {
		t.Error("expected missing required field to fail")
	}
}

func TestValidateAgainstSchema_WhenUnknownProperty_ShouldFail(t *testing.T) {
	schema := GenerateSchema(SearchInput{})
	if err := ValidateAgainstSchema(json.RawMessage(`{"query":"x","bogus":1}`), schema); err == nil {
		t.Error("expected unknown property to fail")
	}
}

func TestValidateAgainstSchema_WhenWrongType_ShouldFail(t *testing.T) {
	schema := GenerateSchema(KBInput{})
	if err := ValidateAgainstSchema(json.RawMessage(`{"query":"x","topK":"three"}`), schema); err == nil {
		t.Error("expected wrong type to fail")
	}
}

func TestValidateAgainstSchema_WhenInputNotJSON_ShouldFail(t *testing.T) {
	schema := GenerateSchema(SearchInput{})
	if err := ValidateAgainstSchema(json.RawMessage(`{not json`), schema); err == nil {
		t.Error("expected invalid JSON to fail")
	}
}

func TestValidateAgainstSchema_WhenSchemaInvalid_ShouldFail(t *testing.T) {
	if err := ValidateAgainstSchema(json.RawMessage(`{}`), `{not a schema`); err == nil {
		t.Error("expected invalid schema to fail")
	}
}
