package llm

import (
	"context"
	"errors"
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question":   map[string]any{"type": "string"},
			"points":     map[string]any{"type": "integer"},
			"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			"distractors": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"question", "points"},
		"additionalProperties": false,
	}

	schema := geminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["question"].Type != "STRING" {
		t.Fatalf("expected STRING for question, got %s", schema.Properties["question"].Type)
	}
	if schema.Properties["points"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for points, got %s", schema.Properties["points"].Type)
	}
	if len(schema.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["difficulty"].Enum))
	}
	if schema.Properties["distractors"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for distractors, got %s", schema.Properties["distractors"].Type)
	}
	if schema.Properties["distractors"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for distractors items, got %s", schema.Properties["distractors"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestNewGeminiProvider(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{}); err == nil {
		t.Fatal("expected error for empty API key")
	}
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gemini-2.0-flash" || p.Name() != ProviderGemini {
		t.Fatalf("got model %q name %q", p.ModelID(), p.Name())
	}
}

func TestGeminiError(t *testing.T) {
	err := geminiError(errors.New("dial tcp: connection refused"))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) || unavail.Provider != ProviderGemini {
		t.Fatalf("expected gemini ErrProviderUnavailable, got %v", err)
	}
}
