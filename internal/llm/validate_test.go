package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A single quiz question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":   map[string]any{"type": "string", "minLength": 1},
				"answer":     map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"question", "answer"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"Largest ocean?","answer":"Pacific","difficulty":"easy"}`, false},
		{"optional field omitted", `{"question":"Largest ocean?","answer":"Pacific"}`, false},
		{"missing required", `{"question":"Largest ocean?"}`, true},
		{"wrong type", `{"question":"Largest ocean?","answer":42}`, true},
		{"invalid enum", `{"question":"q","answer":"a","difficulty":"extreme"}`, true},
		{"empty question", `{"question":"","answer":"a"}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty response", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateResponse(ProviderGroq, questionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
				if invErr.Provider != ProviderGroq || invErr.Schema != "test-question" {
					t.Errorf("error not tagged: provider %q schema %q", invErr.Provider, invErr.Schema)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	got, err := validateResponse(ProviderOpenAI, nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("content changed: %s", got)
	}
}

func TestValidateResponse_QuizQuestions(t *testing.T) {
	schema := quizSchema()

	if _, err := validateResponse(ProviderOpenAI, schema, json.RawMessage(quizJSON)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	extra := json.RawMessage(`{"questions":[],"note":"extra"}`)
	if _, err := validateResponse(ProviderOpenAI, schema, extra); err == nil {
		t.Fatal("expected error for additional property")
	}

	wrongItems := json.RawMessage(`{"questions":["not an object"]}`)
	if _, err := validateResponse(ProviderOpenAI, schema, wrongItems); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}

func TestValidateResponse_ReportsFailingQuestion(t *testing.T) {
	raw := `{"questions":[` +
		`{"question":"What gas do plants absorb?","answer":"Carbon dioxide","distractors":["Oxygen"],"difficulty":"easy","topic":"Biology","type":"mcq"},` +
		`{"question":"Plants release oxygen.","answer":"True","distractors":[],"difficulty":"extreme","topic":"Biology","type":"true_false"}]}`

	schema := &Schema{
		Name: "quiz-questions-tiered",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
						},
					},
				},
			},
		},
	}
	_, err := validateResponse(ProviderGemini, schema, json.RawMessage(raw))
	if err == nil {
		t.Fatal("expected error for bad difficulty")
	}
	if !strings.Contains(err.Error(), "/questions/1") {
		t.Errorf("error should point at the second question: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "gemini: invalid quiz-questions-tiered response") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateResponse_StripsFence(t *testing.T) {
	raw := "Here are your questions:\n```json\n" + quizJSON + "\n```"
	got, err := validateResponse(ProviderGroq, quizSchema(), json.RawMessage(raw))
	if err != nil {
		t.Fatalf("expected fenced JSON to validate, got: %v", err)
	}
	if string(got) != quizJSON {
		t.Errorf("content = %s", got)
	}
}

func TestRegisterSchema(t *testing.T) {
	bad := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	if err := RegisterSchema(bad); err == nil {
		t.Fatal("expected compile error for invalid schema")
	}

	s := MustRegisterSchema(&Schema{
		Name:       "key-concepts-test",
		Definition: map[string]any{"type": "object", "required": []any{"concepts"}},
	})
	if _, err := validateResponse(ProviderMock, s, json.RawMessage(`{"concepts":["Photosynthesis"]}`)); err != nil {
		t.Fatalf("registered schema rejected valid content: %v", err)
	}
	if _, err := validateResponse(ProviderMock, s, json.RawMessage(`{}`)); err == nil {
		t.Fatal("registered schema accepted content without concepts")
	}
}
