package questiongen

import "github.com/abhisek/smartquiz/internal/llm"

// QuestionsSchema is the reply shape for question generation. Every
// property is required so strict structured-output modes accept it. It is
// compiled at init, so a malformed definition fails every test in the
// package instead of the first live request.
var QuestionsSchema = llm.MustRegisterSchema(&llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of quiz questions drawn from study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text. Fill in the blank questions mark the blank with ___",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer. True or False for true_false questions.",
						},
						"distractors": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Three wrong but plausible options for mcq. Empty array for other types.",
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"easy", "medium", "hard"},
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "The main topic or concept being tested",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"mcq", "true_false", "fill_blank", "short_answer"},
						},
					},
					"required":             []any{"question", "answer", "distractors", "difficulty", "topic", "type"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
})

// ConceptsSchema is the reply shape for key concept extraction.
var ConceptsSchema = llm.MustRegisterSchema(&llm.Schema{
	Name:        "key-concepts",
	Description: "The most important concepts in a piece of study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"concepts"},
		"additionalProperties": false,
	},
})
