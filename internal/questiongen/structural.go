package questiongen

import (
	"strings"

	"github.com/abhisek/smartquiz/internal/quiz"
)

const (
	maxQuestionLen = 500
	maxAnswerLen   = 300
)

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *quiz.Question) *ValidationError {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if len(q.Text) > maxQuestionLen {
		return &ValidationError{Validator: v.Name(), Message: "question exceeds 500 characters"}
	}
	if strings.TrimSpace(q.ExpectedAnswer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "answer is empty"}
	}
	if len(q.ExpectedAnswer) > maxAnswerLen {
		return &ValidationError{Validator: v.Name(), Message: "answer exceeds 300 characters"}
	}
	return nil
}

// ChoiceValidator checks type-specific answer shapes: true/false answers
// must be True or False, and multiple choice distractors must not repeat
// the answer.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(q *quiz.Question) *ValidationError {
	switch q.Type {
	case quiz.TypeTrueFalse:
		a := strings.ToLower(strings.TrimSpace(q.ExpectedAnswer))
		if a != "true" && a != "false" {
			return &ValidationError{Validator: v.Name(), Message: "true/false answer must be True or False"}
		}
	case quiz.TypeMultipleChoice:
		want := strings.ToLower(strings.TrimSpace(q.ExpectedAnswer))
		for _, d := range q.Distractors {
			if strings.ToLower(strings.TrimSpace(d)) == want {
				return &ValidationError{Validator: v.Name(), Message: "distractor repeats the answer"}
			}
		}
	}
	return nil
}
