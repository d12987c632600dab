package questiongen

import (
	"context"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// DefaultCount is the number of questions requested when the caller does
// not say.
const DefaultCount = 10

// DefaultTypes is the question mix used when the caller does not say.
var DefaultTypes = []quiz.Type{quiz.TypeMultipleChoice, quiz.TypeTrueFalse}

// GenerateInput holds everything needed to generate a question set.
type GenerateInput struct {
	// Content is the study material the questions are drawn from.
	Content string

	// Count is the number of questions wanted. Zero means DefaultCount.
	Count int

	// Types restricts the question formats. Empty means DefaultTypes.
	Types []quiz.Type
}

func (in GenerateInput) count() int {
	if in.Count <= 0 {
		return DefaultCount
	}
	return in.Count
}

func (in GenerateInput) types() []quiz.Type {
	if len(in.Types) == 0 {
		return DefaultTypes
	}
	return in.Types
}

// Generator produces quiz questions from study material.
type Generator interface {
	// Generate returns normalized questions for the input. Implementations
	// may return fewer questions than requested but never zero without an
	// error.
	Generate(ctx context.Context, input GenerateInput) ([]quiz.Question, error)
}
