package llm

import "context"

// Purpose labels why an LLM call was made. It is stored with every request
// event so usage can be broken down per quiz-generation step.
type Purpose string

const (
	PurposeQuestionGen Purpose = "question-gen"
	PurposeConcepts    Purpose = "concepts"
	PurposeUnknown     Purpose = "unknown"
)

// Purposes lists the known purposes in the order a quiz is built.
var Purposes = []Purpose{PurposeQuestionGen, PurposeConcepts}

// Label returns a short human description.
func (p Purpose) Label() string {
	switch p {
	case PurposeQuestionGen:
		return "Question generation"
	case PurposeConcepts:
		return "Concept extraction"
	}
	return string(p)
}

// ParsePurpose accepts a purpose or one of its short aliases.
func ParsePurpose(s string) (Purpose, bool) {
	switch s {
	case "question-gen", "questions", "qgen":
		return PurposeQuestionGen, true
	case "concepts", "concept":
		return PurposeConcepts, true
	}
	return "", false
}

type purposeKey struct{}

// WithPurpose tags ctx so the logging decorator records purpose.
func WithPurpose(ctx context.Context, purpose Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return v
	}
	return PurposeUnknown
}
