package quiz

import (
	"encoding/json"
	"strings"
)

// Tier is the difficulty level governing question selection.
// Tiers are totally ordered: TierEasy < TierMedium < TierHard. The zero
// value is unset and reads as TierMedium everywhere a tier is used.
type Tier int

const (
	tierUnset Tier = iota
	TierEasy
	TierMedium
	TierHard
)

// AllTiers lists the tiers in ascending order.
var AllTiers = []Tier{TierEasy, TierMedium, TierHard}

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierHard:
		return "hard"
	default:
		return "medium"
	}
}

// ParseTier maps a difficulty label to a Tier. Unknown or empty labels
// default to TierMedium.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return TierEasy
	case "hard":
		return TierHard
	default:
		return TierMedium
	}
}

// MarshalText encodes the tier as its label.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier label, defaulting to medium.
func (t *Tier) UnmarshalText(b []byte) error {
	*t = ParseTier(string(b))
	return nil
}

// OrDefault returns t, or TierMedium when t is unset or out of range.
func (t Tier) OrDefault() Tier {
	if t < TierEasy || t > TierHard {
		return TierMedium
	}
	return t
}

func (t Tier) up() Tier {
	t = t.OrDefault()
	if t >= TierHard {
		return TierHard
	}
	return t + 1
}

func (t Tier) down() Tier {
	t = t.OrDefault()
	if t <= TierEasy {
		return TierEasy
	}
	return t - 1
}

// Type is the question format.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
	TypeFillBlank      Type = "fill_blank"
	TypeShortAnswer    Type = "short_answer"
)

// AllTypes lists every supported question type.
var AllTypes = []Type{TypeMultipleChoice, TypeTrueFalse, TypeFillBlank, TypeShortAnswer}

// typeAliases maps the labels seen from generators and user input to types.
var typeAliases = map[string]Type{
	"multiple_choice":   TypeMultipleChoice,
	"multiple-choice":   TypeMultipleChoice,
	"mcq":               TypeMultipleChoice,
	"mc":                TypeMultipleChoice,
	"true_false":        TypeTrueFalse,
	"true-false":        TypeTrueFalse,
	"true/false":        TypeTrueFalse,
	"tf":                TypeTrueFalse,
	"fill_blank":        TypeFillBlank,
	"fill-blank":        TypeFillBlank,
	"fill_in_the_blank": TypeFillBlank,
	"fill in the blank": TypeFillBlank,
	"blank":             TypeFillBlank,
	"short_answer":      TypeShortAnswer,
	"short-answer":      TypeShortAnswer,
	"short answer":      TypeShortAnswer,
	"short":             TypeShortAnswer,
}

// ParseType maps a type label (or one of its aliases) to a Type.
// The second return value is false when the label is not recognized.
func ParseType(s string) (Type, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// IsFreeText reports whether answers to this type are typed rather than chosen.
func (t Type) IsFreeText() bool {
	return t == TypeFillBlank || t == TypeShortAnswer
}

// DefaultTopic is used when a question arrives without a topic.
const DefaultTopic = "General"

// Question is a single quiz question. Questions are immutable once generated.
type Question struct {
	Text           string   `json:"question"`
	ExpectedAnswer string   `json:"answer"`
	Distractors    []string `json:"distractors"`
	Difficulty     Tier     `json:"difficulty"`
	Topic          string   `json:"topic"`
	Type           Type     `json:"type"`
}

// UnmarshalJSON decodes a question, reading a missing or null difficulty
// as medium.
func (q *Question) UnmarshalJSON(b []byte) error {
	type plain Question
	p := plain{Difficulty: TierMedium}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// Options returns the answer choices for choice-based questions: the
// expected answer followed by the distractors for multiple choice, and
// True/False for true/false questions. Free-text types return nil.
func (q Question) Options() []string {
	switch q.Type {
	case TypeTrueFalse:
		return []string{"True", "False"}
	case TypeMultipleChoice:
		opts := make([]string, 0, len(q.Distractors)+1)
		opts = append(opts, q.ExpectedAnswer)
		opts = append(opts, q.Distractors...)
		return opts
	}
	return nil
}

// AnswerRecord captures one submitted answer. Records are append-only and
// IsCorrect is computed exactly once at submission.
type AnswerRecord struct {
	Question            string  `json:"question"`
	ExpectedAnswer      string  `json:"correct_answer"`
	Type                Type    `json:"type"`
	Difficulty          Tier    `json:"difficulty"`
	Topic               string  `json:"topic"`
	UserAnswer          string  `json:"user_answer"`
	IsCorrect           bool    `json:"is_correct"`
	ResponseTimeSeconds float64 `json:"response_time"`
}

// UnmarshalJSON decodes a stored record, reading a missing or null
// difficulty as medium.
func (r *AnswerRecord) UnmarshalJSON(b []byte) error {
	type plain AnswerRecord
	p := plain{Difficulty: TierMedium}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = AnswerRecord(p)
	return nil
}

// NormalizeQuestion fills defaults on a question arriving from an external
// source so that the rest of the package never sees missing fields.
func NormalizeQuestion(q Question, rawType string) Question {
	q.Text = strings.TrimSpace(q.Text)
	q.ExpectedAnswer = strings.TrimSpace(q.ExpectedAnswer)
	q.Topic = strings.TrimSpace(q.Topic)
	if q.Topic == "" {
		q.Topic = DefaultTopic
	}
	q.Difficulty = q.Difficulty.OrDefault()

	if rawType != "" {
		if t, ok := ParseType(rawType); ok {
			q.Type = t
		}
	}
	if t, ok := ParseType(string(q.Type)); ok {
		q.Type = t
	} else {
		q.Type = TypeMultipleChoice
	}

	if q.Type != TypeMultipleChoice {
		q.Distractors = nil
		return q
	}

	distractors := make([]string, 0, len(q.Distractors))
	for _, d := range q.Distractors {
		if d = strings.TrimSpace(d); d != "" {
			distractors = append(distractors, d)
		}
	}
	q.Distractors = distractors
	return q
}
