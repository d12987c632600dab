package questiongen

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/abhisek/smartquiz/internal/quiz"
)

const (
	defaultTemplateTopic = "General Knowledge"
	maxTemplateTopicLen  = 30
)

type template struct {
	text        string
	answer      string
	distractors []string
}

var templates = map[quiz.Type][]template{
	quiz.TypeMultipleChoice: {
		{
			text:        "Which of the following best describes the main concept discussed in the material?",
			answer:      "A comprehensive understanding of the topic",
			distractors: []string{"A basic overview", "An unrelated concept", "A contradictory idea"},
		},
		{
			text:        "What is the primary purpose of studying this material?",
			answer:      "To gain knowledge and understanding",
			distractors: []string{"Entertainment only", "Memorization without understanding", "To pass time"},
		},
		{
			text:        "According to the content, what approach is most effective?",
			answer:      "A systematic and thorough approach",
			distractors: []string{"A random approach", "Ignoring key details", "Surface-level reading"},
		},
	},
	quiz.TypeTrueFalse: {
		{text: "The material provides comprehensive coverage of the topic.", answer: "True"},
		{text: "Understanding the basics is essential before moving to advanced concepts.", answer: "True"},
		{text: "The concepts discussed are only applicable in theoretical scenarios.", answer: "False"},
	},
	quiz.TypeShortAnswer: {
		{text: "What is the key takeaway from this material?", answer: "Understanding and applying the concepts"},
		{text: "Briefly describe the main topic covered.", answer: "The fundamental concepts and their applications"},
	},
	quiz.TypeFillBlank: {
		{text: "The main purpose of studying this material is to gain ___ of the subject.", answer: "understanding"},
		{text: "A ___ approach is recommended when learning new concepts.", answer: "systematic"},
		{text: "Effective learning requires both ___ and practice.", answer: "theory"},
	},
}

type typedTemplate struct {
	typ quiz.Type
	template
}

// TemplateGenerator produces generic questions from a fixed template set.
// It needs no network access and never fails, which makes it the last
// link of every Chain.
type TemplateGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplateGenerator returns a TemplateGenerator whose choices are
// reproducible for a given seed.
func NewTemplateGenerator(seed uint64) *TemplateGenerator {
	return &TemplateGenerator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Name returns "template".
func (g *TemplateGenerator) Name() string { return "template" }

// Generate returns exactly input.Count questions drawn at random from the
// templates of the requested types, each with a random difficulty. Unknown
// types fall back to the multiple choice templates.
func (g *TemplateGenerator) Generate(_ context.Context, input GenerateInput) ([]quiz.Question, error) {
	var pool []typedTemplate
	for _, t := range input.types() {
		for _, tpl := range templates[t] {
			pool = append(pool, typedTemplate{typ: t, template: tpl})
		}
	}
	if len(pool) == 0 {
		for _, tpl := range templates[quiz.TypeMultipleChoice] {
			pool = append(pool, typedTemplate{typ: quiz.TypeMultipleChoice, template: tpl})
		}
	}

	topic := templateTopic(input.Content)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]quiz.Question, 0, input.count())
	for range input.count() {
		tpl := pool[g.rng.IntN(len(pool))]
		out = append(out, quiz.NormalizeQuestion(quiz.Question{
			Text:           tpl.text,
			ExpectedAnswer: tpl.answer,
			Distractors:    append([]string(nil), tpl.distractors...),
			Difficulty:     quiz.AllTiers[g.rng.IntN(len(quiz.AllTiers))],
			Topic:          topic,
			Type:           tpl.typ,
		}, ""))
	}
	return out, nil
}

// templateTopic labels template questions with the first five words of the
// material, cut to 30 characters.
func templateTopic(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return defaultTemplateTopic
	}
	if len(words) > 5 {
		words = words[:5]
	}
	return truncate(strings.Join(words, " "), maxTemplateTopicLen)
}
