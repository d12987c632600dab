package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/quiz"
)

// ErrNoValidQuestions is returned when a response parses but every
// question in it fails validation.
var ErrNoValidQuestions = errors.New("no valid questions generated")

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, logger: logging.For("questiongen")}
}

// Name identifies the generator by its provider.
func (g *LLMGenerator) Name() string {
	return g.provider.Name()
}

// questionOutput is one raw LLM question before validation.
type questionOutput struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Distractors []string `json:"distractors"`
	Difficulty  string   `json:"difficulty"`
	Topic       string   `json:"topic"`
	Type        string   `json:"type"`
}

type questionsOutput struct {
	Questions []questionOutput `json:"questions"`
}

// Generate produces questions for the given input. Questions failing a
// validator are dropped; an error is returned only when none survive.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	out := make([]quiz.Question, 0, len(raw.Questions))
	var lastErr *ValidationError
	for _, r := range raw.Questions {
		q := quiz.NormalizeQuestion(quiz.Question{
			Text:           r.Question,
			ExpectedAnswer: r.Answer,
			Distractors:    r.Distractors,
			Difficulty:     quiz.ParseTier(r.Difficulty),
			Topic:          r.Topic,
		}, r.Type)

		if verr := g.validate(&q); verr != nil {
			g.logger.Debug("dropping generated question", "question", q.Text, "error", verr)
			lastErr = verr
			continue
		}
		out = append(out, q)
		if len(out) == input.count() {
			break
		}
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoValidQuestions, lastErr)
		}
		return nil, ErrNoValidQuestions
	}
	return out, nil
}

func (g *LLMGenerator) validate(q *quiz.Question) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}
