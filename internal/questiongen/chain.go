package questiongen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/quiz"
)

// Result is a generated question set together with the name of the
// generator that produced it and the links that failed before it.
type Result struct {
	Questions []quiz.Question
	Source    string
	Fallbacks []Fallback
}

// Fallback records one generator the chain moved past. Provider and
// Reason are empty when the failure did not come from an LLM call.
type Fallback struct {
	Source   string
	Provider string
	Reason   string
	Err      error
}

type namedGenerator struct {
	name string
	gen  Generator
}

// Chain tries each Generator in rank order and returns the first
// non-empty result. The final link is always a TemplateGenerator, so a
// Chain only fails when the context is done.
type Chain struct {
	links  []namedGenerator
	logger *slog.Logger
}

// NewChain builds a Chain over gens with fallback appended as the last
// link. A nil fallback uses a time-seeded TemplateGenerator.
func NewChain(fallback *TemplateGenerator, gens ...Generator) *Chain {
	if fallback == nil {
		fallback = NewTemplateGenerator(uint64(time.Now().UnixNano()))
	}
	c := &Chain{logger: logging.For("questiongen")}
	for i, g := range gens {
		c.links = append(c.links, namedGenerator{name: generatorName(g, i), gen: g})
	}
	c.links = append(c.links, namedGenerator{name: fallback.Name(), gen: fallback})
	return c
}

// NewLLMChain builds a Chain with one LLMGenerator per provider, in the
// order given.
func NewLLMChain(providers []llm.Provider, cfg Config, fallback *TemplateGenerator) *Chain {
	gens := make([]Generator, 0, len(providers))
	for _, p := range providers {
		gens = append(gens, New(p, cfg))
	}
	return NewChain(fallback, gens...)
}

func generatorName(g Generator, i int) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("generator-%d", i)
}

// Sources lists the generator names in the order they are tried.
func (c *Chain) Sources() []string {
	out := make([]string, len(c.links))
	for i, l := range c.links {
		out[i] = l.name
	}
	return out
}

// Run generates questions and reports which generator produced them.
func (c *Chain) Run(ctx context.Context, input GenerateInput) (*Result, error) {
	var skipped []Fallback
	for _, l := range c.links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		qs, err := l.gen.Generate(ctx, input)
		if err == nil && len(qs) == 0 {
			err = ErrNoValidQuestions
		}
		if err != nil {
			fb := Fallback{Source: l.name, Provider: llm.ProviderOf(err), Reason: llm.FailureKind(err), Err: err}
			c.logger.Warn("question generator failed, trying next",
				"source", fb.Source, "provider", fb.Provider, "reason", fb.Reason, "error", err)
			skipped = append(skipped, fb)
			continue
		}
		c.logger.Info("generated questions", "source", l.name, "count", len(qs), "fallbacks", len(skipped))
		return &Result{Questions: qs, Source: l.name, Fallbacks: skipped}, nil
	}
	return nil, ErrNoValidQuestions
}

// Generate implements Generator.
func (c *Chain) Generate(ctx context.Context, input GenerateInput) ([]quiz.Question, error) {
	res, err := c.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	return res.Questions, nil
}
