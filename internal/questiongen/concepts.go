package questiongen

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/logging"
)

const (
	maxConceptContent = 3000
	maxConcepts       = 10
	maxKeywords       = 8
	keywordScanWords  = 500
	conceptsPrompt    = "You extract key concepts. Return only valid JSON."
)

// ConceptExtractor lists the key concepts of study material. It asks each
// provider in turn and falls back to a keyword scan.
type ConceptExtractor struct {
	providers []llm.Provider
	logger    *slog.Logger
}

// NewConceptExtractor creates a ConceptExtractor over providers in rank
// order. With no providers it always uses the keyword scan.
func NewConceptExtractor(providers ...llm.Provider) *ConceptExtractor {
	return &ConceptExtractor{providers: providers, logger: logging.For("questiongen")}
}

// Extract returns up to 10 concepts. It never fails; provider errors are
// logged and the keyword scan is used instead.
func (e *ConceptExtractor) Extract(ctx context.Context, content string) []string {
	ctx = llm.WithPurpose(ctx, llm.PurposeConcepts)

	for _, p := range e.providers {
		concepts, err := e.ask(ctx, p, content)
		if err != nil {
			e.logger.Warn("concept extraction failed, trying next",
				"provider", llm.ProviderOf(err), "reason", llm.FailureKind(err), "error", err)
			continue
		}
		if len(concepts) > 0 {
			return concepts
		}
	}
	return ExtractKeywords(content)
}

func (e *ConceptExtractor) ask(ctx context.Context, p llm.Provider, content string) ([]string, error) {
	user := "Analyze the following content and extract the 5-10 most important key concepts, topics, or terms.\n\n" +
		"Content:\n" + truncate(content, maxConceptContent)

	resp, err := p.Generate(ctx, llm.Request{
		System:      conceptsPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      ConceptsSchema,
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Concepts []string `json:"concepts"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, err
	}

	concepts := make([]string, 0, len(out.Concepts))
	for _, c := range out.Concepts {
		if c = strings.TrimSpace(c); c != "" {
			concepts = append(concepts, c)
		}
		if len(concepts) == maxConcepts {
			break
		}
	}
	return concepts, nil
}

// ExtractKeywords is the offline concept scan: capitalized words longer
// than four letters among the first 500 words, letters only, first
// occurrence order, at most eight.
func ExtractKeywords(content string) []string {
	words := strings.Fields(content)
	if len(words) > keywordScanWords {
		words = words[:keywordScanWords]
	}

	seen := make(map[string]struct{})
	var out []string
	for _, w := range words {
		clean := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && unicode.IsLetter(r) {
				return r
			}
			return -1
		}, w)
		if len(clean) <= 4 || !unicode.IsUpper(rune(clean[0])) {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
