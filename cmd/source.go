package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/ingest"
	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/questiongen"
	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/store"
)

// addSourceFlags registers the study-material and generation flags shared
// by play and generate.
func addSourceFlags(c *cobra.Command) {
	c.Flags().StringP("file", "f", "", "Study material file (.txt or .pdf)")
	c.Flags().String("url", "", "Web article to quiz on")
	c.Flags().StringP("text", "t", "", "Study material given inline")
	c.Flags().IntP("count", "n", questiongen.DefaultCount, "Number of questions")
	c.Flags().StringSlice("types", []string{"mcq", "true_false"}, "Question types: mcq, true_false, fill_blank, short_answer")
	c.Flags().Bool("no-cache", false, "Always generate fresh questions")
}

// loadContent reads the study material named by exactly one of --file,
// --url or --text and returns it cleaned.
func loadContent(cmd *cobra.Command) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	url, _ := cmd.Flags().GetString("url")
	text, _ := cmd.Flags().GetString("text")

	set := 0
	for _, v := range []string{file, url, text} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", errors.New("give exactly one of --file, --url or --text")
	}

	var raw string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		raw, err = ingest.ExtractFile(filepath.Base(file), data)
		if err != nil {
			return "", err
		}
	case url != "":
		fetched, err := ingest.FetchURL(cmd.Context(), url)
		if err != nil {
			var ferr *ingest.FetchError
			if errors.As(err, &ferr) {
				return "", errors.New(ferr.Message())
			}
			return "", err
		}
		raw = fetched
	default:
		raw = text
	}

	content := ingest.CleanText(raw)
	if content == "" {
		return "", errors.New("the study material is empty")
	}
	return content, nil
}

// generateInput builds the generation request from flags.
func generateInput(cmd *cobra.Command, content string) (questiongen.GenerateInput, error) {
	count, _ := cmd.Flags().GetInt("count")
	labels, _ := cmd.Flags().GetStringSlice("types")

	in := questiongen.GenerateInput{Content: content, Count: count}
	for _, l := range labels {
		t, ok := quiz.ParseType(l)
		if !ok {
			return in, fmt.Errorf("unknown question type %q", l)
		}
		in.Types = append(in.Types, t)
	}
	return in, nil
}

// newGenerator builds the question chain over every configured LLM
// provider. Without providers the chain still produces template questions.
func newGenerator(ctx context.Context, events store.EventRepo) (*questiongen.Chain, []llm.Provider) {
	logger := logging.For("cli")
	providers, err := llm.NewProviders(ctx, cfg.LLM, events)
	if err != nil {
		logger.Warn("LLM provider not configured, using template questions", "error", err)
		providers = nil
	}
	return questiongen.NewLLMChain(providers, questiongen.DefaultConfig(), nil), providers
}

// questionSet returns cached questions for in, or generates and caches them.
func questionSet(ctx context.Context, cmd *cobra.Command, b store.Backend, chain *questiongen.Chain, in questiongen.GenerateInput) (*questiongen.Result, error) {
	logger := logging.For("cli")
	repo := b.QuestionSetRepo()
	key := in.CacheKey()
	noCache, _ := cmd.Flags().GetBool("no-cache")

	if !noCache {
		cached, err := repo.QuestionsByHash(ctx, key)
		if err != nil {
			logger.Warn("question cache lookup failed", "error", err)
		} else if len(cached) > 0 {
			logger.Info("using cached questions", "hash", key[:12], "count", len(cached))
			return &questiongen.Result{Questions: cached, Source: "cache"}, nil
		}
	}

	res, err := chain.RunChunked(ctx, in, ingest.DefaultChunkSize, questiongen.DefaultMaxChunks)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	if err := repo.SaveQuestions(ctx, key, res.Questions); err != nil {
		logger.Warn("question cache save failed", "error", err)
	}
	return res, nil
}

func joinTypes(types []quiz.Type) string {
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = string(t)
	}
	return strings.Join(labels, ", ")
}

// selectTier keeps the questions at the tier named by label. A set with no
// question at that tier is returned whole.
func selectTier(questions []quiz.Question, label string) []quiz.Question {
	return quiz.FilterByTier(questions, quiz.ParseTier(label))
}
