package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/questiongen"
	"github.com/abhisek/smartquiz/internal/quiz"
)

type generateOutput struct {
	Source    string          `json:"source"`
	Hash      string          `json:"hash"`
	Types     string          `json:"types"`
	Concepts  []string        `json:"concepts,omitempty"`
	Fallbacks []fallbackNote  `json:"fallbacks,omitempty"`
	Questions []quiz.Question `json:"questions"`
}

// fallbackNote is one generator skipped before the set was produced.
type fallbackNote struct {
	Source   string `json:"source"`
	Provider string `json:"provider,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error"`
}

func fallbackNotes(fbs []questiongen.Fallback) []fallbackNote {
	var out []fallbackNote
	for _, fb := range fbs {
		out = append(out, fallbackNote{Source: fb.Source, Provider: fb.Provider, Reason: fb.Reason, Error: fb.Err.Error()})
	}
	return out
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions and print them as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		content, err := loadContent(cmd)
		if err != nil {
			return err
		}
		in, err := generateInput(cmd, content)
		if err != nil {
			return err
		}

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		chain, providers := newGenerator(ctx, b.EventRepo())
		res, err := questionSet(ctx, cmd, b, chain, in)
		if err != nil {
			return err
		}

		out := generateOutput{
			Source:    res.Source,
			Hash:      in.CacheKey(),
			Types:     joinTypes(in.Types),
			Fallbacks: fallbackNotes(res.Fallbacks),
			Questions: res.Questions,
		}
		if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
			out.Questions = selectTier(res.Questions, d)
		}
		if concepts, _ := cmd.Flags().GetBool("concepts"); concepts {
			out.Concepts = questiongen.NewConceptExtractor(providers...).Extract(ctx, content)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode questions: %w", err)
		}
		return nil
	},
}

func init() {
	addSourceFlags(generateCmd)
	generateCmd.Flags().Bool("concepts", false, "Also list the key concepts of the material")
	generateCmd.Flags().String("difficulty", "", "Keep only questions at this difficulty (all when none match)")
}
