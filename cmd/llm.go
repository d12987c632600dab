package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made while generating quizzes",
	Long: `Every question-generation and concept-extraction call is recorded
with its prompt, reply, token counts and outcome. These commands read that
log back.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent question-generation and concept calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")
		purpose, err := purposeFlag(cmd)
		if err != nil {
			return err
		}

		s, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: string(purpose)})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failedOnly {
			events = failedEvents(events)
		}
		writeEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"view"},
	Short:   "Show the prompt and reply of one call",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage, failures and estimated cost per purpose",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		usage, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(w, "No quizzes have been generated yet.")
			return nil
		}
		writeUsage(w, usage)
		writeCost(w, models)
		return nil
	},
}

func purposeFlag(cmd *cobra.Command) (llm.Purpose, error) {
	raw, _ := cmd.Flags().GetString("purpose")
	if raw == "" {
		return "", nil
	}
	p, ok := llm.ParsePurpose(raw)
	if !ok {
		return "", fmt.Errorf("unknown purpose %q (want question-gen or concepts)", raw)
	}
	return p, nil
}

func failedEvents(events []store.LLMEvent) []store.LLMEvent {
	var out []store.LLMEvent
	for _, e := range events {
		if !e.Success {
			out = append(out, e)
		}
	}
	return out
}

func rule(w io.Writer, n int) { fmt.Fprintln(w, strings.Repeat("─", n)) }

func writeEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM calls found.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-20s  %-11s  %-24s  %6s  %6s  %6s  %s\n",
		"ID", "Time", "Purpose", "Provider", "Model", "In", "Out", "Ms", "Result")
	rule(w, 112)
	for _, e := range events {
		result := "ok"
		if !e.Success {
			result = "failed"
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-20s  %-11s  %-24s  %6d  %6d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(llm.Purpose(e.Purpose).Label(), 20),
			truncate(e.Provider, 11),
			truncate(e.Model, 24),
			e.InputTokens, e.OutputTokens, e.LatencyMs, result)
	}
}

func writeEvent(w io.Writer, e *store.LLMEvent) {
	fmt.Fprintf(w, "Call %d  %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Purpose:  %s\n", llm.Purpose(e.Purpose).Label())
	fmt.Fprintf(w, "Provider: %s (%s)\n", e.Provider, e.Model)
	fmt.Fprintf(w, "Tokens:   %d in, %d out in %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if e.Success {
		fmt.Fprintln(w, "Result:   ok")
	} else {
		fmt.Fprintf(w, "Result:   failed: %s\n", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"PROMPT", e.RequestBody},
		{"REPLY", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, part.title)
		rule(w, 60)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func writeUsage(w io.Writer, usage []store.PurposeUsage) {
	fmt.Fprintf(w, "%-20s  %6s  %6s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Failed", "Input", "Output", "Avg ms")
	rule(w, 70)

	var calls, failed, in, out int
	for _, u := range usage {
		fmt.Fprintf(w, "%-20s  %6d  %6d  %10d  %10d  %8d\n",
			truncate(llm.Purpose(u.Purpose).Label(), 20), u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		failed += u.Failures
		in += u.InputTokens
		out += u.OutputTokens
	}
	rule(w, 70)
	fmt.Fprintf(w, "%-20s  %6d  %6d  %10d  %10d\n", "Total", calls, failed, in, out)
}

func writeCost(w io.Writer, models []store.ModelUsage) {
	if len(models) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-32s  %6s  %10s\n", "Model", "Calls", "Cost (USD)")
	rule(w, 52)

	var total float64
	var unpriced []string
	for _, m := range models {
		cost := llm.LookupCost(m.Model)
		if cost == nil {
			unpriced = append(unpriced, m.Model)
			fmt.Fprintf(w, "%-32s  %6d  %10s\n", truncate(m.Model, 32), m.Calls, "?")
			continue
		}
		c := cost.Cost(m.InputTokens, m.OutputTokens)
		total += c
		fmt.Fprintf(w, "%-32s  %6d  %10s\n", truncate(m.Model, 32), m.Calls, formatCost(c))
	}
	rule(w, 52)
	fmt.Fprintf(w, "%-32s  %6s  %10s\n", "Total", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for %s; total excludes them.\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (question-gen, concepts)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd, llmShowCmd, llmStatsCmd)
}
