package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/store"
	"github.com/abhisek/smartquiz/internal/ui/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics across past quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		entries, err := b.HistoryRepo().History(cmd.Context(), cfg.User, store.DefaultHistoryLimit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprintln(cmd.OutOrStdout(), report.Stats(entries, width))
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("width", 80, "Output width")
}
