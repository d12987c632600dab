package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/app"
	historyscreen "github.com/abhisek/smartquiz/internal/screens/history"
	"github.com/abhisek/smartquiz/internal/ui/report"
)

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Show past quiz attempts",
	Annotations: map[string]string{annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		if browse, _ := cmd.Flags().GetBool("browse"); browse {
			return app.Run(historyscreen.New(b.HistoryRepo(), cfg.User))
		}

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := b.HistoryRepo().History(cmd.Context(), cfg.User, limit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.History(entries))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	historyCmd.Flags().Bool("browse", false, "Open the interactive history browser")
}
