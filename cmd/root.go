package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/config"
	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/store"
)

// annotationTUI marks commands that take over the terminal. Their console
// logging is discarded so it cannot corrupt the screen.
const annotationTUI = "tui"

var (
	cfg       config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "smartquiz",
	Short: "Adaptive quizzes from your study material",
	Long: "SmartQuiz turns notes, PDFs and web articles into adaptive quizzes. " +
		"Difficulty follows your answers, and every attempt feeds your study history.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		c, err := config.Load(files...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			c.DBPath = p
		}
		if u, _ := cmd.Flags().GetString("user"); u != "" {
			c.User = u
		}
		cfg = c

		verbose, _ := cmd.Flags().GetBool("verbose")
		opts := logging.Options{Verbose: verbose, Dir: cfg.LogDir}
		if cmd.Annotations[annotationTUI] != "" {
			opts.Console = io.Discard
		}
		closer, err := logging.Setup(opts)
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SMARTQUIZ_DB env var)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User whose history is read and written (overrides SMARTQUIZ_USER)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this file instead of .env")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// openBackend opens the configured storage backend: MongoDB when
// configured and reachable, SQLite otherwise, optionally fronted by Redis.
func openBackend(cmd *cobra.Command) (store.Backend, error) {
	logger := logging.For("store")
	opts, err := cfg.StoreOptions(logger)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	b, err := store.OpenBackend(cmd.Context(), opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Debug("storage backend ready", "backend", b.Name())
	return b, nil
}

// ExecuteContext runs the root command with ctx available to every
// subcommand through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
