package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/app"
	"github.com/abhisek/smartquiz/internal/quiz"
	quizscreen "github.com/abhisek/smartquiz/internal/screens/quiz"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take an adaptive quiz on your study material",
	Example: "  smartquiz play --file notes.pdf -n 8\n" +
		"  smartquiz play --url https://en.wikipedia.org/wiki/Photosynthesis --types mcq,fill_blank",
	Annotations: map[string]string{annotationTUI: "true"},
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

		chain, _ := newGenerator(ctx, b.EventRepo())
		fmt.Fprintln(cmd.ErrOrStderr(), "Generating questions...")
		res, err := questionSet(ctx, cmd, b, chain, in)
		if err != nil {
			return err
		}

		timer, _ := cmd.Flags().GetDuration("timer")
		if noTimer, _ := cmd.Flags().GetBool("no-timer"); noTimer {
			timer = -1
		}
		difficulty, _ := cmd.Flags().GetString("difficulty")

		screen := quizscreen.New(res.Questions, quizscreen.Config{
			UserID:    cfg.User,
			History:   b.HistoryRepo(),
			TimeLimit: timer,
			Session:   quiz.NewSession(quiz.WithInitialTier(quiz.ParseTier(difficulty))),
		})
		return app.Run(screen)
	},
}

func init() {
	addSourceFlags(playCmd)
	playCmd.Flags().Duration("timer", 30*time.Second, "Per-question countdown shown while answering")
	playCmd.Flags().Bool("no-timer", false, "Hide the countdown")
	playCmd.Flags().String("difficulty", "medium", "Starting difficulty: easy, medium or hard")
}
