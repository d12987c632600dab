package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/ui/layout"
	"github.com/abhisek/smartquiz/internal/ui/theme"
)

// statusLine is the header summary, e.g. "Q 3/10  ✓ 2  medium".
func statusLine(number, total, correct int, tier quiz.Tier) string {
	return fmt.Sprintf("Q %d/%d  ✓ %d  %s", number, total, correct, tier)
}

// timerStyle picks the countdown style for the remaining time.
func (s *QuizScreen) timerStyle() lipgloss.Style {
	switch {
	case s.remaining <= DangerThreshold:
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	case s.remaining <= WarningThreshold:
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim)
	}
}

func (s *QuizScreen) renderTimer() string {
	if !s.timerEnabled() {
		return ""
	}
	secs := int(s.remaining.Seconds())
	label := fmt.Sprintf("%d:%02d", secs/60, secs%60)
	if s.remaining <= 0 {
		label = "time's up"
	}
	return s.timerStyle().Render("⏱ " + label)
}

// renderQuestionView renders the active question.
func (s *QuizScreen) renderQuestionView(width int) string {
	q := s.current
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  Topic: "+q.Topic) + "  " + theme.Badge(q.Difficulty.String())
	infoRight := s.renderTimer()

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	questionStyle := lipgloss.NewStyle().
		Width(min(width-8, 72)).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionStyle.Render(q.Text)))
	b.WriteString("\n\n")

	if s.choiceActive {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
		b.WriteString(layout.Centered(width, theme.Hint, "Pick a letter or number, or use arrows + Enter"))
	} else {
		b.WriteString(layout.Centered(width, lipgloss.NewStyle(), "Answer: "+s.input.View()))
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(width, theme.Hint, typeHint(q.Type)))
	}

	return b.String()
}

func typeHint(t quiz.Type) string {
	if t == quiz.TypeFillBlank {
		return "Fill in the missing word and press Enter"
	}
	return "Type a short answer and press Enter"
}

// renderFeedback shows the verdict for the last answer.
func (s *QuizScreen) renderFeedback(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	rec := s.last
	if rec == nil {
		return b.String()
	}

	if rec.IsCorrect {
		b.WriteString(layout.Centered(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(layout.Centered(width, theme.Incorrect, "Not quite"))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("Correct answer: %s", rec.ExpectedAnswer)))
	}
	b.WriteString("\n\n")

	if s.choiceActive {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
		b.WriteString("\n")
	}

	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("Answered in %.1fs", rec.ResponseTimeSeconds)))
	b.WriteString("\n\n")

	next := "Press any key for the next question..."
	if s.session.State() == quiz.StateCompleted {
		next = "Press any key to see your results..."
	}
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), next))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, answered int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "End quiz early?"))
	b.WriteString("\n")
	note := "You have not answered any questions yet."
	if answered > 0 {
		note = fmt.Sprintf("Results for your %d answered question(s) will be shown but not saved.", answered)
	}
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), note))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, end quiz"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

func renderSaving(width int) string {
	return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\n  Saving your results...")
}

func renderError(width int, errMsg string) string {
	return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
		fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
