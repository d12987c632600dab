// Package results shows the outcome of a finished quiz.
package results

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/router"
	"github.com/abhisek/smartquiz/internal/screen"
	"github.com/abhisek/smartquiz/internal/screens/history"
	"github.com/abhisek/smartquiz/internal/store"
	"github.com/abhisek/smartquiz/internal/ui/layout"
	"github.com/abhisek/smartquiz/internal/ui/report"
	"github.com/abhisek/smartquiz/internal/ui/theme"
)

// Options tweak what the results screen shows and links to.
type Options struct {
	// Early marks a quiz the learner ended before the last question.
	Early bool

	// SaveErr is set when the attempt could not be stored.
	SaveErr error

	// History enables the history shortcut when set.
	History store.HistoryRepo
	UserID  string
}

// ResultsScreen displays results, recommendations and an answer review.
type ResultsScreen struct {
	results         quiz.Results
	recommendations []quiz.Recommendation
	answers         []quiz.AnswerRecord
	opts            Options
	showReview      bool
	offset          int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen.
func New(res quiz.Results, recs []quiz.Recommendation, answers []quiz.AnswerRecord, opts Options) *ResultsScreen {
	return &ResultsScreen{
		results:         res,
		recommendations: recs,
		answers:         answers,
		opts:            opts,
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Review answers"},
	}
	if s.opts.History != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Enter", Description: "Done"})
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "enter", "q":
		return s, tea.Quit
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		s.offset++
	case "r", "R":
		s.showReview = !s.showReview
		s.offset = 0
	case "h", "H":
		if s.opts.History != nil {
			next := history.New(s.opts.History, s.opts.UserID)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	lines := strings.Split(s.content(width), "\n")
	if height <= 0 || len(lines) <= height {
		s.offset = 0
		return strings.Join(lines, "\n")
	}
	s.offset = min(s.offset, len(lines)-height)
	return strings.Join(lines[s.offset:s.offset+height], "\n")
}

func (s *ResultsScreen) content(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	title := "Quiz complete!"
	if s.opts.Early {
		title = "Quiz ended early"
	}
	b.WriteString(layout.Centered(width, theme.Title, title))
	b.WriteString("\n")

	switch {
	case s.opts.SaveErr != nil:
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			"Could not save this attempt: "+s.opts.SaveErr.Error()))
	case s.opts.Early:
		b.WriteString(layout.Centered(width, theme.Subtitle, "Partial attempts are not saved to history."))
	case s.opts.History != nil:
		b.WriteString(layout.Centered(width, theme.Subtitle, "Saved to your history."))
	}
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	if s.results.Total == 0 {
		b.WriteString(layout.Centered(width, theme.Hint, "No answers recorded."))
		return b.String()
	}

	body := lipgloss.NewStyle().PaddingLeft(2)
	if s.showReview {
		b.WriteString(body.Render(report.Review(s.answers)))
		return b.String()
	}
	b.WriteString(body.Render(report.Results(s.results, width-2)))
	b.WriteString("\n")
	b.WriteString(body.Render(report.Recommendations(s.recommendations)))
	return b.String()
}
