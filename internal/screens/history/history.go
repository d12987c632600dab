package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/router"
	"github.com/abhisek/smartquiz/internal/screen"
	"github.com/abhisek/smartquiz/internal/store"
	"github.com/abhisek/smartquiz/internal/ui/layout"
	"github.com/abhisek/smartquiz/internal/ui/report"
	"github.com/abhisek/smartquiz/internal/ui/theme"
)

type historyLoadedMsg struct {
	Entries []quiz.HistoryEntry
	Err     error
}

// HistoryScreen displays a user's past attempts and aggregate stats.
type HistoryScreen struct {
	repo      store.HistoryRepo
	userID    string
	entries   []quiz.HistoryEntry
	selected  int
	expanded  map[int]bool
	showStats bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen for userID.
func New(repo store.HistoryRepo, userID string) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, userID := s.repo, s.userID
	return func() tea.Msg {
		entries, err := repo.History(context.Background(), userID, store.DefaultHistoryLimit)
		return historyLoadedMsg{Entries: entries, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Stats"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.entries = msg.Entries
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.showStats = !s.showStats
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			"\n\n  Loading history...")
	}
	if len(s.entries) == 0 {
		return layout.Centered(width, theme.Hint, "\n\n  No quizzes yet. Take one to start tracking progress!")
	}

	if s.showStats {
		return "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(report.Stats(s.entries, width-2))
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %d/%d correct  %d%% accuracy  %.0fs",
			prefix, e.Timestamp.Local().Format("Jan 02, 2006 15:04"),
			e.Results.Correct, e.Results.Total, e.Results.AccuracyPercent, e.TotalTime())

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.NewStyle().PaddingLeft(6).Render(report.Review(e.Answers)))
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
