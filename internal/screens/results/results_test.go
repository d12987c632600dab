package results

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/router"
)

func testAnswers() []quiz.AnswerRecord {
	return []quiz.AnswerRecord{
		{Question: "Capital of France?", ExpectedAnswer: "Paris", UserAnswer: "Paris", IsCorrect: true, Topic: "Geography", Difficulty: quiz.TierMedium, ResponseTimeSeconds: 3},
		{Question: "Largest planet?", ExpectedAnswer: "Jupiter", UserAnswer: "Saturn", IsCorrect: false, Topic: "Astronomy", Difficulty: quiz.TierHard, ResponseTimeSeconds: 5},
	}
}

func newTestScreen(opts Options) *ResultsScreen {
	answers := testAnswers()
	return New(quiz.ComputeResults(answers), quiz.GenerateRecommendations(answers), answers, opts)
}

type nopHistory struct{}

func (nopHistory) SaveAttempt(context.Context, string, quiz.Results, []quiz.AnswerRecord) (*quiz.HistoryEntry, error) {
	return nil, nil
}
func (nopHistory) History(context.Context, string, int) ([]quiz.HistoryEntry, error) {
	return nil, nil
}
func (nopHistory) ClearHistory(context.Context, string) (int64, error) { return 0, nil }

func TestResultsScreen_Title(t *testing.T) {
	if got := newTestScreen(Options{}).Title(); got != "Results" {
		t.Errorf("Title = %q, want %q", got, "Results")
	}
}

func TestResultsScreen_Display(t *testing.T) {
	view := newTestScreen(Options{}).View(100, 60)
	for _, want := range []string{"Quiz complete!", "1/2 correct", "Geography", "Astronomy", "Consider reviewing Astronomy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultsScreen_EarlyAndSaveError(t *testing.T) {
	view := newTestScreen(Options{Early: true}).View(100, 60)
	if !strings.Contains(view, "Quiz ended early") || !strings.Contains(view, "not saved") {
		t.Error("early quiz notice missing")
	}

	view = newTestScreen(Options{SaveErr: errors.New("disk full")}).View(100, 60)
	if !strings.Contains(view, "disk full") {
		t.Error("save error not shown")
	}
}

func TestResultsScreen_ReviewToggle(t *testing.T) {
	s := newTestScreen(Options{})
	s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	view := s.View(100, 60)
	if !strings.Contains(view, "your answer: Saturn") {
		t.Errorf("review not shown:\n%s", view)
	}
}

func TestResultsScreen_ScrollClampsToContent(t *testing.T) {
	s := newTestScreen(Options{})
	for range 200 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	view := s.View(100, 10)
	if got := strings.Count(view, "\n") + 1; got != 10 {
		t.Errorf("visible lines = %d, want 10", got)
	}
}

func TestResultsScreen_EnterQuits(t *testing.T) {
	_, cmd := newTestScreen(Options{}).Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command on Enter")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", cmd())
	}
}

func TestResultsScreen_HistoryShortcut(t *testing.T) {
	_, cmd := newTestScreen(Options{}).Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	if cmd != nil {
		t.Error("history shortcut should be disabled without a repository")
	}

	_, cmd = newTestScreen(Options{History: nopHistory{}, UserID: "u1"}).Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "History" {
		t.Errorf("pushed %q, want History", push.Screen.Title())
	}
}
