package quiz

import (
	"time"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// timerTickMsg is sent every second to update the question countdown.
type timerTickMsg time.Time

// feedbackDoneMsg is sent when the learner dismisses answer feedback.
type feedbackDoneMsg struct{}

// quizEndMsg is sent to trigger the end-of-quiz flow. Early is set when
// the learner quit before answering every question.
type quizEndMsg struct {
	Early bool
}

// attemptSavedMsg reports the outcome of persisting a completed attempt.
type attemptSavedMsg struct {
	Entry *quiz.HistoryEntry
	Err   error
}
