package quiz

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/smartquiz/internal/logging"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateCreated    State = iota // Built, no questions yet
	StateInProgress              // Serving questions
	StateCompleted               // Every question answered; read-only
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidState is matched by every InvalidStateError via errors.Is.
var ErrInvalidState = errors.New("invalid session state")

// InvalidStateError reports an operation attempted in the wrong state.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: session is %s", e.Op, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// Session administers one quiz to one user. A Session is not safe for
// concurrent use; callers own one instance per active quiz.
type Session struct {
	id        string
	questions []Question
	cursor    int
	answers   []AnswerRecord
	tier      Tier
	state     State

	startedAt         time.Time
	questionStartedAt time.Time

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithInitialTier sets the starting tier. The default is medium.
func WithInitialTier(t Tier) Option {
	return func(s *Session) { s.tier = t.OrDefault() }
}

// WithID sets the session ID. The default is a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session in StateCreated.
func NewSession(opts ...Option) *Session {
	s := &Session{
		tier:  TierMedium,
		state: StateCreated,
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = logging.For("engine")
	}
	return s
}

// Start loads the question sequence and presents the first question.
// The sequence is copied and never mutated afterwards. An empty sequence
// completes the session immediately.
func (s *Session) Start(questions []Question) error {
	if s.state != StateCreated {
		return &InvalidStateError{Op: "start", State: s.state}
	}

	s.questions = make([]Question, len(questions))
	for i, q := range questions {
		s.questions[i] = NormalizeQuestion(q, "")
	}

	now := s.now()
	s.startedAt = now
	s.questionStartedAt = now
	s.state = StateInProgress
	if len(s.questions) == 0 {
		s.state = StateCompleted
	}

	s.logger.Info("session started", "session_id", s.id, "questions", len(s.questions), "tier", s.tier)
	return nil
}

// SubmitAnswer evaluates the answer to the current question, records it,
// adjusts the tier and advances to the next question. It fails with an
// InvalidStateError unless the session is in progress.
func (s *Session) SubmitAnswer(userAnswer string) (AnswerRecord, error) {
	if s.state != StateInProgress {
		return AnswerRecord{}, &InvalidStateError{Op: "submit answer", State: s.state}
	}

	q := s.questions[s.cursor]
	now := s.now()
	elapsed := now.Sub(s.questionStartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	correct := CheckAnswer(userAnswer, q.ExpectedAnswer, q.Type)
	rec := AnswerRecord{
		Question:            q.Text,
		ExpectedAnswer:      q.ExpectedAnswer,
		Type:                q.Type,
		Difficulty:          q.Difficulty,
		Topic:               q.Topic,
		UserAnswer:          userAnswer,
		IsCorrect:           correct,
		ResponseTimeSeconds: elapsed,
	}
	s.answers = append(s.answers, rec)

	prev := s.tier
	s.tier = NextTier(s.tier, correct, s.recentWindow())
	if s.tier != prev {
		s.logger.Debug("tier changed", "session_id", s.id, "from", prev, "to", s.tier)
	}

	s.cursor++
	s.questionStartedAt = now
	if s.cursor >= len(s.questions) {
		s.state = StateCompleted
		s.logger.Info("session completed", "session_id", s.id, "answers", len(s.answers))
	}

	return rec, nil
}

// recentWindow returns the trailing RecentWindowSize answers.
func (s *Session) recentWindow() []AnswerRecord {
	if len(s.answers) <= RecentWindowSize {
		return s.answers
	}
	return s.answers[len(s.answers)-RecentWindowSize:]
}

// Current returns the question awaiting an answer. The boolean is false
// when the session is not in progress.
func (s *Session) Current() (Question, bool) {
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.questions[s.cursor], true
}

// Present restarts the response timer for the current question. Callers
// that show feedback between questions call it when the next question is
// actually displayed so that feedback time is not charged to it.
func (s *Session) Present() {
	if s.state == StateInProgress {
		s.questionStartedAt = s.now()
	}
}

// Position returns the zero-based index of the current question and the
// total number of questions.
func (s *Session) Position() (int, int) {
	return s.cursor, len(s.questions)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Tier returns the current difficulty tier.
func (s *Session) Tier() Tier { return s.tier }

// StartedAt returns when the session started (zero before Start).
func (s *Session) StartedAt() time.Time { return s.startedAt }

// QuestionStartedAt returns when the current question was presented.
func (s *Session) QuestionStartedAt() time.Time { return s.questionStartedAt }

// Answers returns a copy of the recorded answers in submission order.
func (s *Session) Answers() []AnswerRecord {
	out := make([]AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// CorrectCount returns the number of correct answers so far.
func (s *Session) CorrectCount() int {
	n := 0
	for _, a := range s.answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// ComputeResults aggregates the answers recorded so far.
func (s *Session) ComputeResults() Results {
	return ComputeResults(s.answers)
}

// GenerateRecommendations derives study recommendations from answers.
func (s *Session) GenerateRecommendations(answers []AnswerRecord) []Recommendation {
	return GenerateRecommendations(answers)
}
