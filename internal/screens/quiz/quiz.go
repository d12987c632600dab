// Package quiz is the interactive screen that runs one quiz session.
package quiz

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/router"
	"github.com/abhisek/smartquiz/internal/screen"
	"github.com/abhisek/smartquiz/internal/screens/results"
	"github.com/abhisek/smartquiz/internal/store"
	"github.com/abhisek/smartquiz/internal/ui/components"
	"github.com/abhisek/smartquiz/internal/ui/layout"
)

const (
	// DefaultTimeLimit is the per-question countdown shown to the learner.
	DefaultTimeLimit = 30 * time.Second

	// WarningThreshold and DangerThreshold color the countdown.
	WarningThreshold = 10 * time.Second
	DangerThreshold  = 5 * time.Second

	answerCharLimit = 200
	saveTimeout     = 10 * time.Second
)

// Config carries the dependencies of a QuizScreen.
type Config struct {
	UserID string

	// History receives the attempt when the quiz completes. Nil disables
	// saving.
	History store.HistoryRepo

	// TimeLimit is the countdown per question. Zero means
	// DefaultTimeLimit; a negative value hides the timer. The countdown is
	// informational and never submits on its own.
	TimeLimit time.Duration

	// Seed drives option shuffling. Zero seeds from the clock.
	Seed uint64

	Session *quiz.Session
	Now     func() time.Time
	Logger  *slog.Logger
}

// QuizScreen implements screen.Screen for an active quiz.
type QuizScreen struct {
	session *quiz.Session
	cfg     Config
	rng     *rand.Rand
	now     func() time.Time
	logger  *slog.Logger

	current      quiz.Question
	choices      components.MultiChoice
	input        components.TextInput
	choiceActive bool
	shownAt      time.Time
	remaining    time.Duration

	last               *quiz.AnswerRecord
	showingFeedback    bool
	showingQuitConfirm bool
	ending             bool
	errMsg             string
}

var (
	_ screen.Screen          = (*QuizScreen)(nil)
	_ screen.KeyHintProvider = (*QuizScreen)(nil)
	_ screen.StatusProvider  = (*QuizScreen)(nil)
	_ screen.EscapeHandler   = (*QuizScreen)(nil)
)

// New starts a session over questions and returns the screen driving it.
func New(questions []quiz.Question, cfg Config) *QuizScreen {
	if cfg.TimeLimit == 0 {
		cfg.TimeLimit = DefaultTimeLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(cfg.Now().UnixNano())
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.For("tui")
	}
	if cfg.Session == nil {
		cfg.Session = quiz.NewSession(quiz.WithClock(cfg.Now), quiz.WithLogger(cfg.Logger))
	}

	s := &QuizScreen{
		session: cfg.Session,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		now:     cfg.Now,
		logger:  cfg.Logger,
	}

	if len(questions) == 0 {
		s.errMsg = "no questions to ask"
		return s
	}
	if err := s.session.Start(questions); err != nil {
		s.errMsg = err.Error()
		return s
	}
	s.loadQuestion()
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.inputInit()}
	if s.timerEnabled() && s.errMsg == "" {
		cmds = append(cmds, tickCmd())
	}
	return tea.Batch(cmds...)
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

// Status shows progress and score in the header.
func (s *QuizScreen) Status() string {
	_, total := s.session.Position()
	if total == 0 {
		return ""
	}
	return statusLine(s.questionNumber(), total, s.session.CorrectCount(), s.session.Tier())
}

// HandlesEscape keeps the app from popping the screen mid-quiz.
func (s *QuizScreen) HandlesEscape() bool {
	return s.errMsg == ""
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.showingQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.showingFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.choiceActive:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "A-Z/1-9", Description: "Pick"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.ending:
		return renderSaving(width)
	case s.showingQuitConfirm:
		return renderQuitConfirm(width, len(s.session.Answers()))
	case s.showingFeedback:
		return s.renderFeedback(width)
	}
	return s.renderQuestionView(width)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTimerTick()

	case feedbackDoneMsg:
		return s.handleFeedbackDone()

	case quizEndMsg:
		return s.handleQuizEnd(msg)

	case attemptSavedMsg:
		return s.showResults(msg.Err, false)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.active() && !s.choiceActive {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// active reports whether a question is waiting for an answer.
func (s *QuizScreen) active() bool {
	return s.errMsg == "" && !s.ending && !s.showingFeedback && !s.showingQuitConfirm &&
		s.session.State() == quiz.StateInProgress
}

func (s *QuizScreen) timerEnabled() bool {
	return s.cfg.TimeLimit > 0
}

// questionNumber is the one-based number of the question on screen.
func (s *QuizScreen) questionNumber() int {
	pos, total := s.session.Position()
	if s.showingFeedback {
		return pos
	}
	return min(pos+1, total)
}

// loadQuestion prepares the input for the current question and restarts
// its response timer. Choice options are shuffled once here.
func (s *QuizScreen) loadQuestion() {
	q, ok := s.session.Current()
	if !ok {
		return
	}
	s.current = q
	s.last = nil

	if q.Type.IsFreeText() {
		s.choiceActive = false
		s.input = components.NewTextInput("Type your answer...", answerCharLimit)
	} else {
		opts := q.Options()
		if q.Type == quiz.TypeMultipleChoice {
			s.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		}
		s.choiceActive = true
		s.choices = components.NewMultiChoice(opts)
		for i, opt := range opts {
			if quiz.CheckAnswer(opt, q.ExpectedAnswer, q.Type) {
				s.choices.CorrectIndex = i
				break
			}
		}
	}

	s.session.Present()
	s.shownAt = s.now()
	s.remaining = s.cfg.TimeLimit
}

func (s *QuizScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.errMsg != "" || s.ending || s.session.State() != quiz.StateInProgress && !s.showingFeedback {
		return s, nil
	}
	if s.active() {
		s.remaining = max(s.cfg.TimeLimit-s.now().Sub(s.shownAt), 0)
	}
	return s, tickCmd()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.ending {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, func() tea.Msg { return quizEndMsg{Early: true} }
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if s.showingFeedback {
		return s, func() tea.Msg { return feedbackDoneMsg{} }
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	if s.choiceActive {
		var cmd tea.Cmd
		s.choices, cmd = s.choices.Update(msg)
		if chosen, ok := s.choices.Chosen(); ok {
			return s.submit(chosen)
		}
		return s, cmd
	}

	if key == "enter" {
		answer := s.input.Value()
		if answer == "" {
			return s, nil
		}
		return s.submit(answer)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit records the answer and switches to the feedback view.
func (s *QuizScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	rec, err := s.session.SubmitAnswer(answer)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.last = &rec
	if !s.choiceActive {
		s.input.Submit(rec.IsCorrect)
	}
	s.showingFeedback = true
	return s, nil
}

func (s *QuizScreen) handleFeedbackDone() (screen.Screen, tea.Cmd) {
	if !s.showingFeedback {
		return s, nil
	}
	s.showingFeedback = false
	if s.session.State() == quiz.StateCompleted {
		return s, func() tea.Msg { return quizEndMsg{} }
	}
	s.loadQuestion()
	return s, s.inputInit()
}

func (s *QuizScreen) inputInit() tea.Cmd {
	if s.errMsg != "" || s.choiceActive {
		return nil
	}
	return s.input.Init()
}

func (s *QuizScreen) handleQuizEnd(msg quizEndMsg) (screen.Screen, tea.Cmd) {
	if s.ending {
		return s, nil
	}
	if msg.Early || s.cfg.History == nil {
		return s.showResults(nil, msg.Early)
	}

	s.ending = true
	repo := s.cfg.History
	userID := s.cfg.UserID
	res := s.session.ComputeResults()
	answers := s.session.Answers()
	logger := s.logger
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		entry, err := repo.SaveAttempt(ctx, userID, res, answers)
		if err != nil {
			logger.Error("save attempt failed", "user", userID, "error", err)
		}
		return attemptSavedMsg{Entry: entry, Err: err}
	}
}

// showResults replaces this screen with the results screen.
func (s *QuizScreen) showResults(saveErr error, early bool) (screen.Screen, tea.Cmd) {
	answers := s.session.Answers()
	next := results.New(quiz.ComputeResults(answers), s.session.GenerateRecommendations(answers), answers, results.Options{
		Early:   early,
		SaveErr: saveErr,
		History: s.cfg.History,
		UserID:  s.cfg.UserID,
	})
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
