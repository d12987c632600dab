package store

import (
	"context"
	"time"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// DefaultHistoryLimit caps History when the caller passes no limit.
const DefaultHistoryLimit = 50

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// QuestionSetInfo describes a cached question set without its questions.
type QuestionSetInfo struct {
	Hash      string
	Count     int
	CreatedAt time.Time
}

// QuestionSetRepo caches generated questions keyed by the hash of the
// content they were generated from.
type QuestionSetRepo interface {
	// SaveQuestions stores questions under hash, replacing any previous set.
	SaveQuestions(ctx context.Context, hash string, questions []quiz.Question) error

	// QuestionsByHash returns the cached set, or nil if none exists.
	QuestionsByHash(ctx context.Context, hash string) ([]quiz.Question, error)

	// ListQuestionSets returns the most recent sets first.
	ListQuestionSets(ctx context.Context, limit int) ([]QuestionSetInfo, error)
}

// HistoryRepo persists completed quiz attempts per user.
type HistoryRepo interface {
	// SaveAttempt records a completed attempt and returns the stored entry.
	SaveAttempt(ctx context.Context, userID string, results quiz.Results, answers []quiz.AnswerRecord) (*quiz.HistoryEntry, error)

	// History returns up to limit attempts for userID, newest first.
	// A limit <= 0 means DefaultHistoryLimit.
	History(ctx context.Context, userID string, limit int) ([]quiz.HistoryEntry, error)

	// ClearHistory deletes every attempt for userID and returns the count.
	ClearHistory(ctx context.Context, userID string) (int64, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// Backend bundles the repositories of one storage engine.
type Backend interface {
	Name() string
	QuestionSetRepo() QuestionSetRepo
	HistoryRepo() HistoryRepo
	EventRepo() EventRepo
	Close() error
}
