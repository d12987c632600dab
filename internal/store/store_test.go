package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/smartquiz/internal/quiz"
)

var testDBCounter atomic.Int64

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAnswers() []quiz.AnswerRecord {
	return []quiz.AnswerRecord{
		{Question: "2+2?", ExpectedAnswer: "4", Type: quiz.TypeShortAnswer, Difficulty: quiz.TierEasy, Topic: "Math", UserAnswer: "4", IsCorrect: true, ResponseTimeSeconds: 1.5},
		{Question: "Sky is green.", ExpectedAnswer: "False", Type: quiz.TypeTrueFalse, Difficulty: quiz.TierHard, Topic: "Science", UserAnswer: "True", ResponseTimeSeconds: 3},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"question_sets", "quiz_history", "llm_request_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "quiz.db")
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s, err = Open(dsn)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestQuestionSets(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionSetRepo()
	ctx := context.Background()

	got, err := repo.QuestionsByHash(ctx, "missing")
	if err != nil {
		t.Fatalf("lookup missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing hash, got %v", got)
	}

	qs := []quiz.Question{
		{Text: "Capital of France?", ExpectedAnswer: "Paris", Distractors: []string{"Rome", "Berlin"}, Difficulty: quiz.TierEasy, Topic: "Geo", Type: quiz.TypeMultipleChoice},
		{Text: "Water boils at 100C.", ExpectedAnswer: "True", Difficulty: quiz.TierMedium, Topic: "Sci", Type: quiz.TypeTrueFalse},
	}
	if err := repo.SaveQuestions(ctx, "abc", qs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = repo.QuestionsByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 || got[0].ExpectedAnswer != "Paris" || got[1].Type != quiz.TypeTrueFalse {
		t.Fatalf("unexpected questions: %+v", got)
	}
	if len(got[0].Distractors) != 2 {
		t.Errorf("distractors = %v, want 2", got[0].Distractors)
	}

	// Saving the same hash replaces the set.
	if err := repo.SaveQuestions(ctx, "abc", qs[:1]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	infos, err := repo.ListQuestionSets(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Hash != "abc" || infos[0].Count != 1 {
		t.Fatalf("unexpected list: %+v", infos)
	}
}

func TestHistorySaveAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	answers := sampleAnswers()
	results := quiz.ComputeResults(answers)

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := repo.SaveAttempt(ctx, "alice", results, answers)
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if e.ID == "" {
			t.Fatal("expected generated ID")
		}
		ids = append(ids, e.ID)
	}
	if _, err := repo.SaveAttempt(ctx, "bob", results, nil); err != nil {
		t.Fatalf("save bob: %v", err)
	}

	entries, err := repo.History(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].ID != ids[2] || entries[2].ID != ids[0] {
		t.Errorf("order = [%s %s %s], want reverse of %v", entries[0].ID, entries[1].ID, entries[2].ID, ids)
	}

	e := entries[0]
	if e.UserID != "alice" {
		t.Errorf("user = %q", e.UserID)
	}
	if e.Results.AccuracyPercent != 50 {
		t.Errorf("accuracy = %d, want 50", e.Results.AccuracyPercent)
	}
	if e.Results.DifficultyAccuracy[quiz.TierHard].Total != 1 {
		t.Errorf("difficulty tallies not round-tripped: %+v", e.Results.DifficultyAccuracy)
	}
	if len(e.Answers) != 2 || e.Answers[1].UserAnswer != "True" {
		t.Errorf("answers not round-tripped: %+v", e.Answers)
	}

	limited, err := repo.History(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("history limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}

func TestHistoryClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.HistoryRepo()
	ctx := context.Background()

	results := quiz.ComputeResults(sampleAnswers())
	for _, user := range []string{"alice", "alice", "bob"} {
		if _, err := repo.SaveAttempt(ctx, user, results, sampleAnswers()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	n, err := repo.ClearHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	left, _ := repo.History(ctx, "alice", 0)
	if len(left) != 0 {
		t.Errorf("alice still has %d entries", len(left))
	}
	bob, _ := repo.History(ctx, "bob", 0)
	if len(bob) != 1 {
		t.Errorf("bob has %d entries, want 1", len(bob))
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "concepts", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-3.5-turbo", Purpose: "question-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}
	if all[0].Model != "gpt-3.5-turbo" || all[0].Success {
		t.Errorf("newest event = %+v", all[0])
	}

	gen, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(gen) != 1 || gen[0].Provider != "openai" {
		t.Errorf("purpose filter = %+v", gen)
	}

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first == nil || first.RequestBody != "req" || first.ResponseBody != "resp" {
		t.Errorf("get = %+v", first)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("get missing = %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	qg := byPurpose[1]
	if qg.Purpose != "question-gen" || qg.Calls != 2 || qg.Failures != 1 || qg.InputTokens != 400 || qg.AvgLatencyMs != 300 {
		t.Errorf("question-gen usage = %+v", qg)
	}
	if byPurpose[0].Failures != 0 {
		t.Errorf("concepts failures = %d, want 0", byPurpose[0].Failures)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "llama-3.3-70b-versatile" || byModel[1].OutputTokens != 55 {
		t.Errorf("usage by model = %+v", byModel)
	}
}

func TestOpenBackendFallsBackToSQLite(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	b, err := OpenBackend(ctx, Options{
		SQLitePath: filepath.Join(t.TempDir(), "fallback.db"),
		MongoURI:   "mongodb://127.0.0.1:1/?connectTimeoutMS=100",
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	if b.Name() != "sqlite" {
		t.Errorf("backend = %q, want sqlite", b.Name())
	}
}

func TestCachedQuestionSets_RedisDownFallsThrough(t *testing.T) {
	s := openTestStore(t)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	repo := NewCachedQuestionSets(s.QuestionSetRepo(), client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	qs := []quiz.Question{{Text: "q", ExpectedAnswer: "a", Type: quiz.TypeShortAnswer, Topic: "T"}}
	if err := repo.SaveQuestions(ctx, "h1", qs); err != nil {
		t.Fatalf("save with redis down: %v", err)
	}
	got, err := repo.QuestionsByHash(ctx, "h1")
	if err != nil {
		t.Fatalf("lookup with redis down: %v", err)
	}
	if len(got) != 1 || got[0].ExpectedAnswer != "a" {
		t.Errorf("got %+v", got)
	}
}
