package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/smartquiz/internal/quiz"
)

type historyRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func (r *historyRepo) SaveAttempt(ctx context.Context, userID string, results quiz.Results, answers []quiz.AnswerRecord) (*quiz.HistoryEntry, error) {
	entry := &quiz.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: r.now().UTC().Truncate(time.Millisecond),
		Results:   results,
		Answers:   answers,
	}
	if entry.Answers == nil {
		entry.Answers = []quiz.AnswerRecord{}
	}

	resultsJSON, err := json.Marshal(entry.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	answersJSON, err := json.Marshal(entry.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_history (id, sequence, user_id, timestamp, results, answers)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, seqNum, userID, unixMilli(entry.Timestamp), string(resultsJSON), string(answersJSON))
	if err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	return entry, nil
}

func (r *historyRepo) History(ctx context.Context, userID string, limit int) ([]quiz.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, timestamp, results, answers
		FROM quiz_history WHERE user_id = ? ORDER BY sequence DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []quiz.HistoryEntry
	for rows.Next() {
		var e quiz.HistoryEntry
		var ts int64
		var resultsJSON, answersJSON string
		if err := rows.Scan(&e.ID, &e.UserID, &ts, &resultsJSON, &answersJSON); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Timestamp = fromUnixMilli(ts)
		if err := json.Unmarshal([]byte(resultsJSON), &e.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(answersJSON), &e.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *historyRepo) ClearHistory(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quiz_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
