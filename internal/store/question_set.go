package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/smartquiz/internal/quiz"
)

type questionSetRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *questionSetRepo) SaveQuestions(ctx context.Context, hash string, questions []quiz.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO question_sets (content_hash, questions, question_count, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (content_hash) DO UPDATE SET
			questions = excluded.questions,
			question_count = excluded.question_count,
			created_at = excluded.created_at`,
		hash, string(data), len(questions), unixMilli(r.now()))
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}

func (r *questionSetRepo) QuestionsByHash(ctx context.Context, hash string) ([]quiz.Question, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT questions FROM question_sets WHERE content_hash = ?`, hash).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query question set: %w", err)
	}

	var questions []quiz.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return questions, nil
}

func (r *questionSetRepo) ListQuestionSets(ctx context.Context, limit int) ([]QuestionSetInfo, error) {
	q := `SELECT content_hash, question_count, created_at FROM question_sets ORDER BY created_at DESC, content_hash`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	var out []QuestionSetInfo
	for rows.Next() {
		var info QuestionSetInfo
		var ts int64
		if err := rows.Scan(&info.Hash, &info.Count, &ts); err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		info.CreatedAt = fromUnixMilli(ts)
		out = append(out, info)
	}
	return out, rows.Err()
}
