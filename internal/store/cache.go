package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/smartquiz/internal/quiz"
)

// DefaultCacheTTL is how long a cached question set lives in Redis.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "smartquiz:questions:"

// CachedQuestionSets fronts a QuestionSetRepo with Redis. Cache failures
// are logged and fall through to the inner repository.
type CachedQuestionSets struct {
	inner  QuestionSetRepo
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedQuestionSets wraps inner with a Redis read-through cache.
func NewCachedQuestionSets(inner QuestionSetRepo, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedQuestionSets {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedQuestionSets{inner: inner, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *CachedQuestionSets) SaveQuestions(ctx context.Context, hash string, questions []quiz.Question) error {
	if err := c.inner.SaveQuestions(ctx, hash, questions); err != nil {
		return err
	}
	c.put(ctx, hash, questions)
	return nil
}

func (c *CachedQuestionSets) QuestionsByHash(ctx context.Context, hash string) ([]quiz.Question, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+hash).Bytes()
	switch {
	case err == nil:
		var questions []quiz.Question
		if err := json.Unmarshal(data, &questions); err == nil {
			c.logger.Debug("question cache hit", "hash", hash)
			return questions, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "hash", hash)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("question cache read failed", "hash", hash, "error", err)
	}

	questions, err := c.inner.QuestionsByHash(ctx, hash)
	if err != nil || questions == nil {
		return questions, err
	}
	c.put(ctx, hash, questions)
	return questions, nil
}

func (c *CachedQuestionSets) ListQuestionSets(ctx context.Context, limit int) ([]QuestionSetInfo, error) {
	return c.inner.ListQuestionSets(ctx, limit)
}

func (c *CachedQuestionSets) put(ctx context.Context, hash string, questions []quiz.Question) {
	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+hash, data, c.ttl).Err(); err != nil {
		c.logger.Warn("question cache write failed", "hash", hash, "error", err)
	}
}
