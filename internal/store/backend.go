package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects and configures the storage backend.
type Options struct {
	// SQLitePath is the database file used when MongoDB is not configured
	// or unreachable.
	SQLitePath string

	MongoURI      string
	MongoDatabase string

	// RedisURL enables the question cache when set.
	RedisURL string
	CacheTTL time.Duration

	Logger *slog.Logger
}

// OpenBackend opens MongoDB when a URI is configured and falls back to
// SQLite when it is not or when the connection fails. A configured Redis
// cache that cannot be reached is skipped with a warning.
func OpenBackend(ctx context.Context, opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var b Backend
	if opts.MongoURI != "" {
		m, err := OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			logger.Warn("mongodb unavailable, falling back to sqlite", "error", err)
		} else {
			logger.Debug("connected to mongodb", "database", m.db.Name())
			b = m
		}
	}
	if b == nil {
		s, err := Open(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b = s
	}

	if opts.RedisURL == "" {
		return b, nil
	}
	client, err := NewRedisClient(ctx, opts.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, question cache disabled", "error", err)
		return b, nil
	}
	return &cachedBackend{
		Backend:   b,
		client:    client,
		questions: NewCachedQuestionSets(b.QuestionSetRepo(), client, opts.CacheTTL, logger),
	}, nil
}

// cachedBackend overrides the question repository of an inner backend.
type cachedBackend struct {
	Backend
	client    *redis.Client
	questions *CachedQuestionSets
}

func (c *cachedBackend) Name() string { return c.Backend.Name() + "+redis" }

func (c *cachedBackend) QuestionSetRepo() QuestionSetRepo { return c.questions }

func (c *cachedBackend) Close() error {
	cerr := c.client.Close()
	if err := c.Backend.Close(); err != nil {
		return err
	}
	return cerr
}
