// Package config resolves process configuration from the environment and
// an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/store"
)

const (
	// DefaultUser owns history when no user is given.
	DefaultUser = "default"

	// DefaultAddr is the listen address for the HTTP API.
	DefaultAddr = ":8080"
)

// Config is the resolved process configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty means store.DefaultDBPath.
	DBPath string

	MongoURI      string
	MongoDatabase string

	RedisURL string
	CacheTTL time.Duration

	// LogDir receives the daily log file. Empty disables file logging.
	LogDir string

	Addr string
	User string

	LLM llm.Config
}

// Load reads the given .env files (".env" when none are named) into the
// environment without overriding variables that are already set, then
// resolves the Config. Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("no env file found, using environment variables", "file", f)
				continue
			}
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

// FromEnv resolves the Config from environment variables alone. Each key
// is read with the SMARTQUIZ_ prefix first and then under its conventional
// unprefixed name.
func FromEnv() Config {
	cfg := Config{
		DBPath:        getenv("SMARTQUIZ_DB"),
		MongoURI:      getenv("SMARTQUIZ_MONGODB_URI", "MONGODB_URI"),
		MongoDatabase: getenv("SMARTQUIZ_MONGODB_DB_NAME", "MONGODB_DB_NAME"),
		RedisURL:      getenv("SMARTQUIZ_REDIS_URL", "REDIS_URL"),
		CacheTTL:      store.DefaultCacheTTL,
		LogDir:        getenv("SMARTQUIZ_LOG_DIR"),
		Addr:          getenv("SMARTQUIZ_ADDR"),
		User:          getenv("SMARTQUIZ_USER"),
		LLM:           llm.ConfigFromEnv(),
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = store.DefaultMongoDatabase
	}
	if d, err := time.ParseDuration(getenv("SMARTQUIZ_CACHE_TTL")); err == nil && d > 0 {
		cfg.CacheTTL = d
	}
	if cfg.LogDir == "" {
		if dir, err := store.DataDir(); err == nil {
			cfg.LogDir = filepath.Join(dir, "logs")
		}
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.User == "" {
		cfg.User = DefaultUser
	}
	return cfg
}

// StoreOptions maps the Config to backend options. The SQLite path falls
// back to store.DefaultDBPath.
func (c Config) StoreOptions(logger *slog.Logger) (store.Options, error) {
	path := c.DBPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return store.Options{}, err
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return store.Options{}, err
	}

	return store.Options{
		SQLitePath:    path,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		RedisURL:      c.RedisURL,
		CacheTTL:      c.CacheTTL,
		Logger:        logger,
	}, nil
}

func getenv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
