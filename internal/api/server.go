// Package api exposes quiz generation, quiz sessions and user history over
// HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/questiongen"
	"github.com/abhisek/smartquiz/internal/store"
)

const (
	// DefaultRequestTimeout bounds a request, question generation included.
	DefaultRequestTimeout = 2 * time.Minute

	// DefaultSessionTTL evicts sessions idle for longer than this.
	DefaultSessionTTL = 2 * time.Hour

	maxBodyBytes = 4 << 20
)

// QuestionSource generates questions from content.
type QuestionSource interface {
	Run(ctx context.Context, input questiongen.GenerateInput) (*questiongen.Result, error)
}

// PageFetcher downloads a page and returns its readable text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Server. Questions and Fetcher are
// optional; without them the corresponding endpoints degrade as documented
// on the handlers.
type Deps struct {
	Generator QuestionSource
	Fetcher   PageFetcher
	Questions store.QuestionSetRepo
	History   store.HistoryRepo

	// BackendName is reported by the health check.
	BackendName string

	DefaultUser    string
	AllowedOrigins []string
	SessionTTL     time.Duration
	RequestTimeout time.Duration

	Now    func() time.Time
	Logger *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	deps     Deps
	sessions *registry
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Server.
func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.For("api")
	}
	if deps.DefaultUser == "" {
		deps.DefaultUser = "default"
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = DefaultSessionTTL
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = DefaultRequestTimeout
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}
	return &Server{
		deps:     deps,
		sessions: newRegistry(deps.SessionTTL, deps.Now),
		logger:   deps.Logger,
		now:      deps.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(s.deps.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/questions", s.generateQuestions)

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/answers", s.submitAnswer)
			r.Get("/results", s.sessionResults)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/history", s.userHistory)
			r.Delete("/history", s.clearHistory)
			r.Get("/stats", s.userStats)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("api shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", s.now().Sub(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
