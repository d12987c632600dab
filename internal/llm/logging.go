package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/smartquiz/internal/logging"
	"github.com/abhisek/smartquiz/internal/store"
)

// LoggingProvider stores one llm_request event per call so the llm
// command can break usage down by purpose and provider.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    *slog.Logger
}

func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logging.For("llm")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:     l.inner.Name(),
		Model:        l.inner.ModelID(),
		Purpose:      string(purpose),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		RequestBody:  renderPrompt(req),
		ResponseBody: string(rejectedReply(err)),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}

	log := l.logger.With("provider", ev.Provider, "model", ev.Model, "purpose", purpose, "latency_ms", ev.LatencyMs)
	if err != nil {
		ev.ErrorMessage = err.Error()
		log.Warn("llm request failed", "reason", FailureKind(err), "error", err)
	} else {
		log.Debug("llm request", "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	// A lost usage event must not fail question generation.
	if logErr := l.eventRepo.AppendLLMRequest(ctx, ev); logErr != nil {
		l.logger.Warn("failed to record LLM request event", "error", logErr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Name() string { return l.inner.Name() }

// rejectedReply returns what the model actually sent when it was thrown
// away for failing the schema or running out of tokens.
func rejectedReply(err error) []byte {
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return inv.Content
	}
	var mt *ErrMaxTokensExceeded
	if errors.As(err, &mt) {
		return mt.Content
	}
	return nil
}

// renderPrompt is the request as `smartquiz llm show` prints it. Schemas
// are registered by name, so only the name is kept.
func renderPrompt(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
	}
	return b.String()
}
