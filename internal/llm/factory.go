package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/smartquiz/internal/store"
)

// ErrNoProvider is returned when no LLM provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// providerBuilder knows how to find a provider's key and construct it.
type providerBuilder struct {
	name  string
	key   func(Config) string
	build func(context.Context, Config) (Provider, error)
}

// rankedBuilders is the fallback order: free or cheap hosted models first,
// then the paid first-party APIs, then the OpenRouter catch-all.
var rankedBuilders = []providerBuilder{
	{
		name: ProviderGroq,
		key:  func(c Config) string { return c.Groq.APIKey },
		build: func(_ context.Context, c Config) (Provider, error) {
			return NewGroqProvider(c.Groq)
		},
	},
	{
		name: ProviderGemini,
		key:  func(c Config) string { return c.Gemini.APIKey },
		build: func(ctx context.Context, c Config) (Provider, error) {
			return NewGeminiProvider(ctx, c.Gemini)
		},
	},
	{
		name: ProviderOpenAI,
		key:  func(c Config) string { return c.OpenAI.APIKey },
		build: func(_ context.Context, c Config) (Provider, error) {
			return NewOpenAIProvider(c.OpenAI)
		},
	},
	{
		name: ProviderAnthropic,
		key:  func(c Config) string { return c.Anthropic.APIKey },
		build: func(_ context.Context, c Config) (Provider, error) {
			return NewAnthropicProvider(c.Anthropic)
		},
	},
	{
		name: ProviderOpenRouter,
		key:  func(c Config) string { return c.OpenRouter.APIKey },
		build: func(_ context.Context, c Config) (Provider, error) {
			return NewOpenRouterProvider(c.OpenRouter)
		},
	},
}

func builderFor(name string) (providerBuilder, bool) {
	for _, b := range rankedBuilders {
		if b.name == name {
			return b, true
		}
	}
	return providerBuilder{}, false
}

// NewProvider builds the named provider behind timeout, retry and (when
// eventRepo is set) usage logging.
func NewProvider(ctx context.Context, name string, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if name == ProviderMock {
		return NewMockProvider(), nil
	}
	b, ok := builderFor(name)
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
	base, err := b.build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	// caller → timeout → retry → logging → base
	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo)
	}
	return WithTimeout(WithRetry(p, cfg.Retry), cfg.Timeout), nil
}

// NewProviders builds every configured provider in rank order. A provider
// that fails to initialize is skipped; the call fails only if none could be
// built.
func NewProviders(ctx context.Context, cfg Config, eventRepo store.EventRepo) ([]Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out []Provider
	var errs []error
	for _, name := range cfg.Configured() {
		p, err := NewProvider(ctx, name, cfg, eventRepo)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoProvider
	}
	return out, nil
}

// NewProvidersFromEnv is NewProviders over ConfigFromEnv.
func NewProvidersFromEnv(ctx context.Context, eventRepo store.EventRepo) ([]Provider, error) {
	return NewProviders(ctx, ConfigFromEnv(), eventRepo)
}
