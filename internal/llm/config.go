package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names, in fallback rank order.
const (
	ProviderGroq       = "groq"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider pins a single provider. When empty, every provider with an
	// API key is used in rank order.
	// Values: "", "groq", "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Groq       GroqConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 30s.
	Timeout time.Duration
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	APIKey  string
	Model   string // Default: "llama-3.3-70b-versatile"
	BaseURL string // Default: "https://api.groq.com/openai/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Points at a proxy or test server.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-3.5-turbo"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional. Points at a proxy or test server.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Groq: GroqConfig{
			Model: "llama-3.3-70b-versatile",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-3.5-turbo",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. Each key is read with the SMARTQUIZ_ prefix
// first and then under its conventional unprefixed name.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = getenv("SMARTQUIZ_LLM_PROVIDER")

	setIf(&cfg.Groq.APIKey, getenv("SMARTQUIZ_GROQ_API_KEY", "GROQ_API_KEY"))
	setIf(&cfg.Groq.Model, getenv("SMARTQUIZ_GROQ_MODEL"))
	setIf(&cfg.Groq.BaseURL, getenv("SMARTQUIZ_GROQ_BASE_URL"))

	setIf(&cfg.Gemini.APIKey, getenv("SMARTQUIZ_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"))
	setIf(&cfg.Gemini.Model, getenv("SMARTQUIZ_GEMINI_MODEL"))
	setIf(&cfg.Gemini.BaseURL, getenv("SMARTQUIZ_GEMINI_BASE_URL"))

	setIf(&cfg.OpenAI.APIKey, getenv("SMARTQUIZ_OPENAI_API_KEY", "OPENAI_API_KEY"))
	setIf(&cfg.OpenAI.Model, getenv("SMARTQUIZ_OPENAI_MODEL"))
	setIf(&cfg.OpenAI.BaseURL, getenv("SMARTQUIZ_OPENAI_BASE_URL"))

	setIf(&cfg.Anthropic.APIKey, getenv("SMARTQUIZ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"))
	setIf(&cfg.Anthropic.Model, getenv("SMARTQUIZ_ANTHROPIC_MODEL"))
	setIf(&cfg.Anthropic.BaseURL, getenv("SMARTQUIZ_ANTHROPIC_BASE_URL"))

	setIf(&cfg.OpenRouter.APIKey, getenv("SMARTQUIZ_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"))
	setIf(&cfg.OpenRouter.Model, getenv("SMARTQUIZ_OPENROUTER_MODEL"))

	if d, err := time.ParseDuration(getenv("SMARTQUIZ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	return cfg
}

// Configured returns the providers to use, in rank order. A pinned
// Provider yields just that one.
func (c Config) Configured() []string {
	if c.Provider != "" {
		return []string{c.Provider}
	}

	var out []string
	for _, b := range rankedBuilders {
		if b.key(c) != "" {
			out = append(out, b.name)
		}
	}
	return out
}

// Validate checks that the pinned provider has its required API key set.
// An unpinned config is always valid; it may simply select no provider.
func (c Config) Validate() error {
	if c.Provider == "" || c.Provider == ProviderMock {
		return nil
	}
	b, ok := builderFor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if b.key(c) == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}

// getenv returns the first non-empty value among keys.
func getenv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
