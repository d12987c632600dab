package llm

import (
	"reflect"
	"testing"
	"time"
)

// clearLLMEnv blanks every key ConfigFromEnv reads so the host
// environment cannot leak into a test.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SMARTQUIZ_LLM_PROVIDER", "SMARTQUIZ_LLM_TIMEOUT",
		"SMARTQUIZ_GROQ_API_KEY", "GROQ_API_KEY", "SMARTQUIZ_GROQ_MODEL", "SMARTQUIZ_GROQ_BASE_URL",
		"SMARTQUIZ_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "SMARTQUIZ_GEMINI_MODEL", "SMARTQUIZ_GEMINI_BASE_URL",
		"SMARTQUIZ_OPENAI_API_KEY", "OPENAI_API_KEY", "SMARTQUIZ_OPENAI_MODEL", "SMARTQUIZ_OPENAI_BASE_URL",
		"SMARTQUIZ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY", "SMARTQUIZ_ANTHROPIC_MODEL", "SMARTQUIZ_ANTHROPIC_BASE_URL",
		"SMARTQUIZ_OPENROUTER_API_KEY", "OPENROUTER_API_KEY", "SMARTQUIZ_OPENROUTER_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearLLMEnv(t)

	cfg := ConfigFromEnv()
	if cfg.Provider != "" {
		t.Fatalf("expected no pinned provider, got %q", cfg.Provider)
	}
	if cfg.Groq.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("groq model = %q", cfg.Groq.Model)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if got := cfg.Configured(); len(got) != 0 {
		t.Fatalf("expected no configured providers, got %v", got)
	}
}

func TestConfigFromEnv_PrefixedKeyWins(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GROQ_API_KEY", "plain")
	t.Setenv("SMARTQUIZ_GROQ_API_KEY", "prefixed")
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("SMARTQUIZ_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Groq.APIKey != "prefixed" {
		t.Fatalf("groq key = %q, want prefixed", cfg.Groq.APIKey)
	}
	if cfg.Gemini.APIKey != "google" {
		t.Fatalf("gemini key = %q, want fallback to GOOGLE_API_KEY", cfg.Gemini.APIKey)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestConfigFromEnv_BaseURLs(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("SMARTQUIZ_ANTHROPIC_BASE_URL", "http://claude.proxy")
	t.Setenv("SMARTQUIZ_GEMINI_BASE_URL", "http://gemini.proxy")

	cfg := ConfigFromEnv()
	if cfg.Anthropic.BaseURL != "http://claude.proxy" || cfg.Gemini.BaseURL != "http://gemini.proxy" {
		t.Fatalf("base URLs = %q, %q", cfg.Anthropic.BaseURL, cfg.Gemini.BaseURL)
	}
}

func TestConfig_ValidateUsesRankedBuilders(t *testing.T) {
	for _, b := range rankedBuilders {
		cfg := Config{Provider: b.name}
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected missing key error", b.name)
		}
	}
}

func TestConfigFromEnv_BadTimeoutIgnored(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("SMARTQUIZ_LLM_TIMEOUT", "soon")

	if cfg := ConfigFromEnv(); cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want default", cfg.Timeout)
	}
}

func TestConfig_ConfiguredRankOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenAI.APIKey = "sk"
	cfg.Groq.APIKey = "gsk"
	cfg.OpenRouter.APIKey = "or"

	want := []string{ProviderGroq, ProviderOpenAI, ProviderOpenRouter}
	if got := cfg.Configured(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Configured() = %v, want %v", got, want)
	}

	cfg.Provider = ProviderOpenAI
	if got := cfg.Configured(); !reflect.DeepEqual(got, []string{ProviderOpenAI}) {
		t.Fatalf("pinned Configured() = %v", got)
	}
}

func TestNewProviders(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		_, err := NewProviders(t.Context(), DefaultConfig(), nil)
		if err != ErrNoProvider {
			t.Fatalf("expected ErrNoProvider, got %v", err)
		}
	})

	t.Run("mock pinned", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = ProviderMock
		ps, err := NewProviders(t.Context(), cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ps) != 1 || ps[0].Name() != ProviderMock {
			t.Fatalf("unexpected providers: %v", ps)
		}
	})

	t.Run("rank order with middleware", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OpenAI.APIKey = "sk"
		cfg.Groq.APIKey = "gsk"
		ps, err := NewProviders(t.Context(), cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ps) != 2 {
			t.Fatalf("expected 2 providers, got %d", len(ps))
		}
		if ps[0].Name() != ProviderGroq || ps[1].Name() != ProviderOpenAI {
			t.Fatalf("unexpected order: %s, %s", ps[0].Name(), ps[1].Name())
		}
		if _, ok := ps[0].(*TimeoutProvider); !ok {
			t.Fatalf("expected timeout wrapper, got %T", ps[0])
		}
	})

	t.Run("unknown pinned", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = "llamafile"
		if _, err := NewProviders(t.Context(), cfg, nil); err == nil {
			t.Fatal("expected error for unknown provider")
		}
	})
}
