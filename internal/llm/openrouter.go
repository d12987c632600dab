package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is the last resort in the fallback order: one key
// reaches many hosted models. Model IDs are OpenRouter's own
// ("vendor/model") and are passed through unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL, model := cfg.BaseURL, cfg.Model
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if model == "" {
		model = DefaultConfig().OpenRouter.Model
	}
	return &OpenRouterProvider{
		OpenAIProvider: newOpenAICompatible(ProviderOpenRouter, cfg.APIKey, baseURL, model, schemaModeStrict),
	}, nil
}
