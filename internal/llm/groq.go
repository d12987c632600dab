package llm

import "fmt"

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider targets Groq's OpenAI-compatible endpoint. Groq's hosted
// Llama models accept json_object but not strict json_schema responses, so
// the schema travels in the system prompt and is validated locally.
type GroqProvider struct {
	*OpenAIProvider
}

// NewGroqProvider creates a provider targeting the Groq API.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultConfig().Groq.Model
	}

	inner := newOpenAICompatible(ProviderGroq, cfg.APIKey, baseURL, model, schemaModeJSONObject)
	return &GroqProvider{OpenAIProvider: inner}, nil
}
