package llm

import (
	"context"
	"encoding/json"
)

// Normalized stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Provider turns a prompt into JSON. Question generation and concept
// extraction are the only callers, and both pass a Schema.
type Provider interface {
	// Generate returns Content already checked against req.Schema. Errors
	// are one of the typed errors in this package and carry Name().
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
	Name() string
}

// Request is a single-turn generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema selects structured output. A nil Schema returns raw text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the validator registry key,
// so two schemas with different definitions must not share one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
