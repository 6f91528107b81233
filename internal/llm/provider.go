package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the generative text backend.
// Every journey component (path generation, step synthesis, answer
// evaluation, summaries, quizzes) talks to the model through this
// interface, so tests can swap in a MockProvider.
type Provider interface {
	// Generate sends a prompt to the model and returns its output.
	// When the request carries a Schema, the provider asks for structured
	// output, extracts the JSON block from the response (tolerating
	// markdown fences and surrounding prose), and validates it against
	// the schema before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Request describes a single generation call.
type Request struct {
	// System is the system instruction. Sets the tutor persona and the
	// age-band tone constraints.
	System string

	// Messages is the conversation. Journey generation is single-turn, so
	// this usually holds one user message.
	Messages []Message

	// Schema, when set, is the JSON Schema the response must conform to.
	// When nil, the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Comes from the learner's
	// age profile for curriculum calls.
	Temperature float64
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "learning-path".
	Name string

	// Description tells the model what this schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. With a Schema in the request this
	// is the extracted, validated JSON object; otherwise the raw text
	// wrapped as a JSON string.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
