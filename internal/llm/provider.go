package llm

import (
	"context"
	"encoding/json"
)

// Provider is what the grading validator talks to. Each backend and
// each decorator (retry, logging) implements it.
type Provider interface {
	// Generate sends the request and returns the model's output. When
	// the request carries a Schema, Content comes back as JSON already
	// validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the configured model, after friendly-name resolution.
	ModelID() string
}

// Request describes one grading call.
type Request struct {
	// System sets the model's role, e.g. a trading mentor judging
	// chart markings.
	System string

	// Messages is the conversation history. Grading calls are
	// single-turn, so this usually contains one user message.
	Messages []Message

	// Schema, when set, makes the provider use its native structured
	// output mechanism and the response is validated against it. When
	// nil, Content is the raw text as json.RawMessage.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0, 1]. Grading wants 0 (the default) so the same
	// markings get the same verdict.
	Temperature float64
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

// Schema is a JSON Schema the model output must conform to.
type Schema struct {
	// Name is kebab-case, e.g. "marking-grade". Providers that name
	// schemas on the wire use it, and it keys the local compile cache.
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema as a plain map.
	Definition map[string]any
}

// Response is the model's output after validation.
type Response struct {
	// Content is validated JSON when the request had a Schema,
	// otherwise the raw text.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request, as reported
	// by the provider.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token count for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
