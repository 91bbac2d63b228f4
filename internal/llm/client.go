// Package llm provides the language-model transport: a small Client
// interface, the Anthropic HTTP implementation, and a scripted client for
// tests. Retry policy lives with the caller; this package only classifies
// failures as transient or fatal.
package llm

import "context"

// maxResponseBytes caps how much of a model response is read.
const maxResponseBytes = 10 * 1024 * 1024 // 10 MB

// ChatRequest is a single-turn prompt to the model.
type ChatRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client sends one prompt and returns one reply.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
