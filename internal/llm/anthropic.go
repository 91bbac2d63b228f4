package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/logging"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"

	// defaultMaxTokens applies when neither the request nor the config set
	// a completion budget.
	defaultMaxTokens = 4096

	// httpTimeout bounds a single API round trip. Long-form drafting calls
	// can legitimately run for minutes.
	httpTimeout = 5 * time.Minute
)

// Anthropic is the production Client backed by the Anthropic Messages API.
type Anthropic struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// AnthropicOption customizes the Anthropic client.
type AnthropicOption func(*Anthropic)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) AnthropicOption {
	return func(a *Anthropic) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) AnthropicOption {
	return func(a *Anthropic) {
		if u != "" {
			a.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) AnthropicOption {
	return func(a *Anthropic) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnthropic builds a client from resolved configuration. The API key must
// already be present on the config (resolved from ANTHROPIC_API_KEY).
func NewAnthropic(cfg config.AnthropicConfig, opts ...AnthropicOption) (*Anthropic, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: missing API key (set ANTHROPIC_API_KEY)")
	}
	a := &Anthropic{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: httpTimeout},
		logger:     logging.New("llm"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

var _ Client = (*Anthropic)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

type anthropicAPIError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends one prompt to the Messages API and returns the concatenated
// text blocks of the reply.
func (a *Anthropic) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.maxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, &FatalError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, &FatalError{Err: fmt.Errorf("building request: %w", err)}
	}
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	started := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, resp.Header.Get("Retry-After"), data)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &TransientError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	a.logger.Debug("chat completed",
		"model", a.model,
		"duration", time.Since(started),
		"input_tokens", parsed.Usage.InputTokens,
		"output_tokens", parsed.Usage.OutputTokens,
		"stop_reason", parsed.StopReason)

	return &ChatResponse{
		Text:       text.String(),
		Usage:      parsed.Usage,
		StopReason: parsed.StopReason,
	}, nil
}

// classifyStatus maps a non-200 API status to a transient or fatal error.
// Rate limits and server errors are worth retrying; client errors are not.
func classifyStatus(status int, retryAfter string, body []byte) error {
	err := fmt.Errorf("anthropic API %d: %s", status, apiErrorMessage(body))
	switch {
	case status == http.StatusTooManyRequests:
		return &TransientError{Err: err, RetryAfter: parseRetryAfter(retryAfter)}
	case status >= 500:
		return &TransientError{Err: err}
	default:
		return &FatalError{Err: err}
	}
}

// apiErrorMessage pulls the error message out of an API error body, falling
// back to the raw body when it is not the documented shape.
func apiErrorMessage(body []byte) string {
	var apiErr anthropicAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "no error body"
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// parseRetryAfter reads a Retry-After header given in whole seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
