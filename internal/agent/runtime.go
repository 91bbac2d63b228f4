package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/jsonutil"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
)

// RetryConfig bounds the runtime's attempt loop.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the production retry policy: three attempts
// with doubling, jitter-free delays capped at 30 seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
	}
}

// SleepFunc waits for the given delay unless the context ends first.
// Injectable so tests can observe backoff without waiting it out.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Request describes one model invocation on behalf of an agent.
type Request struct {
	Role        Role
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int

	// Verify checks required fields after a successful parse. A verify
	// failure consumes the attempt like a parse failure would.
	Verify func() error
}

// Invocation reports a completed model invocation.
type Invocation struct {
	Raw        string
	InputHash  string
	OutputHash string
	Duration   time.Duration
	Attempts   int
	Usage      llm.Usage
}

// Runtime invokes the model for agents: one attempt loop, one JSON parse
// policy, one place computing contribution hashes.
type Runtime struct {
	client llm.Client
	retry  RetryConfig
	logger *log.Logger
	sleep  SleepFunc
}

// RuntimeOption customizes a Runtime.
type RuntimeOption func(*Runtime)

// WithRetryConfig replaces the default retry policy.
func WithRetryConfig(cfg RetryConfig) RuntimeOption {
	return func(rt *Runtime) {
		if cfg.MaxAttempts > 0 {
			rt.retry = cfg
		}
	}
}

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithSleep replaces the backoff sleeper. Used by tests.
func WithSleep(sleep SleepFunc) RuntimeOption {
	return func(rt *Runtime) {
		if sleep != nil {
			rt.sleep = sleep
		}
	}
}

// NewRuntime creates a runtime over the given model client.
func NewRuntime(client llm.Client, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		client: client,
		retry:  DefaultRetryConfig(),
		logger: logging.New("agent"),
		sleep:  defaultSleep,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Invoke runs the attempt loop: call the model, parse the reply into out,
// verify required fields. Transient transport errors and parse failures
// consume attempts; fatal transport errors and context cancellation abort
// immediately. Exhaustion returns an *Error carrying the last failure.
func (rt *Runtime) Invoke(ctx context.Context, req Request, out any) (*Invocation, error) {
	started := time.Now()
	delay := rt.retry.InitialDelay
	var usage llm.Usage
	var lastErr error

	for attempt := 1; attempt <= rt.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := delay
			if hint := llm.RetryAfterHint(lastErr); hint > wait {
				wait = hint
			}
			rt.logger.Debug("retrying", "role", req.Role, "attempt", attempt, "delay", wait, "cause", lastErr)
			if err := rt.sleep(ctx, wait); err != nil {
				return nil, &Error{Role: req.Role, Err: err}
			}
			delay = min(time.Duration(float64(delay)*rt.retry.Multiplier), rt.retry.MaxDelay)
		}

		resp, err := rt.client.Chat(ctx, llm.ChatRequest{
			System:      req.System,
			Prompt:      req.Prompt,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, &Error{Role: req.Role, Err: ctx.Err()}
			}
			if llm.IsFatal(err) {
				return nil, &Error{Role: req.Role, Err: err}
			}
			lastErr = err
			continue
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		raw := strings.TrimSpace(resp.Text)
		if err := parseInto(raw, out); err != nil {
			lastErr = err
			continue
		}
		if req.Verify != nil {
			if err := req.Verify(); err != nil {
				lastErr = fmt.Errorf("verifying response: %w", err)
				continue
			}
		}

		return &Invocation{
			Raw:        raw,
			InputHash:  hashText(req.System + "\n" + req.Prompt),
			OutputHash: hashText(raw),
			Duration:   time.Since(started),
			Attempts:   attempt,
			Usage:      usage,
		}, nil
	}

	return nil, &Error{
		Role: req.Role,
		Err:  fmt.Errorf("exhausted %d attempts: %w", rt.retry.MaxAttempts, lastErr),
	}
}

// parseInto unmarshals the model's reply, allowing one extraction recovery
// for replies that wrap JSON in prose or code fences.
func parseInto(raw string, out any) error {
	if raw == "" {
		return errors.New("empty response from model")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if exErr := jsonutil.ExtractInto(raw, out); exErr != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// hashText returns the xxhash64 hex digest of s.
func hashText(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Contribute records a completed invocation on the document.
func Contribute(doc *document.Document, role Role, inv *Invocation) {
	doc.AddContribution(document.AgentContribution{
		Role:           string(role),
		Timestamp:      time.Now().UTC(),
		InputHash:      inv.InputHash,
		OutputHash:     inv.OutputHash,
		ProcessingTime: inv.Duration,
		Metrics: map[string]int64{
			"input_tokens":  int64(inv.Usage.InputTokens),
			"output_tokens": int64(inv.Usage.OutputTokens),
			"attempts":      int64(inv.Attempts),
		},
	})
}
