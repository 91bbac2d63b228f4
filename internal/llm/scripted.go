package llm

import (
	"context"
	"fmt"
	"sync"
)

// Scripted is a Client for tests. It replays a fixed sequence of replies and
// records every request it receives. Once the script runs out, further calls
// fail fatally so a miscounted test fails fast instead of spinning through
// retries.
type Scripted struct {
	mu       sync.Mutex
	script   []scriptedReply
	requests []ChatRequest
}

type scriptedReply struct {
	resp *ChatResponse
	err  error
}

// NewScripted builds a scripted client that replies with the given texts in
// order.
func NewScripted(texts ...string) *Scripted {
	s := &Scripted{}
	for _, t := range texts {
		s.EnqueueText(t)
	}
	return s
}

var _ Client = (*Scripted)(nil)

// EnqueueText appends a plain text reply with nominal token usage.
func (s *Scripted) EnqueueText(text string) {
	s.Enqueue(ChatResponse{
		Text:       text,
		Usage:      Usage{InputTokens: 10, OutputTokens: 20},
		StopReason: "end_turn",
	})
}

// Enqueue appends a fully specified reply.
func (s *Scripted) Enqueue(resp ChatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := resp
	s.script = append(s.script, scriptedReply{resp: &r})
}

// EnqueueError appends a failing reply.
func (s *Scripted) EnqueueError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, scriptedReply{err: err})
}

// Chat pops the next scripted reply.
func (s *Scripted) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.script) == 0 {
		return nil, &FatalError{Err: fmt.Errorf("scripted client exhausted after %d calls", len(s.requests)-1)}
	}
	next := s.script[0]
	s.script = s.script[1:]
	if next.err != nil {
		return nil, next.err
	}
	resp := *next.resp
	return &resp, nil
}

// Requests returns a copy of every request received so far.
func (s *Scripted) Requests() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls reports how many times Chat was invoked.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
