package agent

import (
	"context"
	"errors"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/wiki"
)

const criticSystem = "You are the publication gatekeeper for a wiki. You score articles on " +
	"syntax, structure, and style against the wiki's rules, and you only approve work that " +
	"is genuinely ready. You respond with JSON only."

const criticSchema = `{
  "overall": 0.88,
  "structure": 0.9,
  "syntax": 0.85,
  "style": 0.9,
  "structureIssues": [],
  "syntaxIssues": ["A markdown heading survived near the end"],
  "styleIssues": [],
  "suggestions": ["Add a short closing section"],
  "recommendedAction": "APPROVE"
}`

// Critic reviews the final article against the wiki's syntax rules and
// decides whether it publishes.
type Critic struct {
	rt          *Runtime
	temperature float64
	maxTokens   int
}

// NewCritic creates the critic.
func NewCritic(rt *Runtime, temperature float64, maxTokens int) *Critic {
	return &Critic{rt: rt, temperature: temperature, maxTokens: maxTokens}
}

var _ Agent = (*Critic)(nil)

// Role implements Agent.
func (c *Critic) Role() Role {
	return RoleCritic
}

type criticPromptData struct {
	Article string
	Rules   string
	Schema  string
}

// Process reviews the final article and attaches the CriticReport.
func (c *Critic) Process(ctx context.Context, doc *document.Document) error {
	if doc.FinalArticle == nil || !doc.FinalArticle.Valid() {
		return &Error{Role: RoleCritic, Err: errors.New("missing final article")}
	}

	prompt, err := renderPrompt("critic.tmpl", criticPromptData{
		Article: doc.FinalArticle.WikiContent,
		Rules:   wiki.Rules(),
		Schema:  criticSchema,
	})
	if err != nil {
		return &Error{Role: RoleCritic, Err: err}
	}

	out := &document.CriticReport{}
	inv, err := c.rt.Invoke(ctx, Request{
		Role:        RoleCritic,
		System:      criticSystem,
		Prompt:      prompt,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Verify: func() error {
			return out.RecommendedAction.Validate()
		},
	}, out)
	if err != nil {
		return err
	}

	doc.CriticReport = out
	Contribute(doc, RoleCritic, inv)
	return nil
}

// Validate implements Agent.
func (c *Critic) Validate(doc *document.Document) bool {
	return doc.CriticReport.Valid()
}
