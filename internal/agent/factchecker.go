package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plumeworks/plume/internal/document"
)

const factCheckerSystem = "You are a rigorous fact-checker. You verify article claims against " +
	"the research brief they were drafted from, flag everything unsupported, and never let " +
	"a wrong fact through out of politeness. You respond with JSON only."

const factCheckerSchema = `{
  "annotatedContent": "!!!Title\nGit was first released in 2005. [VERIFIED]",
  "verifiedClaims": [{"claim": "Git was first released in 2005", "status": "VERIFIED", "sourceIndex": 0}],
  "questionableClaims": [{"claim": "Most teams rebase daily", "issue": "No source supports this", "suggestion": "Drop or soften the claim"}],
  "consistencyIssues": ["The intro promises three workflows but only two are described"],
  "overallConfidence": "HIGH",
  "recommendedAction": "APPROVE"
}`

// FactChecker verifies a draft against its research brief and recommends
// whether to approve, revise, or reject it.
type FactChecker struct {
	rt          *Runtime
	temperature float64
	maxTokens   int
}

// NewFactChecker creates the fact-checker.
func NewFactChecker(rt *Runtime, temperature float64, maxTokens int) *FactChecker {
	return &FactChecker{rt: rt, temperature: temperature, maxTokens: maxTokens}
}

var _ Agent = (*FactChecker)(nil)

// Role implements Agent.
func (f *FactChecker) Role() Role {
	return RoleFactChecker
}

type factCheckerPromptData struct {
	Draft          string
	KeyFacts       string
	Sources        string
	UncertainAreas string
	Schema         string
}

// Process fact-checks the draft and attaches the FactCheckReport.
func (f *FactChecker) Process(ctx context.Context, doc *document.Document) error {
	if !doc.Draft.Valid() {
		return &Error{Role: RoleFactChecker, Err: errors.New("missing article draft")}
	}
	brief := doc.ResearchBrief
	if !brief.Valid() {
		return &Error{Role: RoleFactChecker, Err: errors.New("missing research brief")}
	}

	data := factCheckerPromptData{
		Draft:          doc.Draft.WikiContent,
		KeyFacts:       bulletList(brief.KeyFacts),
		Sources:        formatSources(brief.Sources),
		UncertainAreas: bulletList(brief.UncertainAreas),
		Schema:         factCheckerSchema,
	}
	prompt, err := renderPrompt("factchecker.tmpl", data)
	if err != nil {
		return &Error{Role: RoleFactChecker, Err: err}
	}

	out := &document.FactCheckReport{}
	inv, err := f.rt.Invoke(ctx, Request{
		Role:        RoleFactChecker,
		System:      factCheckerSystem,
		Prompt:      prompt,
		Temperature: f.temperature,
		MaxTokens:   f.maxTokens,
		Verify: func() error {
			if err := out.RecommendedAction.Validate(); err != nil {
				return err
			}
			return out.OverallConfidence.Validate()
		},
	}, out)
	if err != nil {
		return err
	}

	doc.FactCheckReport = out
	Contribute(doc, RoleFactChecker, inv)
	return nil
}

// Validate implements Agent.
func (f *FactChecker) Validate(doc *document.Document) bool {
	return doc.FactCheckReport.Valid()
}

// formatSources renders sources as "0. [OFFICIAL] text" lines so the model
// can reference them by index.
func formatSources(sources []document.Source) string {
	var b strings.Builder
	for i, s := range sources {
		grade := s.Reliability
		if grade == "" {
			grade = document.ReliabilityUncertain
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i, grade, s.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
