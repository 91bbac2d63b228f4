package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/wiki"
)

const editorSystem = "You are a senior wiki editor. You polish drafts into publishable articles, " +
	"resolve fact-check findings, and score your own work without flattery. " +
	"You respond with JSON only."

const editorSchema = `{
  "wikiContent": "!!!Version Control Basics\nVersion control records every change...",
  "metadata": {"readingLevel": "beginner"},
  "editSummary": "Tightened the intro and fixed heading levels.",
  "qualityScore": 0.86,
  "addedLinks": ["MergeConflict"]
}`

// Editor turns the fact-checked draft into the final article. Its validation
// enforces the configured minimum quality score.
type Editor struct {
	rt          *Runtime
	pages       PageSource
	links       config.LinksConfig
	minScore    float64
	temperature float64
	maxTokens   int
}

// NewEditor creates the editor. minScore is the publishing floor for the
// model's self-assessed quality score.
func NewEditor(rt *Runtime, pages PageSource, links config.LinksConfig, minScore, temperature float64, maxTokens int) *Editor {
	return &Editor{
		rt:          rt,
		pages:       pages,
		links:       links,
		minScore:    minScore,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

var _ Agent = (*Editor)(nil)

// Role implements Agent.
func (e *Editor) Role() Role {
	return RoleEditor
}

// MinScore returns the configured quality floor.
func (e *Editor) MinScore() float64 {
	return e.minScore
}

type editorPromptData struct {
	Draft          string
	FactCheckNotes string
	ExistingPages  []string
	MinLinks       int
	MaxLinks       int
	RevisionNotes  string
	Schema         string
}

// Process edits the draft and attaches the FinalArticle.
func (e *Editor) Process(ctx context.Context, doc *document.Document) error {
	if !doc.Draft.Valid() {
		return &Error{Role: RoleEditor, Err: errors.New("missing article draft")}
	}

	targetWords := doc.Brief.TargetWordCount
	if targetWords <= 0 {
		targetWords = defaultTargetWords
	}

	data := editorPromptData{
		Draft:          doc.Draft.WikiContent,
		FactCheckNotes: factCheckNotes(doc.FactCheckReport),
		ExistingPages:  e.existingPages(),
		MinLinks:       minLinksFor(e.links, targetWords),
		MaxLinks:       maxLinksFor(e.links),
		RevisionNotes:  doc.RevisionNotes,
		Schema:         editorSchema,
	}
	prompt, err := renderPrompt("editor.tmpl", data)
	if err != nil {
		return &Error{Role: RoleEditor, Err: err}
	}

	out := &document.FinalArticle{}
	inv, err := e.rt.Invoke(ctx, Request{
		Role:        RoleEditor,
		System:      editorSystem,
		Prompt:      prompt,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Verify: func() error {
			if !out.Valid() {
				return errors.New("final article needs non-blank wikiContent and a qualityScore in [0,1]")
			}
			return nil
		},
	}, out)
	if err != nil {
		return err
	}

	out.WikiContent = wiki.NormalizeSyntax(out.WikiContent)

	doc.FinalArticle = out
	Contribute(doc, RoleEditor, inv)
	return nil
}

// Validate implements Agent. Beyond structural validity it enforces the
// configured quality floor; the orchestrator names the score in its failure
// message.
func (e *Editor) Validate(doc *document.Document) bool {
	return doc.FinalArticle.Valid() && doc.FinalArticle.QualityScore >= e.minScore
}

func (e *Editor) existingPages() []string {
	if e.pages == nil {
		return nil
	}
	return e.pages()
}

// factCheckNotes summarizes the report for the editing prompt.
func factCheckNotes(rep *document.FactCheckReport) string {
	if rep == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Overall confidence: %s. Recommended action was %s.\n", rep.OverallConfidence, rep.RecommendedAction)
	for _, qc := range rep.QuestionableClaims {
		fmt.Fprintf(&b, "- Questionable: %s (issue: %s", qc.Claim, qc.Issue)
		if qc.Suggestion != "" {
			fmt.Fprintf(&b, "; suggestion: %s", qc.Suggestion)
		}
		b.WriteString(")\n")
	}
	for _, issue := range rep.ConsistencyIssues {
		fmt.Fprintf(&b, "- Consistency: %s\n", issue)
	}
	return strings.TrimRight(b.String(), "\n")
}
