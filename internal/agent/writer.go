package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/wiki"
)

const writerSystem = "You are a wiki article writer. You write clear, well-structured articles " +
	"in wiki syntax, grounded strictly in the research brief you are given. " +
	"You respond with JSON only."

const writerSchema = `{
  "wikiContent": "!!!Version Control Basics\nVersion control records every change...",
  "summary": "An introduction to version control for newcomers.",
  "internalLinks": ["BranchingStrategies"],
  "categories": ["SoftwareDevelopment"],
  "metadata": {"tone": "introductory"}
}`

// defaultTargetWords applies when the brief does not request a length.
const defaultTargetWords = 800

// Writer turns a research brief into an article draft. On fact-check
// revisions it reworks the draft against the revision notes on the document.
type Writer struct {
	rt          *Runtime
	pages       PageSource
	links       config.LinksConfig
	temperature float64
	maxTokens   int
}

// NewWriter creates the writer. The page source may be nil when no corpus
// exists yet.
func NewWriter(rt *Runtime, pages PageSource, links config.LinksConfig, temperature float64, maxTokens int) *Writer {
	return &Writer{rt: rt, pages: pages, links: links, temperature: temperature, maxTokens: maxTokens}
}

var _ Agent = (*Writer)(nil)

// Role implements Agent.
func (w *Writer) Role() Role {
	return RoleWriter
}

type writerPromptData struct {
	Title          string
	PageName       string
	Audience       string
	TargetWords    int
	KeyFacts       string
	Outline        string
	Glossary       string
	UncertainAreas string
	ExistingPages  []string
	MinLinks       int
	MaxLinks       int
	RevisionNotes  string
	Schema         string
}

// Process drafts the article and attaches it to the document.
func (w *Writer) Process(ctx context.Context, doc *document.Document) error {
	brief := doc.ResearchBrief
	if !brief.Valid() {
		return &Error{Role: RoleWriter, Err: errors.New("missing research brief")}
	}

	targetWords := doc.Brief.TargetWordCount
	if targetWords <= 0 {
		targetWords = defaultTargetWords
	}

	data := writerPromptData{
		Title:          doc.Title,
		PageName:       doc.PageName,
		Audience:       doc.Brief.Audience,
		TargetWords:    targetWords,
		KeyFacts:       bulletList(brief.KeyFacts),
		Outline:        numberedList(brief.SuggestedOutline),
		Glossary:       formatGlossary(brief.Glossary),
		UncertainAreas: bulletList(brief.UncertainAreas),
		ExistingPages:  w.existingPages(),
		MinLinks:       minLinksFor(w.links, targetWords),
		MaxLinks:       maxLinksFor(w.links),
		RevisionNotes:  doc.RevisionNotes,
		Schema:         writerSchema,
	}
	prompt, err := renderPrompt("writer.tmpl", data)
	if err != nil {
		return &Error{Role: RoleWriter, Err: err}
	}

	out := &document.ArticleDraft{}
	inv, err := w.rt.Invoke(ctx, Request{
		Role:        RoleWriter,
		System:      writerSystem,
		Prompt:      prompt,
		Temperature: w.temperature,
		MaxTokens:   w.maxTokens,
		Verify: func() error {
			if !out.Valid() {
				return errors.New("draft needs non-blank wikiContent and summary")
			}
			return nil
		},
	}, out)
	if err != nil {
		return err
	}

	out.WikiContent = wiki.NormalizeSyntax(out.WikiContent)
	if len(out.InternalLinks) == 0 {
		out.InternalLinks = linkTargets(out.WikiContent)
	}

	doc.Draft = out
	Contribute(doc, RoleWriter, inv)
	return nil
}

// Validate implements Agent.
func (w *Writer) Validate(doc *document.Document) bool {
	return doc.Draft.Valid()
}

func (w *Writer) existingPages() []string {
	if w.pages == nil {
		return nil
	}
	return w.pages()
}

// minLinksFor converts the per-100-words floor into a whole-article minimum.
func minLinksFor(links config.LinksConfig, targetWords int) int {
	if links.MinPer100Words <= 0 {
		return 1
	}
	return int(math.Ceil(links.MinPer100Words * float64(targetWords) / 100))
}

func maxLinksFor(links config.LinksConfig) int {
	if links.MaxPerArticle <= 0 {
		return 12
	}
	return links.MaxPerArticle
}

// linkTargets lists the distinct link targets in wiki content, sorted.
func linkTargets(content string) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, link := range wiki.ExtractLinks(content) {
		if seen[link.Target] {
			continue
		}
		seen[link.Target] = true
		targets = append(targets, link.Target)
	}
	sort.Strings(targets)
	return targets
}

func formatGlossary(glossary map[string]string) string {
	if len(glossary) == 0 {
		return ""
	}
	terms := make([]string, 0, len(glossary))
	for term := range glossary {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	var b strings.Builder
	for _, term := range terms {
		fmt.Fprintf(&b, "- %s: %s\n", term, glossary[term])
	}
	return strings.TrimRight(b.String(), "\n")
}
