package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/search"
)

const researcherSystem = "You are a meticulous research assistant preparing grounding material " +
	"for encyclopedia articles. You never invent facts and you grade your sources honestly. " +
	"You respond with JSON only."

const researcherSchema = `{
  "keyFacts": ["Git records snapshots of the whole tree rather than file diffs."],
  "sources": [{"text": "Pro Git book, chapter 1", "reliability": "OFFICIAL"}],
  "suggestedOutline": ["Overview", "Core Concepts", "Everyday Commands"],
  "relatedPageSuggestions": ["BranchingStrategies"],
  "glossary": {"commit": "a recorded snapshot of the project"},
  "uncertainAreas": ["Exact adoption statistics by year"]
}`

// Researcher produces the research brief a draft is written from. When
// search is available its results are folded into the prompt with
// reliability annotations.
type Researcher struct {
	rt          *Runtime
	search      *search.Service
	temperature float64
	maxTokens   int
}

// NewResearcher creates the researcher. The search service may be nil.
func NewResearcher(rt *Runtime, svc *search.Service, temperature float64, maxTokens int) *Researcher {
	return &Researcher{rt: rt, search: svc, temperature: temperature, maxTokens: maxTokens}
}

var _ Agent = (*Researcher)(nil)

// Role implements Agent.
func (r *Researcher) Role() Role {
	return RoleResearcher
}

type researcherPromptData struct {
	Topic            string
	Audience         string
	RequiredSections []string
	SourceURLs       []string
	RelatedPages     []string
	SearchContext    string
	Schema           string
}

// Process researches the document's topic and attaches the ResearchBrief.
func (r *Researcher) Process(ctx context.Context, doc *document.Document) error {
	data := researcherPromptData{
		Topic:            doc.Title,
		Audience:         doc.Brief.Audience,
		RequiredSections: doc.Brief.RequiredSections,
		SourceURLs:       doc.Brief.SourceURLs,
		RelatedPages:     doc.Brief.RelatedPages,
		SearchContext:    r.searchContext(ctx, doc.Title),
		Schema:           researcherSchema,
	}
	prompt, err := renderPrompt("researcher.tmpl", data)
	if err != nil {
		return &Error{Role: RoleResearcher, Err: err}
	}

	out := &document.ResearchBrief{}
	inv, err := r.rt.Invoke(ctx, Request{
		Role:        RoleResearcher,
		System:      researcherSystem,
		Prompt:      prompt,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
		Verify: func() error {
			if !out.Valid() {
				return errors.New("research brief needs at least one key fact and one outline section")
			}
			return nil
		},
	}, out)
	if err != nil {
		return err
	}

	doc.ResearchBrief = out
	Contribute(doc, RoleResearcher, inv)
	return nil
}

// Validate implements Agent.
func (r *Researcher) Validate(doc *document.Document) bool {
	return doc.ResearchBrief.Valid()
}

// searchContext gathers provider material for the prompt: a topic
// recognition score, graded search results, related topics, and a reference
// summary. Empty when search is off or returns nothing.
func (r *Researcher) searchContext(ctx context.Context, topic string) string {
	if r.search == nil || !r.search.Enabled() {
		return ""
	}

	var b strings.Builder
	if score := r.search.ValidateTopic(ctx, topic); score > 0 {
		fmt.Fprintf(&b, "Topic recognition score from %s: %.2f\n", r.search.ProviderName(), score)
	}
	for _, res := range r.search.Search(ctx, topic) {
		grade := res.Reliability
		if grade == "" {
			grade = document.ReliabilityUncertain
		}
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", grade, res.Title, res.Snippet, res.URL)
	}
	if related := r.search.RelatedTopics(ctx, topic); len(related) > 0 {
		fmt.Fprintf(&b, "Related topics: %s\n", strings.Join(related, ", "))
	}
	if summary := r.search.TopicSummary(ctx, topic); summary != "" {
		fmt.Fprintf(&b, "Reference summary: %s\n", summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
