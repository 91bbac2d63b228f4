package gap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/jsonutil"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
)

const categorizerSystem = "You are the taxonomist of a wiki. You decide which referenced but " +
	"missing pages deserve a definition stub, a redirect, a full article, or nothing at all. " +
	"You respond with JSON only."

const categorizerSchema = `[
  {"name": "compound interest", "type": "REDIRECT", "redirectTarget": "CompoundInterest"},
  {"name": "Present Value", "type": "DEFINITION", "category": "Finance"},
  {"name": "1970s", "type": "IGNORE"}
]`

// Categorizer refines scan-time gap classifications with one batched LM
// call. Scan defaults survive anything the model gets wrong: unknown names
// and invalid types are ignored entry by entry.
type Categorizer struct {
	client      llm.Client
	temperature float64
	maxTokens   int
	logger      *log.Logger
}

// CategorizerOption configures a Categorizer.
type CategorizerOption func(*Categorizer)

// WithCategorizerLogger overrides the default logger.
func WithCategorizerLogger(logger *log.Logger) CategorizerOption {
	return func(c *Categorizer) {
		c.logger = logger
	}
}

// NewCategorizer creates a categorizer.
func NewCategorizer(client llm.Client, temperature float64, maxTokens int, opts ...CategorizerOption) *Categorizer {
	c := &Categorizer{
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logging.New("gap"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type categorization struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	RedirectTarget string `json:"redirectTarget"`
	Category       string `json:"category"`
}

// Categorize asks the model to classify every concept in one call and
// returns the refined list. On LM failure the input is returned unchanged
// alongside the error, so a caller can still act on scan defaults.
func (c *Categorizer) Categorize(ctx context.Context, concepts []Concept, universe *document.Universe) ([]Concept, error) {
	if len(concepts) == 0 {
		return concepts, nil
	}

	resp, err := c.client.Chat(ctx, llm.ChatRequest{
		System:      categorizerSystem,
		Prompt:      c.prompt(concepts, universe),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return concepts, fmt.Errorf("gap: categorization call: %w", err)
	}

	var rows []categorization
	if err := json.Unmarshal([]byte(resp.Text), &rows); err != nil {
		if err := jsonutil.ExtractInto(resp.Text, &rows); err != nil {
			return concepts, fmt.Errorf("gap: parsing categorization: %w", err)
		}
	}

	matcher := NewMatcher()
	byKey := make(map[string]int, len(concepts))
	for i, concept := range concepts {
		byKey[matcher.Normalize(concept.Name)] = i
	}

	out := make([]Concept, len(concepts))
	copy(out, concepts)
	for _, row := range rows {
		i, ok := byKey[matcher.Normalize(row.Name)]
		if !ok {
			c.logger.Debug("categorizer named an unknown gap", "name", row.Name)
			continue
		}
		typ := Type(row.Type)
		if !typ.Valid() {
			c.logger.Debug("categorizer returned an invalid type", "name", row.Name, "type", row.Type)
			continue
		}
		if typ == TypeRedirect && row.RedirectTarget == "" && out[i].RedirectTarget == "" {
			c.logger.Debug("categorizer returned a redirect without a target", "name", row.Name)
			continue
		}
		out[i].Type = typ
		if typ == TypeRedirect && row.RedirectTarget != "" {
			out[i].RedirectTarget = row.RedirectTarget
		}
		if row.Category != "" {
			out[i].Category = row.Category
		}
	}
	return out, nil
}

// prompt lists every gap with its referencing pages so the model can judge
// relevance inside this universe.
func (c *Categorizer) prompt(concepts []Concept, universe *document.Universe) string {
	var b strings.Builder
	b.WriteString("Classify the missing pages of a wiki.\n")
	if universe != nil {
		fmt.Fprintf(&b, "Universe: %s.", universe.Name)
		if universe.Description != "" {
			fmt.Fprintf(&b, " %s", universe.Description)
		}
		b.WriteString("\n")
		if universe.Audience != "" {
			fmt.Fprintf(&b, "Audience: %s.\n", universe.Audience)
		}
	}
	b.WriteString("\nMissing pages, each with the pages that reference it:\n")
	for _, concept := range concepts {
		fmt.Fprintf(&b, "- %s (referenced by: %s)\n", concept.Name, strings.Join(concept.ReferencedBy, ", "))
	}
	b.WriteString(`
For each name choose a type:
- DEFINITION: a short definition stub serves readers best.
- REDIRECT: the name is another spelling of an existing page; set
  redirectTarget to that page.
- FULL_ARTICLE: the concept deserves a complete article of its own.
- IGNORE: not worth a page in this universe.

Optionally add a category grouping related concepts.

Respond with JSON only, matching exactly this shape:
`)
	b.WriteString(categorizerSchema)
	return b.String()
}
