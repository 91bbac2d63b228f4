// Package stub materializes gap concepts as wiki pages: alias pages for
// redirects and short model-written definitions for everything a full
// pipeline run would be overkill for.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/gap"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/output"
	"github.com/plumeworks/plume/internal/wiki"
)

// ErrNotMaterialized marks concept types the generator leaves alone:
// FULL_ARTICLE gaps belong to the publishing pipeline and IGNORE gaps to
// nobody.
var ErrNotMaterialized = errors.New("stub: concept does not materialize as a stub page")

const definitionSystem = "You write terse definition stubs for a wiki. Use wiki syntax only: " +
	"!!! headings, __bold__, ''italic'', * bullets, [PageName] links. Never markdown."

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
	defaultConcurrency = 4
)

// Page is one generated stub, named and ready to write.
type Page struct {
	Name    string
	Content string
}

// Generator turns gap concepts into stub pages.
type Generator struct {
	client      llm.Client
	writer      *output.Writer
	temperature float64
	maxTokens   int
	concurrency int
	logger      *log.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature for definition calls.
func WithTemperature(temperature float64) Option {
	return func(g *Generator) {
		g.temperature = temperature
	}
}

// WithMaxTokens caps the definition call response size.
func WithMaxTokens(maxTokens int) Option {
	return func(g *Generator) {
		g.maxTokens = maxTokens
	}
}

// WithConcurrency bounds how many definition calls run at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a stub generator writing through the given output
// writer.
func NewGenerator(client llm.Client, writer *output.Writer, opts ...Option) *Generator {
	g := &Generator{
		client:      client,
		writer:      writer,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		concurrency: defaultConcurrency,
		logger:      logging.New("stub"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the stub page for one concept without writing it.
// Redirects are deterministic alias directives; definitions cost one model
// call and fall back to a reference-listing template when the call fails.
// FULL_ARTICLE and IGNORE concepts return ErrNotMaterialized.
func (g *Generator) Generate(ctx context.Context, concept gap.Concept, universe *document.Universe) (Page, error) {
	switch concept.Type {
	case gap.TypeRedirect:
		if concept.RedirectTarget == "" {
			return Page{}, fmt.Errorf("stub: redirect %q has no target", concept.Name)
		}
		return Page{
			Name:    concept.PageName,
			Content: fmt.Sprintf("[{ALIAS %s}]", concept.RedirectTarget),
		}, nil
	case gap.TypeDefinition:
		return g.definition(ctx, concept, universe)
	default:
		return Page{}, fmt.Errorf("stub: %s %q: %w", concept.Type, concept.Name, ErrNotMaterialized)
	}
}

// GenerateAll writes stubs for every materializable concept whose page does
// not already exist. Definition calls fan out concurrently; the returned
// paths are sorted.
func (g *Generator) GenerateAll(ctx context.Context, concepts []gap.Concept, universe *document.Universe) ([]string, error) {
	stems, err := g.writer.DiscoverExistingPages()
	if err != nil {
		return nil, fmt.Errorf("stub: discovering pages: %w", err)
	}
	existing := make(map[string]bool, len(stems))
	for _, stem := range stems {
		existing[stem] = true
	}

	var (
		mu    sync.Mutex
		paths []string
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for _, concept := range concepts {
		if concept.Type == gap.TypeFullArticle || concept.Type == gap.TypeIgnore {
			g.logger.Debug("not materialized as a stub", "concept", concept.Name, "type", concept.Type)
			continue
		}
		if existing[concept.PageName] {
			g.logger.Debug("page already exists", "concept", concept.Name, "page", concept.PageName)
			continue
		}
		eg.Go(func() error {
			page, err := g.Generate(ctx, concept, universe)
			if err != nil {
				return err
			}
			path, err := g.writer.WritePage(page.Name, page.Content)
			if err != nil {
				return err
			}
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	g.logger.Info("stub generation complete", "written", len(paths), "considered", len(concepts))
	return paths, nil
}

func (g *Generator) definition(ctx context.Context, concept gap.Concept, universe *document.Universe) (Page, error) {
	resp, err := g.client.Chat(ctx, llm.ChatRequest{
		System:      definitionSystem,
		Prompt:      g.prompt(concept, universe),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		g.logger.Warn("definition call failed, using fallback", "concept", concept.Name, "error", err)
		return Page{Name: concept.PageName, Content: g.fallback(concept)}, nil
	}

	content := wiki.NormalizeSyntax(strings.TrimSpace(resp.Text))
	if content == "" {
		content = g.fallback(concept)
	} else if !strings.HasPrefix(content, "!") {
		content = fmt.Sprintf("!!!%s\n\n%s", concept.Name, content)
	}
	return Page{Name: concept.PageName, Content: content}, nil
}

// fallback is the stub written when the model cannot be reached: a heading
// and a sentence linking back to every page that wanted this one.
func (g *Generator) fallback(concept gap.Concept) string {
	var b strings.Builder
	fmt.Fprintf(&b, "!!!%s\n\n", concept.Name)
	fmt.Fprintf(&b, "''%s'' does not have a full definition yet.", concept.Name)
	if len(concept.ReferencedBy) > 0 {
		b.WriteString(" It is referenced by ")
		for i, ref := range concept.ReferencedBy {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "[%s]", ref)
		}
		b.WriteString(".")
	}
	return b.String()
}

func (g *Generator) prompt(concept gap.Concept, universe *document.Universe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a definition stub for the wiki page %q.\n", concept.Name)
	if universe != nil {
		fmt.Fprintf(&b, "The wiki covers %s.", universe.Name)
		if universe.Description != "" {
			fmt.Fprintf(&b, " %s", universe.Description)
		}
		b.WriteString("\n")
		if universe.Audience != "" {
			fmt.Fprintf(&b, "Write for %s.\n", universe.Audience)
		}
	}
	if len(concept.ReferencedBy) > 0 {
		fmt.Fprintf(&b, "Pages that reference it: %s.\n", strings.Join(concept.ReferencedBy, ", "))
	}
	if concept.Category != "" {
		fmt.Fprintf(&b, "It belongs to the %s category.\n", concept.Category)
	}
	fmt.Fprintf(&b, "\nAim for 100 to 200 words: define the concept, say why it matters here, and stop.\n")
	fmt.Fprintf(&b, "Stay within what the referencing pages imply; do not invent specifics.\n")
	fmt.Fprintf(&b, "Respond with the wiki text only, starting with the heading line !!!%s", concept.Name)
	return b.String()
}
