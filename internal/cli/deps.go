package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/plumeworks/plume/internal/agent"
	"github.com/plumeworks/plume/internal/approval"
	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/monitor"
	"github.com/plumeworks/plume/internal/output"
	"github.com/plumeworks/plume/internal/pipeline"
	"github.com/plumeworks/plume/internal/search"
	"github.com/plumeworks/plume/internal/store"
	"github.com/plumeworks/plume/internal/wiki"
)

// State directories under the project root. Relative paths resolve against
// the working directory after the --dir persistent flag has been applied.
const (
	documentsDir = ".plume/documents"
	universesDir = ".plume/universes"
)

// universeFileName is the identity file plume init scaffolds at the project
// root.
const universeFileName = "universe.toml"

// universeFile mirrors universe.toml. Identity fields only; the page list
// always comes from the live corpus.
type universeFile struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Audience    string `toml:"audience"`
}

// buildOrchestrator wires the full publishing stack from resolved
// configuration: LM client, search service, output writer, the five agents,
// approval service, document store, and the orchestrator itself. decider may
// be nil (enabled gates auto-approve); mon may be nil (no listeners).
func buildOrchestrator(cfg *config.Config, decider approval.Decider, mon *monitor.Monitor) (*pipeline.Orchestrator, *output.Writer, error) {
	// --- 1. LM client ---
	client, err := llm.NewAnthropic(cfg.Anthropic)
	if err != nil {
		return nil, nil, err
	}

	// --- 2. Search service ---
	searchSvc := buildSearchService(cfg)

	// --- 3. Output writer ---
	writer := output.NewWriter(cfg.Output.Directory, cfg.Output.FileExtension)

	// --- 4. Agents ---
	agents := buildAgents(cfg, client, searchSvc, writer)

	// --- 5. Approval service ---
	approvals := approval.NewService(cfg.Pipeline.Approval, decider)

	// --- 6. Document store ---
	docs, err := store.NewDocumentStore(documentsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("creating document store: %w", err)
	}

	// --- 7. Orchestrator ---
	opts := []pipeline.Option{pipeline.WithStore(docs)}
	if mon != nil {
		opts = append(opts, pipeline.WithMonitor(mon))
	}
	return pipeline.NewOrchestrator(agents, approvals, writer, cfg, opts...), writer, nil
}

// buildSearchService registers every provider and wraps the registry in the
// configured service policy. Registration is the one name-indexed dynamic
// edge in the system; the registry falls back to a no-op provider when
// nothing usable is registered.
func buildSearchService(cfg *config.Config) *search.Service {
	registry := search.NewRegistry()
	registry.Register(search.NewWikipedia())
	registry.Register(search.NewWikidata())
	registry.Register(search.NewHTML())
	return search.NewService(cfg.Search, registry)
}

// buildAgents constructs the five pipeline agents over one shared runtime.
func buildAgents(cfg *config.Config, client llm.Client, searchSvc *search.Service, writer *output.Writer) pipeline.Agents {
	rt := agent.NewRuntime(client)
	pages := corpusPages(writer)
	temp := cfg.Anthropic.Temperature
	maxTokens := cfg.Anthropic.MaxTokens

	return pipeline.Agents{
		Researcher:  agent.NewResearcher(rt, searchSvc, temp.Research, maxTokens),
		Writer:      agent.NewWriter(rt, pages, cfg.Links, temp.Writer, maxTokens),
		FactChecker: agent.NewFactChecker(rt, temp.FactChecker, maxTokens),
		Editor:      agent.NewEditor(rt, pages, cfg.Links, cfg.Quality.MinEditorScore, temp.Editor, maxTokens),
		Critic:      agent.NewCritic(rt, temp.Critic, maxTokens),
	}
}

// corpusPages adapts the writer's page discovery to the PageSource contract:
// log and return nil on failure rather than surfacing an error mid-phase.
func corpusPages(writer *output.Writer) agent.PageSource {
	logger := logging.New("cli")
	return func() []string {
		stems, err := writer.DiscoverExistingPages()
		if err != nil {
			logger.Warn("page discovery failed", "error", err)
			return nil
		}
		return stems
	}
}

// resolveUniverse assembles the topic universe gap categorization and stub
// generation write against. Identity comes from universe.toml when present
// (falling back to the project directory name), accumulated state from the
// universe store, and the page list from the live corpus.
func resolveUniverse(writer *output.Writer) (*document.Universe, error) {
	var ident universeFile
	if _, err := toml.DecodeFile(universeFileName, &ident); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", universeFileName, err)
	}
	if ident.Name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		ident.Name = filepath.Base(cwd)
	}

	universes, err := store.NewUniverseStore(universesDir)
	if err != nil {
		return nil, fmt.Errorf("creating universe store: %w", err)
	}

	u, err := universes.Load(universeKey(ident.Name))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		u = document.NewUniverse(ident.Name, ident.Description, ident.Audience)
	} else {
		// Stored universes carry the derived key as their name; the file
		// is authoritative for identity.
		u.Name = ident.Name
		if ident.Description != "" {
			u.Description = ident.Description
		}
		if ident.Audience != "" {
			u.Audience = ident.Audience
		}
	}

	stems, err := writer.DiscoverExistingPages()
	if err != nil {
		return nil, fmt.Errorf("discovering pages: %w", err)
	}
	for _, stem := range stems {
		u.AddPage(stem)
	}
	return u, nil
}

// saveUniverse persists the universe under its derived key.
func saveUniverse(u *document.Universe) error {
	universes, err := store.NewUniverseStore(universesDir)
	if err != nil {
		return fmt.Errorf("creating universe store: %w", err)
	}
	key := universeKey(u.Name)
	stored := *u
	stored.Name = key
	return universes.Save(&stored)
}

// universeKey derives the store key from a display name. Store keys cannot
// carry spaces, so the same CamelCase derivation pages use applies.
func universeKey(name string) string {
	key := wiki.CamelCase(name)
	if key == "" {
		key = "Universe"
	}
	return key
}
