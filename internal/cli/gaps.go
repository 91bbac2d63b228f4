package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plumeworks/plume/internal/gap"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/output"
)

// gapsFlags holds all parsed flag values for the gaps command.
type gapsFlags struct {
	// Categorize refines scan results with a language model pass.
	Categorize bool

	// Watch keeps rescanning whenever the corpus changes.
	Watch bool

	// JSON emits concepts as JSON instead of a table.
	JSON bool
}

// newGapsCmd creates the "plume gaps" command.
func newGapsCmd() *cobra.Command {
	var flags gapsFlags

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Scan the corpus for wiki links to pages that do not exist",
		Long: `Scan every published page for wiki links whose target page is missing.

Each missing target is reported once, with the pages that reference it.
The scan assigns each gap a default handling type; --categorize refines
the types with a language model pass over the whole gap list, deciding
per concept between a short definition, a redirect to an existing page,
a full article, or ignoring it.

With --watch the command stays running and rescans whenever a page in
the corpus changes.`,
		Example: `  # List missing pages
  plume gaps

  # Refine gap types with the model
  plume gaps --categorize

  # Rescan on every corpus change until Ctrl+C
  plume gaps --watch

  # Machine-readable output
  plume gaps --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGaps(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Categorize, "categorize", false, "Refine gap types with a language model pass")
	cmd.Flags().BoolVar(&flags.Watch, "watch", false, "Rescan whenever the corpus changes")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Emit gaps as JSON instead of a table")

	return cmd
}

func init() {
	rootCmd.AddCommand(newGapsCmd())
}

// runGaps is the RunE implementation for the gaps command.
func runGaps(cmd *cobra.Command, flags gapsFlags) error {
	logger := logging.New("gaps")

	// Step 1: Validate flag combinations.
	if flags.Watch && flags.Categorize {
		return fmt.Errorf("--watch and --categorize are mutually exclusive")
	}

	// Step 2: Load and resolve configuration.
	resolved, _, err := loadAndResolveConfig(nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := resolved.Config

	// Step 3: Build the detector over the corpus.
	writer := output.NewWriter(cfg.Output.Directory, cfg.Output.FileExtension)
	detector := gap.NewDetector(writer)

	// Step 4: Set up signal handling.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Step 5: Initial scan.
	concepts, err := detector.Scan(ctx)
	if err != nil {
		return err
	}

	// Step 6: Optional categorization pass. A failed model call keeps the
	// scan defaults rather than discarding the scan.
	if flags.Categorize {
		client, err := llm.NewAnthropic(cfg.Anthropic)
		if err != nil {
			return err
		}
		universe, err := resolveUniverse(writer)
		if err != nil {
			return err
		}
		categorizer := gap.NewCategorizer(client, cfg.Anthropic.Temperature.Research, cfg.Anthropic.MaxTokens)
		concepts, err = categorizer.Categorize(ctx, concepts, universe)
		if err != nil {
			logger.Warn("categorization failed; keeping scan defaults", "error", err)
		}
	}

	// Step 7: Render the results.
	if err := renderGaps(cmd.OutOrStdout(), concepts, flags.JSON); err != nil {
		return err
	}
	if !flags.Watch {
		return nil
	}

	// Step 8: Keep rescanning until interrupted.
	fmt.Fprintln(os.Stderr, "Watching for corpus changes. Press Ctrl+C to stop.")
	err = detector.Watch(ctx, cfg.Output.Directory, 0, func(rescanned []gap.Concept, scanErr error) {
		if scanErr != nil {
			logger.Warn("rescan failed", "error", scanErr)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nRescan at %s:\n", time.Now().Format("15:04:05"))
		_ = renderGaps(cmd.OutOrStdout(), rescanned, flags.JSON)
	})
	if errors.Is(err, context.Canceled) {
		// Ctrl+C is the normal way to stop watching.
		return nil
	}
	return err
}

// renderGaps writes concepts as JSON or as an aligned table.
func renderGaps(w io.Writer, concepts []gap.Concept, asJSON bool) error {
	if asJSON {
		if concepts == nil {
			concepts = []gap.Concept{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(concepts)
	}
	renderGapTable(w, concepts)
	return nil
}

// renderGapTable writes one row per gap. The category column appears only
// after a categorization pass has assigned any.
func renderGapTable(w io.Writer, concepts []gap.Concept) {
	if len(concepts) == 0 {
		fmt.Fprintln(w, "No gaps found.")
		return
	}

	hasCategory := false
	for _, c := range concepts {
		if c.Category != "" {
			hasCategory = true
			break
		}
	}

	if hasCategory {
		fmt.Fprintf(w, "%-13s %-24s %-24s %-16s %s\n", "TYPE", "NAME", "PAGE", "CATEGORY", "REFERENCED BY")
	} else {
		fmt.Fprintf(w, "%-13s %-24s %-24s %s\n", "TYPE", "NAME", "PAGE", "REFERENCED BY")
	}
	for _, c := range concepts {
		page := c.PageName
		if c.RedirectTarget != "" {
			page += " -> " + c.RedirectTarget
		}
		refs := strings.Join(c.ReferencedBy, ", ")
		if hasCategory {
			fmt.Fprintf(w, "%-13s %-24s %-24s %-16s %s\n", c.Type, c.Name, page, c.Category, refs)
		} else {
			fmt.Fprintf(w, "%-13s %-24s %-24s %s\n", c.Type, c.Name, page, refs)
		}
	}
	fmt.Fprintf(w, "\n%d gap(s) found.\n", len(concepts))
}
