package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plumeworks/plume/internal/gap"
	"github.com/plumeworks/plume/internal/llm"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/output"
	"github.com/plumeworks/plume/internal/stub"
)

// stubsFlags holds all parsed flag values for the stubs command.
type stubsFlags struct {
	// Categorize refines scan results with a language model pass first.
	Categorize bool

	// Concurrency bounds parallel definition calls.
	Concurrency int
}

// newStubsCmd creates the "plume stubs" command.
func newStubsCmd() *cobra.Command {
	var flags stubsFlags

	cmd := &cobra.Command{
		Use:   "stubs",
		Short: "Materialize missing pages as redirect and definition stubs",
		Long: `Scan the corpus for gaps and write stub pages for the ones that do not
deserve a full pipeline run.

Redirect gaps become alias pages pointing at the existing near-match.
Definition gaps become short model-written entries. Gaps typed
FULL_ARTICLE or IGNORE are left alone, as are gaps whose page appeared
since the scan.

Run with --categorize to let the model refine gap types before
materializing; otherwise the scan's defaults apply.`,
		Example: `  # Write stubs for every materializable gap
  plume stubs

  # Let the model decide types first
  plume stubs --categorize

  # Limit parallel definition calls
  plume stubs --concurrency 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStubs(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Categorize, "categorize", false, "Refine gap types with a language model pass first")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 4, "Maximum concurrent definition calls (>= 1)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newStubsCmd())
}

// runStubs is the RunE implementation for the stubs command.
func runStubs(cmd *cobra.Command, flags stubsFlags) error {
	logger := logging.New("stubs")

	// Step 1: Validate flag values.
	if flags.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be >= 1, got %d", flags.Concurrency)
	}

	// Step 2: Load and resolve configuration.
	resolved, _, err := loadAndResolveConfig(nil)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := resolved.Config

	// Step 3: Definition stubs cost model calls, so the client is required
	// up front.
	client, err := llm.NewAnthropic(cfg.Anthropic)
	if err != nil {
		return err
	}

	// Step 4: Set up signal handling.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Step 5: Scan the corpus for gaps.
	writer := output.NewWriter(cfg.Output.Directory, cfg.Output.FileExtension)
	detector := gap.NewDetector(writer)
	concepts, err := detector.Scan(ctx)
	if err != nil {
		return err
	}

	// Step 6: Resolve the universe for prompt context and page tracking.
	universe, err := resolveUniverse(writer)
	if err != nil {
		return err
	}

	// Step 7: Optional categorization pass before materializing.
	if flags.Categorize {
		categorizer := gap.NewCategorizer(client, cfg.Anthropic.Temperature.Research, cfg.Anthropic.MaxTokens)
		concepts, err = categorizer.Categorize(ctx, concepts, universe)
		if err != nil {
			logger.Warn("categorization failed; keeping scan defaults", "error", err)
		}
	}

	// Step 8: Materialize the stubs.
	generator := stub.NewGenerator(client, writer,
		stub.WithTemperature(cfg.Anthropic.Temperature.Writer),
		stub.WithConcurrency(flags.Concurrency),
	)
	paths, err := generator.GenerateAll(ctx, concepts, universe)
	if err != nil {
		return err
	}

	// Step 9: Record the grown corpus in the universe state. The stubs are
	// already on disk, so a save failure only warns.
	if stems, discoverErr := writer.DiscoverExistingPages(); discoverErr == nil {
		for _, stem := range stems {
			universe.AddPage(stem)
		}
		if saveErr := saveUniverse(universe); saveErr != nil {
			logger.Warn("saving universe state failed", "error", saveErr)
		}
	} else {
		logger.Warn("page discovery after generation failed", "error", discoverErr)
	}

	// Step 10: Report what was written.
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintln(out, "No stubs to write.")
		return nil
	}
	fmt.Fprintf(out, "Wrote %d stub(s):\n", len(paths))
	for _, path := range paths {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}
