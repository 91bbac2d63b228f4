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
	"golang.org/x/sync/errgroup"

	"github.com/plumeworks/plume/internal/agent"
	"github.com/plumeworks/plume/internal/approval"
	"github.com/plumeworks/plume/internal/config"
	"github.com/plumeworks/plume/internal/document"
	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/monitor"
	"github.com/plumeworks/plume/internal/pipeline"
	"github.com/plumeworks/plume/internal/tui"
)

// publishFlags holds all parsed flag values for the publish command.
type publishFlags struct {
	// Topic is an inline article topic. Mutually exclusive with brief files.
	Topic string

	// Audience describes the target readership for an inline topic.
	Audience string

	// WordCount is the target article length for an inline topic.
	WordCount int

	// Sections lists required section headings for an inline topic.
	Sections []string

	// Approve routes enabled approval gates to interactive prompts.
	Approve bool

	// TUI renders live pipeline progress in a full-screen dashboard.
	TUI bool

	// JSON emits machine-readable results on stdout.
	JSON bool

	// Concurrency caps parallel pipelines when publishing several briefs.
	Concurrency int

	// Model overrides the configured Anthropic model.
	Model string

	// OutputDir overrides the configured corpus directory.
	OutputDir string

	// MaxRevisions overrides the configured revision cycle cap.
	MaxRevisions int

	// NoSearch disables external search during research.
	NoSearch bool
}

// newPublishCmd creates the "plume publish" command.
func newPublishCmd() *cobra.Command {
	var flags publishFlags

	cmd := &cobra.Command{
		Use:   "publish [brief.toml ...]",
		Short: "Run the agent pipeline to research, write, and publish articles",
		Long: `Run the publishing pipeline for one or more topic briefs.

Each brief moves through six stages in sequence:
  1. Research: gather sources and distil them into a research brief
  2. Draft: write the wiki article from the research brief
  3. Fact check: verify the draft's claims against the research
  4. Edit: polish prose and wiki links, scoring the result
  5. Critique: independent review deciding publish or revise
  6. Publish: write the approved article into the corpus

Briefs are TOML files; alternatively --topic publishes a single inline
topic without a brief file. Multiple briefs run concurrently, up to
--concurrency pipelines at a time.

Exit codes:
  0 - All briefs published successfully
  1 - Fatal error (flags, configuration, or brief files)
  2 - One or more briefs failed or were rejected
  3 - Cancelled by user (Ctrl+C)`,
		Example: `  # Publish a single brief
  plume publish briefs/black-holes.toml

  # Publish several briefs, four pipelines at a time
  plume publish briefs/*.toml --concurrency 4

  # Publish an inline topic without a brief file
  plume publish --topic "Black holes" --audience "undergraduates" --word-count 800

  # Watch progress in the live dashboard
  plume publish briefs/black-holes.toml --tui

  # Gate publication on an interactive yes/no prompt
  plume publish briefs/black-holes.toml --approve

  # Emit machine-readable results
  plume publish briefs/*.toml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, args, flags)
		},
	}

	// Inline topic flags (mutually exclusive with brief file arguments).
	cmd.Flags().StringVar(&flags.Topic, "topic", "", "Publish a single inline topic instead of brief files")
	cmd.Flags().StringVar(&flags.Audience, "audience", "", "Target readership for --topic")
	cmd.Flags().IntVar(&flags.WordCount, "word-count", 0, "Target word count for --topic (0 leaves it to the writer)")
	cmd.Flags().StringSliceVar(&flags.Sections, "section", nil, "Required section heading for --topic (repeatable)")

	// Mode flags.
	cmd.Flags().BoolVar(&flags.Approve, "approve", false, "Answer enabled approval gates interactively (requires a TTY)")
	cmd.Flags().BoolVar(&flags.TUI, "tui", false, "Render live progress in a full-screen dashboard")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Emit machine-readable results on stdout")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 2, "Maximum concurrent pipelines for several briefs (>= 1)")

	// Configuration override flags.
	cmd.Flags().StringVar(&flags.Model, "model", "", "Anthropic model (overrides config)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Corpus directory for published articles (overrides config)")
	cmd.Flags().IntVar(&flags.MaxRevisions, "max-revisions", 0, "Maximum critique revision cycles (overrides config)")
	cmd.Flags().BoolVar(&flags.NoSearch, "no-search", false, "Disable external search during research")

	return cmd
}

func init() {
	rootCmd.AddCommand(newPublishCmd())
}

// runPublish is the RunE implementation for the publish command.
func runPublish(cmd *cobra.Command, args []string, flags publishFlags) error {
	logger := logging.New("publish")

	// Step 1: Validate flag combinations.
	if err := validatePublishFlags(flags, args); err != nil {
		return err
	}

	// Step 2: Interactive modes need a terminal.
	if flags.Approve && !isStdinTTY() {
		return fmt.Errorf("--approve requires an interactive terminal")
	}
	if flags.TUI && !isStdoutTTY() {
		return fmt.Errorf("--tui requires an interactive terminal")
	}

	// Step 3: Load and resolve configuration with CLI overrides applied.
	resolved, meta, err := loadAndResolveConfig(publishOverrides(cmd, flags))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := resolved.Config

	// Step 4: Fail fast on configuration errors.
	if result := config.Validate(cfg, meta); result.HasErrors() {
		printValidationResult(cmd, result)
		return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
	}

	// Step 5: Assemble topic briefs from arguments or inline flags.
	briefs, err := assembleBriefs(flags, args)
	if err != nil {
		return err
	}

	// Step 6: Choose the approval decider.
	var decider approval.Decider
	if flags.Approve {
		if !anyGateEnabled(cfg.Pipeline.Approval) {
			// --approve with no configured gates still gates publication.
			cfg.Pipeline.Approval.BeforePublish = true
		}
		decider = approval.Interactive{}
	}

	// Step 7: Set up signal handling.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Step 8: Attach run listeners.
	mon := monitor.New()
	tally := monitor.NewTokenTally()
	mon.Subscribe(tally)
	if !flags.TUI {
		mon.Subscribe(monitor.NewLogListener(logger))
	}

	// Step 9: Build the publishing stack.
	orchestrator, _, err := buildOrchestrator(cfg, decider, mon)
	if err != nil {
		return err
	}

	// Step 10: Run the briefs.
	logger.Info("starting publish run",
		"briefs", len(briefs),
		"concurrency", flags.Concurrency,
		"model", cfg.Anthropic.Model,
		"output_dir", cfg.Output.Directory,
	)
	var results []*pipeline.Result
	if flags.TUI {
		results, err = runPublishTUI(ctx, orchestrator, mon, briefs[0])
	} else {
		results, err = runPublishBatch(ctx, orchestrator, briefs, flags.Concurrency)
	}

	// Step 11: Handle context cancellation (Ctrl+C).
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "\nPublishing cancelled.")
			os.Exit(3)
		}
		return err
	}

	// Step 12: Report results.
	if flags.JSON {
		if err := writeResultsJSON(cmd.OutOrStdout(), results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		for i, res := range results {
			printPublishSummary(cmd, briefs[i].Topic, res)
		}
		printTokenUsage(cmd, tally)
	}

	// Step 13: Map outcomes to the exit code.
	for _, res := range results {
		if !res.Success {
			os.Exit(2)
			return nil // unreachable; satisfies the compiler
		}
	}
	return nil
}

// validatePublishFlags performs structural validation of publish flags and
// arguments. Terminal checks live in runPublish so validation stays
// environment independent.
func validatePublishFlags(flags publishFlags, args []string) error {
	if flags.Topic == "" && len(args) == 0 {
		return fmt.Errorf("either --topic or at least one brief file must be specified")
	}
	if flags.Topic != "" && len(args) > 0 {
		return fmt.Errorf("--topic and brief file arguments are mutually exclusive; specify only one")
	}
	if flags.Topic == "" && (flags.Audience != "" || flags.WordCount != 0 || len(flags.Sections) > 0) {
		return fmt.Errorf("--audience, --word-count, and --section require --topic")
	}
	if flags.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be >= 1, got %d", flags.Concurrency)
	}
	if flags.TUI && flags.JSON {
		return fmt.Errorf("--tui and --json are mutually exclusive")
	}
	if flags.TUI && flags.Approve {
		return fmt.Errorf("--tui and --approve are mutually exclusive")
	}
	if flags.TUI && len(args) > 1 {
		return fmt.Errorf("--tui supports a single brief, got %d", len(args))
	}
	return nil
}

// publishOverrides maps explicitly set flags onto configuration overrides.
func publishOverrides(cmd *cobra.Command, flags publishFlags) *config.CLIOverrides {
	overrides := &config.CLIOverrides{}
	if cmd.Flags().Changed("model") {
		overrides.Model = &flags.Model
	}
	if cmd.Flags().Changed("output-dir") {
		overrides.OutputDir = &flags.OutputDir
	}
	if cmd.Flags().Changed("max-revisions") {
		overrides.MaxRevisionCycles = &flags.MaxRevisions
	}
	if flags.NoSearch {
		disabled := false
		overrides.SearchEnabled = &disabled
	}
	return overrides
}

// assembleBriefs loads brief files, or builds one brief from inline flags.
func assembleBriefs(flags publishFlags, args []string) ([]document.TopicBrief, error) {
	if flags.Topic != "" {
		brief := document.TopicBrief{
			Topic:            flags.Topic,
			Audience:         flags.Audience,
			TargetWordCount:  flags.WordCount,
			RequiredSections: flags.Sections,
		}
		if err := brief.Validate(); err != nil {
			return nil, err
		}
		return []document.TopicBrief{brief}, nil
	}

	briefs := make([]document.TopicBrief, 0, len(args))
	for _, path := range args {
		brief, err := document.LoadBrief(path)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, *brief)
	}
	return briefs, nil
}

// anyGateEnabled reports whether at least one approval gate is switched on.
func anyGateEnabled(cfg config.ApprovalConfig) bool {
	return cfg.AfterResearch || cfg.AfterDraft || cfg.AfterFactCheck || cfg.AfterEdit || cfg.BeforePublish
}

// runPublishBatch executes the briefs concurrently. A cancellation aborts the
// whole batch; per-brief domain failures land in the returned results.
func runPublishBatch(ctx context.Context, orch *pipeline.Orchestrator, briefs []document.TopicBrief, concurrency int) ([]*pipeline.Result, error) {
	results := make([]*pipeline.Result, len(briefs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, brief := range briefs {
		g.Go(func() error {
			res, err := orch.Execute(ctx, brief)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runPublishTUI executes one brief with the dashboard in the foreground.
// Quitting the dashboard early leaves the run to finish; the summary still
// prints afterwards.
func runPublishTUI(ctx context.Context, orch *pipeline.Orchestrator, mon *monitor.Monitor, brief document.TopicBrief) ([]*pipeline.Result, error) {
	listener := monitor.NewChannelListener(64)
	mon.Subscribe(listener)

	type outcome struct {
		res *pipeline.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := orch.Execute(ctx, brief)
		listener.Close()
		done <- outcome{res, err}
	}()

	if err := tui.Run(ctx, brief.Topic, listener.Events()); err != nil && ctx.Err() == nil {
		// A dashboard failure must not kill the run; wait for it headless.
		logging.New("publish").Warn("dashboard exited", "error", err)
	}

	out := <-done
	if out.err != nil {
		return nil, out.err
	}
	return []*pipeline.Result{out.res}, nil
}

// writeResultsJSON emits a single object for one result, an array otherwise.
func writeResultsJSON(w io.Writer, results []*pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// printPublishSummary writes a human-readable outcome for one brief.
func printPublishSummary(cmd *cobra.Command, topic string, res *pipeline.Result) {
	out := cmd.OutOrStdout()

	if res.Success {
		fmt.Fprintf(out, "\n%s %s\n", styleSuccess.Render("Published:"), topic)
		fmt.Fprintf(out, "  Article:  %s\n", res.OutputPath)
		if doc := res.Document; doc != nil {
			if doc.QualityAssessment != "" {
				fmt.Fprintf(out, "  Quality:  %s\n", doc.QualityAssessment)
			}
			if contribs := formatContributions(doc.ContributionsByRole()); contribs != "" {
				fmt.Fprintf(out, "  Edits:    %s\n", contribs)
			}
		}
		fmt.Fprintf(out, "  Duration: %s\n", res.TotalTime.Round(time.Millisecond))
		return
	}

	fmt.Fprintf(out, "\n%s %s\n", styleErrorLbl.Render("Failed:"), topic)
	fmt.Fprintf(out, "  Stage:    %s\n", res.FailedAtState)
	fmt.Fprintf(out, "  Reason:   %s\n", res.ErrorMessage)
	if res.FailedDocumentPath != "" {
		fmt.Fprintf(out, "  Artifact: %s\n", res.FailedDocumentPath)
	}
	fmt.Fprintf(out, "  Duration: %s\n", res.TotalTime.Round(time.Millisecond))
}

// formatContributions renders per-role contribution counts in pipeline order.
func formatContributions(contribs map[string]int) string {
	parts := make([]string, 0, len(contribs))
	for _, role := range agent.Roles() {
		if n := contribs[string(role)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", role, n))
		}
	}
	return strings.Join(parts, ", ")
}

// printTokenUsage writes the run's token totals, with a per-role breakdown
// when --verbose is set.
func printTokenUsage(cmd *cobra.Command, tally *monitor.TokenTally) {
	in, out := tally.Total()
	if in == 0 && out == 0 {
		return
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nTokens: %d in, %d out\n", in, out)
	if !flagVerbose {
		return
	}
	perRole := tally.PerRole()
	for _, role := range agent.Roles() {
		u, ok := perRole[string(role)]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-12s %d in, %d out (%d calls)\n", role, u.InputTokens, u.OutputTokens, u.Invocations)
	}
}

// isStdinTTY reports whether stdin is attached to a terminal.
// It uses os.ModeCharDevice on the file info to avoid adding new dependencies.
func isStdinTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// isStdoutTTY reports whether stdout is attached to a terminal.
func isStdoutTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
