package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/plumeworks/plume/internal/config"
)

// configCmd is the parent "config" namespace command. It has no action of its
// own -- it groups debug and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate, and debug Plume configuration.",
	// RunE shows help when invoked with no subcommand.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "plume config debug".
// It prints the fully-resolved configuration with source annotations.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
the source where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		printResolvedConfig(cmd, resolved)
		return nil
	},
}

// configValidateCmd implements "plume config validate".
// It validates the resolved configuration and reports all errors and warnings.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig(nil)
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd, result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
// Commands without config-overriding flags pass nil overrides.
func loadAndResolveConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
		cfgPath string
	)

	if flagConfig != "" {
		// Explicit --config path provided.
		cfgPath = flagConfig
		fc, md, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg = fc
		meta = &md
	} else {
		// Auto-detect plume.toml by walking up from cwd.
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		if found != "" {
			cfgPath = found
			fc, md, err := config.Load(cfgPath)
			if err != nil {
				return nil, nil, fmt.Errorf("loading config: %w", err)
			}
			fileCfg = fc
			meta = &md
		}
	}

	resolved := config.Resolve(config.DefaultConfig(), fileCfg, meta, os.LookupEnv, overrides)
	resolved.Path = cfgPath

	return resolved, meta, nil
}

// ---- Lipgloss styles --------------------------------------------------------

// sourceStyle returns a lipgloss style for a given ConfigSource.
// When --no-color is active, lipgloss automatically strips ANSI because
// the root PersistentPreRunE sets the color profile to Ascii.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	default: // SourceDefault
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleSection  = lipgloss.NewStyle().Bold(true)
	styleErrorLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// ---- printResolvedConfig ----------------------------------------------------

const fieldWidth = 26 // column width for field names

// printResolvedConfig writes the formatted resolved configuration to cmd's
// output writer (stdout by default).
func printResolvedConfig(cmd *cobra.Command, rc *config.ResolvedConfig) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Debug")
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, strings.Repeat("=", len("Configuration Debug")))
	fmt.Fprintln(out)

	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}
	fmt.Fprintln(out)

	// --- [anthropic] ---
	fmt.Fprintln(out, styleSection.Render("[anthropic]"))
	a := rc.Config.Anthropic
	printField(out, "model", fmtStr(a.Model), rc.Sources["anthropic.model"])
	printField(out, "max_tokens", strconv.Itoa(a.MaxTokens), rc.Sources["anthropic.max_tokens"])
	printField(out, "api_key", fmtSecret(a.APIKey), rc.Sources["anthropic.api_key"])
	fmt.Fprintln(out)

	// --- [anthropic.temperature] ---
	fmt.Fprintln(out, styleSection.Render("[anthropic.temperature]"))
	temp := a.Temperature
	printField(out, "research", fmtFloat(temp.Research), rc.Sources["anthropic.temperature.research"])
	printField(out, "writer", fmtFloat(temp.Writer), rc.Sources["anthropic.temperature.writer"])
	printField(out, "factchecker", fmtFloat(temp.FactChecker), rc.Sources["anthropic.temperature.factchecker"])
	printField(out, "editor", fmtFloat(temp.Editor), rc.Sources["anthropic.temperature.editor"])
	printField(out, "critic", fmtFloat(temp.Critic), rc.Sources["anthropic.temperature.critic"])
	fmt.Fprintln(out)

	// --- [pipeline] ---
	fmt.Fprintln(out, styleSection.Render("[pipeline]"))
	p := rc.Config.Pipeline
	printField(out, "max_revision_cycles", strconv.Itoa(p.MaxRevisionCycles), rc.Sources["pipeline.max_revision_cycles"])
	printField(out, "phase_timeout", fmtStr(p.PhaseTimeout.String()), rc.Sources["pipeline.phase_timeout"])
	fmt.Fprintln(out)

	// --- [pipeline.approval] ---
	fmt.Fprintln(out, styleSection.Render("[pipeline.approval]"))
	ap := p.Approval
	printField(out, "after_research", strconv.FormatBool(ap.AfterResearch), rc.Sources["pipeline.approval.after_research"])
	printField(out, "after_draft", strconv.FormatBool(ap.AfterDraft), rc.Sources["pipeline.approval.after_draft"])
	printField(out, "after_factcheck", strconv.FormatBool(ap.AfterFactCheck), rc.Sources["pipeline.approval.after_factcheck"])
	printField(out, "after_edit", strconv.FormatBool(ap.AfterEdit), rc.Sources["pipeline.approval.after_edit"])
	printField(out, "before_publish", strconv.FormatBool(ap.BeforePublish), rc.Sources["pipeline.approval.before_publish"])
	fmt.Fprintln(out)

	// --- [output] ---
	fmt.Fprintln(out, styleSection.Render("[output]"))
	o := rc.Config.Output
	printField(out, "directory", fmtStr(o.Directory), rc.Sources["output.directory"])
	printField(out, "file_extension", fmtStr(o.FileExtension), rc.Sources["output.file_extension"])
	fmt.Fprintln(out)

	// --- [quality] ---
	fmt.Fprintln(out, styleSection.Render("[quality]"))
	qu := rc.Config.Quality
	printField(out, "min_factcheck_confidence", fmtStr(qu.MinFactCheckConfidence), rc.Sources["quality.min_factcheck_confidence"])
	printField(out, "min_editor_score", fmtFloat(qu.MinEditorScore), rc.Sources["quality.min_editor_score"])
	fmt.Fprintln(out)

	// --- [search] ---
	fmt.Fprintln(out, styleSection.Render("[search]"))
	s := rc.Config.Search
	printField(out, "enabled", strconv.FormatBool(s.Enabled), rc.Sources["search.enabled"])
	printField(out, "max_results", strconv.Itoa(s.MaxResults), rc.Sources["search.max_results"])
	printField(out, "default_provider", fmtStr(s.DefaultProvider), rc.Sources["search.default_provider"])
	fmt.Fprintln(out)

	// --- [links] ---
	fmt.Fprintln(out, styleSection.Render("[links]"))
	l := rc.Config.Links
	printField(out, "max_per_article", strconv.Itoa(l.MaxPerArticle), rc.Sources["links.max_per_article"])
	printField(out, "min_per_100_words", fmtFloat(l.MinPer100Words), rc.Sources["links.min_per_100_words"])
	fmt.Fprintln(out)
}

// printField writes a single key = value (source: ...) line.
func printField(out io.Writer, name, value string, src config.ConfigSource) {
	// Left-pad the field name to fieldWidth.
	padded := fmt.Sprintf("  %-*s", fieldWidth, name)
	srcLabel := sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src))
	line := fmt.Sprintf("%s = %-40s %s\n", padded, value, srcLabel)
	fmt.Fprint(out, line)
}

// fmtStr formats a string value for display (quoted).
func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// fmtFloat formats a float value for display.
func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// fmtSecret masks a credential, reporting presence only.
func fmtSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	return "(set)"
}

// ---- printValidationResult --------------------------------------------------

// printValidationResult writes the formatted validation report to cmd's
// output writer.
func printValidationResult(cmd *cobra.Command, result *config.ValidationResult) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Validation")
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, strings.Repeat("=", len("Configuration Validation")))
	fmt.Fprintln(out)

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
