package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumeworks/plume/internal/config"
)

// initFlagName and initFlagForce are the flag values for the init subcommand.
var (
	initFlagName  string
	initFlagForce bool
)

// initCmd implements "plume init [template]". It scaffolds a new wiki project
// from an embedded template and needs no existing plume.toml, so it is safe
// to run in a fresh directory.
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Initialize a new wiki project from a template",
	Long: `Initialize a wiki project directory by rendering an embedded template:
a plume.toml, a universe.toml describing the wiki's identity, and a
starter topic brief. Existing files are preserved unless --force is
supplied.`,
	Example: `  # Scaffold the starter template in the current directory
  plume init

  # Scaffold with an explicit universe name
  plume init starter --name "Personal Finance"

  # Overwrite existing files
  plume init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initFlagName, "name", "n", "", "Universe name (defaults to current directory name)")
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

// runInit is the RunE handler for the init command.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve the template name (default: starter).
	templateName := "starter"
	if len(args) > 0 {
		templateName = args[0]
	}

	// Validate that the requested template exists.
	if !config.TemplateExists(templateName) {
		available, listErr := config.ListTemplates()
		if listErr != nil {
			return fmt.Errorf("listing available templates: %w", listErr)
		}
		return fmt.Errorf("template %q not found; available templates: %s",
			templateName, strings.Join(available, ", "))
	}

	// Resolve the destination directory (current working directory after any
	// --dir change applied in PersistentPreRunE).
	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// Resolve the universe name.
	universeName := initFlagName
	if universeName == "" {
		universeName = filepath.Base(destDir)
	}

	// Reject path traversal in the universe name.
	if strings.Contains(universeName, "../") || strings.Contains(universeName, "..\\") {
		return fmt.Errorf("invalid universe name %q: must not contain path traversal sequences", universeName)
	}

	// Guard against overwriting an existing plume.toml unless --force is set.
	plumeToml := filepath.Join(destDir, config.ConfigFileName)
	if _, statErr := os.Stat(plumeToml); statErr == nil && !initFlagForce {
		return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.ConfigFileName, destDir)
	}

	defaults := config.DefaultConfig()
	vars := config.TemplateVars{
		UniverseName: universeName,
		Model:        defaults.Anthropic.Model,
		OutputDir:    defaults.Output.Directory,
	}

	// Render the template.
	created, err := config.RenderTemplate(templateName, destDir, vars, initFlagForce)
	if err != nil {
		return fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	// --- Success output (all to stderr) ---
	stderr := os.Stderr

	fmt.Fprintf(stderr, "Initialized wiki %q from template %q\n\n", universeName, templateName)

	if len(created) > 0 {
		fmt.Fprintln(stderr, "Created files:")
		for _, f := range created {
			// Print relative paths when possible for readability.
			rel, relErr := filepath.Rel(destDir, f)
			if relErr != nil {
				rel = f
			}
			fmt.Fprintf(stderr, "  %s\n", rel)
		}
		fmt.Fprintln(stderr)
	}

	fmt.Fprintln(stderr, "Next steps:")
	fmt.Fprintln(stderr, "  1. Export ANTHROPIC_API_KEY")
	fmt.Fprintf(stderr, "  2. Edit %s and universe.toml to fit your wiki\n", config.ConfigFileName)
	fmt.Fprintln(stderr, "  3. Run: plume publish briefs/getting-started.toml")

	return nil
}
