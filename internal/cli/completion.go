package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for plume.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for plume.

To install completions:

  Bash (Linux):
    plume completion bash | sudo tee /etc/bash_completion.d/plume > /dev/null

  Bash (macOS with Homebrew):
    plume completion bash > $(brew --prefix)/etc/bash_completion.d/plume

  Zsh:
    plume completion zsh > "${fpath[1]}/_plume"
    # or
    plume completion zsh > ~/.zsh/completions/_plume

  Fish:
    plume completion fish > ~/.config/fish/completions/plume.fish

  PowerShell:
    plume completion powershell > plume.ps1
    # Then add ". plume.ps1" to your PowerShell profile`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
