// Command plume runs the multi-agent wiki publishing pipeline: research,
// draft, fact-check, edit, critique, publish. See `plume --help` for the
// available subcommands.
package main

import (
	"os"

	"github.com/plumeworks/plume/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
