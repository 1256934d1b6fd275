package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/jensroland/git-ai/internal/upgrade"
)

// RunUpgrade implements `git-ai upgrade [--force]`.
func RunUpgrade(args []string, currentVersion string) {
	fs := flag.NewFlagSet("git-ai upgrade", flag.ExitOnError)
	force := fs.Bool("force", false, "Reinstall even if already on the latest version")
	fs.Parse(args)

	if _, err := upgrade.Run(*force, currentVersion, ""); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
