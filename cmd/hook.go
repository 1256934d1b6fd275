package cmd

import (
	"fmt"
	"os"

	"github.com/jensroland/git-ai/internal/debug"
	"github.com/jensroland/git-ai/internal/hook"
	"github.com/jensroland/git-ai/internal/project"
)

// RunHook dispatches hook subcommands. pre-push mirrors the git hook
// installed by "git-ai enable" to push the provenance branch alongside
// the code branch.
func RunHook(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: git-ai hook <pre-push>")
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "pre-push":
		err = hook.HandlePrePush()
	default:
		fmt.Fprintf(os.Stderr, "Unknown hook type: %s\n", args[0])
		os.Exit(1)
	}

	if err != nil {
		// Log error but never fail -- hooks must not block the push
		if root, e := project.FindRoot(); e == nil {
			paths := project.NewPaths(root)
			debug.Log(paths.CacheDir, "hook.log", fmt.Sprintf("Fatal error: %v", err), nil)
		}
	}
	// Always exit 0
}
