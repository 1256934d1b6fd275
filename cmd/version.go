package cmd

import "fmt"

// RunVersion implements the native `git-ai version` subcommand. It is
// functionally identical to the `--version` flag that Execute
// (cmd/execute.go) special-cases ahead of cobra dispatch, kept for
// backward compatibility with older install scripts.
func RunVersion(version string) {
	fmt.Println("git-ai", version)
}
