package cmd

import (
	"fmt"
	"os"
)

const githubWorkflowTemplate = `name: git-ai
on: [pull_request]
jobs:
  verify-authorship:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
        with:
          fetch-depth: 0
      - name: Install git-ai
        run: curl -fsSL https://raw.githubusercontent.com/jensroland/git-ai/main/install.sh | bash
      - name: Verify authorship logs
        run: |
          git rev-parse --verify --quiet git-ai-provenance >/dev/null || {
            echo "No git-ai-provenance branch found; authorship is not being tracked." >&2
            exit 1
          }
          git-ai stats
`

// RunCI implements `git-ai ci <subcommand>`. The only subcommand is
// `github`, which emits a starter GitHub Actions workflow that fails a
// PR when the repository has no git-ai-provenance branch and otherwise
// runs `git-ai stats`. It does not check each of the PR's commits for
// an authorship log.
func RunCI(args []string) {
	if len(args) == 0 {
		printCIUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "github":
		fmt.Print(githubWorkflowTemplate)
	default:
		fmt.Fprintf(os.Stderr, "Unknown ci subcommand: %s\n\n", args[0])
		printCIUsage()
		os.Exit(1)
	}
}

func printCIUsage() {
	fmt.Fprintln(os.Stderr, "git-ai ci - Continuous integration utilities")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: git-ai ci <subcommand>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Subcommands:")
	fmt.Fprintln(os.Stderr, "  github    Emit a GitHub Actions workflow that checks the provenance branch exists")
}
