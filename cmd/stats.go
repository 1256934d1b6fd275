package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jensroland/git-ai/internal/authorshiplog"
	gitutil "github.com/jensroland/git-ai/internal/git"
	"github.com/jensroland/git-ai/internal/project"
)

// commitStats is the spec.md §6 `git-ai stats --json` schema: who wrote
// the lines present at HEAD, and how that compares against Git's own
// (AI-blind) additions/deletions count across the full commit history.
type commitStats struct {
	HumanAdditions int `json:"human_additions"`
	HumanDeletions int `json:"human_deletions"`
	AIAdditions    int `json:"ai_additions"`
	AIAccepted     int `json:"ai_accepted"`
	AIDeletions    int `json:"ai_deletions"`
	GitDiffAdded   int `json:"git_diff_added_lines"`
	GitDiffDeleted int `json:"git_diff_deleted_lines"`
}

// RunStats is the top-level `git-ai stats` subcommand: it summarizes
// HEAD's authorship log against `git log --numstat`'s own line counts.
func RunStats(args []string) {
	fs := flag.NewFlagSet("git-ai stats", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	fs.Parse(args)

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)

	if !project.IsInitialized(root) {
		fmt.Fprintln(os.Stderr, "No provenance branch found.")
		fmt.Fprintln(os.Stderr, "Run 'git-ai enable' in this repo first.")
		os.Exit(1)
	}

	headSHA := gitutil.HeadSHA(root)
	if headSHA == "" {
		fmt.Fprintln(os.Stderr, "Error: no HEAD commit to report stats for")
		os.Exit(1)
	}

	logs := authorshiplog.NewStore(root, paths.GitDir)
	log, ok, err := logs.Read(headSHA)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading authorship log:", err)
		os.Exit(1)
	}

	gitAdded, gitDeleted, err := gitutil.DiffNumstatTotal(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading git history:", err)
		os.Exit(1)
	}

	stats := commitStats{GitDiffAdded: gitAdded, GitDiffDeleted: gitDeleted}
	if ok {
		for _, rec := range log.Prompts {
			stats.AIAdditions += rec.TotalAdditions
			stats.AIDeletions += rec.TotalDeletions
			stats.AIAccepted += rec.AcceptedLines
		}
	}
	stats.HumanAdditions = gitAdded - stats.AIAdditions
	stats.HumanDeletions = gitDeleted - stats.AIDeletions

	if *jsonOutput {
		b, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("git-ai statistics for %s\n\n", headSHA[:12])
	fmt.Printf("  Human additions:  %d\n", stats.HumanAdditions)
	fmt.Printf("  Human deletions:  %d\n", stats.HumanDeletions)
	fmt.Printf("  AI additions:     %d\n", stats.AIAdditions)
	fmt.Printf("  AI accepted:      %d\n", stats.AIAccepted)
	fmt.Printf("  AI deletions:     %d\n", stats.AIDeletions)
	fmt.Printf("  Git diff added:   %d\n", stats.GitDiffAdded)
	fmt.Printf("  Git diff deleted: %d\n", stats.GitDiffDeleted)
}
