package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	git "github.com/go-git/go-git/v5"

	"github.com/jensroland/git-ai/internal/gitconfig"
	gitutil "github.com/jensroland/git-ai/internal/git"
	"github.com/jensroland/git-ai/internal/project"
	"github.com/jensroland/git-ai/internal/worklog"
)

// RunBenchmark implements `git-ai benchmark`, profiling the handful of
// repo-state operations git-ai leans on most heavily: a spawned `git
// status`, go-git's in-process worktree status (the pure-Go stand-in
// for the original's libgit2 comparison), and a working-log read (the
// List step a checkpoint performs, not a full checkpoint).
// Nothing here gates correctness; it's a developer-facing sanity check
// that the transparent-wrapper overhead stays within internal/envelope's
// budget in practice, not just in theory.
func RunBenchmark(args []string) {
	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Profiling git-ai performance in repo: %s\n\n", root)

	goldStandard := timeSpawnedGitStatus(root)
	reportBenchmark("git status", goldStandard, 0)

	porcelain := timeSpawnedGitStatusPorcelain(root)
	reportBenchmark("git status --porcelain=v2", porcelain, goldStandard)

	goGitStatus, err := timeGoGitStatus(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-git status failed: %v\n", err)
	} else {
		reportBenchmark("go-git status", goGitStatus, goldStandard)
	}

	checkpointTime := timeCheckpointRoundTrip(root)
	reportBenchmark("git-ai checkpoint", checkpointTime, goldStandard)
}

func timeSpawnedGitStatus(root string) time.Duration {
	return timeCommand(root, "status")
}

func timeSpawnedGitStatusPorcelain(root string) time.Duration {
	return timeCommand(root, "status", "--porcelain=v2", "--untracked-files=no")
}

func timeCommand(root string, args ...string) time.Duration {
	start := time.Now()
	c := exec.Command(string(gitconfig.Resolve()), args...)
	c.Dir = root
	c.Stdout = nil
	c.Stderr = nil
	_ = c.Run()
	return time.Since(start)
}

func timeGoGitStatus(root string) (time.Duration, error) {
	start := time.Now()
	repo, err := git.PlainOpen(root)
	if err != nil {
		return 0, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return 0, err
	}
	if _, err := wt.Status(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// timeCheckpointRoundTrip measures the cost of the pure bookkeeping
// path (reading the working log for HEAD) a real `git-ai checkpoint`
// pays on top of the wrapped command, independent of the passthrough
// git invocation itself (already measured above).
func timeCheckpointRoundTrip(root string) time.Duration {
	paths := project.NewPaths(root)
	store := worklog.New(paths.WorklogDir)
	baseSHA := gitutil.HeadSHA(root)

	start := time.Now()
	_, _ = store.List(baseSHA)
	return time.Since(start)
}

func reportBenchmark(name string, d time.Duration, goldStandard time.Duration) {
	if goldStandard == 0 {
		fmt.Printf("%-35s %v\n", name, d)
		return
	}
	pct := float64(d) / float64(goldStandard) * 100
	fmt.Printf("%-35s %v %5.0f%%\n", name, d, pct)
}
