package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-ai/internal/project"
	"github.com/jensroland/git-ai/internal/provenance"
)

// RunEnable handles the "enable" subcommand.
func RunEnable(_ []string) {
	enableRepo()
}

func enableRepo() {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(1)
	}
	projDir := strings.TrimSpace(string(out))
	paths := project.NewPaths(projDir)

	fmt.Printf("Initializing git-ai in %s\n", projDir)

	// 1. Initialize provenance branch
	if err := provenance.InitBranch(projDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating provenance branch: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  \u2713 Provenance branch '%s' initialized\n", provenance.BranchName)

	// 2. Local cache directories
	_ = os.MkdirAll(paths.PendingDir, 0o755)
	_ = os.MkdirAll(filepath.Join(paths.CacheDir, "logs"), 0o755)
	fmt.Println("  \u2713 Local cache at .git/git-ai/")

	// 3. Install git hooks
	installGitHook(paths.GitDir, "pre-push",
		"# git-ai: push provenance branch",
		"git-ai hook pre-push")

	// 4. Try to fetch provenance branch from remote (if it exists)
	cmd := exec.Command("git", "fetch", "origin", provenance.BranchName)
	cmd.Dir = projDir
	_ = cmd.Run() // ignore errors — remote may not have the branch

	fmt.Println()
	fmt.Println("  Ready! Provenance data will be stored on the")
	fmt.Printf("  '%s' branch automatically.\n", provenance.BranchName)
}

// installGitHook installs or appends a git-ai section to a git hook script.
func installGitHook(gitDir, hookName, marker, command string) {
	hookDir := filepath.Join(gitDir, "hooks")
	hookFile := filepath.Join(hookDir, hookName)

	if data, err := os.ReadFile(hookFile); err == nil && strings.Contains(string(data), marker) {
		fmt.Printf("  \u2713 %s hook already installed\n", hookName)
		return
	}

	_ = os.MkdirAll(hookDir, 0o755)
	hookContent := fmt.Sprintf("\n%s\n%s\n", marker, command)

	if _, err := os.Stat(hookFile); err == nil {
		// Append to existing hook
		f, err := os.OpenFile(hookFile, os.O_APPEND|os.O_WRONLY, 0o755)
		if err == nil {
			f.WriteString(hookContent)
			f.Close()
			fmt.Printf("  \u2713 Appended to existing %s hook\n", hookName)
		}
	} else {
		_ = os.WriteFile(hookFile, []byte("#!/usr/bin/env bash\n"+hookContent), 0o755)
		fmt.Printf("  \u2713 Installed %s hook\n", hookName)
	}
}
