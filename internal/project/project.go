package project

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Paths holds all relevant directories for a git-ai-enabled repo.
type Paths struct {
	Root          string // git repo root
	GitDir        string // actual .git directory (resolved for worktrees)
	PendingDir    string // <gitdir>/git-ai/pending/
	CheckpointDir string // <gitdir>/git-ai/checkpoints/
	CacheDir      string // <gitdir>/git-ai/
	IndexDB       string // <gitdir>/git-ai/index.db
	WorklogDir    string // <gitdir>/git-ai/worklogs/
	BlobDir       string // <gitdir>/git-ai/blobs/
}

// FindRoot returns the git project root, preferring CLAUDE_PROJECT_DIR if set.
func FindRoot() (string, error) {
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// NewPaths constructs all path constants from a project root.
func NewPaths(root string) Paths {
	gitDir := resolveGitDir(root)
	cacheDir := filepath.Join(gitDir, "git-ai")
	return Paths{
		Root:          root,
		GitDir:        gitDir,
		PendingDir:    filepath.Join(cacheDir, "pending"),
		CheckpointDir: filepath.Join(cacheDir, "checkpoints"),
		CacheDir:      cacheDir,
		IndexDB:       filepath.Join(cacheDir, "index.db"),
		WorklogDir:    filepath.Join(cacheDir, "worklogs"),
		BlobDir:       filepath.Join(cacheDir, "blobs"),
	}
}

// resolveGitDir returns the actual .git directory, handling worktrees
// where .git is a file containing "gitdir: <path>".
func resolveGitDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Lstat(dotGit)
	if err != nil {
		return dotGit
	}
	if info.IsDir() {
		return dotGit
	}
	// .git is a file (worktree) — read the gitdir pointer
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return dotGit
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir: ") {
		return dotGit
	}
	gitdir := strings.TrimPrefix(content, "gitdir: ")
	if !filepath.IsAbs(gitdir) {
		gitdir = filepath.Join(root, gitdir)
	}
	return gitdir
}

// IsInitialized returns true if the provenance branch exists
// or the legacy .git-ai/ directory exists.
func IsInitialized(root string) bool {
	// New: check provenance branch
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "git-ai-provenance")
	cmd.Dir = root
	if cmd.Run() == nil {
		return true
	}
	// Legacy: check .git-ai/ directory
	info, err := os.Stat(filepath.Join(root, ".git-ai"))
	return err == nil && info.IsDir()
}
