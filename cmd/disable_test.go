package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jensroland/git-ai/internal/project"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything fn printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()
	fn()
	w.Close()
	data, _ := io.ReadAll(r)
	return string(data)
}

func TestCmdDisable_FullCleanup(t *testing.T) {
	tmpDir := t.TempDir()

	// Create .git-ai/log/ with a session file
	logDir := filepath.Join(tmpDir, ".git-ai", "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "session.jsonl"), []byte(`{"file":"x"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Create .git/git-ai/ with an index.db file
	gitAIDir := filepath.Join(tmpDir, ".git", "git-ai")
	if err := os.MkdirAll(gitAIDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gitAIDir, "index.db"), []byte("fake db"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Create .git/hooks/pre-commit with git-ai marker only
	hooksDir := filepath.Join(tmpDir, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		t.Fatal(err)
	}
	preCommitContent := "#!/usr/bin/env bash\n\n# git-ai: fill reasons\nif command -v git-ai >/dev/null 2>&1; then\ngit-ai --fill-reasons\nfi\n"
	if err := os.WriteFile(filepath.Join(hooksDir, "pre-commit"), []byte(preCommitContent), 0o755); err != nil {
		t.Fatal(err)
	}

	paths := project.Paths{
		Root:       tmpDir,
		GitDir:     filepath.Join(tmpDir, ".git"),
		PendingDir: filepath.Join(gitAIDir, "pending"),
		CacheDir:   gitAIDir,
		IndexDB:    filepath.Join(gitAIDir, "index.db"),
	}

	out := captureStdout(t, func() {
		cmdDisable(paths, tmpDir)
	})

	// Verify stdout messages
	if !strings.Contains(out, "Removed .git-ai/") {
		t.Errorf("expected output to contain 'Removed .git-ai/', got: %s", out)
	}
	if !strings.Contains(out, "Removed .git/git-ai/") {
		t.Errorf("expected output to contain 'Removed .git/git-ai/', got: %s", out)
	}
	if !strings.Contains(out, "Removed .git/hooks/pre-commit") {
		t.Errorf("expected output to contain 'Removed .git/hooks/pre-commit', got: %s", out)
	}

	// Verify .git-ai/ was deleted
	if _, err := os.Stat(filepath.Join(tmpDir, ".git-ai")); !os.IsNotExist(err) {
		t.Error(".git-ai/ directory should have been deleted")
	}

	// Verify .git/git-ai/ was deleted
	if _, err := os.Stat(gitAIDir); !os.IsNotExist(err) {
		t.Error(".git/git-ai/ directory should have been deleted")
	}
}

func TestCmdDisable_PreCommitHookCleaned(t *testing.T) {
	tmpDir := t.TempDir()

	// Create .git-ai/ so the "not initialized" path is not hit
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git-ai", "log"), 0o755); err != nil {
		t.Fatal(err)
	}

	// Create pre-commit hook with BOTH git-ai content AND other custom content
	hooksDir := filepath.Join(tmpDir, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		t.Fatal(err)
	}
	preCommitContent := "#!/usr/bin/env bash\n\n# Run linter\nnpx eslint .\n\n# git-ai: fill reasons\nif command -v git-ai >/dev/null 2>&1; then\ngit-ai --fill-reasons\nfi\n"
	preCommitPath := filepath.Join(hooksDir, "pre-commit")
	if err := os.WriteFile(preCommitPath, []byte(preCommitContent), 0o755); err != nil {
		t.Fatal(err)
	}

	cacheDir := filepath.Join(tmpDir, ".git", "git-ai")
	paths := project.Paths{
		Root:       tmpDir,
		GitDir:     filepath.Join(tmpDir, ".git"),
		PendingDir: filepath.Join(cacheDir, "pending"),
		CacheDir:   cacheDir,
		IndexDB:    filepath.Join(cacheDir, "index.db"),
	}

	out := captureStdout(t, func() {
		cmdDisable(paths, tmpDir)
	})

	// Verify stdout contains "cleaned"
	if !strings.Contains(out, "cleaned") {
		t.Errorf("expected output to contain 'cleaned', got: %s", out)
	}

	// Verify pre-commit file still exists
	if _, err := os.Stat(preCommitPath); os.IsNotExist(err) {
		t.Error("pre-commit hook should still exist (has non-git-ai content)")
	}

	// Verify git-ai lines were removed but other content remains
	data, err := os.ReadFile(preCommitPath)
	if err != nil {
		t.Fatal(err)
	}
	remaining := string(data)
	if strings.Contains(remaining, "git-ai") {
		t.Errorf("pre-commit should not contain git-ai references, got: %s", remaining)
	}
	if !strings.Contains(remaining, "npx eslint") {
		t.Errorf("pre-commit should still contain linter command, got: %s", remaining)
	}
}

func TestCmdDisable_NotInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	// Create .git/ but NOT .git-ai/ or .git/git-ai/
	if err := os.MkdirAll(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	cacheDir := filepath.Join(tmpDir, ".git", "git-ai")
	paths := project.Paths{
		Root:       tmpDir,
		GitDir:     filepath.Join(tmpDir, ".git"),
		PendingDir: filepath.Join(cacheDir, "pending"),
		CacheDir:   cacheDir,
		IndexDB:    filepath.Join(cacheDir, "index.db"),
	}

	out := captureStdout(t, func() {
		cmdDisable(paths, tmpDir)
	})

	if !strings.Contains(out, "git-ai is not initialized") {
		t.Errorf("expected output to contain 'git-ai is not initialized', got: %s", out)
	}
}
