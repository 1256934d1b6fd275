package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func setupGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "git", "init")
	run(t, dir, "git", "config", "user.name", "Test")
	run(t, dir, "git", "config", "user.email", "test@test.com")
	return dir
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v: %v\n%s", name, args, err, out)
	}
}

func TestHeadSHA(t *testing.T) {
	dir := setupGitRepo(t)

	if sha := HeadSHA(dir); sha != "" {
		t.Fatalf("expected empty SHA before any commit, got %s", sha)
	}

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644)
	run(t, dir, "git", "add", "a.txt")
	run(t, dir, "git", "commit", "-m", "initial")

	sha := HeadSHA(dir)
	if len(sha) != 40 {
		t.Fatalf("expected 40-char SHA, got %d: %s", len(sha), sha)
	}
}

func TestDiffNumstatTotal(t *testing.T) {
	dir := setupGitRepo(t)

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("line 1\n"), 0o644)
	run(t, dir, "git", "add", "a.txt")
	run(t, dir, "git", "commit", "-m", "add a.txt")

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("line 1\nline 2\n"), 0o644)
	run(t, dir, "git", "add", "a.txt")
	run(t, dir, "git", "commit", "-m", "append line 2")

	added, deleted, err := DiffNumstatTotal(dir)
	if err != nil {
		t.Fatalf("DiffNumstatTotal: %v", err)
	}
	if added != 2 {
		t.Errorf("added: got %d, want 2", added)
	}
	if deleted != 0 {
		t.Errorf("deleted: got %d, want 0", deleted)
	}
}

func TestDiffNumstatTotal_WithDeletion(t *testing.T) {
	dir := setupGitRepo(t)

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("line 1\nline 2\n"), 0o644)
	run(t, dir, "git", "add", "a.txt")
	run(t, dir, "git", "commit", "-m", "add a.txt")

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("line 1\n"), 0o644)
	run(t, dir, "git", "add", "a.txt")
	run(t, dir, "git", "commit", "-m", "remove line 2")

	added, deleted, err := DiffNumstatTotal(dir)
	if err != nil {
		t.Fatalf("DiffNumstatTotal: %v", err)
	}
	if added != 2 {
		t.Errorf("added: got %d, want 2", added)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}
}
