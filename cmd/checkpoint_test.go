package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/blobstore"
	"github.com/jensroland/git-ai/internal/worklog"
)

func TestParseCheckpointArgs_DefaultsToHuman(t *testing.T) {
	opts, err := parseCheckpointArgs([]string{"--file", "main.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.kind != agentid.KindHuman {
		t.Errorf("kind = %q, want %q", opts.kind, agentid.KindHuman)
	}
	if len(opts.files) != 1 || opts.files[0] != "main.go" {
		t.Errorf("files = %v", opts.files)
	}
}

func TestParseCheckpointArgs_ExplicitKind(t *testing.T) {
	opts, err := parseCheckpointArgs([]string{"ai_agent", "--model", "claude-4", "--prompt-id", "sess-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.kind != agentid.KindAiAgent {
		t.Errorf("kind = %q, want ai_agent", opts.kind)
	}
	if opts.model != "claude-4" || opts.promptID != "sess-1" {
		t.Errorf("model/promptID = %q/%q", opts.model, opts.promptID)
	}
}

func TestParseCheckpointArgs_ModelImpliesAIKind(t *testing.T) {
	opts, err := parseCheckpointArgs([]string{"--model", "gpt-5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.kind != agentid.KindAiAgent {
		t.Errorf("kind = %q, want ai_agent once --model is given", opts.kind)
	}
}

func TestParseCheckpointArgs_UnknownKindErrors(t *testing.T) {
	_, err := parseCheckpointArgs([]string{"not_a_kind"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized checkpoint kind")
	}
}

func TestParseCheckpointArgs_BarePositionalIsFile(t *testing.T) {
	opts, err := parseCheckpointArgs([]string{"src/app.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.files) != 1 || opts.files[0] != "src/app.go" {
		t.Errorf("files = %v, want [src/app.go]", opts.files)
	}
}

func TestPreviousContent_FallsBackToEmptyForNewFile(t *testing.T) {
	dir := t.TempDir()
	store := worklog.New(filepath.Join(dir, "worklogs"))
	blobs := blobstore.New(filepath.Join(dir, "blobs"))

	content, err := previousContent(store, blobs, nil, errNotAGitRepo, "base1", "new.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}
}

func TestPreviousContent_ReadsLastCheckpointBlob(t *testing.T) {
	dir := t.TempDir()
	store := worklog.New(filepath.Join(dir, "worklogs"))
	blobs := blobstore.New(filepath.Join(dir, "blobs"))

	sha, err := blobs.Write("line one\nline two\n")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Append("base1", worklog.Checkpoint{
		Kind:         agentid.KindHuman,
		File:         "a.go",
		AfterBlobSHA: sha,
		Ts:           "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatal(err)
	}

	content, err := previousContent(store, blobs, nil, errNotAGitRepo, "base1", "a.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "line one\nline two\n" {
		t.Errorf("content = %q", content)
	}
}

func TestSeedInitialAttribution_SkipsWhenRepoUnavailable(t *testing.T) {
	dir := t.TempDir()
	store := worklog.New(filepath.Join(dir, "worklogs"))

	seedInitialAttribution(store, nil, errNotAGitRepo, "base1", "a.go", "ignored")

	if _, ok, _ := store.ReadInitialAttributions("base1"); ok {
		t.Error("expected no seed to be written when the repo could not be opened")
	}
}

func TestSeedInitialAttribution_WritesWholeFileHumanRange(t *testing.T) {
	dir := t.TempDir()
	store := worklog.New(filepath.Join(dir, "worklogs"))

	seedInitialAttribution(store, nil, nil, "base1", "a.go", "line one\nline two\nline three\n")

	seed, ok, err := store.ReadInitialAttributions("base1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a seed to have been written")
	}
	atts := seed.Attributions["a.go"]
	if len(atts) != 1 {
		t.Fatalf("attributions = %v, want exactly one range", atts)
	}
	if atts[0].AuthorID != agentid.HumanAuthorID {
		t.Errorf("AuthorID = %q, want %q", atts[0].AuthorID, agentid.HumanAuthorID)
	}
	if atts[0].Range.Lo != 1 || atts[0].Range.Hi != 3 {
		t.Errorf("Range = %+v, want [1,3]", atts[0].Range)
	}
}

// errNotAGitRepo stands in for gitrepo.Open's error return in tests that
// never need a real repository, since previousContent/seedInitialAttribution
// only check repoErr != nil and never dereference repo in that branch.
var errNotAGitRepo = os.ErrNotExist
