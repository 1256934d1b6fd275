package authorshiplog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jensroland/git-ai/internal/provenance"
)

// LogDir is the directory on the provenance branch that holds one
// AuthorshipLog blob per commit SHA, named "<sha>.json".
const LogDir = "logs"

// Store is the physical side-band store for authorship logs, keyed by
// commit SHA. It is a thin adapter over the provenance branch's raw Git
// plumbing (internal/provenance/branch.go) — the same orphan-branch,
// hash-object/read-tree/commit-tree technique the teacher already uses
// to store manifests, repurposed to store the v3 attestation+prompts
// shape instead.
type Store struct {
	Root   string // repository working-tree root
	GitDir string // .git directory (may differ from Root/.git for worktrees)
}

// NewStore returns a Store rooted at the given repository paths.
func NewStore(root, gitDir string) *Store {
	return &Store{Root: root, GitDir: gitDir}
}

func logPath(commitSHA string) string {
	return LogDir + "/" + commitSHA + ".json"
}

// Write persists log under its own BaseCommitSHA. An AuthorshipLog is
// immutable once written (spec.md §4.4); callers must not call Write
// twice for the same commit SHA — if they do, this silently overwrites,
// since the provenance branch has no uniqueness enforcement of its own.
func (s *Store) Write(log *AuthorshipLog) error {
	if err := log.Validate(); err != nil {
		return fmt.Errorf("authorshiplog: refusing to write invalid log: %w", err)
	}
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("authorshiplog: marshal: %w", err)
	}
	return provenance.WriteBlob(s.Root, s.GitDir, logPath(log.BaseCommitSHA), append(data, '\n'))
}

// Read loads the AuthorshipLog committed for commitSHA, if any.
func (s *Store) Read(commitSHA string) (*AuthorshipLog, bool, error) {
	data, err := provenance.ReadBlob(s.Root, logPath(commitSHA))
	if err != nil {
		return nil, false, nil // not found is not an error at this layer
	}
	var log AuthorshipLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, false, fmt.Errorf("authorshiplog: corrupt log for %s: %w", commitSHA, err)
	}
	return &log, true, nil
}

// ReadAttestation is a convenience wrapper returning just one file's
// attestation from commitSHA's log, used as the carry-forward source
// during tracker initialization (spec.md §4.3).
func (s *Store) ReadAttestation(commitSHA, path string) (FileAttestation, bool, error) {
	log, ok, err := s.Read(commitSHA)
	if err != nil || !ok {
		return FileAttestation{}, false, err
	}
	att, ok := log.AttestationFor(path)
	return att, ok, nil
}

// Delete removes commitSHA's authorship log, used by --amend to retire
// the old HEAD's log once its replacement has been finalized under the
// new HEAD SHA (spec.md §9's --amend open question decision).
func (s *Store) Delete(commitSHA string) error {
	return provenance.DeleteBlob(s.Root, s.GitDir, logPath(commitSHA))
}

// List returns every commit SHA with a committed authorship log.
func (s *Store) List() ([]string, error) {
	if !provenance.BranchExists(s.Root) {
		return nil, nil
	}
	names, err := provenance.ListDir(s.Root, LogDir)
	if err != nil {
		return nil, nil
	}
	var shas []string
	for _, n := range names {
		if sha := strings.TrimSuffix(n, ".json"); sha != n {
			shas = append(shas, sha)
		}
	}
	return shas, nil
}
