// Package worklog implements the checkpoint store (working log): the
// per-base-commit, append-only log of checkpoints that accumulates while
// a file is edited between commits.
package worklog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/transcript"
)

// Checkpoint is one recorded edit against a single file, relative to the
// previous state of that file within its working log.
type Checkpoint struct {
	ID            string                 `json:"id"`
	Kind          agentid.CheckpointKind `json:"kind"`
	File          string                 `json:"file"`
	Patch         string                 `json:"patch"` // human-readable unified diff, display only
	BeforeBlobSHA string                 `json:"before_blob_sha,omitempty"`
	AfterBlobSHA  string                 `json:"after_blob_sha"`
	Author        string                 `json:"author,omitempty"`
	AgentID       *agentid.AgentId       `json:"agent_id,omitempty"`
	Transcript    *transcript.Transcript `json:"transcript,omitempty"`
	Ts            string                 `json:"ts"`
}

// Store is the working-log contract of spec.md §4.2: append, list,
// write_initial_attributions, delete, keyed by base-commit SHA.
type Store struct {
	// Root is the directory under which one subdirectory per base commit
	// SHA is created, e.g. "<gitdir>/git-ai/worklogs".
	Root string
}

// New returns a Store rooted at root.
func New(root string) *Store { return &Store{Root: root} }

func (s *Store) dir(baseSHA string) string {
	return filepath.Join(s.Root, baseSHA)
}

func (s *Store) logPath(baseSHA string) string {
	return filepath.Join(s.dir(baseSHA), "checkpoints.jsonl")
}

func (s *Store) initialPath(baseSHA string) string {
	return filepath.Join(s.dir(baseSHA), "initial.json")
}

// Append adds cp to the end of base's working log. Two identical
// checkpoints are two entries; idempotency is not required.
func (s *Store) Append(baseSHA string, cp Checkpoint) error {
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if !cp.Kind.Valid() {
		return fmt.Errorf("worklog: invalid checkpoint kind %q", cp.Kind)
	}
	if cp.Kind.IsAI() && cp.AgentID == nil {
		return fmt.Errorf("worklog: checkpoint kind %q requires an AgentID", cp.Kind)
	}

	dir := s.dir(baseSHA)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("worklog: create dir: %w", err)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("worklog: marshal checkpoint: %w", err)
	}

	f, err := os.OpenFile(s.logPath(baseSHA), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("worklog: open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("worklog: append: %w", err)
	}
	return nil
}

// List returns every checkpoint appended for baseSHA, in insertion order.
func (s *Store) List(baseSHA string) ([]Checkpoint, error) {
	data, err := os.ReadFile(s.logPath(baseSHA))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("worklog: read log: %w", err)
	}

	var checkpoints []Checkpoint
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cp Checkpoint
		if err := json.Unmarshal([]byte(line), &cp); err != nil {
			// A corrupt line in the log is a Parse-kind error (spec.md §7);
			// the caller decides whether to abort or carry forward.
			return checkpoints, fmt.Errorf("worklog: corrupt checkpoint entry: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, nil
}

// InitialAttributions is the seed data written for a file that pre-exists
// on disk at the time the first checkpoint under a base would otherwise
// synthesize a default human attribution.
type InitialAttributions struct {
	Attributions map[string][]authorshiplog.LineAttribution     `json:"attributions"`
	Prompts      map[agentid.PromptID]authorshiplog.PromptRecord `json:"prompts"`
}

// WriteInitialAttributions seeds base's working log with a starting
// attribution map. Must be written before any file content changes under
// this base; ReadInitialAttributions is consumed first by the tracker.
func (s *Store) WriteInitialAttributions(baseSHA string, seed InitialAttributions) error {
	dir := s.dir(baseSHA)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("worklog: create dir: %w", err)
	}
	data, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("worklog: marshal seed: %w", err)
	}
	return os.WriteFile(s.initialPath(baseSHA), data, 0o644)
}

// ReadInitialAttributions reads back the seed written by
// WriteInitialAttributions, if any.
func (s *Store) ReadInitialAttributions(baseSHA string) (InitialAttributions, bool, error) {
	data, err := os.ReadFile(s.initialPath(baseSHA))
	if err != nil {
		if os.IsNotExist(err) {
			return InitialAttributions{}, false, nil
		}
		return InitialAttributions{}, false, err
	}
	var seed InitialAttributions
	if err := json.Unmarshal(data, &seed); err != nil {
		return InitialAttributions{}, false, fmt.Errorf("worklog: corrupt seed: %w", err)
	}
	return seed, true, nil
}

// Delete removes base's entire working log. It renames the directory
// aside before removing it, so a concurrent reader either sees the
// complete log (rename hasn't happened yet) or ENOENT (rename already
// happened) — never a partially-deleted log.
func (s *Store) Delete(baseSHA string) error {
	dir := s.dir(baseSHA)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	tomb := dir + ".tombstone-" + uuid.New().String()
	if err := os.Rename(dir, tomb); err != nil {
		return fmt.Errorf("worklog: tombstone rename: %w", err)
	}
	return os.RemoveAll(tomb)
}

// ListBases returns every base-commit SHA with a working log on disk.
func (s *Store) ListBases() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var bases []string
	for _, e := range entries {
		if e.IsDir() && !strings.Contains(e.Name(), ".tombstone-") {
			bases = append(bases, e.Name())
		}
	}
	sort.Strings(bases)
	return bases, nil
}
