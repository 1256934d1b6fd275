// Package authorshiplog implements the authorship log v3: the immutable,
// per-commit committed artifact that records, for every file touched or
// carried through a commit, which lines are human-authored and which are
// attributed to a specific AI prompt.
package authorshiplog

import (
	"fmt"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/linerange"
)

// LineAttribution assigns a contiguous range of a file's current lines to
// one author (either agentid.HumanAuthorID or a PromptID string).
// Overridden is set only on human ranges that replaced a prior AI range.
type LineAttribution struct {
	Range      linerange.LineRange `json:"range"`
	AuthorID   string              `json:"author_id"`
	Overridden bool                `json:"overridden,omitempty"`
}

// FileAttestation is the portion of an authorship log describing one file.
type FileAttestation struct {
	Path        string            `json:"path"`
	BlobSHA     string            `json:"blob_sha"`
	Attributions []LineAttribution `json:"attributions"`
}

// PromptRecord aggregates everything known about one AI prompt session
// that contributed lines to a repository.
type PromptRecord struct {
	AgentID          agentid.AgentId `json:"agent_id"`
	HumanAuthorEmail string          `json:"human_author_email,omitempty"`
	Messages         []string        `json:"messages,omitempty"`
	TotalAdditions   int             `json:"total_additions"`
	TotalDeletions   int             `json:"total_deletions"`
	AcceptedLines    int             `json:"accepted_lines"`
	OverriddenLines  int             `json:"overridden_lines"`
}

// AuthorshipLog is the immutable v3 committed artifact for one commit SHA.
type AuthorshipLog struct {
	BaseCommitSHA string                            `json:"base_commit_sha"`
	Attestations  []FileAttestation                 `json:"attestations"`
	Prompts       map[agentid.PromptID]PromptRecord `json:"prompts"`
}

// New creates an empty log for a commit SHA, ready to have attestations appended.
func New(commitSHA string) *AuthorshipLog {
	return &AuthorshipLog{
		BaseCommitSHA: commitSHA,
		Prompts:       map[agentid.PromptID]PromptRecord{},
	}
}

// AttestationFor returns the attestation for path, if present.
func (l *AuthorshipLog) AttestationFor(path string) (FileAttestation, bool) {
	for _, a := range l.Attestations {
		if a.Path == path {
			return a, true
		}
	}
	return FileAttestation{}, false
}

// Validate checks the invariant that every author_id referenced by an
// attestation other than the human sentinel is a key in the prompts table,
// and that attributions within each file are sorted and disjoint. It does
// not check that the ranges start at line 1 or leave no gaps; CoversLines
// checks that against a known line count.
func (l *AuthorshipLog) Validate() error {
	for _, att := range l.Attestations {
		prev := 0
		for _, la := range att.Attributions {
			if la.Range.Lo <= prev {
				return fmt.Errorf("authorshiplog: file %q attributions not sorted/disjoint at line %d", att.Path, la.Range.Lo)
			}
			prev = la.Range.Hi
			if la.AuthorID != agentid.HumanAuthorID {
				if _, ok := l.Prompts[agentid.PromptID(la.AuthorID)]; !ok {
					return fmt.Errorf("authorshiplog: file %q references unknown prompt id %q", att.Path, la.AuthorID)
				}
			}
		}
	}
	return nil
}

// CoversLines reports whether att's attributions exactly cover 1..n with
// no gaps or overlaps (spec.md invariant 1).
func (att FileAttestation) CoversLines(n int) bool {
	if n == 0 {
		return len(att.Attributions) == 0
	}
	expect := 1
	for _, la := range att.Attributions {
		if la.Range.Lo != expect {
			return false
		}
		expect = la.Range.Hi + 1
	}
	return expect == n+1
}

// MergePrompts folds src's prompt table into dst (used by commit
// squashing, which unions the prompts tables of all originals). Prompt
// records are cumulative as of the commit they were read from — the same
// way a FileAttestation carries an AI-attributed line's id forward
// through every descendant commit that doesn't touch it — so a later
// commit's record for a given prompt id is already a superset of an
// earlier commit's. Callers merge oldest-first: src simply overwrites
// dst for ids both tables know about, rather than summing, so the same
// contribution is never counted twice.
func MergePrompts(dst map[agentid.PromptID]PromptRecord, src map[agentid.PromptID]PromptRecord) {
	for id, rec := range src {
		dst[id] = rec
	}
}
