// Package rewrite implements the history-rewrite engine: the post-hook
// logic that recomputes authorship logs for the new commit identities
// produced by rebase, cherry-pick, merge, squash-merge and reset --hard
// (spec.md §4.5), plus the ordinary "on git commit" finalization that
// turns an accumulated working log into the first authorship log for a
// brand-new commit.
//
// Every entry point here is a post-hook: it runs after the underlying
// Git command has already succeeded, and its own failures must never
// unwind back into the wrapped command (spec.md §7, §9). Callers log
// what this package returns and continue.
package rewrite

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/attribution"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/blobstore"
	"github.com/jensroland/git-ai/internal/gitrepo"
	"github.com/jensroland/git-ai/internal/linerange"
	"github.com/jensroland/git-ai/internal/worklog"
)

// Engine recomputes authorship logs for new commit identities.
type Engine struct {
	Repo     *gitrepo.Repo
	Logs     *authorshiplog.Store
	WorkLogs *worklog.Store
}

// New builds an Engine over the given repository and stores.
func New(repo *gitrepo.Repo, logs *authorshiplog.Store, workLogs *worklog.Store) *Engine {
	return &Engine{Repo: repo, Logs: logs, WorkLogs: workLogs}
}

// identicalTree reports whether oldSHA and newSHA share the same root tree.
func (e *Engine) identicalTree(oldSHA, newSHA string) (bool, error) {
	ot, err := e.Repo.TreeSHA(oldSHA)
	if err != nil {
		return false, err
	}
	nt, err := e.Repo.TreeSHA(newSHA)
	if err != nil {
		return false, err
	}
	return ot == nt, nil
}

// cloneVerbatim copies oldSHA's authorship log to newSHA unchanged except
// for the BaseCommitSHA field (spec.md §4.5 identical-tree fast path).
func (e *Engine) cloneVerbatim(oldSHA, newSHA string) error {
	oldLog, ok, err := e.Logs.Read(oldSHA)
	if err != nil {
		return err
	}
	newLog := authorshiplog.New(newSHA)
	if ok {
		newLog.Attestations = append([]authorshiplog.FileAttestation(nil), oldLog.Attestations...)
		for pid, rec := range oldLog.Prompts {
			newLog.Prompts[pid] = rec
		}
	}
	return e.Logs.Write(newLog)
}

// rewriteFile runs the attribution tracker over the synthetic one-shot
// "human checkpoint" delta from baseContent to currentContent, carrying
// carryForward in as the starting state. This is the one primitive every
// rewrite case below reduces to: spec.md §4.5 repeatedly describes the
// general case as "apply the textual delta ... as a synthetic human
// checkpoint", and attribution.ComputeFileAttribution already implements
// exactly that when called with no checkpoints.
func rewriteFile(path, baseContent, currentContent string, carryForward []authorshiplog.LineAttribution, prompts map[agentid.PromptID]authorshiplog.PromptRecord) []authorshiplog.LineAttribution {
	attrs, err := attribution.ComputeFileAttribution(attribution.Input{
		Path:           path,
		BaseContent:    baseContent,
		CurrentContent: currentContent,
		CarryForward:   carryForward,
		Prompts:        prompts,
	})
	if err != nil {
		// Parse-kind failure (spec.md §7): fall back to carry-forward-only
		// for this file rather than aborting the whole rewrite.
		return carryForward
	}
	return attrs
}

func contentAt(repo *gitrepo.Repo, sha, path string) string {
	if sha == "" {
		return ""
	}
	content, exists, err := repo.FileContent(sha, path)
	if err != nil || !exists {
		return ""
	}
	return content
}

func blobSHAAt(repo *gitrepo.Repo, sha, path string) string {
	blob, _, _ := repo.BlobSHA(sha, path)
	return blob
}

// RewriteOneToOne recomputes the authorship log for newSHA, the
// 1-to-1 rewrite of oldSHA (a plain rebase of a single commit, or the
// post-`--continue` landing of a cherry-pick — spec.md §4.5's general
// case and its cherry-pick alias).
func (e *Engine) RewriteOneToOne(oldSHA, newSHA string) error {
	if same, err := e.identicalTree(oldSHA, newSHA); err != nil {
		return fmt.Errorf("rewrite: one-to-one %s -> %s: %w", oldSHA, newSHA, err)
	} else if same {
		return e.cloneVerbatim(oldSHA, newSHA)
	}

	oldLog, hasOldLog, err := e.Logs.Read(oldSHA)
	if err != nil {
		return err
	}

	newLog := authorshiplog.New(newSHA)
	if hasOldLog {
		for pid, rec := range oldLog.Prompts {
			newLog.Prompts[pid] = rec
		}
	}
	zeroAcceptedLines(newLog.Prompts)

	paths, err := e.Repo.Paths(newSHA)
	if err != nil {
		return fmt.Errorf("rewrite: list paths at %s: %w", newSHA, err)
	}

	for _, path := range paths {
		newContent := contentAt(e.Repo, newSHA, path)
		oldContent := contentAt(e.Repo, oldSHA, path)

		var carry []authorshiplog.LineAttribution
		if hasOldLog {
			if att, found := oldLog.AttestationFor(path); found {
				carry = att.Attributions
			}
		}

		var attrs []authorshiplog.LineAttribution
		if oldContent == newContent {
			attrs = carry // unchanged file: carried verbatim, but still counts toward accepted_lines
			attribution.UpdateAcceptedLines(attrs, newLog.Prompts)
		} else {
			attrs = rewriteFile(path, oldContent, newContent, carry, newLog.Prompts)
		}

		newLog.Attestations = append(newLog.Attestations, authorshiplog.FileAttestation{
			Path:         path,
			BlobSHA:      blobSHAAt(e.Repo, newSHA, path),
			Attributions: attrs,
		})
	}

	return e.Logs.Write(newLog)
}

// zeroAcceptedLines resets every prompt's accepted_lines to zero while
// preserving its other fields. accepted_lines is a snapshot of currently
// surviving lines as of one commit (attribution.UpdateAcceptedLines), so
// a record carried forward from an ancestor commit must start this
// commit's own recount from zero rather than add on top of the
// ancestor's already-final count.
func zeroAcceptedLines(prompts map[agentid.PromptID]authorshiplog.PromptRecord) {
	for pid, rec := range prompts {
		rec.AcceptedLines = 0
		prompts[pid] = rec
	}
}

// CherryPick treats the cherry-picked commit as a 1-to-1 rewrite onto the
// new commit it lands as. Conflict resolution performed before
// `--continue` is just the textual delta rewriteFile already replays as
// a human checkpoint (spec.md §4.5).
func (e *Engine) CherryPick(pickedSHA, newSHA string) error {
	return e.RewriteOneToOne(pickedSHA, newSHA)
}

// promptsMetadataOnly copies only the identity fields of src (AgentID,
// HumanAuthorEmail, Messages), dropping per-commit counters, for seeding
// a new commit's prompts table that must accumulate its own fresh stats.
func promptsMetadataOnly(src map[agentid.PromptID]authorshiplog.PromptRecord) map[agentid.PromptID]authorshiplog.PromptRecord {
	out := map[agentid.PromptID]authorshiplog.PromptRecord{}
	for pid, rec := range src {
		out[pid] = authorshiplog.PromptRecord{
			AgentID:          rec.AgentID,
			HumanAuthorEmail: rec.HumanAuthorEmail,
			Messages:         rec.Messages,
		}
	}
	return out
}

// RewriteSplit recomputes authorship logs for newSHAs, the K new commits
// a single original commit oldSHA was split into by an interactive
// rebase (spec.md §4.5). Each new commit is projected independently
// against the original's own final attestation: a line of Ni's content
// that also appears in oldSHA's recorded content keeps that line's
// author id; a line with no match in the original is newly introduced by
// the split and is attributed to the committer. Every entry in newSHAs
// receives a log — the caller must pass the complete, untruncated output
// sequence (spec.md invariant 5, scenario 5).
func (e *Engine) RewriteSplit(oldSHA string, newSHAs []string) error {
	oldLog, hasOldLog, err := e.Logs.Read(oldSHA)
	if err != nil {
		return err
	}

	for _, newSHA := range newSHAs {
		newLog := authorshiplog.New(newSHA)
		if hasOldLog {
			newLog.Prompts = promptsMetadataOnly(oldLog.Prompts)
		}

		paths, err := e.Repo.Paths(newSHA)
		if err != nil {
			return fmt.Errorf("rewrite: list paths at %s: %w", newSHA, err)
		}

		for _, path := range paths {
			newContent := contentAt(e.Repo, newSHA, path)

			var oldContent string
			var carry []authorshiplog.LineAttribution
			if hasOldLog {
				oldContent = contentAt(e.Repo, oldSHA, path)
				if att, found := oldLog.AttestationFor(path); found {
					carry = att.Attributions
				}
			}

			attrs := rewriteFile(path, oldContent, newContent, carry, newLog.Prompts)
			newLog.Attestations = append(newLog.Attestations, authorshiplog.FileAttestation{
				Path:         path,
				BlobSHA:      blobSHAAt(e.Repo, newSHA, path),
				Attributions: attrs,
			})
		}

		if err := e.Logs.Write(newLog); err != nil {
			return fmt.Errorf("rewrite: write split log for %s: %w", newSHA, err)
		}
	}
	return nil
}

// RewriteSquash recomputes the single authorship log for newSHA, the
// result of squashing oldSHAs (oldest first) into one commit (spec.md
// §4.5). The prompts table is the straight union of every original's
// table (spec.md: "union all prompts tables from the K originals").
// Per file, each original's own delta is replayed in turn against a
// running carry-forward, so a line introduced by one original and
// deleted by a later one correctly disappears from the final result.
func (e *Engine) RewriteSquash(oldSHAs []string, newSHA string) error {
	if len(oldSHAs) == 0 {
		return fmt.Errorf("rewrite: squash requires at least one original commit")
	}

	newLog := authorshiplog.New(newSHA)
	for _, oldSHA := range oldSHAs {
		oldLog, ok, err := e.Logs.Read(oldSHA)
		if err != nil {
			return err
		}
		if ok {
			authorshiplog.MergePrompts(newLog.Prompts, oldLog.Prompts)
		}
	}

	var firstParent string
	if ps, err := e.Repo.ParentSHAs(oldSHAs[0]); err == nil && len(ps) > 0 {
		firstParent = ps[0]
	}

	paths, err := e.Repo.Paths(newSHA)
	if err != nil {
		return fmt.Errorf("rewrite: list paths at %s: %w", newSHA, err)
	}

	// Line-attribution replay uses a scratch prompts table: the
	// authoritative counters for the squashed commit are the union
	// computed above, not a re-derivation from replaying each original's
	// delta a second time (which would double-count).
	scratch := map[agentid.PromptID]authorshiplog.PromptRecord{}
	for pid, rec := range newLog.Prompts {
		scratch[pid] = rec
	}

	finalContent := map[string]string{}
	for _, path := range paths {
		finalContent[path] = contentAt(e.Repo, newSHA, path)
	}

	for _, path := range paths {
		prevContent := contentAt(e.Repo, firstParent, path)
		var carry []authorshiplog.LineAttribution
		if firstParent != "" {
			if att, found, _ := e.Logs.ReadAttestation(firstParent, path); found {
				carry = att.Attributions
			}
		}

		for _, oldSHA := range oldSHAs {
			content := contentAt(e.Repo, oldSHA, path)
			carry = rewriteFile(path, prevContent, content, carry, scratch)
			prevContent = content
		}

		// Reconcile against the squash commit's actual content, in case
		// the squash itself needed conflict resolution.
		if prevContent != finalContent[path] {
			carry = rewriteFile(path, prevContent, finalContent[path], carry, scratch)
		}

		newLog.Attestations = append(newLog.Attestations, authorshiplog.FileAttestation{
			Path:         path,
			BlobSHA:      blobSHAAt(e.Repo, newSHA, path),
			Attributions: carry,
		})
	}

	return e.Logs.Write(newLog)
}

// splitLines splits content the same way attribution.lineCount counts it:
// a trailing newline does not produce a phantom empty final line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// authorsForLines expands attrs into a flat per-line author-id array of
// length n, defaulting unattributed lines to the human sentinel.
func authorsForLines(n int, attrs []authorshiplog.LineAttribution) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = agentid.HumanAuthorID
	}
	for _, a := range attrs {
		for line := a.Range.Lo; line <= a.Range.Hi; line++ {
			if line >= 1 && line <= n {
				out[line-1] = a.AuthorID
			}
		}
	}
	return out
}

// textQueue maps a line's literal text to the FIFO queue of author ids
// that produced a line with that exact text, in the order those lines
// appear in the source. Matching merged lines against it in order
// approximates spec.md §4.5's "prefer the parent whose corresponding
// line's text matches" without needing a full LCS alignment — adequate
// since ties only matter for genuinely identical line text.
type textQueue map[string][]string

func newTextQueue(content string, attrs []authorshiplog.LineAttribution) textQueue {
	lines := splitLines(content)
	authors := authorsForLines(len(lines), attrs)
	q := textQueue{}
	for i, text := range lines {
		q[text] = append(q[text], authors[i])
	}
	return q
}

func (q textQueue) pop(text string) (string, bool) {
	lst := q[text]
	if len(lst) == 0 {
		return "", false
	}
	q[text] = lst[1:]
	return lst[0], true
}

// compressAuthors folds a flat per-line author array into sorted,
// disjoint LineAttribution ranges.
func compressAuthors(authors []string) []authorshiplog.LineAttribution {
	var result []authorshiplog.LineAttribution
	i := 0
	for i < len(authors) {
		start := i
		a := authors[i]
		for i+1 < len(authors) && authors[i+1] == a {
			i++
		}
		result = append(result, authorshiplog.LineAttribution{
			Range:    linerange.Span(start+1, i+1),
			AuthorID: a,
		})
		i++
	}
	return result
}

// mergeFileAttribution implements spec.md §4.5's non-squash merge rule
// for one file: every merged line is matched, by text, against parent 1
// first and then parent 2; an unmatched line is the committer's own
// (conflict resolution).
func mergeFileAttribution(p1Content string, p1Attrs []authorshiplog.LineAttribution, p2Content string, p2Attrs []authorshiplog.LineAttribution, mergedContent string) []authorshiplog.LineAttribution {
	q1 := newTextQueue(p1Content, p1Attrs)
	q2 := newTextQueue(p2Content, p2Attrs)

	mergedLines := splitLines(mergedContent)
	authors := make([]string, len(mergedLines))
	for i, text := range mergedLines {
		if id, ok := q1.pop(text); ok {
			authors[i] = id
		} else if id, ok := q2.pop(text); ok {
			authors[i] = id
		} else {
			authors[i] = agentid.HumanAuthorID
		}
	}
	return compressAuthors(authors)
}

// RewriteMerge recomputes the authorship log for mergeSHA, a two-parent
// (non-squash) merge commit (spec.md §4.5). A file whose merged blob SHA
// matches one parent's blob SHA exactly carries that parent's attestation
// verbatim; otherwise per-line text matching against both parents decides
// attribution, with ties going to parent1.
func (e *Engine) RewriteMerge(parent1SHA, parent2SHA, mergeSHA string) error {
	log1, has1, err := e.Logs.Read(parent1SHA)
	if err != nil {
		return err
	}
	log2, has2, err := e.Logs.Read(parent2SHA)
	if err != nil {
		return err
	}

	newLog := authorshiplog.New(mergeSHA)
	if has1 {
		authorshiplog.MergePrompts(newLog.Prompts, log1.Prompts)
	}
	if has2 {
		authorshiplog.MergePrompts(newLog.Prompts, log2.Prompts)
	}
	zeroAcceptedLines(newLog.Prompts)

	paths, err := e.Repo.Paths(mergeSHA)
	if err != nil {
		return fmt.Errorf("rewrite: list paths at %s: %w", mergeSHA, err)
	}

	for _, path := range paths {
		mergedBlob := blobSHAAt(e.Repo, mergeSHA, path)
		p1Blob := blobSHAAt(e.Repo, parent1SHA, path)
		p2Blob := blobSHAAt(e.Repo, parent2SHA, path)

		var attrs []authorshiplog.LineAttribution
		switch {
		case mergedBlob != "" && mergedBlob == p1Blob && has1:
			if att, found := log1.AttestationFor(path); found {
				attrs = att.Attributions
			}
		case mergedBlob != "" && mergedBlob == p2Blob && has2:
			if att, found := log2.AttestationFor(path); found {
				attrs = att.Attributions
			}
		default:
			var p1Attrs, p2Attrs []authorshiplog.LineAttribution
			if has1 {
				if att, found := log1.AttestationFor(path); found {
					p1Attrs = att.Attributions
				}
			}
			if has2 {
				if att, found := log2.AttestationFor(path); found {
					p2Attrs = att.Attributions
				}
			}
			attrs = mergeFileAttribution(
				contentAt(e.Repo, parent1SHA, path), p1Attrs,
				contentAt(e.Repo, parent2SHA, path), p2Attrs,
				contentAt(e.Repo, mergeSHA, path),
			)
		}

		attribution.UpdateAcceptedLines(attrs, newLog.Prompts)
		newLog.Attestations = append(newLog.Attestations, authorshiplog.FileAttestation{
			Path:         path,
			BlobSHA:      mergedBlob,
			Attributions: attrs,
		})
	}

	return e.Logs.Write(newLog)
}

// RewriteRange recomputes authorship logs for an arbitrary N-old-commit
// to M-new-commit rebase range (spec.md §4.5, scenario 5's "2 -> 3"
// mixed split). The three named primitives above cover the clean cases
// (N==M pairs up commit-for-commit; N==1 is a pure split; M==1 is a pure
// squash); a rebase that both squashes and splits in the same operation
// reduces to neither on its own. RewriteRange handles the general case by
// pairing oldSHAs and newSHAs positionally up to the shorter length, then
// feeding whichever side has leftover commits to RewriteSquash (extra
// originals) or RewriteSplit (extra new commits) for the tail — so every
// new commit in newSHAs receives a log, per invariant 5, regardless of
// how uneven the split is.
func (e *Engine) RewriteRange(oldSHAs, newSHAs []string) error {
	switch {
	case len(oldSHAs) == 0 || len(newSHAs) == 0:
		return fmt.Errorf("rewrite: range requires at least one commit on each side")
	case len(oldSHAs) == len(newSHAs):
		for i := range oldSHAs {
			if err := e.RewriteOneToOne(oldSHAs[i], newSHAs[i]); err != nil {
				return err
			}
		}
		return nil
	case len(oldSHAs) == 1:
		return e.RewriteSplit(oldSHAs[0], newSHAs)
	case len(newSHAs) == 1:
		return e.RewriteSquash(oldSHAs, newSHAs[0])
	}

	pairs := len(oldSHAs)
	if len(newSHAs) < pairs {
		pairs = len(newSHAs)
	}
	for i := 0; i < pairs-1; i++ {
		if err := e.RewriteOneToOne(oldSHAs[i], newSHAs[i]); err != nil {
			return err
		}
	}
	tailOld := oldSHAs[pairs-1:]
	tailNew := newSHAs[pairs-1:]
	switch {
	case len(tailOld) > 1:
		return e.RewriteSquash(tailOld, tailNew[0])
	case len(tailNew) > 1:
		return e.RewriteSplit(tailOld[0], tailNew)
	default:
		return e.RewriteOneToOne(tailOld[0], tailNew[0])
	}
}

// ResetHard deletes the working log for the old HEAD. Committed
// authorship logs are never touched (spec.md §4.5).
func (e *Engine) ResetHard(oldHeadSHA string) error {
	return e.WorkLogs.Delete(oldHeadSHA)
}

// Amend implements spec.md §9's --amend decision: delete the old HEAD's
// authorship log, then finalize the working log against the new HEAD.
func (e *Engine) Amend(oldHeadSHA, newHeadSHA string) error {
	if err := e.Logs.Delete(oldHeadSHA); err != nil {
		return fmt.Errorf("rewrite: amend delete old log: %w", err)
	}
	var base string
	if parents, err := e.Repo.ParentSHAs(newHeadSHA); err == nil && len(parents) > 0 {
		base = parents[0]
	}
	return e.FinalizeCommit(base, newHeadSHA)
}

// FinalizeCommit implements the ordinary "on git commit" flow (spec.md
// §2): replay baseSHA's working log against every file touched, using
// baseSHA's own committed log (if any) as carry-forward history, write
// the resulting authorship log under newCommitSHA, and clear the
// working log.
func (e *Engine) FinalizeCommit(baseSHA, newCommitSHA string) error {
	checkpoints, err := e.WorkLogs.List(baseSHA)
	if err != nil {
		return fmt.Errorf("rewrite: list working log for %s: %w", baseSHA, err)
	}
	seed, hasSeed, err := e.WorkLogs.ReadInitialAttributions(baseSHA)
	if err != nil {
		return fmt.Errorf("rewrite: read seed for %s: %w", baseSHA, err)
	}
	baseLog, hasBaseLog, err := e.Logs.Read(baseSHA)
	if err != nil {
		return err
	}

	byFile := map[string][]worklog.Checkpoint{}
	for _, cp := range checkpoints {
		byFile[cp.File] = append(byFile[cp.File], cp)
	}

	// Prompts carry forward the same way attributions do: any file left
	// untouched by this commit still attests its AI-authored lines to a
	// prompt id that must appear in this commit's own table (spec.md
	// invariant 4), so the parent's cumulative record comes first and the
	// working-log seed, if any, overlays on top of it.
	newLog := authorshiplog.New(newCommitSHA)
	if hasBaseLog {
		for pid, rec := range baseLog.Prompts {
			newLog.Prompts[pid] = rec
		}
	}
	if hasSeed {
		for pid, rec := range seed.Prompts {
			newLog.Prompts[pid] = rec
		}
	}
	zeroAcceptedLines(newLog.Prompts)

	paths, err := e.Repo.Paths(newCommitSHA)
	if err != nil {
		return fmt.Errorf("rewrite: list paths at %s: %w", newCommitSHA, err)
	}

	// Checkpoint content lives in the blob store cmd/checkpoint.go writes,
	// beside the working logs (<gitdir>/git-ai/blobs), not in Git's objects.
	blobs := blobstore.New(filepath.Join(filepath.Dir(e.WorkLogs.Root), "blobs"))
	readBlob := func(sha string) (string, error) { return blobs.Read(sha) }

	for _, path := range paths {
		currContent := contentAt(e.Repo, newCommitSHA, path)
		baseContent := contentAt(e.Repo, baseSHA, path)

		var carryForward []authorshiplog.LineAttribution
		if baseSHA != "" {
			if att, found, _ := e.Logs.ReadAttestation(baseSHA, path); found {
				carryForward = att.Attributions
			}
		}
		var fileSeed []authorshiplog.LineAttribution
		if hasSeed {
			fileSeed = seed.Attributions[path]
		}

		attrs, err := attribution.ComputeFileAttribution(attribution.Input{
			Path:           path,
			BaseContent:    baseContent,
			CurrentContent: currContent,
			Checkpoints:    byFile[path],
			ReadBlob:       readBlob,
			Seed:           fileSeed,
			CarryForward:   carryForward,
			Prompts:        newLog.Prompts,
		})
		if err != nil {
			attrs = carryForward
		}

		newLog.Attestations = append(newLog.Attestations, authorshiplog.FileAttestation{
			Path:         path,
			BlobSHA:      blobSHAAt(e.Repo, newCommitSHA, path),
			Attributions: attrs,
		})
	}

	if err := e.Logs.Write(newLog); err != nil {
		return fmt.Errorf("rewrite: write finalized log for %s: %w", newCommitSHA, err)
	}
	return e.WorkLogs.Delete(baseSHA)
}
