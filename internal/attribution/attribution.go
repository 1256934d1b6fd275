// Package attribution implements the attribution tracker: the algorithm
// that replays a file's ordered checkpoint log against its content and
// produces the final per-line authorship map (spec.md §4.3 — "the heart").
package attribution

import (
	"fmt"

	"github.com/jensroland/git-ai/internal/agentid"
	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/diffparse"
	"github.com/jensroland/git-ai/internal/linerange"
	"github.com/jensroland/git-ai/internal/worklog"
)

// BlobReader reads checkpoint file content by content-addressed SHA,
// mirroring the teacher's checkpoint.ReadBlob contract exactly.
type BlobReader func(sha string) (string, error)

// cell is the tracker's internal per-line working state. Exported
// LineAttribution ranges are derived from a slice of cells by
// compression at the end of replay.
type cell struct {
	authorID   string
	overridden bool
}

// Input bundles everything ComputeFileAttribution needs for one file.
type Input struct {
	Path string

	// BaseContent is the file's content at the base commit (empty for a
	// new file).
	BaseContent string

	// CurrentContent is the file's content now — the replay must end up
	// covering exactly this many lines.
	CurrentContent string

	Checkpoints []worklog.Checkpoint
	ReadBlob    BlobReader

	// Seed is the initial-attributions override (worklog §4.2
	// write_initial_attributions), if any, keyed by nothing since it is
	// already scoped to this one file's lines.
	Seed []authorshiplog.LineAttribution

	// CarryForward is the prior commit's attestation for this path, if any.
	CarryForward []authorshiplog.LineAttribution

	// Prompts is the prompts table to update in place as checkpoints are
	// replayed (total_additions/accepted_lines/overridden_lines).
	Prompts map[agentid.PromptID]authorshiplog.PromptRecord
}

// ErrPatchFailed indicates a checkpoint's recorded content could not be
// reconciled against the tracker's in-memory state. Per spec.md §4.3's
// failure model, the caller should revert this file's attribution to
// carry-forward-only.
var ErrPatchFailed = fmt.Errorf("attribution: checkpoint patch failed to apply")

// ComputeFileAttribution runs the full replay and returns the file's
// final, compressed attribution list.
func ComputeFileAttribution(in Input) ([]authorshiplog.LineAttribution, error) {
	cells := initialCells(in)

	prevContent := in.BaseContent
	for _, cp := range in.Checkpoints {
		content, err := checkpointContent(cp, in.ReadBlob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPatchFailed, err)
		}
		if content == prevContent {
			continue
		}

		hunks := diffparse.Hunks(prevContent, content)
		newCells, err := applyHunks(cells, hunks, cp, in.Prompts)
		if err != nil {
			return nil, err
		}
		cells = newCells
		prevContent = content
	}

	// Final gap: last checkpoint content (or base, if none) → current
	// working content. Any difference here is an un-checkpointed human edit.
	if prevContent != in.CurrentContent {
		hunks := diffparse.Hunks(prevContent, in.CurrentContent)
		gapCheckpoint := worklog.Checkpoint{Kind: agentid.KindHuman}
		newCells, err := applyHunks(cells, hunks, gapCheckpoint, in.Prompts)
		if err != nil {
			return nil, err
		}
		cells = newCells
	}

	n := lineCount(in.CurrentContent)
	if len(cells) != n {
		return nil, fmt.Errorf("attribution: %s: final cell count %d does not match line count %d", in.Path, len(cells), n)
	}

	result := compress(cells)
	UpdateAcceptedLines(result, in.Prompts)
	return result, nil
}

// initialCells builds the starting per-line state per spec.md §4.3's
// Initialization + tie-break rule: carry-forward is applied first, then
// the seed overlays on top of it (seed wins for any line it covers).
func initialCells(in Input) []cell {
	n := lineCount(in.BaseContent)
	cells := make([]cell, n)
	for i := range cells {
		cells[i] = cell{authorID: agentid.HumanAuthorID}
	}

	overlay := func(attrs []authorshiplog.LineAttribution) {
		for _, a := range attrs {
			for line := a.Range.Lo; line <= a.Range.Hi; line++ {
				if line < 1 || line > n {
					continue
				}
				cells[line-1] = cell{authorID: a.AuthorID, overridden: a.Overridden}
			}
		}
	}
	overlay(in.CarryForward)
	overlay(in.Seed)
	return cells
}

// applyHunks replays every hunk of one checkpoint's diff against cells.
func applyHunks(cells []cell, hunks []diffparse.Hunk, cp worklog.Checkpoint, prompts map[agentid.PromptID]authorshiplog.PromptRecord) ([]cell, error) {
	for _, h := range hunks {
		var err error
		cells, err = applyHunk(cells, h, cp, prompts)
		if err != nil {
			return nil, err
		}
	}
	return cells, nil
}

// applyHunk performs the delete/shift/insert phases of spec.md §4.3 for
// one hunk.
func applyHunk(cells []cell, h diffparse.Hunk, cp worklog.Checkpoint, prompts map[agentid.PromptID]authorshiplog.PromptRecord) ([]cell, error) {
	if h.Pivot < 1 || h.Pivot-1 > len(cells) {
		return nil, fmt.Errorf("%w: hunk pivot %d out of range for %d lines", ErrPatchFailed, h.Pivot, len(cells))
	}

	deleteEnd := h.Pivot + h.Deleted - 1 // inclusive, in pre-hunk indexing

	// Delete phase: remove the deleted span, tallying which prompts lost
	// lines so the insert phase can mark overrides.
	removedByPrompt := map[string]int{}
	var kept []cell
	kept = append(kept, cells[:h.Pivot-1]...)
	for i := h.Pivot - 1; i < len(cells) && i <= deleteEnd-1; i++ {
		c := cells[i]
		if c.authorID != agentid.HumanAuthorID {
			removedByPrompt[c.authorID]++
		}
	}
	if deleteEnd-1+1 <= len(cells) {
		kept = append(kept, cells[deleteEnd:]...)
	}

	// Shift phase is implicit: kept already has the deleted span spliced
	// out, which is equivalent to shifting every surviving line below the
	// pivot by delta = inserted - deleted.

	// Insert phase.
	var authorID string
	overridden := false
	switch {
	case cp.Kind.IsAI():
		if cp.AgentID == nil {
			return nil, fmt.Errorf("%w: AI checkpoint missing AgentID", ErrPatchFailed)
		}
		authorID = string(agentid.NewPromptID(*cp.AgentID))
	default:
		authorID = agentid.HumanAuthorID
		overridden = len(removedByPrompt) > 0
	}

	inserted := make([]cell, h.Inserted)
	for i := range inserted {
		inserted[i] = cell{authorID: authorID, overridden: overridden}
	}

	out := append([]cell{}, kept[:h.Pivot-1]...)
	out = append(out, inserted...)
	out = append(out, kept[h.Pivot-1:]...)

	if prompts != nil {
		switch {
		case cp.Kind.IsAI():
			rec := prompts[agentid.PromptID(authorID)]
			rec.AgentID = *cp.AgentID
			rec.TotalAdditions += h.Inserted
			prompts[agentid.PromptID(authorID)] = rec
			for pid, n := range removedByPrompt {
				r := prompts[agentid.PromptID(pid)]
				r.TotalDeletions += n
				prompts[agentid.PromptID(pid)] = r
			}
		default:
			for pid, n := range removedByPrompt {
				r := prompts[agentid.PromptID(pid)]
				r.TotalDeletions += n
				r.OverriddenLines += n
				prompts[agentid.PromptID(pid)] = r
			}
		}
	}

	return out, nil
}

// UpdateAcceptedLines adds this file's contribution to accepted_lines for
// every prompt still present in the final result (spec.md §4.3:
// "accepted_lines by the non-overridden portion at commit time").
// accepted_lines is a snapshot of a prompt's currently-surviving lines as
// of one commit, not a lifetime counter like total_additions, so callers
// that carry a prompt's record forward across commits must zero out
// AcceptedLines first and then call this once per file the commit
// touches (including files left untouched, whose carried-forward
// attribution still counts) — never seed it with a prior commit's value
// and add to that, or surviving lines get counted twice. Exported so
// history-rewrite call sites can apply it uniformly to files that never
// go through ComputeFileAttribution itself (e.g. a file unchanged by a
// rebase, whose attribution is carried through verbatim).
func UpdateAcceptedLines(result []authorshiplog.LineAttribution, prompts map[agentid.PromptID]authorshiplog.PromptRecord) {
	if prompts == nil {
		return
	}
	for _, a := range result {
		if a.AuthorID == agentid.HumanAuthorID {
			continue
		}
		pid := agentid.PromptID(a.AuthorID)
		rec := prompts[pid]
		rec.AcceptedLines += a.Range.Len()
		prompts[pid] = rec
	}
}

// compress folds the per-line cell state into minimal, sorted,
// disjoint LineAttribution ranges grouped by (authorID, overridden).
func compress(cells []cell) []authorshiplog.LineAttribution {
	var result []authorshiplog.LineAttribution
	i := 0
	for i < len(cells) {
		start := i
		c := cells[i]
		for i+1 < len(cells) && cells[i+1] == c {
			i++
		}
		result = append(result, authorshiplog.LineAttribution{
			Range:      linerange.Span(start+1, i+1),
			AuthorID:   c.authorID,
			Overridden: c.overridden,
		})
		i++
	}
	return result
}

func checkpointContent(cp worklog.Checkpoint, readBlob BlobReader) (string, error) {
	if cp.AfterBlobSHA == "" {
		return "", nil
	}
	return readBlob(cp.AfterBlobSHA)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	if len(s) > 0 && s[len(s)-1] == '\n' {
		n--
	}
	return n
}
