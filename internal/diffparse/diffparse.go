// Package diffparse turns a pair of whole-file contents into the
// per-hunk (pivot, deleted, inserted) triples the attribution tracker
// replays, and produces a human-readable unified diff for storage
// alongside each checkpoint.
package diffparse

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Hunk is one contiguous edit region: pivot is the 1-based line number in
// the pre-edit text where the hunk begins; deleted/inserted are line
// counts. This is exactly the triple spec.md §4.3 replays.
type Hunk struct {
	Pivot    int
	Deleted  int
	Inserted int
}

// Hunks diffs oldText against newText at line granularity (via go-diff's
// line-mode trick: encode each line as one rune, diff the rune strings,
// then decode back to lines) and returns the minimal set of hunks.
// Context (unchanged) lines between edits are not represented — they
// need no transformation.
func Hunks(oldText, newText string) []Hunk {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	coded1, coded2, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(coded1, coded2, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var hunks []Hunk
	oldLine := 1 // 1-based cursor into oldText

	i := 0
	for i < len(diffs) {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldLine += countLines(d.Text)
			i++
		default:
			// Group a contiguous run of Delete/Insert ops into one hunk.
			pivot := oldLine
			deleted, inserted := 0, 0
			for i < len(diffs) && diffs[i].Type != diffmatchpatch.DiffEqual {
				switch diffs[i].Type {
				case diffmatchpatch.DiffDelete:
					deleted += countLines(diffs[i].Text)
				case diffmatchpatch.DiffInsert:
					inserted += countLines(diffs[i].Text)
				}
				i++
			}
			hunks = append(hunks, Hunk{Pivot: pivot, Deleted: deleted, Inserted: inserted})
			oldLine += deleted
		}
	}
	return hunks
}

// countLines counts the number of lines represented by a diff chunk's
// text. DiffLinesToChars encodes each source line (including its
// trailing newline, except possibly the final line) as one rune, so a
// chunk of N runes after DiffCharsToLines decoding is N source lines —
// except the very last line of a file lacking a trailing newline, which
// still counts as one line. We count by trailing-newline-delimited
// segments rather than runes to stay correct in both cases.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// MakePatch renders a human-readable unified diff between oldText and
// newText, for storage alongside a checkpoint (display only — the
// tracker replays Hunks() against blob content, not this text).
func MakePatch(oldText, newText string) string {
	if oldText == newText {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	patches := dmp.PatchMake(oldText, diffs)
	return dmp.PatchToText(patches)
}
