// Package linerange implements the interval algebra the attribution
// tracker uses to talk about line sets: a LineRange is either a single
// 1-based line or an inclusive span, and the only operations the tracker
// is allowed to reach for are Contains, Overlaps, Subtract, Shift, and
// CompressLines.
package linerange

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LineRange is a 1-based line or an inclusive span. Lo <= Hi always; a
// single line is represented with Lo == Hi, never as a degenerate range.
type LineRange struct {
	Lo, Hi int
}

// Single returns a LineRange covering exactly one line.
func Single(n int) LineRange { return LineRange{Lo: n, Hi: n} }

// Span returns a LineRange covering [lo, hi] inclusive. Panics if hi < lo;
// callers are expected to only build ranges from already-validated bounds.
func Span(lo, hi int) LineRange {
	if hi < lo {
		panic(fmt.Sprintf("linerange: invalid span [%d,%d]", lo, hi))
	}
	return LineRange{Lo: lo, Hi: hi}
}

// IsSingle reports whether the range covers exactly one line.
func (r LineRange) IsSingle() bool { return r.Lo == r.Hi }

// Len returns the number of lines covered.
func (r LineRange) Len() int { return r.Hi - r.Lo + 1 }

// Contains reports whether line n falls within r.
func (r LineRange) Contains(n int) bool { return n >= r.Lo && n <= r.Hi }

// Overlaps reports whether r and other share at least one line.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.Lo <= other.Hi && other.Lo <= r.Hi
}

// Subtract returns the portions of r that are not in other. A Range(a,b)
// minus an overlapping Range(c,d) yields up to two fragments, [a,c-1] and
// [d+1,b]; any fragment where lo > hi is dropped, and a length-1 fragment
// is normalized to a single-line range.
func (r LineRange) Subtract(other LineRange) []LineRange {
	if !r.Overlaps(other) {
		return []LineRange{r}
	}
	var out []LineRange
	if r.Lo < other.Lo {
		out = append(out, LineRange{Lo: r.Lo, Hi: other.Lo - 1})
	}
	if r.Hi > other.Hi {
		out = append(out, LineRange{Lo: other.Hi + 1, Hi: r.Hi})
	}
	return out
}

// Shift moves every endpoint of r that is >= pivot by delta. delta < 0
// models a deletion, delta > 0 an insertion; endpoints below pivot are
// untouched. If the resulting range would collapse (hi < lo) or start
// before line 1, Shift returns ok=false and the zero value.
func (r LineRange) Shift(pivot int, delta int) (shifted LineRange, ok bool) {
	lo, hi := r.Lo, r.Hi
	if lo >= pivot {
		lo += delta
	}
	if hi >= pivot {
		hi += delta
	}
	if hi < lo || lo < 1 {
		return LineRange{}, false
	}
	return LineRange{Lo: lo, Hi: hi}, true
}

// CompressLines folds a strictly ascending, deduplicated list of line
// numbers into a minimal list of maximal runs.
func CompressLines(lines []int) []LineRange {
	if len(lines) == 0 {
		return nil
	}
	var out []LineRange
	start := lines[0]
	prev := lines[0]
	for _, n := range lines[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		out = append(out, LineRange{Lo: start, Hi: prev})
		start, prev = n, n
	}
	out = append(out, LineRange{Lo: start, Hi: prev})
	return out
}

// Expand returns every individual line number covered by r.
func (r LineRange) Expand() []int {
	lines := make([]int, 0, r.Len())
	for n := r.Lo; n <= r.Hi; n++ {
		lines = append(lines, n)
	}
	return lines
}

// String renders the range the way the rest of the codebase's compact
// line notation does: "5" for a single line, "5-8" for a span.
func (r LineRange) String() string {
	if r.IsSingle() {
		return fmt.Sprintf("%d", r.Lo)
	}
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// MarshalJSON serializes as a two-element array [lo, hi], matching the
// original implementation's on-disk shape.
func (r LineRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Lo, r.Hi})
}

// UnmarshalJSON accepts either a [lo, hi] array or a bare integer (single line).
func (r *LineRange) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err == nil {
		if pair[1] < pair[0] {
			return fmt.Errorf("linerange: invalid range [%d,%d]", pair[0], pair[1])
		}
		r.Lo, r.Hi = pair[0], pair[1]
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("linerange: cannot unmarshal %s", data)
	}
	r.Lo, r.Hi = n, n
	return nil
}

// Ranges is a sorted, disjoint collection of LineRanges covering a set of
// lines, kept in ascending order. It is the output shape of
// Ranges.Subtract and Ranges.Shift.
type Ranges []LineRange

// FromLines builds a minimal Ranges from an arbitrary (not necessarily
// sorted or deduplicated) slice of line numbers.
func FromLines(lines []int) Ranges {
	if len(lines) == 0 {
		return nil
	}
	cp := append([]int(nil), lines...)
	sort.Ints(cp)
	dedup := cp[:0]
	for i, n := range cp {
		if i == 0 || n != dedup[len(dedup)-1] {
			dedup = append(dedup, n)
		}
	}
	return Ranges(CompressLines(dedup))
}

// Lines expands every range back into individual line numbers, sorted ascending.
func (rs Ranges) Lines() []int {
	var out []int
	for _, r := range rs {
		out = append(out, r.Expand()...)
	}
	return out
}

// Subtract removes other from every range in rs, returning a new minimal Ranges.
func (rs Ranges) Subtract(other LineRange) Ranges {
	var out []int
	for _, r := range rs {
		for _, frag := range r.Subtract(other) {
			out = append(out, frag.Expand()...)
		}
	}
	return FromLines(out)
}

// Shift applies Shift to every range in rs, dropping any that collapse.
func (rs Ranges) Shift(pivot, delta int) Ranges {
	var out []int
	for _, r := range rs {
		if shifted, ok := r.Shift(pivot, delta); ok {
			out = append(out, shifted.Expand()...)
		}
	}
	return FromLines(out)
}

// Contains reports whether n falls within any range in rs.
func (rs Ranges) Contains(n int) bool {
	for _, r := range rs {
		if r.Contains(n) {
			return true
		}
	}
	return false
}
