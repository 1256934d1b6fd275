// Package giterr classifies every error this tool produces into one of
// the five kinds spec.md §7 defines, so callers can decide uniformly
// whether a failure should abort the wrapped Git command, log and
// continue, or fail loudly only in debug builds.
package giterr

import "fmt"

// Kind is the closed set of error categories.
type Kind string

const (
	// KindIO covers missing files, permission errors, and other
	// filesystem-level failures. Post-hooks log and continue; the
	// checkpoint command path surfaces these to the user.
	KindIO Kind = "io"

	// KindParse covers malformed JSONL/JSON, invalid unified diffs, and
	// corrupt working logs. The checkpoint path aborts with a
	// user-visible message; history-rewrite post-hooks log and fall back
	// to carry-forward-only for the affected file.
	KindParse Kind = "parse"

	// KindPreset covers a transcript-ingestion preset missing required
	// input (e.g. a hook payload without session_id). Always fails the
	// checkpoint command.
	KindPreset Kind = "preset"

	// KindInvariant covers an attribution map failing to cover 1..N, a
	// range inversion, or a prompt id missing from the prompts table.
	// Fails loudly in debug builds; logs and writes a best-effort
	// partial result in release builds.
	KindInvariant Kind = "invariant"

	// KindNetwork covers upgrade-check connectivity failures. Always
	// silent/best-effort; never affects the wrapped command.
	KindNetwork Kind = "network"
)

// Error wraps an underlying cause with a Kind so the caller can branch on
// it without string-matching.
type Error struct {
	Kind Kind
	Op   string // what was being attempted, e.g. "read working log"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds a *Error with the given kind and operation description.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of kind k, unwrapping as needed.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ErrNotImplemented is returned by agent presets that are registered in
// the closed set but not yet built out (Cursor, Copilot).
var ErrNotImplemented = Wrap(KindPreset, "preset not implemented", fmt.Errorf("not implemented"))
