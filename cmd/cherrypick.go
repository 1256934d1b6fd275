package cmd

import (
	"fmt"
	"time"
)

// RunCherryPick wraps `git cherry-pick`. Like rebase, a multi-commit or
// conflicting cherry-pick is a sequencer operation that may need several
// `--continue` invocations; ORIG_HEAD anchors the tip from before the
// first one. Each newly-landed commit is paired positionally with the
// commit-ish the user named (spec.md §4.5: cherry-pick is a 1-to-1
// rewrite; manual conflict resolution before `--continue` is just the
// textual delta the rewrite already replays as a synthetic human
// checkpoint).
func RunCherryPick(args []string) {
	w := newWrapped()

	preStart := time.Now()
	wasInProgress := w.cherryPickInProgress()
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"cherry-pick"}, args...))

	postStart := time.Now()
	stillInProgress := w.cherryPickInProgress()
	finished := code == 0 && !stillInProgress && (wasInProgress || !hasAnyFlag(args, "--continue", "--skip", "--abort", "--quit"))

	if finished && w.engine != nil {
		oldTip := w.revParse("ORIG_HEAD")
		newTip := w.headSHA()
		if oldTip != "" && newTip != "" && oldTip != newTip {
			picked := resolvePickedCommits(w, args)
			landed := w.revList(oldTip, newTip)
			pairPickedWithLanded(w, picked, landed)
		}
	}

	checkEnvelope("cherry-pick", preDuration, gitDuration, postStart)
	exitProcess(code)
}

// resolvePickedCommits expands cherry-pick's positional commit-ish
// arguments (bare commits and "A..B"/"A...B" ranges) into concrete SHAs,
// oldest first, skipping anything that looks like a flag.
func resolvePickedCommits(w *wrapped, args []string) []string {
	var out []string
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if len(a) > 0 && a[0] == '-' {
			switch a {
			case "-x", "-n", "--no-commit", "-s", "--signoff", "--allow-empty",
				"--keep-redundant-commits", "--continue", "--skip", "--abort", "--quit":
				// no value
			default:
				skipNext = true
			}
			continue
		}
		if sha := w.revParse(a); sha != "" {
			if rng := w.revList("", a); len(rng) > 0 && (containsDotDot(a)) {
				out = append(out, rng...)
			} else {
				out = append(out, sha)
			}
		}
	}
	return out
}

func containsDotDot(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			return true
		}
	}
	return false
}

// pairPickedWithLanded pairs the commits the user asked to pick with the
// commits that actually landed, in order, and rewrites each pair as a
// 1-to-1. A count mismatch (e.g. --no-commit dropped some, or an empty
// pick was skipped by Git) falls back to pairing the overlapping prefix
// and logging the rest as uncovered, rather than guessing.
func pairPickedWithLanded(w *wrapped, picked, landed []string) {
	n := len(picked)
	if len(landed) < n {
		n = len(landed)
	}
	for i := 0; i < n; i++ {
		logRewriteFailure("cherry-pick", w.engine.CherryPick(picked[i], landed[i]))
	}
	if len(picked) != len(landed) {
		logRewriteFailure("cherry-pick", fmt.Errorf("picked %d commit(s) but %d landed; only the overlapping prefix was rewritten", len(picked), len(landed)))
	}
}
