package cmd

import "time"

// RunMerge wraps `git merge`. Three distinct outcomes, per spec.md §4.5:
//   - fast-forward: HEAD simply moves to the other branch's existing tip,
//     which already carries its own authorship log from when it was
//     committed — nothing to recompute.
//   - ordinary two-parent merge commit (the common case, no conflicts):
//     rewritten here directly, since Git created the commit in one step.
//   - `--squash`: Git stages the combined diff but commits nothing; the
//     feature-branch commits being folded in are recorded so the
//     following `git-ai commit` (cmd/commit.go) can run the actual squash
//     rewrite once the real commit exists.
// A conflicted merge leaves MERGE_HEAD for the user to resolve and commit
// by hand; cmd/commit.go's own MERGE_HEAD check picks that up.
func RunMerge(args []string) {
	w := newWrapped()

	preStart := time.Now()
	oldHead := w.headSHA()
	squash := hasAnyFlag(args, "--squash")
	var squashSources []string
	if squash {
		if target := mergeTargetRef(args); target != "" {
			if targetSHA := w.revParse(target); targetSHA != "" {
				base := w.mergeBase(oldHead, targetSHA)
				squashSources = w.revList(base, targetSHA)
			}
		}
	}
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"merge"}, args...))

	postStart := time.Now()
	newHead := w.headSHA()

	if code == 0 {
		switch {
		case squash:
			if len(squashSources) > 0 {
				if err := w.writeSquashSources(squashSources); err != nil {
					logRewriteFailure("merge", err)
				}
			}
		case w.mergeInProgress():
			// Conflicted: nothing landed yet, cmd/commit.go finishes it.
		case w.engine != nil && newHead != "" && newHead != oldHead:
			parents := w.parentSHAs(newHead)
			if len(parents) == 2 {
				logRewriteFailure("merge", w.engine.RewriteMerge(parents[0], parents[1], newHead))
			}
			// len(parents) < 2 means a fast-forward: newHead is an
			// existing commit from the other branch, already logged.
		}
	}

	checkEnvelope("merge", preDuration, gitDuration, postStart)
	exitProcess(code)
}

// mergeTargetRef returns the first non-flag argument to `git merge`, the
// branch/commit being merged in.
func mergeTargetRef(args []string) string {
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if len(a) > 0 && a[0] == '-' {
			switch a {
			case "--squash", "--no-commit", "--ff", "--no-ff", "--ff-only", "--abort", "--continue", "--quit":
			default:
				skipNext = true
			}
			continue
		}
		return a
	}
	return ""
}
