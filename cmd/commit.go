package cmd

import (
	"time"
)

// RunCommit wraps `git commit`: the real Git binary runs first (editor
// and all), then — on success — the history-rewrite engine finalizes the
// working log accumulated against the old HEAD into the new commit's
// authorship log (spec.md §2's "on git commit" flow), or, if a `--squash`
// merge left sources waiting (cmd/merge.go), runs the squash rewrite
// instead of an ordinary finalize. A commit made mid-merge (MERGE_HEAD
// present) is a two-parent rewrite, per spec.md §4.5's merge case.
func RunCommit(args []string) {
	w := newWrapped()

	preStart := time.Now()
	oldHead := w.headSHA()
	merging := w.mergeInProgress()
	var mergeParents []string
	if merging {
		if other := w.revParse("MERGE_HEAD"); other != "" && oldHead != "" {
			mergeParents = []string{oldHead, other}
		}
	}
	amending := hasFlag(args, "--amend")
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"commit"}, args...))

	postStart := time.Now()
	newHead := w.headSHA()

	if code == 0 && w.engine != nil && newHead != "" && newHead != oldHead {
		if squashSources, ok := w.takeSquashSources(); ok {
			logRewriteFailure("commit", w.engine.RewriteSquash(squashSources, newHead))
			_ = w.engine.WorkLogs.Delete(oldHead)
		} else if merging && len(mergeParents) == 2 {
			logRewriteFailure("commit", w.engine.RewriteMerge(mergeParents[0], mergeParents[1], newHead))
			_ = w.engine.WorkLogs.Delete(mergeParents[0])
		} else if amending {
			logRewriteFailure("commit", w.engine.Amend(oldHead, newHead))
		} else {
			logRewriteFailure("commit", w.engine.FinalizeCommit(oldHead, newHead))
		}
	}

	checkEnvelope("commit", preDuration, gitDuration, postStart)
	exitProcess(code)
}

// hasFlag reports whether args contains the exact flag token.
func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
