package cmd

import (
	"time"

	"github.com/jensroland/git-ai/internal/provenance"
)

// RunPull wraps `git pull`. Once the real pull brings in new commits,
// the provenance branch is pulled too (internal/provenance.PullBranch),
// so the authorship logs those commits already carry from upstream
// arrive alongside them rather than having to be recomputed locally.
func RunPull(args []string) {
	w := newWrapped()

	preStart := time.Now()
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"pull"}, args...))

	postStart := time.Now()
	if code == 0 {
		if err := provenance.PullBranch(w.root, remoteArg(args)); err != nil {
			logRewriteFailure("pull", err)
		}
	}

	checkEnvelope("pull", preDuration, gitDuration, postStart)
	exitProcess(code)
}
