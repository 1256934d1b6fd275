package cmd

import (
	"time"

	"github.com/jensroland/git-ai/internal/provenance"
)

// RunFetch wraps `git fetch`, then merges the remote's provenance branch
// into the local one (provenance.PullBranch), so `git-ai blame` on the
// newly fetched commits can read their authorship logs. Unlike pull,
// fetch never touches the working tree or local branch, so there is no
// working-log or attribution state to rewrite here.
func RunFetch(args []string) {
	w := newWrapped()

	preStart := time.Now()
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"fetch"}, args...))

	postStart := time.Now()
	if code == 0 {
		if err := provenance.PullBranch(w.root, remoteArg(args)); err != nil {
			logRewriteFailure("fetch", err)
		}
	}

	checkEnvelope("fetch", preDuration, gitDuration, postStart)
	exitProcess(code)
}
