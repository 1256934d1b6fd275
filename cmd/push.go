package cmd

import (
	"time"

	"github.com/jensroland/git-ai/internal/provenance"
)

// RunPush wraps `git push`. The code branch and the provenance branch
// that carries authorship logs (internal/provenance/branch.go) must
// travel together, or a clone sees commits with no attribution at all;
// this wrapper pushes both explicitly rather than relying solely on the
// pre-push hook installed by `git-ai enable` (internal/hook.HandlePrePush),
// since `git-ai push` is itself the more direct integration point.
func RunPush(args []string) {
	w := newWrapped()

	preStart := time.Now()
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"push"}, args...))

	postStart := time.Now()
	if code == 0 && provenance.BranchExists(w.root) {
		if err := provenance.PushBranch(w.root, remoteArg(args), 3); err != nil {
			logRewriteFailure("push", err)
		}
	}

	checkEnvelope("push", preDuration, gitDuration, postStart)
	exitProcess(code)
}

// remoteArg returns the first non-flag argument to `git push` (the
// remote name), defaulting to "origin" when none is given.
func remoteArg(args []string) string {
	for _, a := range args {
		if len(a) == 0 || a[0] == '-' {
			continue
		}
		return a
	}
	return "origin"
}
