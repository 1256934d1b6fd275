package cmd

import "time"

// RunReset wraps `git reset`. Only `--hard` has a defined rewrite effect
// per spec.md §4.5: delete the working log for the old HEAD. Soft and
// mixed resets leave file content on disk (and usually the index)
// exactly matching the checkpoints already recorded, so no rewrite-engine
// action is specified for them.
func RunReset(args []string) {
	w := newWrapped()

	preStart := time.Now()
	oldHead := w.headSHA()
	hard := hasAnyFlag(args, "--hard")
	preDuration := time.Since(preStart)

	code, gitDuration := w.runPassthrough(append([]string{"reset"}, args...))

	postStart := time.Now()
	if code == 0 && hard && w.engine != nil && oldHead != "" {
		logRewriteFailure("reset", w.engine.ResetHard(oldHead))
	}

	checkEnvelope("reset", preDuration, gitDuration, postStart)
	exitProcess(code)
}
