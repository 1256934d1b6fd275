// Package envelope checks wrapped Git invocations and checkpoint writes
// against the performance envelope of spec.md §5. Violations are logged,
// never fatal — the wrapped Git command's own success is always paramount.
package envelope

import (
	"time"

	"github.com/jensroland/git-ai/internal/logging"
)

// budget returns the allowed total-duration ceiling for command given how
// long the wrapped Git child process itself took. Named commands get a
// multiplier on git's own duration; everything else gets a flat
// git + 100ms allowance.
func budget(command string, gitDuration time.Duration) time.Duration {
	switch command {
	case "commit", "rebase", "cherry-pick", "reset":
		return time.Duration(float64(gitDuration) * 1.10)
	case "fetch", "pull", "push":
		return time.Duration(float64(gitDuration) * 1.50)
	default:
		return gitDuration + 100*time.Millisecond
	}
}

// CheckCommand measures one wrapped Git invocation's pre/git/post phases
// against its budget and logs the outcome. It never returns an error or
// otherwise affects the caller.
func CheckCommand(command string, pre, gitDuration, post time.Duration) {
	total := pre + gitDuration + post
	b := budget(command, gitDuration)

	fields := []any{
		"command", command,
		"total_ms", total.Milliseconds(),
		"git_ms", gitDuration.Milliseconds(),
		"pre_ms", pre.Milliseconds(),
		"post_ms", post.Milliseconds(),
		"budget_ms", b.Milliseconds(),
	}
	if total > b {
		logging.Warn("performance target violated", fields...)
	} else {
		logging.Debug("performance target met", fields...)
	}
}

// CheckpointBudget is the ceiling for one checkpoint invocation touching
// filesEdited files (spec.md §5: "50ms × files_edited").
func CheckpointBudget(filesEdited int) time.Duration {
	return time.Duration(filesEdited) * 50 * time.Millisecond
}

// CheckCheckpoint logs when a checkpoint invocation exceeded its budget.
func CheckCheckpoint(kind string, filesEdited int, duration time.Duration) {
	b := CheckpointBudget(filesEdited)
	fields := []any{
		"checkpoint_kind", kind,
		"files_edited", filesEdited,
		"duration_ms", duration.Milliseconds(),
		"budget_ms", b.Milliseconds(),
	}
	if duration > b {
		logging.Warn("checkpoint performance target violated", fields...)
	} else {
		logging.Debug("checkpoint performance target met", fields...)
	}
}
