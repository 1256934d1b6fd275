package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/envelope"
	gitutil "github.com/jensroland/git-ai/internal/git"
	"github.com/jensroland/git-ai/internal/gitconfig"
	"github.com/jensroland/git-ai/internal/gitrepo"
	"github.com/jensroland/git-ai/internal/logging"
	"github.com/jensroland/git-ai/internal/project"
	"github.com/jensroland/git-ai/internal/rewrite"
	"github.com/jensroland/git-ai/internal/worklog"
)

// wrapped bundles everything a transparent Git-command wrapper
// (commit/rebase/cherry-pick/merge/reset/push/pull/fetch) needs: the
// resolved repository paths, the Git binary to shell out to, and the
// history-rewrite engine that recomputes authorship logs once the real
// Git command has already succeeded (spec.md §4.5, §9 — post-hooks never
// unwind back into the wrapped command).
type wrapped struct {
	root    string
	paths   project.Paths
	gitBin  string
	engine  *rewrite.Engine
	logs    *authorshiplog.Store
	repoErr error
}

// newWrapped resolves the project root and constructs every store the
// rewrite engine needs. repoErr is recorded rather than returned so a
// wrapper can still run the real Git command (and degrade attribution
// bookkeeping gracefully, per spec.md §7) even when go-git can't open
// the repository for some reason.
func newWrapped() *wrapped {
	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)
	logging.Init(paths.CacheDir)

	logs := authorshiplog.NewStore(root, paths.GitDir)
	workLogs := worklog.New(paths.WorklogDir)

	repo, repoErr := gitrepo.Open(root)
	var engine *rewrite.Engine
	if repoErr == nil {
		engine = rewrite.New(repo, logs, workLogs)
	}

	return &wrapped{
		root:    root,
		paths:   paths,
		gitBin:  string(gitconfig.Resolve()),
		engine:  engine,
		logs:    logs,
		repoErr: repoErr,
	}
}

// runPassthrough shells out to the real Git binary with stdin/stdout/
// stderr connected directly to the process's own — unlike cmd/blame.go's
// buffered capture, these commands (commit message editors, rebase
// conflict resolution, merge tools) are interactive and must not be
// intercepted.
func (w *wrapped) runPassthrough(args []string) (exitCode int, gitDuration time.Duration) {
	start := time.Now()
	cmd := exec.Command(w.gitBin, args...)
	cmd.Dir = w.root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	gitDuration = time.Since(start)
	if err == nil {
		return 0, gitDuration
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), gitDuration
	}
	return 1, gitDuration
}

// headSHA returns the current HEAD commit, or "" outside any commit
// (unborn branch).
func (w *wrapped) headSHA() string {
	return gitutil.HeadSHA(w.root)
}

// revParse resolves an arbitrary revision expression to a commit SHA,
// returning "" if it doesn't resolve (e.g. an unborn branch, or a ref
// that was never set, like ORIG_HEAD before the first rewrite).
func (w *wrapped) revParse(rev string) string {
	cmd := exec.Command(w.gitBin, "rev-parse", "--verify", "-q", rev)
	cmd.Dir = w.root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// revList returns the commits in (from, to] oldest-first — the exact
// ordering spec.md §4.5's split/squash cases replay in.
func (w *wrapped) revList(from, to string) []string {
	if to == "" {
		return nil
	}
	rangeArg := to
	if from != "" {
		rangeArg = from + ".." + to
	}
	cmd := exec.Command(w.gitBin, "rev-list", "--reverse", rangeArg)
	cmd.Dir = w.root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	var shas []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			shas = append(shas, line)
		}
	}
	return shas
}

// mergeBase returns the merge-base of a and b, or "" if none exists
// (unrelated histories, or either ref empty).
func (w *wrapped) mergeBase(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	cmd := exec.Command(w.gitBin, "merge-base", a, b)
	cmd.Dir = w.root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// parentSHAs returns commitSHA's parents, in order.
func (w *wrapped) parentSHAs(commitSHA string) []string {
	cmd := exec.Command(w.gitBin, "rev-list", "--parents", "-n", "1", commitSHA)
	cmd.Dir = w.root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// fileExists reports whether a sequencer state directory/file exists
// under .git, meaning a multi-step operation (rebase, cherry-pick,
// merge conflict) is paused awaiting --continue/--abort.
func (w *wrapped) fileExists(relToGitDir string) bool {
	_, err := os.Stat(filepath.Join(w.paths.GitDir, relToGitDir))
	return err == nil
}

func (w *wrapped) rebaseInProgress() bool {
	return w.fileExists("rebase-merge") || w.fileExists("rebase-apply")
}

func (w *wrapped) cherryPickInProgress() bool {
	return w.fileExists("CHERRY_PICK_HEAD") || w.fileExists("sequencer/head")
}

func (w *wrapped) mergeInProgress() bool {
	return w.fileExists("MERGE_HEAD")
}

// logRewriteFailure records a history-rewrite failure without ever
// propagating it into the wrapper's own exit code (spec.md §7, §9: a
// post-hook's own failures must not unwind past the hook boundary).
func logRewriteFailure(command string, err error) {
	if err == nil {
		return
	}
	logging.Warn("history rewrite failed; affected commits keep carry-forward attribution only",
		"command", command, "error", err.Error())
}

func checkEnvelope(command string, pre, gitDuration time.Duration, postStart time.Time) {
	envelope.CheckCommand(command, pre, gitDuration, time.Since(postStart))
}

func exitProcess(code int) {
	os.Exit(code)
}

// squashMarkerPath names the file cmd/merge.go drops after a `--squash`
// merge: git itself leaves the squashed diff staged rather than
// committed, so the *next* `git-ai commit` invocation is what actually
// creates the new commit spec.md §4.5's squash case needs. The marker
// carries the ordered list of original commit SHAs across that gap.
func (w *wrapped) squashMarkerPath() string {
	return filepath.Join(w.paths.CacheDir, "pending-squash-sources.json")
}

// writeSquashSources persists the feature-branch commits a `--squash`
// merge just folded into the index, oldest first.
func (w *wrapped) writeSquashSources(shas []string) error {
	data := []byte(strings.Join(shas, "\n") + "\n")
	return os.WriteFile(w.squashMarkerPath(), data, 0o644)
}

// takeSquashSources reads and deletes the squash-sources marker, if any.
func (w *wrapped) takeSquashSources() ([]string, bool) {
	data, err := os.ReadFile(w.squashMarkerPath())
	if err != nil {
		return nil, false
	}
	_ = os.Remove(w.squashMarkerPath())
	var shas []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			shas = append(shas, line)
		}
	}
	if len(shas) == 0 {
		return nil, false
	}
	return shas, true
}
