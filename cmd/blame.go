package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jensroland/git-ai/internal/authorshiplog"
	"github.com/jensroland/git-ai/internal/blameoverlay"
	"github.com/jensroland/git-ai/internal/envelope"
	gitutil "github.com/jensroland/git-ai/internal/git"
	"github.com/jensroland/git-ai/internal/gitconfig"
	"github.com/jensroland/git-ai/internal/logging"
	"github.com/jensroland/git-ai/internal/project"
)

// RunBlame wraps `git blame`: the real Git binary always runs first and
// owns the exit code, then the authorship log for the blamed revision (HEAD
// unless the caller named another one) overlays AI attribution on top of
// it, never touching a line Git didn't already print.
func RunBlame(args []string) {
	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)
	logging.Init(paths.CacheDir)

	preStart := time.Now()
	gitBin := string(gitconfig.Resolve())
	cmd := exec.Command(gitBin, append([]string{"blame"}, args...)...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	preDuration := time.Since(preStart)

	gitStart := time.Now()
	runErr := cmd.Run()
	gitDuration := time.Since(gitStart)

	postStart := time.Now()
	os.Stderr.Write(stderr.Bytes())

	path, rev := blamePathAndRev(args)
	logs := authorshiplog.NewStore(root, paths.GitDir)
	commitSHA := rev
	if commitSHA == "" {
		commitSHA = gitutil.HeadSHA(root)
	}

	log, ok, readErr := logs.Read(commitSHA)
	if readErr != nil || !ok || path == "" {
		// No authorship log for this commit (or we couldn't pin down the
		// path/revision being blamed): fall back to raw Git output
		// unmodified, per spec.md §7's IO/Parse degrade-gracefully policy.
		os.Stdout.Write(stdout.Bytes())
		envelope.CheckCommand("blame", preDuration, gitDuration, time.Since(postStart))
		exitWithChildStatus(runErr)
		return
	}

	att, found := log.AttestationFor(path)
	if !found {
		os.Stdout.Write(stdout.Bytes())
		envelope.CheckCommand("blame", preDuration, gitDuration, time.Since(postStart))
		exitWithChildStatus(runErr)
		return
	}

	resolve := blameoverlay.NewLineResolver(att, log.Prompts)
	out, overlayErr := blameoverlay.Apply(stdout.String(), blameoverlay.ParseFormat(args), resolve)
	if overlayErr != nil {
		os.Stdout.Write(stdout.Bytes())
	} else {
		fmt.Fprint(os.Stdout, out)
	}
	envelope.CheckCommand("blame", preDuration, gitDuration, time.Since(postStart))
	exitWithChildStatus(runErr)
}

// blamePathAndRev pulls the blamed file path and, if present, an explicit
// revision out of git blame's argument list. It only needs to recognize
// enough of Git's syntax to find the trailing "[<rev>] <path>" pair; any
// flag it doesn't understand is simply skipped since flags never look like
// a bare path or revision token on their own.
func blamePathAndRev(args []string) (path, rev string) {
	var positional []string
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if a == "-L" || a == "-C" || a == "-M" || a == "--date" || a == "--contents" {
			skipNext = true
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		positional = append(positional, a)
	}
	switch len(positional) {
	case 0:
		return "", ""
	case 1:
		return positional[0], ""
	default:
		return positional[len(positional)-1], positional[len(positional)-2]
	}
}

func exitWithChildStatus(err error) {
	if err == nil {
		return
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(1)
}
