// Package gitconfig resolves the path to the underlying git binary this
// tool wraps. Per spec.md §9, the resolved path is threaded through
// explicitly as a value rather than read through a process-global
// singleton in hot paths.
package gitconfig

import (
	"os"
	"strings"
)

// candidates mirrors the original implementation's probe list: common
// absolute install locations across platforms, checked before falling
// back to a bare "git" that relies on PATH resolution.
var candidates = []string{
	"/opt/homebrew/bin/git",
	"/usr/local/bin/git",
	"/usr/bin/git",
	"/bin/git",
	"/usr/local/sbin/git",
	"/usr/sbin/git",
	`C:\Program Files\Git\bin\git.exe`,
	`C:\Program Files (x86)\Git\bin\git.exe`,
}

// GitBinary is the resolved path (or bare name) this process invokes for
// every wrapped Git command.
type GitBinary string

// Resolve determines the git binary to invoke: the GIT_AI_GIT
// environment variable, if set to a non-blank value; otherwise the
// first existing candidate from the platform probe list; otherwise the
// bare "git", left for the OS to resolve via PATH.
//
// TODO: a bare "git" fallback can recurse back into git-ai itself if the
// user has shadowed git with this tool on PATH; no warning is emitted yet.
func Resolve() GitBinary {
	if val := strings.TrimSpace(os.Getenv("GIT_AI_GIT")); val != "" {
		return GitBinary(val)
	}
	for _, path := range candidates {
		if isExecutableFile(path) {
			return GitBinary(path)
		}
	}
	return GitBinary("git")
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
