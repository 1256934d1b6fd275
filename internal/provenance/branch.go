package provenance

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// BranchName is the orphan branch git-ai stores authorship logs and content
// blobs on, alongside the code history it describes.
const BranchName = "git-ai-provenance"

// RefPath is BranchName's full ref, used to distinguish it from HEAD.
const RefPath = "refs/heads/" + BranchName

// BranchExists returns true if the provenance branch exists locally.
func BranchExists(root string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", BranchName)
	cmd.Dir = root
	return cmd.Run() == nil
}

// InitBranch creates the orphan provenance branch with an initial empty commit.
// Idempotent: returns nil if branch already exists.
func InitBranch(root string) error {
	if BranchExists(root) {
		return nil
	}

	// Create an empty tree
	cmd := exec.Command("git", "mktree")
	cmd.Dir = root
	cmd.Stdin = strings.NewReader("")
	treeOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("mktree: %w", err)
	}
	treeSHA := strings.TrimSpace(string(treeOut))

	// Create root commit (no parent)
	cmd = exec.Command("git", "commit-tree", treeSHA, "-m", "git-ai: initialize provenance branch")
	cmd.Dir = root
	commitOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("commit-tree: %w", err)
	}
	commitSHA := strings.TrimSpace(string(commitOut))

	// Create the branch ref
	cmd = exec.Command("git", "update-ref", RefPath, commitSHA)
	cmd.Dir = root
	return cmd.Run()
}

// WriteBlob writes arbitrary data to a path on the provenance branch using git plumbing.
// This does NOT check out the branch or affect the working tree.
func WriteBlob(root, gitDir, branchPath string, data []byte) error {
	indexFile := filepath.Join(gitDir, "git-ai-provenance-index")
	defer os.Remove(indexFile)

	env := append(os.Environ(), "GIT_INDEX_FILE="+indexFile)

	// 1. Read existing tree into temporary index
	cmd := exec.Command("git", "read-tree", BranchName)
	cmd.Dir = root
	cmd.Env = env
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("read-tree: %w", err)
	}

	// 2. Hash the data as a blob
	cmd = exec.Command("git", "hash-object", "-w", "--stdin")
	cmd.Dir = root
	cmd.Stdin = strings.NewReader(string(data))
	blobOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("hash-object: %w", err)
	}
	blobSHA := strings.TrimSpace(string(blobOut))

	// 3. Add blob to index at the specified path
	cmd = exec.Command("git", "update-index", "--add", "--cacheinfo",
		fmt.Sprintf("100644,%s,%s", blobSHA, branchPath))
	cmd.Dir = root
	cmd.Env = env
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("update-index: %w", err)
	}

	// 4. Write tree
	cmd = exec.Command("git", "write-tree")
	cmd.Dir = root
	cmd.Env = env
	treeOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("write-tree: %w", err)
	}
	treeSHA := strings.TrimSpace(string(treeOut))

	// 5. Commit tree with parent
	parentSHA := BranchTipSHA(root)
	cmd = exec.Command("git", "commit-tree", treeSHA, "-p", parentSHA, "-m",
		fmt.Sprintf("git-ai: write %s", branchPath))
	cmd.Dir = root
	commitOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("commit-tree: %w", err)
	}
	commitSHA := strings.TrimSpace(string(commitOut))

	// 6. Update ref
	cmd = exec.Command("git", "update-ref", RefPath, commitSHA)
	cmd.Dir = root
	return cmd.Run()
}

// DeleteBlob removes a path from the provenance branch's tree, if present.
// It is a no-op if the branch or the path doesn't exist.
func DeleteBlob(root, gitDir, branchPath string) error {
	if !BranchExists(root) {
		return nil
	}
	indexFile := filepath.Join(gitDir, "git-ai-provenance-index")
	defer os.Remove(indexFile)

	env := append(os.Environ(), "GIT_INDEX_FILE="+indexFile)

	cmd := exec.Command("git", "read-tree", BranchName)
	cmd.Dir = root
	cmd.Env = env
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("read-tree: %w", err)
	}

	cmd = exec.Command("git", "update-index", "--remove", branchPath)
	cmd.Dir = root
	cmd.Env = env
	if err := cmd.Run(); err != nil {
		// Path not tracked on the branch — nothing to delete.
		return nil
	}

	cmd = exec.Command("git", "write-tree")
	cmd.Dir = root
	cmd.Env = env
	treeOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("write-tree: %w", err)
	}
	treeSHA := strings.TrimSpace(string(treeOut))

	parentSHA := BranchTipSHA(root)
	cmd = exec.Command("git", "commit-tree", treeSHA, "-p", parentSHA, "-m",
		fmt.Sprintf("git-ai: delete %s", branchPath))
	cmd.Dir = root
	commitOut, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("commit-tree: %w", err)
	}
	commitSHA := strings.TrimSpace(string(commitOut))

	cmd = exec.Command("git", "update-ref", RefPath, commitSHA)
	cmd.Dir = root
	return cmd.Run()
}

// ReadBlob reads a file from the provenance branch without checkout.
func ReadBlob(root, branchPath string) ([]byte, error) {
	cmd := exec.Command("git", "show", BranchName+":"+branchPath)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", branchPath, err)
	}
	return out, nil
}

// ListDir returns the base filenames of every blob directly under dir on
// the provenance branch (non-recursive), or nil if dir doesn't exist yet.
func ListDir(root, dir string) ([]string, error) {
	if !BranchExists(root) {
		return nil, nil
	}
	cmd := exec.Command("git", "ls-tree", "--name-only", BranchName, dir+"/")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, nil // directory may not exist yet
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		names = append(names, filepath.Base(line))
	}
	return names, nil
}

// BranchTipSHA returns the current tip commit SHA of the provenance branch.
func BranchTipSHA(root string) string {
	cmd := exec.Command("git", "rev-parse", BranchName)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// PushBranch pushes the provenance branch to the remote.
// Handles concurrent push with fetch-rebuild-retry logic.
func PushBranch(root string, remote string, maxRetries int) error {
	if remote == "" {
		remote = "origin"
	}

	// Check if remote exists
	cmd := exec.Command("git", "remote", "get-url", remote)
	cmd.Dir = root
	if err := cmd.Run(); err != nil {
		return nil // no remote configured, silently skip
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		cmd = exec.Command("git", "push", remote, BranchName)
		cmd.Dir = root
		if err := cmd.Run(); err == nil {
			return nil
		}

		// Push failed — fetch and rebuild our local branch on top of remote
		cmd = exec.Command("git", "fetch", remote, BranchName)
		cmd.Dir = root
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("fetch %s: %w", remote, err)
		}

		// Merge the fetched remote branch into the local one
		if err := mergeRemoteBranch(root); err != nil {
			return fmt.Errorf("merge remote: %w", err)
		}
	}
	return fmt.Errorf("push failed after %d retries", maxRetries)
}

// PullBranch fetches the provenance branch from remote and merges it into
// the local one, so authorship logs for commits pulled in by `git-ai
// pull`/`git-ai fetch` travel alongside their code (the inverse half of
// PushBranch's job). A no-op, not an error, when the remote has no
// provenance branch of its own yet.
func PullBranch(root string, remote string) error {
	if remote == "" {
		remote = "origin"
	}
	cmd := exec.Command("git", "remote", "get-url", remote)
	cmd.Dir = root
	if err := cmd.Run(); err != nil {
		return nil // no remote configured
	}

	cmd = exec.Command("git", "fetch", remote, BranchName)
	cmd.Dir = root
	if err := cmd.Run(); err != nil {
		return nil // remote has no provenance branch — nothing to pull
	}

	if !BranchExists(root) {
		// We have nothing locally yet: just point our branch at FETCH_HEAD.
		fetchHead, err := exec.Command("git", "rev-parse", "FETCH_HEAD").Output()
		if err != nil {
			return fmt.Errorf("rev-parse FETCH_HEAD: %w", err)
		}
		cmd = exec.Command("git", "branch", BranchName, strings.TrimSpace(string(fetchHead)))
		cmd.Dir = root
		return cmd.Run()
	}

	return mergeRemoteBranch(root)
}

// mergeRemoteBranch merges the remote provenance branch into the local one.
// Authorship logs are named by commit SHA, so the two sides rarely change
// the same path; one changed on both sides leaves the temporary index
// unmerged and write-tree returns an error. Otherwise we create a merge
// commit that combines both trees.
func mergeRemoteBranch(root string) error {
	localSHA := BranchTipSHA(root)

	cmd := exec.Command("git", "rev-parse", "FETCH_HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("FETCH_HEAD: %w", err)
	}
	remoteSHA := strings.TrimSpace(string(out))

	if localSHA == remoteSHA {
		return nil
	}

	// Use read-tree -m to merge the two trees
	indexFile := filepath.Join(root, ".git", "git-ai-merge-index")
	defer os.Remove(indexFile)

	env := append(os.Environ(), "GIT_INDEX_FILE="+indexFile)

	// Three-way merge: find merge base first
	cmd = exec.Command("git", "merge-base", localSHA, remoteSHA)
	cmd.Dir = root
	baseOut, err := cmd.Output()
	if err != nil {
		// No common ancestor — use remote as base
		cmd = exec.Command("git", "read-tree", remoteSHA)
		cmd.Dir = root
		cmd.Env = env
		if err := cmd.Run(); err != nil {
			return err
		}
	} else {
		baseSHA := strings.TrimSpace(string(baseOut))
		cmd = exec.Command("git", "read-tree", "-m", baseSHA, localSHA, remoteSHA)
		cmd.Dir = root
		cmd.Env = env
		if err := cmd.Run(); err != nil {
			return err
		}
	}

	cmd = exec.Command("git", "write-tree")
	cmd.Dir = root
	cmd.Env = env
	treeOut, err := cmd.Output()
	if err != nil {
		return err
	}
	treeSHA := strings.TrimSpace(string(treeOut))

	cmd = exec.Command("git", "commit-tree", treeSHA,
		"-p", localSHA, "-p", remoteSHA,
		"-m", "git-ai: merge provenance")
	cmd.Dir = root
	commitOut, err := cmd.Output()
	if err != nil {
		return err
	}
	commitSHA := strings.TrimSpace(string(commitOut))

	cmd = exec.Command("git", "update-ref", RefPath, commitSHA)
	cmd.Dir = root
	return cmd.Run()
}
