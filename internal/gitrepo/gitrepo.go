// Package gitrepo is the history-rewrite engine's read-only window onto
// the actual Git object store: commit trees, parent links, and file
// content at a given commit. It uses go-git rather than shelling out
// per lookup, since the rewrite engine walks many commit/tree/blob
// lookups per invocation and spec.md §6 budgets the whole operation
// against a multiplier of raw Git's own wall time.
package gitrepo

import (
	"fmt"
	"io"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Repo wraps an open go-git repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository rooted at root (a working tree path, or a
// bare/.git directory — go-git's PlainOpen resolves either).
func Open(root string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("gitrepo: open %s: %w", root, err)
	}
	return &Repo{repo: r}, nil
}

func (g *Repo) commit(sha string) (*object.Commit, error) {
	h := plumbing.NewHash(sha)
	c, err := g.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("gitrepo: commit %s: %w", sha, err)
	}
	return c, nil
}

// TreeSHA returns the SHA of commitSHA's root tree.
func (g *Repo) TreeSHA(commitSHA string) (string, error) {
	c, err := g.commit(commitSHA)
	if err != nil {
		return "", err
	}
	return c.TreeHash.String(), nil
}

// ParentSHAs returns commitSHA's parent commit SHAs, in order. A root
// commit returns an empty slice.
func (g *Repo) ParentSHAs(commitSHA string) ([]string, error) {
	c, err := g.commit(commitSHA)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(c.ParentHashes))
	for i, h := range c.ParentHashes {
		out[i] = h.String()
	}
	return out, nil
}

// FileContent returns the content of path in commitSHA's tree. exists is
// false (with a nil error) if the path is absent from that tree.
func (g *Repo) FileContent(commitSHA, path string) (content string, exists bool, err error) {
	c, err := g.commit(commitSHA)
	if err != nil {
		return "", false, err
	}
	tree, err := c.Tree()
	if err != nil {
		return "", false, fmt.Errorf("gitrepo: tree for %s: %w", commitSHA, err)
	}
	f, err := tree.File(path)
	if err != nil {
		if err == object.ErrFileNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("gitrepo: file %s@%s: %w", path, commitSHA, err)
	}
	rc, err := f.Reader()
	if err != nil {
		return "", false, fmt.Errorf("gitrepo: open blob %s@%s: %w", path, commitSHA, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("gitrepo: read blob %s@%s: %w", path, commitSHA, err)
	}
	return string(data), true, nil
}

// BlobSHA returns the blob SHA of path in commitSHA's tree.
func (g *Repo) BlobSHA(commitSHA, path string) (string, bool, error) {
	c, err := g.commit(commitSHA)
	if err != nil {
		return "", false, err
	}
	tree, err := c.Tree()
	if err != nil {
		return "", false, err
	}
	entry, err := tree.FindEntry(path)
	if err != nil {
		if err == object.ErrEntryNotFound || err == object.ErrDirectoryNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Hash.String(), true, nil
}

// Paths lists every regular file path in commitSHA's tree.
func (g *Repo) Paths(commitSHA string) ([]string, error) {
	c, err := g.commit(commitSHA)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	var paths []string
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !entry.Mode.IsFile() {
			continue
		}
		paths = append(paths, name)
	}
	return paths, nil
}

// ChangedPaths returns the union of paths whose blob SHA differs between
// oldSHA's and newSHA's trees, plus paths that exist in only one of the
// two (added/removed). Either commit SHA may be empty, meaning "no tree"
// (e.g. the parent of a root commit).
func (g *Repo) ChangedPaths(oldSHA, newSHA string) ([]string, error) {
	oldPaths, err := g.pathSet(oldSHA)
	if err != nil {
		return nil, err
	}
	newPaths, err := g.pathSet(newSHA)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for p, oldHash := range oldPaths {
		newHash, inNew := newPaths[p]
		if !inNew || newHash != oldHash {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for p := range newPaths {
		if _, inOld := oldPaths[p]; !inOld && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *Repo) pathSet(commitSHA string) (map[string]string, error) {
	if commitSHA == "" {
		return map[string]string{}, nil
	}
	c, err := g.commit(commitSHA)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !entry.Mode.IsFile() {
			continue
		}
		out[name] = entry.Hash.String()
	}
	return out, nil
}

// BlobContent reads an arbitrary blob from the Git object store by its
// own SHA, independent of any commit or tree.
func (g *Repo) BlobContent(blobSHA string) (string, error) {
	h := plumbing.NewHash(blobSHA)
	blob, err := g.repo.BlobObject(h)
	if err != nil {
		return "", fmt.Errorf("gitrepo: blob %s: %w", blobSHA, err)
	}
	rc, err := blob.Reader()
	if err != nil {
		return "", fmt.Errorf("gitrepo: open blob %s: %w", blobSHA, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("gitrepo: read blob %s: %w", blobSHA, err)
	}
	return string(data), nil
}

// IsAncestor reports whether ancestorSHA is an ancestor of (or equal to)
// descendantSHA.
func (g *Repo) IsAncestor(ancestorSHA, descendantSHA string) (bool, error) {
	if ancestorSHA == descendantSHA {
		return true, nil
	}
	d, err := g.commit(descendantSHA)
	if err != nil {
		return false, err
	}
	target := plumbing.NewHash(ancestorSHA)
	found := false
	err = object.NewCommitPreorderIter(d, nil, nil).ForEach(func(c *object.Commit) error {
		if c.Hash == target {
			found = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return false, err
	}
	return found, nil
}
