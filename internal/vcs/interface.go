// Package vcs provides the git access used to match a commit against its
// parent: revision resolution, tree diffs with rename detection, blob
// contents and first-parent history.
package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Repository provides access to git repository operations.
type Repository interface {
	// Resolve returns the commit named by a revision (sha, short sha,
	// branch, tag or HEAD expression).
	Resolve(rev string) (Commit, error)
	// CommitObject returns the commit with the given hash.
	CommitObject(hash plumbing.Hash) (Commit, error)
	// RemoteURL returns the fetch URL of the origin remote, or "" when the
	// repository has none.
	RemoteURL() string
	// RepoPath returns the root path of the repository.
	RepoPath() string
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the commit hash.
	Hash() plumbing.Hash
	// NumParents returns the number of parent commits.
	NumParents() int
	// Parent returns the nth parent commit.
	Parent(n int) (Commit, error)
	// Tree returns the tree object for this commit.
	Tree() (Tree, error)
	// When returns the author time.
	When() time.Time
	// Message returns the commit message.
	Message() string
}

// Tree represents a git tree object.
type Tree interface {
	// Diff computes the file changes from this tree to another, pairing
	// deleted and added files into renames.
	Diff(ctx context.Context, to Tree) (Changes, error)
	// File returns the contents of the blob at path.
	File(path string) ([]byte, error)
	// Files returns every file path in the tree, sorted.
	Files() ([]string, error)
}

// Changes represents a collection of file changes between trees.
type Changes []Change

// Change represents a single file change. From is empty for added files
// and To is empty for deleted files.
type Change struct {
	From string
	To   string
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
