package vcs

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitInfo represents a commit with its SHA and timestamp.
type CommitInfo struct {
	SHA     string
	Date    time.Time
	Message string
}

// HistoryOptions bounds a first-parent walk.
type HistoryOptions struct {
	// To is the newest revision, HEAD when empty.
	To string
	// From is an older revision where the walk stops, exclusive.
	From string
	// Since stops the walk at the first commit authored before it.
	Since time.Time
	// Max limits the number of commits, unlimited when zero.
	Max int
}

// History walks first parents from opts.To and returns the commits newest
// first.
func History(ctx context.Context, repo Repository, opts HistoryOptions) ([]CommitInfo, error) {
	to := opts.To
	if to == "" {
		to = "HEAD"
	}
	commit, err := repo.Resolve(to)
	if err != nil {
		return nil, err
	}
	var stop plumbing.Hash
	if opts.From != "" {
		from, err := repo.Resolve(opts.From)
		if err != nil {
			return nil, err
		}
		stop = from.Hash()
	}

	var out []CommitInfo
	for commit != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if commit.Hash() == stop {
			break
		}
		if !opts.Since.IsZero() && commit.When().Before(opts.Since) {
			break
		}
		out = append(out, CommitInfo{
			SHA:     commit.Hash().String(),
			Date:    commit.When(),
			Message: commit.Message(),
		})
		if opts.Max > 0 && len(out) >= opts.Max {
			break
		}
		if commit.NumParents() == 0 {
			break
		}
		if commit, err = commit.Parent(0); err != nil {
			return nil, err
		}
	}
	return out, nil
}
