package vcs

import (
	"context"
	"fmt"

	"github.com/panbanda/remapper/pkg/models"
)

// FileChanges classifies tree changes into added, deleted, modified and
// renamed paths, keeping only paths accepted by keep. A rename whose other
// side is rejected by keep is reported as a plain addition or deletion.
func FileChanges(changes Changes, keep func(path string) bool) models.FileChanges {
	var fc models.FileChanges
	fc.Renamed = make(map[string]string)
	for _, c := range changes {
		from := c.From != "" && keep(c.From)
		to := c.To != "" && keep(c.To)
		switch {
		case from && to && c.From == c.To:
			fc.Modified = append(fc.Modified, c.To)
		case from && to:
			fc.Renamed[c.From] = c.To
		case from:
			fc.Deleted = append(fc.Deleted, c.From)
		case to:
			fc.Added = append(fc.Added, c.To)
		}
	}
	fc.Normalize()
	return fc
}

// CommitChanges diffs commit against its first parent and returns the
// parent with the changes. A root commit has no parent: every file it
// holds is added and the returned parent is nil.
func CommitChanges(ctx context.Context, commit Commit, keep func(path string) bool) (models.FileChanges, Commit, error) {
	if err := ctx.Err(); err != nil {
		return models.FileChanges{}, nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return models.FileChanges{}, nil, fmt.Errorf("tree of %s: %w", commit.Hash(), err)
	}
	if commit.NumParents() == 0 {
		paths, err := tree.Files()
		if err != nil {
			return models.FileChanges{}, nil, fmt.Errorf("files of %s: %w", commit.Hash(), err)
		}
		changes := make(Changes, len(paths))
		for i, p := range paths {
			changes[i] = Change{To: p}
		}
		return FileChanges(changes, keep), nil, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return models.FileChanges{}, nil, fmt.Errorf("parent of %s: %w", commit.Hash(), err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return models.FileChanges{}, nil, fmt.Errorf("tree of %s: %w", parent.Hash(), err)
	}
	changes, err := parentTree.Diff(ctx, tree)
	if err != nil {
		return models.FileChanges{}, nil, fmt.Errorf("diff %s..%s: %w", parent.Hash(), commit.Hash(), err)
	}
	return FileChanges(changes, keep), parent, nil
}
