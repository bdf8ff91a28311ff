package models

import "sort"

// FileChanges is the set of file paths touched between two commits.
type FileChanges struct {
	Added    []string          `json:"added"`
	Deleted  []string          `json:"deleted"`
	Modified []string          `json:"modified"`
	Renamed  map[string]string `json:"renamed"` // before path -> after path
}

// Normalize sorts every list so iteration order is deterministic.
func (c *FileChanges) Normalize() {
	sort.Strings(c.Added)
	sort.Strings(c.Deleted)
	sort.Strings(c.Modified)
	if c.Renamed == nil {
		c.Renamed = map[string]string{}
	}
}

// RenamedBefore returns the before paths of renamed files, sorted.
func (c FileChanges) RenamedBefore() []string {
	paths := make([]string, 0, len(c.Renamed))
	for p := range c.Renamed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BeforePaths returns every path that exists in the before commit.
func (c FileChanges) BeforePaths() []string {
	paths := make([]string, 0, len(c.Deleted)+len(c.Modified)+len(c.Renamed))
	paths = append(paths, c.Deleted...)
	paths = append(paths, c.Modified...)
	paths = append(paths, c.RenamedBefore()...)
	sort.Strings(paths)
	return paths
}

// AfterPaths returns every path that exists in the after commit.
func (c FileChanges) AfterPaths() []string {
	paths := make([]string, 0, len(c.Added)+len(c.Modified)+len(c.Renamed))
	paths = append(paths, c.Added...)
	paths = append(paths, c.Modified...)
	for _, p := range c.Renamed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Empty reports whether nothing changed.
func (c FileChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Deleted) == 0 && len(c.Modified) == 0 && len(c.Renamed) == 0
}
