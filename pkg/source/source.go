// Package source supplies file contents for one side of a comparison.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/panbanda/remapper/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at the slash-separated path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files below a directory.
type FilesystemSource struct {
	root string
}

// NewFilesystem creates a source that reads files relative to root.
func NewFilesystem(root string) *FilesystemSource {
	return &FilesystemSource{root: root}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.root, filepath.FromSlash(path)))
}

// TreeSource reads files from a git tree.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree vcs.Tree) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
// It is safe for concurrent use.
func (t *TreeSource) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.File(path)
}

// MapSource serves contents held in memory.
type MapSource map[string][]byte

// Read implements ContentSource.
func (m MapSource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return content, nil
}

// Empty is a source without files, used for the parent side of a root
// commit.
var Empty ContentSource = MapSource(nil)
