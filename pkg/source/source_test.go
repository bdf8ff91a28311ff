package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/remapper/internal/vcs"
)

// Verify implementations satisfy ContentSource.
var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*TreeSource)(nil)
	_ ContentSource = MapSource(nil)
)

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "p"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p", "A.java"), []byte("class A {}"), 0o644))

	src := NewFilesystem(dir)
	content, err := src.Read("p/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))

	// Non-existent file should error
	_, err = src.Read("p/B.java")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.java"), []byte("class A {}"), 0o644))
	_, err = w.Add("A.java")
	require.NoError(t, err)
	_, err = w.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	opened, err := vcs.NewGitOpener().PlainOpen(dir)
	require.NoError(t, err)
	head, err := opened.Resolve("HEAD")
	require.NoError(t, err)
	tree, err := head.Tree()
	require.NoError(t, err)

	src := NewTree(tree)
	content, err := src.Read("A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))

	_, err = src.Read("B.java")
	assert.True(t, errors.Is(err, vcs.ErrNotFound))
}

func TestMapSource(t *testing.T) {
	src := MapSource{"A.java": []byte("class A {}")}
	content, err := src.Read("A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))

	_, err = src.Read("B.java")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Empty.Read("A.java")
	assert.Error(t, err)
}
