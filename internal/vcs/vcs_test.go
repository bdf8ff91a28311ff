package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	path string
	repo *git.Repository
	wt   *git.Worktree
	when time.Time
}

func initTestRepo(t *testing.T) *testRepo {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	w, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, path: repoPath, repo: repo, wt: w, when: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.path, path)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
	_, err := r.wt.Add(path)
	require.NoError(r.t, err)
}

func (r *testRepo) remove(path string) {
	r.t.Helper()
	_, err := r.wt.Remove(path)
	require.NoError(r.t, err)
}

func (r *testRepo) move(from, to string) {
	r.t.Helper()
	require.NoError(r.t, os.MkdirAll(filepath.Dir(filepath.Join(r.path, to)), 0o755))
	_, err := r.wt.Move(from, to)
	require.NoError(r.t, err)
}

func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	r.when = r.when.Add(time.Hour)
	hash, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  r.when,
		},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func (r *testRepo) open() Repository {
	r.t.Helper()
	repo, err := NewGitOpener().PlainOpen(r.path)
	require.NoError(r.t, err)
	return repo
}

func isJava(path string) bool { return strings.HasSuffix(path, ".java") }

const classB = `package p;

public class B {
    private int a;
    private int b;

    public int sum() {
        return a + b;
    }
}
`

func TestGitOpener_PlainOpen_NonExistent(t *testing.T) {
	opener := NewGitOpener()
	_, err := opener.PlainOpen("/nonexistent/path")
	if err == nil {
		t.Error("PlainOpen() should return error for non-existent path")
	}
}

func TestGitOpener_PlainOpenWithDetect(t *testing.T) {
	r := initTestRepo(t)
	r.write("src/A.java", "class A {}\n")
	r.commit("init")

	repo, err := NewGitOpener().PlainOpenWithDetect(filepath.Join(r.path, "src"))
	require.NoError(t, err)
	assert.Equal(t, r.path, repo.RepoPath())
}

func TestResolve(t *testing.T) {
	r := initTestRepo(t)
	r.write("A.java", "class A {}\n")
	sha := r.commit("init")
	repo := r.open()

	head, err := repo.Resolve("HEAD")
	require.NoError(t, err)
	assert.Equal(t, sha, head.Hash().String())
	assert.Equal(t, "init", strings.TrimSpace(head.Message()))

	short, err := repo.Resolve(sha[:7])
	require.NoError(t, err)
	assert.Equal(t, sha, short.Hash().String())

	_, err = repo.Resolve("no-such-branch")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRemoteURL(t *testing.T) {
	r := initTestRepo(t)
	assert.Empty(t, r.open().RemoteURL())

	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/acme/shop.git"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/shop.git", r.open().RemoteURL())
}

func TestTreeFile(t *testing.T) {
	r := initTestRepo(t)
	r.write("p/B.java", classB)
	r.write("logo.bin", "\x00\x01\x02binary")
	r.commit("init")

	head, err := r.open().Resolve("HEAD")
	require.NoError(t, err)
	tree, err := head.Tree()
	require.NoError(t, err)

	content, err := tree.File("p/B.java")
	require.NoError(t, err)
	assert.Equal(t, classB, string(content))

	_, err = tree.File("p/Missing.java")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tree.File("logo.bin")
	assert.True(t, errors.Is(err, ErrBinary))

	files, err := tree.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"logo.bin", "p/B.java"}, files)
}

func TestCommitChanges(t *testing.T) {
	r := initTestRepo(t)
	r.write("p/A.java", "package p;\nclass A { int x; }\n")
	r.write("p/B.java", classB)
	r.write("p/Gone.java", "package gone;\n\nimport java.util.List;\n\ninterface Gone { List<String> names(); }\n")
	r.write("README.md", "readme\n")
	first := r.commit("init")

	r.write("p/A.java", "package p;\nclass A { int y; }\n")
	r.move("p/B.java", "q/B.java")
	r.remove("p/Gone.java")
	r.write("p/C.java", "class C {}\n")
	r.write("README.md", "readme, changed\n")
	r.commit("change")

	repo := r.open()
	head, err := repo.Resolve("HEAD")
	require.NoError(t, err)

	changes, parent, err := CommitChanges(context.Background(), head, isJava)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, first, parent.Hash().String())

	assert.Equal(t, []string{"p/A.java"}, changes.Modified)
	assert.Equal(t, []string{"p/C.java"}, changes.Added)
	assert.Equal(t, []string{"p/Gone.java"}, changes.Deleted)
	assert.Equal(t, map[string]string{"p/B.java": "q/B.java"}, changes.Renamed)
}

func TestCommitChangesRootCommit(t *testing.T) {
	r := initTestRepo(t)
	r.write("p/A.java", "class A {}\n")
	r.write("build.gradle", "")
	r.commit("init")

	head, err := r.open().Resolve("HEAD")
	require.NoError(t, err)

	changes, parent, err := CommitChanges(context.Background(), head, isJava)
	require.NoError(t, err)
	assert.Nil(t, parent)
	assert.Equal(t, []string{"p/A.java"}, changes.Added)
	assert.Empty(t, changes.Modified)
}

func TestFileChanges(t *testing.T) {
	changes := Changes{
		{From: "a/X.java", To: "a/X.java"},
		{From: "a/Y.java", To: "b/Y.java"},
		{From: "a/Z.java", To: "a/Z.txt"},
		{From: "notes.txt", To: "a/W.java"},
		{From: "a/V.java"},
		{To: "a/U.java"},
		{To: "docs/index.md"},
	}
	fc := FileChanges(changes, isJava)
	assert.Equal(t, []string{"a/X.java"}, fc.Modified)
	assert.Equal(t, map[string]string{"a/Y.java": "b/Y.java"}, fc.Renamed)
	assert.Equal(t, []string{"a/V.java", "a/Z.java"}, fc.Deleted)
	assert.Equal(t, []string{"a/U.java", "a/W.java"}, fc.Added)
}

func TestHistory(t *testing.T) {
	r := initTestRepo(t)
	var shas []string
	for i, body := range []string{"int a;", "int b;", "int c;", "int d;"} {
		r.write("A.java", "class A { "+body+" }\n")
		shas = append(shas, r.commit("commit "+string(rune('0'+i))))
	}
	repo := r.open()
	ctx := context.Background()

	all, err := History(ctx, repo, HistoryOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, shas[3], all[0].SHA)
	assert.Equal(t, shas[0], all[3].SHA)

	limited, err := History(ctx, repo, HistoryOptions{Max: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, shas[2], limited[1].SHA)

	ranged, err := History(ctx, repo, HistoryOptions{From: shas[1], To: shas[3]})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, shas[3], ranged[0].SHA)
	assert.Equal(t, shas[2], ranged[1].SHA)

	since, err := History(ctx, repo, HistoryOptions{Since: all[1].Date})
	require.NoError(t, err)
	assert.Len(t, since, 2)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = History(cancelled, repo, HistoryOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
