// Package matching runs entity matching for one commit or a range of
// commits of a git repository.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/panbanda/remapper/internal/cache"
	"github.com/panbanda/remapper/internal/fileproc"
	"github.com/panbanda/remapper/internal/vcs"
	"github.com/panbanda/remapper/pkg/analyzer/matcher"
	"github.com/panbanda/remapper/pkg/config"
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
	"github.com/panbanda/remapper/pkg/parser"
	"github.com/panbanda/remapper/pkg/source"
)

// Service orchestrates commit matching.
type Service struct {
	config *config.Config
	opener vcs.Opener
	cache  *cache.Cache
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the result cache. A nil cache disables caching.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new matching service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the repository containing path.
func (s *Service) Open(path string) (vcs.Repository, error) {
	repo, err := s.opener.PlainOpenWithDetect(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return repo, nil
}

// MatchCommit pairs the entities of rev with those of its first parent.
func (s *Service) MatchCommit(ctx context.Context, repo vcs.Repository, rev string) (*models.CommitResult, error) {
	commit, err := repo.Resolve(rev)
	if err != nil {
		return nil, err
	}
	sha := commit.Hash().String()
	repoID := repositoryID(repo)

	key := cache.Key(repoID, sha, s.fingerprint())
	if s.cache != nil {
		if res, ok := s.cache.GetResult(key); ok {
			s.logger.Debug("cache hit", "commit", sha)
			return res, nil
		}
	}

	changes, parent, err := vcs.CommitChanges(ctx, commit, s.config.Accept)
	if err != nil {
		return nil, err
	}

	afterTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", sha, err)
	}
	var beforeTree vcs.Tree
	beforeSrc := source.Empty
	if parent != nil {
		if beforeTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("tree of %s: %w", parent.Hash(), err)
		}
		beforeSrc = source.NewTree(beforeTree)
	}

	before, err := s.side(ctx, "before", changes.BeforePaths(), beforeTree, beforeSrc)
	if err != nil {
		return nil, err
	}
	after, err := s.side(ctx, "after", changes.AfterPaths(), afterTree, source.NewTree(afterTree))
	if err != nil {
		return nil, err
	}

	m := matcher.New(
		matcher.WithMinDice(s.config.Matcher.MinDice),
		matcher.WithFallbackDice(s.config.Matcher.FallbackDice),
		matcher.WithMaxIterations(s.config.Matcher.MaxIterations),
		matcher.WithMinStatementDice(s.config.Matcher.MinStatementDice),
		matcher.WithLogger(s.logger.With("commit", shortSHA(sha))),
	)
	mp, err := m.Match(ctx, matcher.Input{
		Before:      before.roots,
		After:       after.roots,
		Changes:     changes,
		BeforeGraph: parser.BuildGraph(before.graphFiles),
		AfterGraph:  parser.BuildGraph(after.graphFiles),
	})
	if err != nil {
		return nil, err
	}

	res := NewResult(repoID, sha, CommitURL(repo.RemoteURL(), sha), changes, mp)
	if parent != nil {
		res.Parent = parent.Hash().String()
	}
	if s.cache != nil {
		if err := s.cache.SetResult(key, res); err != nil {
			s.logger.Warn("cache write failed", "commit", sha, "error", err)
		}
	}
	return res, nil
}

type side struct {
	roots      map[string]*decl.Node
	graphFiles []*parser.File
}

// side parses one commit side. With FullGraph every accepted file of the tree
// feeds the dependency graph while only changed files become match roots.
func (s *Service) side(ctx context.Context, name string, changed []string, tree vcs.Tree, src source.ContentSource) (side, error) {
	paths := changed
	if s.config.Matcher.FullGraph && tree != nil {
		all, err := tree.Files()
		if err != nil {
			return side{}, fmt.Errorf("list %s files: %w", name, err)
		}
		paths = paths[:0:0]
		for _, p := range all {
			if s.config.Accept(p) {
				paths = append(paths, p)
			}
		}
	}

	files, perrs := fileproc.ParseSources(ctx, paths, src, fileproc.Options{
		Workers: s.config.Files.Workers,
		MaxSize: s.config.Files.MaxFileSize,
	})
	if err := ctx.Err(); err != nil {
		return side{}, err
	}
	if perrs.HasErrors() {
		for _, pe := range perrs.Sorted() {
			s.logger.Warn("skipping file", "side", name, "path", pe.Path, "error", pe.Err)
		}
	}

	want := make(map[string]bool, len(changed))
	for _, p := range changed {
		want[p] = true
	}
	out := side{roots: make(map[string]*decl.Node, len(changed)), graphFiles: files}
	for _, f := range files {
		if want[f.Path] {
			out.roots[f.Path] = f.Root
		}
		if f.Syntax {
			s.logger.Debug("recovered from syntax errors", "side", name, "path", f.Path)
		}
	}
	return out, nil
}

// fingerprint captures the settings that change match output.
func (s *Service) fingerprint() string {
	data, _ := json.Marshal(struct {
		Matcher config.MatcherConfig
		Files   []string
		Exclude []string
		Dirs    []string
	}{s.config.Matcher, s.config.Files.Extensions, s.config.Files.Patterns, s.config.Files.ExcludeDirs})
	return string(data)
}

// HistoryOptions bounds a history run.
type HistoryOptions struct {
	vcs.HistoryOptions
	// OnStart is called once with the number of selected commits.
	OnStart func(total int)
	// OnCommit is called before each commit is matched.
	OnCommit func(info vcs.CommitInfo)
}

// ErrNoCommits is returned when a history range selects nothing.
var ErrNoCommits = errors.New("no commits in range")

// History matches every commit of a first-parent walk, newest first.
// Commits that fail are logged and left out of the result.
func (s *Service) History(ctx context.Context, repo vcs.Repository, opts HistoryOptions) ([]models.CommitResult, error) {
	commits, err := vcs.History(ctx, repo, opts.HistoryOptions)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	if opts.OnStart != nil {
		opts.OnStart(len(commits))
	}

	results := make([]models.CommitResult, 0, len(commits))
	for _, c := range commits {
		if opts.OnCommit != nil {
			opts.OnCommit(c)
		}
		res, err := s.MatchCommit(ctx, repo, c.SHA)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			s.logger.Warn("commit skipped", "commit", c.SHA, "error", err)
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

func repositoryID(repo vcs.Repository) string {
	if u := repo.RemoteURL(); u != "" {
		return u
	}
	return filepath.Base(repo.RepoPath())
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CommitURL derives a browsable commit URL from a remote. Remotes on hosts
// with an unknown layout yield "".
func CommitURL(remote, sha string) string {
	if remote == "" {
		return ""
	}
	host, path := "", ""
	switch {
	case strings.HasPrefix(remote, "git@"):
		rest := strings.TrimPrefix(remote, "git@")
		var ok bool
		host, path, ok = strings.Cut(rest, ":")
		if !ok {
			return ""
		}
	case strings.HasPrefix(remote, "https://"), strings.HasPrefix(remote, "http://"), strings.HasPrefix(remote, "ssh://"):
		_, rest, _ := strings.Cut(remote, "://")
		host, path, _ = strings.Cut(rest, "/")
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
	default:
		return ""
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if path == "" {
		return ""
	}
	switch host {
	case "github.com", "gitlab.com":
		sep := "/commit/"
		if host == "gitlab.com" {
			sep = "/-/commit/"
		}
		return "https://" + host + "/" + path + sep + sha
	case "bitbucket.org":
		return "https://" + host + "/" + path + "/commits/" + sha
	}
	return ""
}
