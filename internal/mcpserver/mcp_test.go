package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/remapper/internal/output"
	"github.com/panbanda/remapper/pkg/models"
)

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	require.NotNil(t, server)
	require.NotNil(t, server.server)
	require.NotNil(t, server.config)
}

func TestServerCreationEmptyVersion(t *testing.T) {
	assert.NotNil(t, NewServer(""))
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"match_commit":    describeMatchCommit,
		"match_history":   describeMatchHistory,
		"validate_report": describeValidateReport,
	}
	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				assert.Contains(t, desc, section)
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"md", output.FormatMarkdown},
		{"text", output.FormatText},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getFormat(RepoInput{Format: tt.in}), tt.in)
	}
}

func TestGetBudget(t *testing.T) {
	assert.Equal(t, output.DefaultBudget, getBudget(RepoInput{}))
	assert.Equal(t, 0, getBudget(RepoInput{MaxTokens: -1}))
	assert.Equal(t, 500, getBudget(RepoInput{MaxTokens: 500}))
}

func TestParseSince(t *testing.T) {
	got, err := parseSince("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseSince("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseSince("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = parseSince("last week")
	assert.Error(t, err)
}

func bigResult(n int) models.CommitResult {
	res := models.CommitResult{Repository: "r", SHA1: "abcdef1", MatchedEntities: []models.EntityPair{}}
	for i := range n {
		loc := models.EntityLocation{
			Container: "com.acme.Shop",
			Type:      models.KindMethod,
			Name:      strings.Repeat("m", 20) + string(rune('a'+i%26)) + "()",
			Location:  models.Location{FilePath: "src/Shop.java", StartLine: i + 1, EndLine: i + 2, StartColumn: 1, EndColumn: 2},
		}
		res.UnchangedEntities = append(res.UnchangedEntities, models.EntityPair{Left: loc, Right: loc})
	}
	res.Summary.UnchangedEntities = n
	return res
}

func TestFit(t *testing.T) {
	text, err := fit([]models.CommitResult{bigResult(3)}, output.FormatJSON, 0)
	require.NoError(t, err)
	assert.NotContains(t, text, "trimmed")

	text, err = fit([]models.CommitResult{bigResult(200)}, output.FormatJSON, 400)
	require.NoError(t, err)
	assert.Contains(t, text, "unchanged entities omitted")
	assert.NotContains(t, text, "mmmmmmmmmmmmmmmmmmmm")
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func TestToolError(t *testing.T) {
	res, data, err := toolError("boom")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: boom", textOf(t, res))
}

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	commit := func(path, content, msg string) string {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, path)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, path), []byte(content), 0o644))
		_, err := wt.Add(path)
		require.NoError(t, err)
		when = when.Add(time.Hour)
		h, err := wt.Commit(msg, &git.CommitOptions{Author: &object.Signature{Name: "T", Email: "t@example.com", When: when}})
		require.NoError(t, err)
		return h.String()
	}
	commit("src/Shop.java", "package acme;\n\nclass Shop {\n    int count;\n\n    int size() { return count; }\n}\n", "init")
	sha := commit("src/Shop.java", "package acme;\n\nclass Shop {\n    int count;\n\n    int length() { return count; }\n}\n", "rename")
	return dir, sha
}

func TestHandleMatchCommit(t *testing.T) {
	dir, sha := initRepo(t)
	s := NewServer("test")

	res, _, err := s.handleMatchCommit(context.Background(), nil, MatchCommitInput{
		RepoInput: RepoInput{Repo: dir, Format: "json"},
		Commit:    sha,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var report models.MatchReport
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &report))
	require.Len(t, report.Results, 1)
	got := report.Results[0]
	assert.Equal(t, sha, got.SHA1)
	assert.Empty(t, got.UnchangedEntities, "unchanged entities are dropped by default")
	assert.NotEmpty(t, got.MatchedEntities)
}

func TestHandleMatchCommitErrors(t *testing.T) {
	s := NewServer("test")
	res, _, err := s.handleMatchCommit(context.Background(), nil, MatchCommitInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = s.handleMatchCommit(context.Background(), nil, MatchCommitInput{
		RepoInput: RepoInput{Repo: t.TempDir()},
		Commit:    "HEAD",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleMatchHistory(t *testing.T) {
	dir, _ := initRepo(t)
	s := NewServer("test")

	res, _, err := s.handleMatchHistory(context.Background(), nil, MatchHistoryInput{
		RepoInput:   RepoInput{Repo: dir, Format: "json"},
		SummaryOnly: true,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var report models.MatchReport
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &report))
	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.Empty(t, r.MatchedEntities)
		assert.Empty(t, r.AddedEntities)
	}
	assert.Positive(t, report.Results[1].Summary.AddedEntities, "root commit adds every entity")

	res, _, err = s.handleMatchHistory(context.Background(), nil, MatchHistoryInput{Since: "soon"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleValidateReport(t *testing.T) {
	s := NewServer("test")
	valid := `{"results":[{"repository":"r","sha1":"abcdef1","url":"","matchedEntities":[],"summary":{"matchedEntities":0}}]}`

	res, _, err := s.handleValidateReport(context.Background(), nil, ValidateReportInput{Report: valid})
	require.NoError(t, err)
	assert.Equal(t, "valid", textOf(t, res))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"results":[{"sha1":"XYZ"}]}`), 0o644))
	res, _, err = s.handleValidateReport(context.Background(), nil, ValidateReportInput{Path: path})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = s.handleValidateReport(context.Background(), nil, ValidateReportInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPromptDefinitions(t *testing.T) {
	defs := loadPrompts()
	require.Len(t, defs, 2)
	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.Description)
			assert.NotEmpty(t, def.Arguments)
			assert.NotEmpty(t, def.Body)
			assert.NotContains(t, def.Body, "---")
		})
	}
}

func TestPromptHandlerWithArgs(t *testing.T) {
	var review promptDefinition
	for _, def := range loadPrompts() {
		if def.Name == "review-commit" {
			review = def
		}
	}
	require.Equal(t, "review-commit", review.Name)

	handler := makePromptHandler(review)
	result, err := handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: review.Name, Arguments: map[string]string{"commit": "abc123"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.Role("user"), result.Messages[0].Role)
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "commit abc123")
	assert.Contains(t, text, `repo "."`, "missing arguments fall back to their defaults")
	assert.NotContains(t, text, "{{")
}

func TestSubstituteArg(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		args       map[string]string
		defaultVal string
		expected   string
	}{
		{"use provided value", "max {{max}} commits", map[string]string{"max": "50"}, "20", "max 50 commits"},
		{"use default when missing", "max {{max}} commits", map[string]string{}, "20", "max 20 commits"},
		{"use default when empty", "max {{max}} commits", map[string]string{"max": ""}, "20", "max 20 commits"},
		{"no placeholder unchanged", "no placeholder here", map[string]string{"max": "50"}, "20", "no placeholder here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, substituteArg(tt.text, "max", tt.args, tt.defaultVal))
		})
	}
}

func TestParseFrontmatterWithoutHeader(t *testing.T) {
	fm, body := parseFrontmatter([]byte("plain body"))
	assert.Empty(t, fm.Description)
	assert.Equal(t, "plain body", body)
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "io.github.panbanda/remapper", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Contains(t, m.Description, "Java")
	assert.Contains(t, m.Description, "commit")
	require.Len(t, m.Packages, 1)
	pkg := m.Packages[0]
	assert.Equal(t, "ghcr.io/panbanda/remapper:1.2.3", pkg.Identifier)
	assert.Equal(t, "1.2.3", pkg.Version)
	assert.Equal(t, "stdio", pkg.Transport.Type)
	require.Len(t, pkg.PackageArguments, 2)
	assert.Equal(t, "mcp", pkg.PackageArguments[0].Value)
	assert.Equal(t, "--repo", pkg.PackageArguments[1].Name)
	assert.True(t, pkg.PackageArguments[1].IsRequired)
	require.Len(t, pkg.EnvironmentVariables, 1)
	assert.Equal(t, "REMAPPER_CONFIG", pkg.EnvironmentVariables[0].Name)

	data, err = GenerateManifest("")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "0.0.0"`)
}
