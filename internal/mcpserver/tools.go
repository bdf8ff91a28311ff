package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/remapper/internal/output"
	"github.com/panbanda/remapper/internal/service/matching"
	"github.com/panbanda/remapper/internal/vcs"
	"github.com/panbanda/remapper/pkg/models"
)

// RepoInput is the base input for tools that read a repository.
type RepoInput struct {
	Repo      string `json:"repo,omitempty" jsonschema:"Path inside the git repository. Defaults to the current directory."`
	Format    string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, markdown or text."`
	MaxTokens int    `json:"max_tokens,omitempty" jsonschema:"Approximate token budget for the response. Larger results are trimmed. Default 32000, negative disables."`
}

// MatchCommitInput selects one commit.
type MatchCommitInput struct {
	RepoInput
	Commit            string `json:"commit" jsonschema:"Commit to match against its first parent: sha, short sha, branch, tag or HEAD~n."`
	IncludeUnchanged  bool   `json:"include_unchanged,omitempty" jsonschema:"Include entities that are identical on both sides."`
	IncludeStatements *bool  `json:"include_statements,omitempty" jsonschema:"Include statement block pairs. Default true."`
}

// MatchHistoryInput selects a first-parent range.
type MatchHistoryInput struct {
	RepoInput
	From        string `json:"from,omitempty" jsonschema:"Oldest revision, exclusive."`
	To          string `json:"to,omitempty" jsonschema:"Newest revision. Default HEAD."`
	Since       string `json:"since,omitempty" jsonschema:"Only commits authored on or after this date (YYYY-MM-DD or RFC 3339)."`
	Max         int    `json:"max,omitempty" jsonschema:"Maximum number of commits. Default 20."`
	SummaryOnly bool   `json:"summary_only,omitempty" jsonschema:"Return only per-commit summaries."`
}

// ValidateReportInput names a report by path or inline content.
type ValidateReportInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Path of a JSON report file."`
	Report string `json:"report,omitempty" jsonschema:"Inline JSON report. Used when path is empty."`
}

const defaultHistoryMax = 20

func getRepo(input RepoInput) string {
	if input.Repo == "" {
		return "."
	}
	return input.Repo
}

func getFormat(input RepoInput) output.Format {
	if input.Format == "" {
		return output.FormatTOON
	}
	return output.ParseFormat(input.Format)
}

func getBudget(input RepoInput) int {
	switch {
	case input.MaxTokens == 0:
		return output.DefaultBudget
	case input.MaxTokens < 0:
		return 0
	}
	return input.MaxTokens
}

func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// trimmers shrink a report step by step until it fits a token budget.
var trimmers = []struct {
	note string
	fn   func(*models.CommitResult)
}{
	{"unchanged entities omitted", func(r *models.CommitResult) { r.UnchangedEntities, r.UnchangedStatements = nil, nil }},
	{"statement blocks omitted", func(r *models.CommitResult) {
		r.MatchedStatements, r.UnchangedStatements = nil, nil
		r.AddedStatements, r.DeletedStatements = nil, nil
	}},
	{"entity lists omitted", func(r *models.CommitResult) {
		r.MatchedEntities, r.AddedEntities, r.DeletedEntities = []models.EntityPair{}, nil, nil
	}},
}

// fit renders results, dropping detail until the text fits budget tokens.
func fit(results []models.CommitResult, format output.Format, budget int) (string, error) {
	text, err := formatOutput(output.NewMatchView(results...), format)
	if err != nil || output.Fits(text, budget) {
		return text, err
	}
	for _, t := range trimmers {
		for i := range results {
			t.fn(&results[i])
		}
		if text, err = formatOutput(output.NewMatchView(results...), format); err != nil {
			return "", err
		}
		if output.Fits(text, budget) {
			return text + fmt.Sprintf("\n(trimmed to ~%s tokens: %s)\n", output.FormatTokenCount(budget), t.note), nil
		}
	}
	return text + fmt.Sprintf("\n(exceeds ~%s tokens even as summaries; narrow the range)\n", output.FormatTokenCount(budget)), nil
}

func toolText(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// Tool handlers

func (s *Server) handleMatchCommit(ctx context.Context, req *mcp.CallToolRequest, input MatchCommitInput) (*mcp.CallToolResult, any, error) {
	if input.Commit == "" {
		return toolError("commit is required")
	}
	svc := s.service()
	repo, err := svc.Open(getRepo(input.RepoInput))
	if err != nil {
		return toolError(err.Error())
	}
	res, err := svc.MatchCommit(ctx, repo, input.Commit)
	if err != nil {
		return toolError(err.Error())
	}

	view := *res
	if !input.IncludeUnchanged {
		view.UnchangedEntities, view.UnchangedStatements = nil, nil
	}
	if input.IncludeStatements != nil && !*input.IncludeStatements {
		view.MatchedStatements, view.UnchangedStatements = nil, nil
		view.AddedStatements, view.DeletedStatements = nil, nil
	}
	text, err := fit([]models.CommitResult{view}, getFormat(input.RepoInput), getBudget(input.RepoInput))
	if err != nil {
		return toolError(err.Error())
	}
	return toolText(text)
}

func (s *Server) handleMatchHistory(ctx context.Context, req *mcp.CallToolRequest, input MatchHistoryInput) (*mcp.CallToolResult, any, error) {
	since, err := parseSince(input.Since)
	if err != nil {
		return toolError(err.Error())
	}
	limit := input.Max
	if limit <= 0 {
		limit = defaultHistoryMax
	}

	svc := s.service()
	repo, err := svc.Open(getRepo(input.RepoInput))
	if err != nil {
		return toolError(err.Error())
	}
	results, err := svc.History(ctx, repo, matching.HistoryOptions{
		HistoryOptions: vcs.HistoryOptions{To: input.To, From: input.From, Since: since, Max: limit},
	})
	if err != nil {
		return toolError(err.Error())
	}

	for i := range results {
		results[i].UnchangedEntities, results[i].UnchangedStatements = nil, nil
		if input.SummaryOnly {
			trimmers[1].fn(&results[i])
			trimmers[2].fn(&results[i])
		}
	}
	text, err := fit(results, getFormat(input.RepoInput), getBudget(input.RepoInput))
	if err != nil {
		return toolError(err.Error())
	}
	return toolText(text)
}

func (s *Server) handleValidateReport(ctx context.Context, req *mcp.CallToolRequest, input ValidateReportInput) (*mcp.CallToolResult, any, error) {
	data := []byte(input.Report)
	if input.Path != "" {
		var err error
		if data, err = os.ReadFile(input.Path); err != nil {
			return toolError(err.Error())
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return toolError("path or report is required")
	}
	if err := output.ValidateReport(data); err != nil {
		return toolError(err.Error())
	}
	return toolText("valid")
}
