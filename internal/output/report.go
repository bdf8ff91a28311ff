package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/remapper/pkg/models"
)

// MatchView renders a match report. Unchanged entities are listed only in
// the data formats; text and markdown show their count.
type MatchView struct {
	Report models.MatchReport
}

// NewMatchView wraps results for rendering.
func NewMatchView(results ...models.CommitResult) *MatchView {
	if results == nil {
		results = []models.CommitResult{}
	}
	return &MatchView{Report: models.MatchReport{Results: results}}
}

func (v *MatchView) RenderData() any { return v.Report }

func (v *MatchView) RenderText(w io.Writer, colored bool) error {
	return v.build().RenderText(w, colored)
}

func (v *MatchView) RenderMarkdown(w io.Writer) error {
	return v.build().RenderMarkdown(w)
}

func (v *MatchView) build() *Report {
	r := &Report{Title: "Entity matches"}
	if len(v.Report.Results) == 0 {
		r.Parts = append(r.Parts, &Section{Lines: []string{"No commits matched."}})
	}
	for _, res := range v.Report.Results {
		r.Parts = append(r.Parts, commitSections(res)...)
	}
	return r
}

func shortSHA(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}

func entityName(e models.EntityLocation) string {
	if e.Container == "" {
		return e.Name
	}
	return e.Container + "." + e.Name
}

func position(l models.Location) string {
	return l.FilePath + ":" + strconv.Itoa(l.StartLine)
}

func commitSections(res models.CommitResult) []Renderable {
	s := res.Summary
	title := "Commit " + shortSHA(res.SHA1)
	if res.Parent != "" {
		title += " (parent " + shortSHA(res.Parent) + ")"
	}
	var lines []string
	if res.URL != "" {
		lines = append(lines, res.URL)
	}
	lines = append(lines,
		fmt.Sprintf("files: %d modified, %d renamed, %d added, %d deleted",
			s.FilesModified, s.FilesRenamed, s.FilesAdded, s.FilesDeleted),
		fmt.Sprintf("entities: %d matched, %d unchanged, %d added, %d deleted",
			s.MatchedEntities, s.UnchangedEntities, s.AddedEntities, s.DeletedEntities),
		fmt.Sprintf("statements: %d matched, %d unchanged, %d added, %d deleted",
			s.MatchedStatements, s.UnchangedStatements, s.AddedStatements, s.DeletedStatements),
	)
	out := []Renderable{&Section{Title: title, Lines: lines}}

	if len(res.MatchedEntities) > 0 {
		rows := make([][]string, len(res.MatchedEntities))
		for i, p := range res.MatchedEntities {
			rows[i] = []string{
				string(p.Left.Type),
				entityName(p.Left),
				entityName(p.Right),
				position(p.Left.Location),
				position(p.Right.Location),
			}
		}
		out = append(out, NewTable("Matched entities",
			[]string{"Type", "Before", "After", "Before location", "After location"}, rows).
			WithStatus("matched", 1))
	}
	if len(res.DeletedEntities) > 0 {
		out = append(out, entityTable("Deleted entities", "deleted", res.DeletedEntities))
	}
	if len(res.AddedEntities) > 0 {
		out = append(out, entityTable("Added entities", "added", res.AddedEntities))
	}
	if len(res.MatchedStatements) > 0 {
		rows := make([][]string, len(res.MatchedStatements))
		for i, p := range res.MatchedStatements {
			rows[i] = []string{
				p.Left.Type,
				p.Left.Method,
				p.Left.Expression,
				p.Right.Expression,
				position(p.Left.Location),
				position(p.Right.Location),
			}
		}
		out = append(out, NewTable("Matched statements",
			[]string{"Type", "Method", "Before", "After", "Before location", "After location"}, rows).
			WithStatus("matched", 2))
	}
	if len(res.DeletedStatements) > 0 {
		out = append(out, statementTable("Deleted statements", "deleted", res.DeletedStatements))
	}
	if len(res.AddedStatements) > 0 {
		out = append(out, statementTable("Added statements", "added", res.AddedStatements))
	}
	return out
}

func entityTable(title, status string, entities []models.EntityLocation) *Table {
	rows := make([][]string, len(entities))
	for i, e := range entities {
		rows[i] = []string{string(e.Type), entityName(e), position(e.Location)}
	}
	return NewTable(title, []string{"Type", "Entity", "Location"}, rows).WithStatus(status, 1)
}

func statementTable(title, status string, stmts []models.StatementLocation) *Table {
	rows := make([][]string, len(stmts))
	for i, st := range stmts {
		rows[i] = []string{st.Type, st.Method, st.Expression, position(st.Location)}
	}
	return NewTable(title, []string{"Type", "Method", "Statement", "Location"}, rows).WithStatus(status, 2)
}
