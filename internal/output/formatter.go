// Package output renders match results as text tables, markdown, JSON or
// TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Renderable defines data that can render itself in multiple formats.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	// RenderData returns the underlying data for JSON and TOON serialization.
	RenderData() any
}

// Formatter writes reports in one format. Text output goes through
// Renderable when the value supports it; anything else is encoded as JSON.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter writes to path, or to stdout when path is empty. File output
// is never colored.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	if path == "" {
		return NewWriterFormatter(format, os.Stdout, colored), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Formatter{format: format, writer: f, file: f}, nil
}

func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}

// Output writes data in the configured format.
func (f *Formatter) Output(data any) error {
	r, renderable := data.(Renderable)
	if renderable && (f.format == FormatJSON || f.format == FormatTOON) {
		data = r.RenderData()
	}
	switch {
	case f.format == FormatTOON:
		return f.writeTOON(data)
	case f.format == FormatMarkdown && renderable:
		return r.RenderMarkdown(f.writer)
	case f.format == FormatMarkdown:
		fmt.Fprintln(f.writer, "```json")
		if err := f.writeJSON(data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(f.writer, "```")
		return err
	case f.format == FormatText && renderable:
		return r.RenderText(f.writer, f.colored)
	default:
		return f.writeJSON(data)
	}
}

func (f *Formatter) writeJSON(data any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *Formatter) writeTOON(data any) error {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f.writer, "%s\n", out)
	return err
}

// Table lists one relation of a commit, one correspondence per row. When
// Status is set the cells of StatusColumn are colored by it in text output.
type Table struct {
	Title        string
	Headers      []string
	Rows         [][]string
	Status       string
	StatusColumn int
}

// NewTable creates an uncolored table.
func NewTable(title string, headers []string, rows [][]string) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows}
}

// WithStatus colors column by status.
func (t *Table) WithStatus(status string, column int) *Table {
	t.Status = status
	t.StatusColumn = column
	return t
}

// RenderData returns the rows keyed by header. Cells past the last header
// are dropped.
func (t *Table) RenderData() any {
	rows := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(row))
		for j := 0; j < len(row) && j < len(t.Headers); j++ {
			m[t.Headers[j]] = row[j]
		}
		rows = append(rows, m)
	}
	return rows
}

func (t *Table) cells(row []string, colored bool) []string {
	if !colored || t.Status == "" || t.StatusColumn >= len(row) {
		return row
	}
	out := append([]string(nil), row...)
	out[t.StatusColumn] = StatusColor(t.Status, out[t.StatusColumn])
	return out
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if writeTitle(w, t.Title, '=', style(colored, color.Bold)) {
		fmt.Fprintln(w)
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)
	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(t.cells(row, colored)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	markdownRow(w, t.Headers)
	markdownRow(w, slices.Repeat([]string{"---"}, len(t.Headers)))
	for _, row := range t.Rows {
		markdownRow(w, row)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func markdownRow(w io.Writer, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
}

// writeTitle writes title underlined with rule and reports whether anything
// was written. A nil style writes plain text.
func writeTitle(w io.Writer, title string, rule rune, st *color.Color) bool {
	if title == "" {
		return false
	}
	if st != nil {
		st.Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat(string(rule), len(title)))
	return true
}

func style(colored bool, attrs ...color.Attribute) *color.Color {
	if !colored {
		return nil
	}
	return color.New(attrs...)
}

// Section is a titled block of summary lines, such as the header of one
// commit.
type Section struct {
	Title string   `json:"title,omitempty"`
	Lines []string `json:"lines,omitempty"`
}

func (s *Section) RenderData() any { return s }

func (s *Section) RenderText(w io.Writer, colored bool) error {
	writeTitle(w, s.Title, '-', style(colored, color.Bold))
	for _, l := range s.Lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Section) RenderMarkdown(w io.Writer) error {
	if s.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", s.Title)
	}
	for _, l := range s.Lines {
		fmt.Fprintf(w, "- %s\n", l)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Report is a titled sequence of sections and tables.
type Report struct {
	Title string
	Parts []Renderable
}

func (r *Report) RenderData() any {
	parts := make([]any, len(r.Parts))
	for i, p := range r.Parts {
		parts[i] = p.RenderData()
	}
	return map[string]any{"title": r.Title, "parts": parts}
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if writeTitle(w, r.Title, '=', style(colored, color.Bold, color.FgCyan)) {
		fmt.Fprintln(w)
	}
	for i, p := range r.Parts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := p.RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	if r.Title != "" {
		fmt.Fprintf(w, "# %s\n\n", r.Title)
	}
	for _, p := range r.Parts {
		if err := p.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

// StatusColor colors text by the relation of a correspondence.
func StatusColor(status, text string) string {
	switch strings.ToLower(status) {
	case "deleted":
		return color.RedString(text)
	case "added":
		return color.GreenString(text)
	case "matched":
		return color.YellowString(text)
	default:
		return text
	}
}
