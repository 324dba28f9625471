package errors

import (
	"fmt"
	"io"
	"sort"
)

// Totals counts diagnostics per category.
type Totals struct {
	Error   int
	Warning int
	Message int
	Hint    int
}

// Add increments the counter for c.
func (t *Totals) Add(c Category) {
	switch c {
	case CategoryError:
		t.Error++
	case CategoryWarning:
		t.Warning++
	case CategoryMessage:
		t.Message++
	case CategoryHint:
		t.Hint++
	}
}

// Sum returns the number of counted diagnostics.
func (t Totals) Sum() int {
	return t.Error + t.Warning + t.Message + t.Hint
}

// FileReport carries the diagnostics of one document together with the
// line table needed to render offsets as line and column.
type FileReport struct {
	Path        string
	Diagnostics List
	lineStarts  []int
}

// NewFileReport builds a report for the document at path with the given text.
func NewFileReport(path, text string, diags List) FileReport {
	return FileReport{Path: path, Diagnostics: diags, lineStarts: LineStarts(text)}
}

// Position converts a byte offset into 1-based line and column.
func (r FileReport) Position(offset int) (line, column int) {
	return PositionOf(r.lineStarts, offset)
}

// LineStarts returns the offsets at which each line of text begins.
func LineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// PositionOf converts offset into 1-based line and column using a line table.
func PositionOf(lineStarts []int, offset int) (line, column int) {
	if len(lineStarts) == 0 {
		return 1, offset + 1
	}
	i := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - lineStarts[i] + 1
}

// Summary aggregates diagnostics over a workspace.
type Summary struct {
	Files          []FileReport
	FilesProcessed int
	IssuesTotal    Totals
}

// Add appends a file report and updates the totals.
func (s *Summary) Add(r FileReport) {
	s.FilesProcessed++
	for _, d := range r.Diagnostics {
		s.IssuesTotal.Add(d.Category)
	}
	if len(r.Diagnostics) > 0 {
		s.Files = append(s.Files, r)
	}
}

// Format renders the summary as plain text: one entry per diagnostic
// followed by per-category totals.
func Format(w io.Writer, s Summary) error {
	for _, f := range s.Files {
		for _, d := range f.Diagnostics {
			line, col := f.Position(d.Start)
			if _, err := fmt.Fprintf(w, "[%s] %s\n    in %s:%d:%d\n", d.Category.Label(), d.Message, f.Path, line, col); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\nFiles processed: %d\nErrors: %d\nWarnings: %d\nMessages: %d\nHints: %d\n",
		s.FilesProcessed, s.IssuesTotal.Error, s.IssuesTotal.Warning, s.IssuesTotal.Message, s.IssuesTotal.Hint)
	return err
}
