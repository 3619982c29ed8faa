package display

import (
	"strings"
	"unicode/utf8"
)

const columnGap = "  "

// Table renders left-aligned columns under a bold header and a rule.
// Rows may carry a Style and footnotes are printed below the grid.
type Table struct {
	headers []string
	rows    [][]string
	styles  map[int]Style
	notes   []string
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, styles: map[int]Style{}}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetRowStyle renders the row at idx with s.
func (t *Table) SetRowStyle(idx int, s Style) {
	t.styles[idx] = s
}

// AddNote appends a footnote.
func (t *Table) AddNote(note string) {
	t.notes = append(t.notes, note)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the table, every line indented by two spaces.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	widths := t.widths()

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString("  ")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	line(Bold(joinCells(t.headers, widths)))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	line(Dim(strings.Join(rule, columnGap)))

	for i, row := range t.rows {
		text := joinCells(row, widths)
		if s, ok := t.styles[i]; ok {
			text = s.Render(text)
		}
		line(text)
	}

	if len(t.notes) > 0 {
		sb.WriteByte('\n')
		for _, n := range t.notes {
			line(Gray(n))
		}
	}
	return sb.String()
}

// widths returns the rune width of every column.
func (t *Table) widths() []int {
	w := make([]int, len(t.headers))
	measure := func(cells []string) {
		for i := 0; i < len(w) && i < len(cells); i++ {
			w[i] = max(w[i], utf8.RuneCountInString(cells[i]))
		}
	}
	measure(t.headers)
	for _, r := range t.rows {
		measure(r)
	}
	return w
}

// joinCells pads each cell to its column width. Trailing padding of the
// last column is kept so styled rows have a uniform length.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = padRight(cell, w)
	}
	return strings.Join(parts, columnGap)
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
