// Package report renders conversion summaries, archive history and diffs as
// Markdown tables.
package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth keeps the separator row a valid "---".
const minColumnWidth = 3

// Table is a Markdown table with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Add appends a row. Missing cells render empty; extra cells widen the table.
func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Lines renders the table with columns padded to the widest cell by display
// width, so wide and combining characters line up in a terminal.
func (t *Table) Lines() []string {
	all := make([][]string, 0, len(t.Rows)+1)
	all = append(all, t.Header)
	all = append(all, t.Rows...)

	colCount := 0
	for _, row := range all {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)

	for _, row := range all {
		for i, cell := range row {
			if w := runewidth.StringWidth(escapeCell(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}

	lines := make([]string, 0, len(all)+1)
	lines = append(lines, renderRow(t.Header, widths))

	var sep strings.Builder

	sep.WriteString("|")

	for _, w := range widths {
		sep.WriteString(" ")
		sep.WriteString(strings.Repeat("-", w))
		sep.WriteString(" |")
	}

	lines = append(lines, sep.String())

	for _, row := range t.Rows {
		lines = append(lines, renderRow(row, widths))
	}

	return lines
}

// String renders the table followed by a newline.
func (t *Table) String() string {
	return strings.Join(t.Lines(), "\n") + "\n"
}

func renderRow(row []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range widths {
		content := ""
		if j < len(row) {
			content = escapeCell(row[j])
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := w - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func escapeCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.ReplaceAll(cell, "\n", " ")

	return strings.ReplaceAll(cell, "|", `\|`)
}
