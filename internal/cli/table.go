package cli

import (
	"regexp"
	"strings"
)

// ansiEscape matches SGR sequences such as the swatch colour codes.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Table renders rows in aligned columns under a header and a dashed separator.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int // 0 or absent means no limit
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		padding:   2,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth wraps cells of column col at word boundaries to fit width.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AddRow adds a row, padded or truncated to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render returns the formatted table. A table without headers renders empty.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}

	wrapped := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			lines := wrapText(cell, t.maxWidths[c])
			wrapped[r][c] = lines
			for _, line := range lines {
				widths[c] = max(widths[c], visibleWidth(line))
			}
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var sb strings.Builder
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		sb.WriteString(strings.Join(parts, gap))
		sb.WriteString("\n")
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)

	for _, row := range wrapped {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := range height {
			cells := make([]string, len(row))
			for c, lines := range row {
				if l < len(lines) {
					cells[c] = lines[l]
				}
			}
			writeLine(cells)
		}
	}

	return sb.String()
}

// visibleWidth is the printed width of s, ignoring colour escapes.
func visibleWidth(s string) int {
	return len([]rune(ansiEscape.ReplaceAllString(s, "")))
}

// padRight pads s with spaces up to width visible columns.
func padRight(s string, width int) string {
	if n := visibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrapText splits text into lines of at most width, breaking at spaces and
// splitting words longer than width. Width 0 disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	line := ""
	for _, word := range words {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
