package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// Table is a plain aligned table. Column widths are measured on visible
// width so styled cells line up.
type Table struct {
	Headers []string
	Rows    [][]string
	// RightAlign marks numeric columns by index.
	RightAlign map[int]bool
}

func (t Table) widths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t Table) cell(b *strings.Builder, i int, text, rendered string, widths []int) {
	pad := widths[i] - lipgloss.Width(text)
	if pad < 0 {
		pad = 0
	}
	last := i == len(widths)-1
	if t.RightAlign[i] {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(rendered)
	} else {
		b.WriteString(rendered)
		if !last {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	if !last {
		b.WriteString(strings.Repeat(" ", colGap))
	}
}

// Render draws the header, a separator line and every row.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	widths := t.widths()

	var b strings.Builder
	for i, h := range t.Headers {
		t.cell(&b, i, h, StyleHeader.Render(h), widths)
	}
	b.WriteString("\n")
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		for i := range widths {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			t.cell(&b, i, text, text, widths)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable renders headers and rows with every column left-aligned.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows}.Render()
}
