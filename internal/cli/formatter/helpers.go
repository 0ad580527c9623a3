package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)
	if title == "" {
		return box.Render(content)
	}
	return box.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// HumanTimestamp renders t relative to now for recent times and as a
// dd/mm/yyyy date otherwise.
func HumanTimestamp(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Local().Format("02/01/2006 15:04")
	case diff < time.Minute:
		return "agora"
	case diff < time.Hour:
		return fmt.Sprintf("há %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("há %d h", int(diff.Hours()))
	default:
		return t.Local().Format("02/01/2006 15:04")
	}
}

// OptionalTime renders a nullable timestamp, or a dash.
func OptionalTime(t *time.Time) string {
	if t == nil {
		return Dim("—")
	}
	return t.Local().Format("02/01/2006")
}

// HumanBytes renders a byte count with a binary unit ("1.5 KiB").
func HumanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
