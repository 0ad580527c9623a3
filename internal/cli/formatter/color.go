package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/canteiro/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle colors a status: pending blue, in progress yellow, done green.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch domain.NormalizeStatus(string(s)) {
	case domain.StatusInProgress:
		return StyleYellow
	case domain.StatusDone:
		return StyleGreen
	default:
		return StyleBlue
	}
}

// StatusPill renders a status as "● Em andamento".
func StatusPill(s domain.Status) string {
	var glyph string
	switch domain.NormalizeStatus(string(s)) {
	case domain.StatusInProgress:
		glyph = "◐"
	case domain.StatusDone:
		glyph = "✔"
	default:
		glyph = "○"
	}
	return StatusStyle(s).Render(glyph + " " + domain.StatusLabel(s))
}

// Header renders an uppercase section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success renders a confirmation line such as "✔ Created unit 301".
func Success(format string, args ...any) string {
	return StyleGreen.Render("✔") + " " + fmt.Sprintf(format, args...)
}

// Warn renders a warning line.
func Warn(format string, args ...any) string {
	return StyleYellow.Render("!") + " " + fmt.Sprintf(format, args...)
}
