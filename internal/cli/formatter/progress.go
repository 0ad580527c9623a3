package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/canteiro/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress draws a bar like [████░░░░]  45% for a value in 0..100.
// Below a third it is red, below two thirds yellow, otherwise green.
func RenderProgress(progress float64, width int) string {
	if width < 2 {
		width = 2
	}
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	pct := progress / 100
	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %4s", style.Render(bar), domain.FormatPercent(progress))
}
