package cli

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
)

var errNeedsYes = errors.New("confirmação necessária: repita o comando com --yes")

func canteiroHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	return t
}

func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Sim").
				Negative("Não").
				Value(result),
		),
	).WithTheme(canteiroHuhTheme()).WithShowHelp(false)
}

// confirm returns true when assumeYes is set or the user agrees. Without a
// terminal it fails with errNeedsYes.
func (a *App) confirm(title string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	if !a.interactive() {
		return false, errNeedsYes
	}
	var ok bool
	if err := confirmForm(title, &ok).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
