package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
)

type taskDoneMsg struct{ err error }

// spinnerModel shows a spinner until its task finishes. ctrl+c cancels the
// task's context and keeps waiting for it to return.
type spinnerModel struct {
	spinner spinner.Model
	title   string
	task    func() error
	cancel  context.CancelFunc
	err     error
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: task()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			m.title = "cancelando…"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + formatter.Dim(m.title) + "\n"
}

// runWithSpinner runs task while a spinner is drawn on out. Without a
// terminal the task simply runs.
func runWithSpinner(ctx context.Context, app *App, out io.Writer, title string, task func(ctx context.Context) error) error {
	if !app.interactive() {
		return task(ctx)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StylePurple))
	m := spinnerModel{
		spinner: s,
		title:   title,
		task:    func() error { return task(ctx) },
		cancel:  cancel,
	}
	final, err := tea.NewProgram(m, tea.WithOutput(out)).Run()
	if err != nil {
		return err
	}
	return final.(spinnerModel).err
}
