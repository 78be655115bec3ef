package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/hfss-client/internal/log"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return spinnerModel{
		spinner: s,
		label:   label,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runWithSpinner shows a spinner on output while work runs and returns work's
// error. work runs on the calling goroutine: COM connections are bound to the
// thread that made them. A spinner failure never hides what work produced.
func runWithSpinner(ctx context.Context, output io.Writer, label string, work func() error) error {
	p := tea.NewProgram(
		newSpinnerModel(label),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finished := make(chan error, 1)
	go func() {
		_, err := p.Run()
		finished <- err
	}()

	workErr := work()
	p.Send(spinnerDoneMsg{})

	if err := <-finished; err != nil {
		log.Debug(log.CatHost, "spinner stopped", "err", err)
	}
	return workErr
}
