// Package transcript prints the calls a recording host received, the way a
// dry run shows what would have been sent to the live application.
package transcript

import (
	"errors"
	"fmt"
	"io"

	"github.com/bnema/hfss-client/internal/ports"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// page is everything one rendering needs.
type page struct {
	calls  []ports.CallRecord
	opts   RenderOptions
	styles styles
}

// laidOutMsg carries the finished text back into the program.
type laidOutMsg string

type transcriptModel struct {
	page page
	text string
}

func (m transcriptModel) Init() tea.Cmd {
	p := m.page
	return func() tea.Msg {
		return laidOutMsg(renderView(p.calls, p.opts, p.styles))
	}
}

func (m transcriptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	text, ok := msg.(laidOutMsg)
	if !ok {
		return m, nil
	}
	m.text = string(text)
	return m, tea.Quit
}

func (m transcriptModel) View() string {
	return m.text
}

// Render lays out calls, and the script result when opts carries one.
func Render(calls []ports.CallRecord, opts RenderOptions) (string, error) {
	program := tea.NewProgram(
		transcriptModel{page: page{calls: calls, opts: opts, styles: newStyles()}},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("run transcript program: %w", err)
	}

	done, ok := final.(transcriptModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return done.text, nil
}
