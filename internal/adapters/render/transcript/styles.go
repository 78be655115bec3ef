package transcript

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	index   lipgloss.Style
	target  lipgloss.Style
	method  lipgloss.Style
	args    lipgloss.Style
	failure lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
	key     lipgloss.Style
	value   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		index:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		target:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		method:  lipgloss.NewStyle().Bold(true),
		args:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	}
}
