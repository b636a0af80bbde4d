package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title        lipgloss.Style
	status       lipgloss.Style
	statusOnline lipgloss.Style
	statusError  lipgloss.Style
	sender       lipgloss.Style
	ownSender    lipgloss.Style
	text         lipgloss.Style
	timestamp    lipgloss.Style
	panelHeader  lipgloss.Style
	panelEntry   lipgloss.Style
	panel        lipgloss.Style
	empty        lipgloss.Style
	prompt       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		status:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusOnline: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		statusError:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		sender:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		ownSender:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		text:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		timestamp:    lipgloss.NewStyle().Faint(true),
		panelHeader:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		panelEntry:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		panel:        lipgloss.NewStyle().PaddingLeft(2).BorderLeft(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238")),
		empty:        lipgloss.NewStyle().Faint(true),
		prompt:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}
