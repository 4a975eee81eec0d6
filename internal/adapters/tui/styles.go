package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	nav        lipgloss.Style
	navActive  lipgloss.Style
	name       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	label      lipgloss.Style
	meta       lipgloss.Style
	cursor     lipgloss.Style
	dirty      lipgloss.Style
	mine       lipgloss.Style
	theirs     lipgloss.Style
	panel      lipgloss.Style
	toast      lipgloss.Style
	toastError lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		nav:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		navActive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1).Underline(true),
		name:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		cursor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		dirty:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		mine:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		theirs:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
		toast:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("114")).Padding(0, 1),
		toastError: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("203")).Padding(0, 1),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
