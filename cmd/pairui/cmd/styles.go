package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Faint   lipgloss.Style
	OK      lipgloss.Style
	Failed  lipgloss.Style
	Card    lipgloss.Style
	Counter lipgloss.Style
}{
	Title:  lipgloss.NewStyle().Bold(true),
	Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#bac2de")).Width(10),
	Faint:  lipgloss.NewStyle().Faint(true),
	OK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
	Failed: lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1),
	Counter: lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")),
}
