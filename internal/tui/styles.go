package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/dropwise/internal/model"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("173"))
	tabStyle       = lipgloss.NewStyle().Faint(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	labelStyle     = lipgloss.NewStyle().Bold(true).Width(10)

	statusColors = map[model.DropStatus]lipgloss.Color{
		model.StatusNew:      lipgloss.Color("74"),  // sky
		model.StatusSent:     lipgloss.Color("173"), // terracotta
		model.StatusArchived: lipgloss.Color("108"), // sage
		model.StatusSnoozed:  lipgloss.Color("221"), // sunflower
	}
)

func statusBadge(s model.DropStatus) string {
	c, ok := statusColors[s]
	if !ok {
		return mutedStyle.Render(string(s))
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

// helpers for View
func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}
