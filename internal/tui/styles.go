package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tman/internal/service"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	statusStyles = map[service.Status]lipgloss.Style{
		service.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		service.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		service.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// statusBadge renders a fixed-width status label.
func statusBadge(s service.Status) string {
	label := lipgloss.NewStyle().Width(11).Render(s.Label())
	if st, ok := statusStyles[s]; ok {
		return st.Render(label)
	}
	return label
}
