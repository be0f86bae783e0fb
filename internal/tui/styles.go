package tui

import "github.com/charmbracelet/lipgloss"

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Faint(true)
	focusStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	secretStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	statusStyles = map[string]lipgloss.Style{
		"Open":       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"InProgress": lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		"Closed":     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)
