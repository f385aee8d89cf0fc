package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	folderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	urlStyle     = lipgloss.NewStyle().Faint(true).Underline(true)
	favStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
