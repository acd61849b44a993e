package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle is ANSI 6 (cyan), readable on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (bright black) keeps descriptions quieter than names
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// HeaderStyle is the header row of CLI tables
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Padding(0, 1)

	// CellStyle pads table cells
	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)
