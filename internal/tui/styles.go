package tui

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette.
var (
	ColorPrimary   = lipgloss.Color("39")
	ColorSecondary = lipgloss.Color("245")
	colorMuted     = lipgloss.Color("240")
	colorSuccess   = lipgloss.Color("34")
	colorError     = lipgloss.Color("196")
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).MarginBottom(1)
	HelpStyle   = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	BorderStyle = lipgloss.NewStyle().Foreground(ColorSecondary)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)

	// NullStyle renders SQL NULL so it can't be confused with the string "NULL".
	NullStyle = CellStyle.Foreground(colorMuted).Italic(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(1, 2)

	FieldNameStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)

	SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorError)
)

const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)
