// Package cli renders platewise output for the terminal using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#F4A261")
	SuccessColor = lipgloss.Color("#2A9D8F")
	WarningColor = lipgloss.Color("#E9C46A")
	ErrorColor   = lipgloss.Color("#E76F51")
	InfoColor    = lipgloss.Color("#8ECAE6")
	SubtleColor  = lipgloss.Color("#666666")
	CalorieColor = lipgloss.Color("#F77F00")
	borderColor  = lipgloss.Color("#333")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Text styles.
var (
	TitleStyle   = fg(PrimaryColor).Bold(true).MarginBottom(1)
	SuccessStyle = fg(SuccessColor)
	WarningStyle = fg(WarningColor)
	ErrorStyle   = fg(ErrorColor)
	InfoStyle    = fg(InfoColor)
	SubtleStyle  = fg(SubtleColor)
	CalorieStyle = fg(CalorieColor).Bold(true)
	PromptStyle  = fg(PrimaryColor).Bold(true)

	// BoxStyle frames a result card.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	TableHeaderStyle = fg(PrimaryColor).Bold(true).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	PlateIcon   = "🍽️"
	ImageIcon   = "📷"
	ChartIcon   = "📊"
	HistoryIcon = "🗂️"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError formats an error message with icon.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatTitle formats a section title.
func FormatTitle(title string) string { return withIcon(TitleStyle, PlateIcon, title) }

// FormatPrompt formats a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a rounded box under a title.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
