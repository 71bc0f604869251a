package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// User prompt style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Response header style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	// INFO lines
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Banner title
	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	// Multi-line mode prompt
	MultiStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

// FormatCommands formats alternating command names and descriptions, one per
// line. Commands keep the default color, descriptions are dimmed.
// Usage: FormatCommands("END", "Exit", "COPY", "Copy the last reply")
func FormatCommands(parts ...string) string {
	width := 0
	for i := 0; i < len(parts); i += 2 {
		if len(parts[i]) > width {
			width = len(parts[i])
		}
	}

	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			name := parts[i] + strings.Repeat(" ", width-len(parts[i]))
			result = append(result, "  "+name+"  "+HelpStyle.Render(parts[i+1]))
		}
	}
	return strings.Join(result, "\n")
}
