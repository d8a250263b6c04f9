package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/platewise/internal/cli"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle("Analysis History"))
	b.WriteString("\n")

	switch m.state {
	case StateDetail:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf("%3.f%% · Esc to go back", m.viewport.ScrollPercent()*100)))
		return b.String()

	case StateConfirmDelete:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(cli.FormatPrompt(fmt.Sprintf("Delete session %s? [y/N]", m.pending)))
		return b.String()
	}

	switch {
	case m.loading && len(m.entries) == 0:
		b.WriteString(m.spinner.View() + " Loading history...")
	case len(m.entries) == 0 && m.err == nil:
		b.WriteString(cli.FormatInfo("No saved analyses yet."))
	default:
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return cli.FormatError(m.err.Error())
	case m.status != "":
		return cli.FormatSuccess(m.status)
	default:
		return lipgloss.NewStyle().Foreground(cli.SubtleColor).
			Render(fmt.Sprintf("%d session(s)", len(m.entries)))
	}
}
