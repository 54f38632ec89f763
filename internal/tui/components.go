package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdash/internal/dashboard"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderPanel draws a rounded frame around body. The focused panel gets the
// accent border.
func renderPanel(title, body string, focused bool, width int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(inner + 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render("› "+title), body))
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderAlert draws the modal used for blocking alerts.
func renderAlert(message string, width int) string {
	modalWidth := (width * 3) / 5
	if modalWidth < 24 {
		modalWidth = width - 4
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Padding(1, 2).
		Width(modalWidth).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(
			lipgloss.Center,
			ErrorMessageStyle.Render("⚠ "+message),
			"",
			renderHelp("Enter/Esc: dismiss"),
		))
}

// renderHighlighted renders text with every match of query marked.
func renderHighlighted(text, query string, base lipgloss.Style) string {
	var b strings.Builder
	for _, seg := range dashboard.Highlight(text, query) {
		if seg.Match {
			b.WriteString(HighlightStyle.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	return b.String()
}

// renderMuted renders text in muted color (utility wrapper).
func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

// renderHelp renders help/instructional text consistently.
func renderHelp(text string) string {
	return HelpStyle.Render(text)
}
