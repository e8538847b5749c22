package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/mda/internal/dump"
)

var (
	colorInbox    = lipgloss.Color("12")  // bright blue
	colorRequest  = lipgloss.Color("10")  // bright green
	colorArchived = lipgloss.Color("13")  // bright magenta
	colorDim      = lipgloss.Color("240") // gray
	colorCursor   = lipgloss.Color("11")  // bright yellow
	colorBorder   = lipgloss.Color("238") // dark gray

	styleInput  = lipgloss.NewStyle().Foreground(colorInbox).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleCursor = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleStatus = styleDim.Padding(0, 1)
)

// typeBadges are the short colored labels in the list panel.
var typeBadges = map[dump.ConversationType]string{
	dump.Inbox:           lipgloss.NewStyle().Foreground(colorInbox).Render("inbox"),
	dump.MessageRequests: lipgloss.NewStyle().Foreground(colorRequest).Render("request"),
	dump.ArchivedThreads: lipgloss.NewStyle().Foreground(colorArchived).Render("archived"),
}

// panel frames the list (inactive) and preview (active) panes.
func panel(active bool) lipgloss.Style {
	border := colorBorder
	if active {
		border = colorInbox
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
