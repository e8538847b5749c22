package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/mda/internal/dump"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// typeWidth fits the longest short label.
const typeWidth = 8

// renderList renders the left panel: conversation list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.items) == 0 {
		empty := styleDim.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No conversations")
		return empty
	}

	var lines []string
	for i, it := range m.items {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatItem(it, width, i == m.cursor)...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

func typeLabel(t dump.ConversationType) string {
	if badge, ok := typeBadges[t]; ok {
		return badge
	}
	return string(t)
}

// formatItem formats a single conversation as two lines:
//
//	line 1: [>] type  date  name
//	line 2:    snippet or path (dimmed)
func formatItem(it item, width int, selected bool) []string {
	label := lipgloss.NewStyle().Width(typeWidth).Render(typeLabel(it.info.Type))

	// "2026-01-27T..." -> "01-27"
	date := it.ts
	if len(date) >= 10 {
		date = date[5:10]
	}

	name := it.info.Name
	if it.sender != "" {
		name += " / " + it.sender
	}
	nameMax := width - 2 - typeWidth - 6 - 2 // prefix + type + date + padding
	if nameMax < 0 {
		nameMax = 0
	}
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", label, date, name)
	if date == "" {
		line1 = fmt.Sprintf("%s %s", label, name)
	}
	if selected {
		line1 = styleCursor.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.ReplaceAll(it.snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleDim.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
