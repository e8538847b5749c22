package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "ctrl+k")),
	Down:  key.NewBinding(key.WithKeys("down", "ctrl+j")),
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "copy id")),
	Quit:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("Esc", "quit")),
}

// previewKey scrolls the preview pane. page is the panel height.
type previewKey struct {
	binding key.Binding
	scroll  func(vp *viewport.Model, page int)
}

var previewKeys = []previewKey{
	{key.NewBinding(key.WithKeys("ctrl+u")), func(vp *viewport.Model, page int) { vp.LineUp(page / 2) }},
	{key.NewBinding(key.WithKeys("ctrl+d")), func(vp *viewport.Model, page int) { vp.LineDown(page / 2) }},
	{key.NewBinding(key.WithKeys("pgup")), func(vp *viewport.Model, page int) { vp.LineUp(page) }},
	{key.NewBinding(key.WithKeys("pgdown")), func(vp *viewport.Model, page int) { vp.LineDown(page) }},
	{key.NewBinding(key.WithKeys("home")), func(vp *viewport.Model, _ int) { vp.GotoTop() }},
	{key.NewBinding(key.WithKeys("end")), func(vp *viewport.Model, _ int) { vp.GotoBottom() }},
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
