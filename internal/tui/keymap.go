package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
)

// KeyMap is the report viewer's key bindings. Scroll is handed to the viewport so the
// help view always describes the keys that actually move the report.
type KeyMap struct {
	Scroll viewport.KeyMap
	Top    key.Binding
	Bottom key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the viewer's bindings: vi-style scrolling plus less-style paging.
func DefaultKeyMap() KeyMap {
	scroll := viewport.DefaultKeyMap()
	scroll.Up.SetHelp("↑/k", "line up")
	scroll.Down.SetHelp("↓/j", "line down")
	scroll.PageUp.SetHelp("b/pgup", "page up")
	scroll.PageDown.SetHelp("f/space", "page down")
	scroll.HalfPageUp.SetHelp("u", "half page up")
	scroll.HalfPageDown.SetHelp("d", "half page down")

	return KeyMap{
		Scroll: scroll,
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top of report"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom of report"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "close"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll.Down, k.Scroll.PageDown, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scroll.Up, k.Scroll.Down, k.Top, k.Bottom},
		{k.Scroll.PageUp, k.Scroll.PageDown, k.Scroll.HalfPageUp, k.Scroll.HalfPageDown},
		{k.Help, k.Quit},
	}
}
