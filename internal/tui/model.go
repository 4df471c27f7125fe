// Package tui provides the interactive, scrollable report viewer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Model is the bubbletea model of the report viewer.
type Model struct {
	help     help.Model
	keymap   KeyMap
	title    string
	content  string
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates a viewer for already rendered report content.
func NewModel(title, content string) Model {
	return Model{
		title:   title,
		content: content,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keymap.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keymap.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.viewport.KeyMap = m.keymap.Scroll
			m.viewport.SetContent(m.content)
			m.ready = true
		}
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// resize fits the viewport between the header and footer.
func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-m.chromeHeight())
}

func (m Model) chromeHeight() int {
	return lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
}

func (m Model) headerView() string {
	return titleStyle.Render(m.title)
}

func (m Model) footerView() string {
	info := infoStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, info, m.help.View(m.keymap))
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Loading report..."
	}
	return strings.Join([]string{m.headerView(), m.viewport.View(), m.footerView()}, "\n")
}
