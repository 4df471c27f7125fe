package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longContent(lines int) string {
	out := make([]string, lines)
	for i := range out {
		out[i] = fmt.Sprintf("line %02d", i)
	}
	return strings.Join(out, "\n")
}

func sized(t *testing.T, m Model, width, height int) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_LoadingUntilSized(t *testing.T) {
	m := NewModel("Report", "body")
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "Loading report")

	m = sized(t, m, 80, 20)
	view := m.View()
	assert.Contains(t, view, "Report")
	assert.Contains(t, view, "body")
}

func TestModel_Scrolling(t *testing.T) {
	m := sized(t, NewModel("Report", longContent(100)), 80, 12)
	require.True(t, m.ready)
	assert.Less(t, m.viewport.Height, 12)
	assert.True(t, m.viewport.AtTop())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.True(t, m.viewport.AtBottom())
	assert.Contains(t, m.View(), "line 99")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.True(t, m.viewport.AtTop())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.viewport.YOffset)
}

func TestModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(msg.String(), func(t *testing.T) {
			m := sized(t, NewModel("Report", "body"), 80, 20)
			m, cmd := press(t, m, msg)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_ToggleHelp(t *testing.T) {
	m := sized(t, NewModel("Report", longContent(50)), 80, 20)
	before := m.viewport.Height

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.ShowAll)
	assert.Less(t, m.viewport.Height, before)
	assert.Contains(t, m.View(), "bottom of report")
	assert.Contains(t, m.View(), "half page down")
}

func TestModel_Paging(t *testing.T) {
	m := sized(t, NewModel("Report", longContent(100)), 80, 24)
	page := m.viewport.Height

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Equal(t, page/2, m.viewport.YOffset)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	assert.Zero(t, m.viewport.YOffset)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	assert.Equal(t, page, m.viewport.YOffset)
}
