package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewReport shows rendered report content in a full-screen scrollable viewer until the
// user quits or ctx is cancelled.
func ViewReport(ctx context.Context, title, content string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, opts...)

	p := tea.NewProgram(NewModel(title, content), opts...)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("report viewer failed: %w", err)
	}
	return nil
}
