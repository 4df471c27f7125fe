package analysis

import (
	"strings"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the styling used to render reports.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	Box         lipgloss.Style
	Score       lipgloss.Style
	TableHeader lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	return &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cli.SubtleColor).
			Padding(0, 1),
		Score:       lipgloss.NewStyle().Bold(true),
		TableHeader: cli.TableHeaderStyle,
	}
}

// WithWidth returns a copy whose box fits a terminal of the given width.
func (s *Styles) WithWidth(width int) *Styles {
	c := *s
	if width > 0 && width < 100 {
		c.Box = s.Box.Width(width - 4)
	}
	return &c
}

// ForTier returns the color of a SpendScore tier.
func (s *Styles) ForTier(tier model.Tier) lipgloss.Style {
	switch tier {
	case model.TierGreen:
		return s.Success
	case model.TierAmber:
		return s.Warning
	case model.TierRed:
		return s.Error
	default:
		return s.Normal
	}
}

// ForScore colors a 0-100 sub-score with the same cut-offs as the tiers.
func (s *Styles) ForScore(score float64) lipgloss.Style {
	switch {
	case score >= 90:
		return s.Success
	case score >= 70:
		return s.Warning
	default:
		return s.Error
	}
}

// RenderProgressBar draws a bar for progress in [0, 1].
func (s *Styles) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := min(max(int(float64(width)*progress), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderBox renders content in a styled box with optional title.
func (s *Styles) RenderBox(content, title string) string {
	if title != "" {
		content = s.Info.Bold(true).Render(" "+title+" ") + "\n" + content
	}
	return s.Box.Render(content)
}
