package analysis

import (
	"strings"
	"testing"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStyles_RenderProgressBar(t *testing.T) {
	styles := NewStyles()

	tests := []struct {
		name     string
		progress float64
		width    int
		filled   int
		total    int
	}{
		{name: "empty", progress: 0, width: 10, filled: 0, total: 10},
		{name: "half", progress: 0.5, width: 10, filled: 5, total: 10},
		{name: "full", progress: 1, width: 10, filled: 10, total: 10},
		{name: "overflow clamps", progress: 1.7, width: 10, filled: 10, total: 10},
		{name: "negative clamps", progress: -0.3, width: 10, filled: 0, total: 10},
		{name: "default width", progress: 0.5, width: 0, filled: 15, total: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := styles.RenderProgressBar(tt.progress, tt.width)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, tt.total, strings.Count(bar, "█")+strings.Count(bar, "░"))
		})
	}
}

func TestStyles_ForTierMatchesForScore(t *testing.T) {
	styles := NewStyles()

	assert.Equal(t, styles.Success.Render("x"), styles.ForTier(model.TierGreen).Render("x"))
	assert.Equal(t, styles.Warning.Render("x"), styles.ForTier(model.TierAmber).Render("x"))
	assert.Equal(t, styles.Error.Render("x"), styles.ForTier(model.TierRed).Render("x"))

	assert.Equal(t, styles.ForTier(model.TierGreen).Render("x"), styles.ForScore(90).Render("x"))
	assert.Equal(t, styles.ForTier(model.TierAmber).Render("x"), styles.ForScore(70).Render("x"))
	assert.Equal(t, styles.ForTier(model.TierRed).Render("x"), styles.ForScore(69.9).Render("x"))
}

func TestStyles_RenderBox(t *testing.T) {
	styles := NewStyles().WithWidth(60)
	out := styles.RenderBox("body text", "Heading")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "body text")
}
