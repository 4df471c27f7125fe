package analysis

import (
	"testing"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryBreakdown(t *testing.T) {
	txns := []model.Transaction{
		spend(0, -100, "Housing"),
		spend(1, -25.555, "Food"),
		spend(2, -24.445, "Food"),
		spend(3, -50, ""),
		spend(4, 900, "Income"),
	}

	got := CategoryBreakdown(txns)

	require.Len(t, got.Categories, 3)
	assert.InDelta(t, 200.0, got.TotalSpending, 1e-9)

	assert.Equal(t, CategorySpend{Name: "Housing", Amount: 100, Percentage: 50, TransactionCount: 1}, got.Categories[0])
	// Food and Uncategorized tie at 50; ties sort by name.
	assert.Equal(t, "Food", got.Categories[1].Name)
	assert.InDelta(t, 50.0, got.Categories[1].Amount, 1e-9)
	assert.Equal(t, 2, got.Categories[1].TransactionCount)
	assert.Equal(t, Uncategorized, got.Categories[2].Name)
	assert.InDelta(t, 25.0, got.Categories[2].Percentage, 1e-9)

	require.NotNil(t, got.TopCategory)
	assert.Equal(t, "Housing", got.TopCategory.Name)
}

func TestCategoryBreakdown_Rounding(t *testing.T) {
	got := CategoryBreakdown([]model.Transaction{
		spend(0, -1, "A"),
		spend(1, -2, "B"),
	})

	require.Len(t, got.Categories, 2)
	assert.Equal(t, "B", got.Categories[0].Name)
	assert.InDelta(t, 66.7, got.Categories[0].Percentage, 1e-9)
	assert.InDelta(t, 33.3, got.Categories[1].Percentage, 1e-9)
}

func TestCategoryBreakdown_NoSpending(t *testing.T) {
	got := CategoryBreakdown([]model.Transaction{spend(0, 10, "Income")})
	assert.Empty(t, got.Categories)
	assert.Nil(t, got.TopCategory)
	assert.Zero(t, got.TotalSpending)
}
