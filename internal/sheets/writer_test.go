package sheets

import (
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareReportData(t *testing.T) {
	start := model.NewDate(2024, time.January, 1)
	end := model.NewDate(2024, time.January, 3)
	report := &model.Report{
		Title:          "January",
		DateRangeStart: &start,
		DateRangeEnd:   &end,
		Score: &model.SpendScore{
			OverallScore: 84,
			Tier:         model.TierAmber,
			Metrics: model.Metrics{
				FrequencyScore:      80,
				CategoryDiversity:   70,
				BudgetAdherence:     90,
				RedundancyDetection: 100,
				SpikeDetection:      85,
				WasteRatio:          75,
				TotalTransactions:   3,
				TotalSpending:       130.456,
			},
		},
	}
	txns := []model.Transaction{
		{Date: start, Description: "Rent", Category: "Housing", Amount: -100},
		{Date: end, Description: "Coffee", Category: "Food", Amount: -30.456},
		{Date: model.NewDate(2024, time.January, 2), Description: "Salary", Amount: 2000},
	}

	values := prepareReportData(report, txns)

	assert.Equal(t, []any{"January", "Jan 1, 2024 - Jan 3, 2024"}, values[0])
	assert.Equal(t, []any{"Overall Score", 84.0}, values[3])
	assert.Equal(t, []any{"Tier", "Amber"}, values[4])
	assert.Equal(t, []any{"Total Spending", 130.46}, values[6])

	assert.Equal(t, []any{"Metric", "Score", "Weight"}, values[8])
	assert.Equal(t, []any{"frequency_score", 80.0, 0.15}, values[9])
	assert.Equal(t, []any{"waste_ratio", 75.0, 0.2}, values[14])

	assert.Equal(t, []any{"Category", "Amount", "Share %", "Count"}, values[16])
	assert.Equal(t, []any{"Housing", 100.0, 76.7, 1}, values[17])
	assert.Equal(t, []any{"Food", 30.46, 23.3, 1}, values[18])

	require.Len(t, values, 25)
	assert.Equal(t, []any{"Date", "Description", "Category", "Amount"}, values[21])
	assert.Equal(t, []any{"2024-01-03", "Coffee", "Food", -30.46}, values[22])
	assert.Equal(t, []any{"2024-01-02", "Salary", "", 2000.0}, values[23])
	assert.Equal(t, []any{"2024-01-01", "Rent", "Housing", -100.0}, values[24])

	assert.Equal(t, "Rent", txns[0].Description, "input order is preserved")
}
