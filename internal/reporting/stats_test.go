package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	for range 2 {
		_, err = svc.Generate(ctx, Request{Transactions: monthOfSpending()})
		require.NoError(t, err)
	}
	_, _ = svc.Generate(ctx, Request{Title: "Empty"})

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Processing)
	assert.Equal(t, map[model.ReportStatus]int{model.ReportCompleted: 2, model.ReportFailed: 1}, stats.ByStatus)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalReports)
	assert.Nil(t, summary.Latest)
	assert.Empty(t, summary.Reports)

	clock := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	march := monthOfSpending()
	first, err := svc.Generate(ctx, Request{Title: "March", Transactions: march})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, Request{Title: "Payroll only", Transactions: []model.Transaction{
		{Date: model.NewDate(2024, time.April, 1), Description: "Payroll", Amount: 2500},
	}})
	require.NoError(t, err)
	_, _ = svc.Generate(ctx, Request{Title: "Empty"})

	summary, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalReports)
	assert.Equal(t, len(march)+1, summary.TotalTransactions)
	require.NotNil(t, summary.Latest)
	assert.Equal(t, second.ID, summary.Latest.ID)

	want := (first.Score.OverallScore + second.Score.OverallScore) / 2
	assert.InDelta(t, want, summary.AverageScore, 0.005)
	require.Len(t, summary.Reports, 2)
	assert.Equal(t, "Payroll only", summary.Reports[0].Title)
	assert.Equal(t, 81.2, summary.Reports[0].Score)
	assert.Equal(t, model.TierAmber, summary.Reports[0].Tier)
}
