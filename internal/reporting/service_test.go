package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/analysis"
	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/service"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/Veraticus/spendscore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.SetupTestDB(t)

	svc := NewService(db.Storage, spendscore.NewEngine(), nil)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func monthOfSpending() []model.Transaction {
	return testutil.MonthOfSpending(model.NewDate(2024, time.March, 1)).Build()
}

func TestGenerate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	txns := monthOfSpending()

	report, err := svc.Generate(ctx, Request{
		OriginalFilename: "march.csv",
		FileFormat:       "generic",
		Transactions:     txns,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "march.csv", report.Title)
	assert.Equal(t, model.ReportCompleted, report.Status)
	assert.Equal(t, len(txns), report.TotalTransactions)
	require.NotNil(t, report.Score)

	expected, err := spendscore.Score(txns)
	require.NoError(t, err)
	assert.Equal(t, expected, report.Score)

	stored, err := svc.Transactions(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, txns, stored)
}

func TestGenerate_EmptyMarksFailed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, Request{Title: "Nothing"})
	require.ErrorIs(t, err, spendscore.ErrEmptyInput)
	require.NotNil(t, report)

	stored, getErr := svc.Get(ctx, report.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.ReportFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "no transactions to analyze")
	assert.Nil(t, stored.Score)
}

// completeFailingStore refuses to complete reports while failing is set.
type completeFailingStore struct {
	service.Storage
	failing bool
}

func (s *completeFailingStore) CompleteReport(ctx context.Context, id string, score *model.SpendScore) error {
	if s.failing {
		return errors.New("disk full")
	}
	return s.Storage.CompleteReport(ctx, id, score)
}

func TestGenerate_CompleteFailureMarksFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := &completeFailingStore{Storage: db.Storage, failing: true}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	report, err := svc.Generate(ctx, Request{Title: "March", Transactions: monthOfSpending()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, report)

	stored, err := svc.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "failed to complete report: disk full")

	store.failing = false
	recovered, err := svc.Regenerate(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportCompleted, recovered.Status)
	assert.Empty(t, recovered.ErrorMessage)
	require.NotNil(t, recovered.Score)
}

func TestRegenerate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, Request{Title: "March", Transactions: monthOfSpending()})
	require.NoError(t, err)

	again, err := svc.Regenerate(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Score, again.Score)
	assert.Equal(t, model.ReportCompleted, again.Status)

	_, err = svc.Regenerate(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	empty, _ := svc.Generate(ctx, Request{Title: "Nothing"})
	require.NotNil(t, empty)
	failed, err := svc.Regenerate(ctx, empty.ID)
	require.ErrorIs(t, err, spendscore.ErrEmptyInput)
	assert.Equal(t, model.ReportFailed, failed.Status)
}

func TestReportTitle(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Q1", reportTitle(Request{Title: " Q1 "}, now))
	assert.Equal(t, "bank.ofx", reportTitle(Request{OriginalFilename: "bank.ofx"}, now))
	assert.Equal(t, "SpendScore Apr 1, 2024", reportTitle(Request{}, now))
}

func TestListAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ids := make([]string, 0, 2)
	for i, title := range []string{"first", "second"} {
		svc.now = func() time.Time { return time.Date(2024, 4, 1+i, 0, 0, 0, 0, time.UTC) }
		report, err := svc.Generate(ctx, Request{Title: title, Transactions: monthOfSpending()})
		require.NoError(t, err)
		ids = append(ids, report.ID)
	}

	reports, err := svc.List(ctx, service.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "second", reports[0].Title)

	require.NoError(t, svc.Delete(ctx, ids[0]))
	assert.ErrorIs(t, svc.Delete(ctx, ids[0]), common.ErrNotFound)

	_, err = svc.Transactions(ctx, ids[0])
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTrendsAndCategories(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, Request{Title: "March", Transactions: monthOfSpending()})
	require.NoError(t, err)

	trends, err := svc.Trends(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, trends.TotalDays)
	assert.InDelta(t, 1240.0, trends.DailySpending["2024-03-01"], 1e-9)
	assert.Equal(t, analysis.DirectionDecreasing, trends.Trend)

	categories, err := svc.Categories(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, categories.TopCategory)
	assert.Equal(t, "Housing", categories.TopCategory.Name)
	assert.InDelta(t, 1600.0, categories.TotalSpending, 1e-9)

	_, err = svc.Trends(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Categories(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, Request{Title: "March", Transactions: monthOfSpending()})
	require.NoError(t, err)

	pairs, err := svc.Duplicates(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, pairs, 9)
	for _, p := range pairs {
		assert.Equal(t, "grocery mart", p.Key)
		assert.Equal(t, 1, model.DaysBetween(p.First.Date, p.Repeated.Date))
	}

	_, err = svc.Duplicates(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
