package spendscore

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTransactions(r *rand.Rand, n int) []model.Transaction {
	descriptions := []string{
		"Grocery Mart", "Coffee House", "Netflix Subscription", "Rent Payment",
		"Uber Trip", "Payroll Deposit", "Amazon Mktp US*2K4", "Steakhouse Restaurant",
	}
	categories := []string{"", "Food", "Housing", "Transport", "Entertainment", "Income"}

	txns := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		amount := -float64(r.IntN(50000)) / 100
		if r.IntN(5) == 0 {
			amount = float64(r.IntN(300000)) / 100
		}
		txns = append(txns, txn(
			r.IntN(30),
			descriptions[r.IntN(len(descriptions))],
			amount,
			categories[r.IntN(len(categories))],
		))
	}
	return txns
}

func TestEngine_Score_EmptyInput(t *testing.T) {
	score, err := NewEngine().Score(nil)
	assert.Nil(t, score)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Score([]model.Transaction{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEngine_Score_SingleCredit(t *testing.T) {
	result, err := Score([]model.Transaction{txn(0, "Payroll", 2500, "")})
	require.NoError(t, err)

	assert.Equal(t, FallbackFrequencySingleDay, result.Metrics.FrequencyScore)
	assert.Equal(t, FallbackCategoryNone, result.Metrics.CategoryDiversity)
	assert.Equal(t, FallbackBudgetSmallSample, result.Metrics.BudgetAdherence)
	assert.Equal(t, 100.0, result.Metrics.RedundancyDetection)
	assert.Equal(t, FallbackSpikeSmallSample, result.Metrics.SpikeDetection)
	assert.Equal(t, FallbackWasteNoSpending, result.Metrics.WasteRatio)

	assert.Equal(t, 1, result.Metrics.TotalTransactions)
	assert.Zero(t, result.Metrics.TotalSpending)
	assert.Zero(t, result.Metrics.AverageTransaction)
	assert.Equal(t, 81.2, result.OverallScore)
	assert.Equal(t, model.TierAmber, result.Tier)
}

func TestEngine_Score_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "overflowing sums", amount: -1e308},
		{name: "largest float", amount: -math.MaxFloat64},
		{name: "smallest subnormal", amount: -math.SmallestNonzeroFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := []model.Transaction{
				txn(0, "coffee shop", tt.amount, ""),
				txn(1, "coffee shop", tt.amount, ""),
				txn(2, "coffee shop", tt.amount, ""),
				txn(3, "rent", tt.amount, ""),
			}
			result, err := Score(txns)
			require.NoError(t, err)

			assert.False(t, math.IsNaN(result.OverallScore))
			assert.GreaterOrEqual(t, result.OverallScore, 0.0)
			assert.LessOrEqual(t, result.OverallScore, 100.0)
			for _, name := range MetricNames() {
				value, _ := MetricValue(result.Metrics, name)
				assert.False(t, math.IsNaN(value), "metric %s", name)
				assert.GreaterOrEqual(t, value, 0.0, "metric %s", name)
				assert.LessOrEqual(t, value, 100.0, "metric %s", name)
			}
		})
	}
}

func TestEngine_Score_Totals(t *testing.T) {
	txns := []model.Transaction{
		txn(0, "Rent", -1000, "Housing"),
		txn(1, "Groceries", -50, "Food"),
		txn(2, "Payroll", 3000, "Income"),
	}

	result, err := Score(txns)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Metrics.TotalTransactions)
	assert.InDelta(t, 1050.0, result.Metrics.TotalSpending, 1e-9)
	assert.InDelta(t, 525.0, result.Metrics.AverageTransaction, 1e-9)
}

func TestEngine_Score_Bounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 50; i++ {
		txns := randomTransactions(r, 1+r.IntN(200))
		result, err := Score(txns)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, result.OverallScore, 0.0)
		assert.LessOrEqual(t, result.OverallScore, 100.0)
		for _, name := range MetricNames() {
			value, ok := MetricValue(result.Metrics, name)
			require.True(t, ok)
			assert.GreaterOrEqual(t, value, 0.0, "metric %s", name)
			assert.LessOrEqual(t, value, 100.0, "metric %s", name)
		}

		assert.Equal(t, TierFor(result.OverallScore), result.Tier)
		assert.InDelta(t, result.OverallScore*10, float64(int64(result.OverallScore*10+0.5)), 1e-6)
	}
}

func TestEngine_Score_DeterministicAndOrderInsensitive(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	txns := randomTransactions(r, 120)
	original := append([]model.Transaction(nil), txns...)

	first, err := Score(txns)
	require.NoError(t, err)
	second, err := Score(txns)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, original, txns, "input must not be mutated")

	shuffled := append([]model.Transaction(nil), txns...)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	third, err := Score(shuffled)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestEngine_Score_ParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	txns := randomTransactions(r, 80)

	sequential, err := NewEngine().Score(txns)
	require.NoError(t, err)
	parallel, err := NewEngine(WithParallel()).Score(txns)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestAggregate(t *testing.T) {
	t.Run("weighted sum", func(t *testing.T) {
		score, err := Aggregate(map[MetricName]float64{
			MetricFrequency:         80,
			MetricCategoryDiversity: 70,
			MetricBudgetAdherence:   90,
			MetricRedundancy:        100,
			MetricSpike:             85,
			MetricWasteRatio:        75,
		})
		require.NoError(t, err)
		assert.InDelta(t, 84.0, score, 1e-9)
		assert.Equal(t, model.TierAmber, TierFor(score))
	})

	t.Run("ties round to even", func(t *testing.T) {
		score, err := Aggregate(map[MetricName]float64{
			MetricFrequency:         FallbackFrequencySingleDay,
			MetricCategoryDiversity: FallbackCategoryNone,
			MetricBudgetAdherence:   FallbackBudgetSmallSample,
			MetricRedundancy:        100,
			MetricSpike:             FallbackSpikeSmallSample,
			MetricWasteRatio:        FallbackWasteNoSpending,
		})
		require.NoError(t, err)
		assert.Equal(t, 81.2, score)
	})

	t.Run("all perfect", func(t *testing.T) {
		scores := make(map[MetricName]float64)
		for _, name := range MetricNames() {
			scores[name] = 100
		}
		score, err := Aggregate(scores)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, score, 1e-9)
		assert.Equal(t, model.TierGreen, TierFor(score))
	})

	t.Run("missing metric", func(t *testing.T) {
		_, err := Aggregate(map[MetricName]float64{
			MetricFrequency: 80,
		})
		require.Error(t, err)

		var missing *MissingMetricError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, MetricCategoryDiversity, missing.Metric)
		assert.Contains(t, err.Error(), string(MetricCategoryDiversity))
	})
}

func TestWeights_SumToOne(t *testing.T) {
	var total float64
	for _, w := range Weights() {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Len(t, MetricNames(), 6)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Tier
	}{
		{score: 100, want: model.TierGreen},
		{score: 90, want: model.TierGreen},
		{score: 89.9, want: model.TierAmber},
		{score: 70, want: model.TierAmber},
		{score: 69.9, want: model.TierRed},
		{score: 0, want: model.TierRed},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.score))
		})
	}
}
