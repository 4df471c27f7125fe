package spendscore

import (
	"math"
	"strconv"

	"github.com/Veraticus/spendscore/internal/model"
)

// input is the shared, read-only view every analyzer works from.
type input struct {
	transactions []model.Transaction
	spending     []float64
}

type analyzer func(in *input) float64

// metric binds a sub-score name to its weight and calculator.
type metric struct {
	analyze analyzer
	name    MetricName
	weight  float64
}

// metrics is the fixed table the engine fans out over and the aggregator folds.
var metrics = []metric{
	{name: MetricFrequency, weight: WeightFrequency, analyze: func(in *input) float64 {
		return FrequencyScore(in.transactions)
	}},
	{name: MetricCategoryDiversity, weight: WeightCategoryDiversity, analyze: func(in *input) float64 {
		return CategoryDiversity(in.transactions)
	}},
	{name: MetricBudgetAdherence, weight: WeightBudgetAdherence, analyze: func(in *input) float64 {
		return BudgetAdherence(in.spending)
	}},
	{name: MetricRedundancy, weight: WeightRedundancy, analyze: func(in *input) float64 {
		return RedundancyScore(in.transactions)
	}},
	{name: MetricSpike, weight: WeightSpike, analyze: func(in *input) float64 {
		return SpikeScore(in.spending)
	}},
	{name: MetricWasteRatio, weight: WeightWasteRatio, analyze: func(in *input) float64 {
		return WasteRatio(in.transactions)
	}},
}

// Weights returns the weight of every sub-score.
func Weights() map[MetricName]float64 {
	weights := make(map[MetricName]float64, len(metrics))
	for _, m := range metrics {
		weights[m.name] = m.weight
	}
	return weights
}

// MetricNames lists the sub-scores in aggregation order.
func MetricNames() []MetricName {
	names := make([]MetricName, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.name)
	}
	return names
}

// Aggregate combines sub-scores into the overall SpendScore, rounded to one decimal.
func Aggregate(scores map[MetricName]float64) (float64, error) {
	var total float64
	for _, m := range metrics {
		score, ok := scores[m.name]
		if !ok {
			return 0, &MissingMetricError{Metric: m.name}
		}
		total += score * m.weight
	}
	return clamp(roundTenths(total)), nil
}

// roundTenths rounds to one decimal place from the exact binary value of x, breaking
// ties to even: roundTenths(81.25) == 81.2, roundTenths(0.15) == 0.1.
func roundTenths(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}

// TierFor maps an overall score to its tier.
func TierFor(score float64) model.Tier {
	switch {
	case score >= GreenThreshold:
		return model.TierGreen
	case score >= AmberThreshold:
		return model.TierAmber
	default:
		return model.TierRed
	}
}

// MetricValue reads a named sub-score from m.
func MetricValue(m model.Metrics, name MetricName) (float64, bool) {
	switch name {
	case MetricFrequency:
		return m.FrequencyScore, true
	case MetricCategoryDiversity:
		return m.CategoryDiversity, true
	case MetricBudgetAdherence:
		return m.BudgetAdherence, true
	case MetricRedundancy:
		return m.RedundancyDetection, true
	case MetricSpike:
		return m.SpikeDetection, true
	case MetricWasteRatio:
		return m.WasteRatio, true
	default:
		return 0, false
	}
}

func setMetric(m *model.Metrics, name MetricName, score float64) {
	switch name {
	case MetricFrequency:
		m.FrequencyScore = score
	case MetricCategoryDiversity:
		m.CategoryDiversity = score
	case MetricBudgetAdherence:
		m.BudgetAdherence = score
	case MetricRedundancy:
		m.RedundancyDetection = score
	case MetricSpike:
		m.SpikeDetection = score
	case MetricWasteRatio:
		m.WasteRatio = score
	}
}
