package spendscore

import (
	"sort"

	"github.com/Veraticus/spendscore/internal/model"
)

// FrequencyScore rewards a steady number of transactions per day. The population variance
// of per-date counts costs FrequencyVariancePenalty points per unit.
func FrequencyScore(transactions []model.Transaction) float64 {
	if len(transactions) == 0 {
		return FallbackFrequencyEmpty
	}

	daily := make(map[string]int)
	for _, t := range transactions {
		daily[t.DateKey()]++
	}
	if len(daily) < 2 {
		return FallbackFrequencySingleDay
	}

	counts := make([]float64, 0, len(daily))
	for _, c := range daily {
		counts = append(counts, float64(c))
	}
	sort.Float64s(counts)

	return clamp(100 - populationVariance(counts)*FrequencyVariancePenalty)
}
