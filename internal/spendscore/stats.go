package spendscore

import (
	"math"
	"sort"

	"github.com/Veraticus/spendscore/internal/model"
)

// clamp bounds a score to [0, 100]. NaN, from Inf/Inf or 0/0 arithmetic, scores 0.
func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(100, math.Max(0, score))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance divides by n, not n-1.
func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// SpendAmounts returns the absolute amounts of all debit transactions, sorted ascending.
func SpendAmounts(transactions []model.Transaction) []float64 {
	amounts := make([]float64, 0, len(transactions))
	for _, t := range transactions {
		if t.IsDebit() {
			amounts = append(amounts, -t.Amount)
		}
	}
	sort.Float64s(amounts)
	return amounts
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
