package spendscore

import "sort"

// BudgetCeiling estimates a per-transaction budget as median + 1.5 × IQR. Quartiles are
// read at indexes n/4 and 3n/4 of the sorted amounts, the median at n/2. ok is false when
// there are fewer than MinBudgetSamples amounts.
func BudgetCeiling(amounts []float64) (ceiling float64, ok bool) {
	n := len(amounts)
	if n < MinBudgetSamples {
		return 0, false
	}

	sorted := amounts
	if !sort.Float64sAreSorted(amounts) {
		sorted = append([]float64(nil), amounts...)
		sort.Float64s(sorted)
	}

	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	median := sorted[n/2]

	return median + BudgetIQRMultiplier*(q3-q1), true
}

// BudgetAdherence is the percentage of spend amounts at or under the estimated budget ceiling.
// amounts are absolute debit values.
func BudgetAdherence(amounts []float64) float64 {
	ceiling, ok := BudgetCeiling(amounts)
	if !ok {
		return FallbackBudgetSmallSample
	}

	within := 0
	for _, a := range amounts {
		if a <= ceiling {
			within++
		}
	}
	return float64(within) / float64(len(amounts)) * 100
}
