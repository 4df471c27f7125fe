package spendscore

import (
	"sort"
	"strings"

	"github.com/Veraticus/spendscore/internal/model"
)

// IsWaste reports whether a description contains any of the WasteKeywords.
func IsWaste(description string) bool {
	lowered := strings.ToLower(description)
	for _, keyword := range WasteKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// WasteSpending returns total debit spending and the part of it flagged as waste. Both
// sums run over ascending amounts so the result does not depend on input order.
func WasteSpending(transactions []model.Transaction) (total, waste float64) {
	var flagged []float64
	for _, t := range transactions {
		if t.IsDebit() && IsWaste(t.Description) {
			flagged = append(flagged, -t.Amount)
		}
	}
	sort.Float64s(flagged)
	return sum(SpendAmounts(transactions)), sum(flagged)
}

// WasteRatio scores the share of spending that went to non-essential keywords.
func WasteRatio(transactions []model.Transaction) float64 {
	total, waste := WasteSpending(transactions)
	if total == 0 {
		return FallbackWasteNoSpending
	}
	return clamp(100 - waste/total*WasteRatioPenalty)
}
