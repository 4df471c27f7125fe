package spendscore

import (
	"math"

	"github.com/Veraticus/spendscore/internal/model"
)

// CategoryDiversity scores how many distinct categories the transactions use.
// Under-tagging is penalized harder than fragmentation.
func CategoryDiversity(transactions []model.Transaction) float64 {
	categories := make(map[string]struct{})
	for _, t := range transactions {
		if t.Category != "" {
			categories[t.Category] = struct{}{}
		}
	}
	if len(categories) == 0 {
		return FallbackCategoryNone
	}

	k := len(categories)
	var score float64
	switch {
	case k >= IdealCategoriesMin && k <= IdealCategoriesMax:
		score = 100
	case k < IdealCategoriesMin:
		score = float64(k) / IdealCategoriesMin * UnderTaggedCeiling
	default:
		score = math.Max(OverTaggedFloor, 100-float64(k-IdealCategoriesMax)*OverTaggedPenalty)
	}
	return clamp(score)
}
