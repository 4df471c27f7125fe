package spendscore

import (
	"math"
	"sort"

	"github.com/Veraticus/spendscore/internal/model"
)

// DuplicatePair is a transaction flagged as a likely repeat of the one before it.
type DuplicatePair struct {
	Key      string            `json:"key"`
	First    model.Transaction `json:"first"`
	Repeated model.Transaction `json:"repeated"`
}

// FindDuplicates groups transactions by normalized description and flags each
// date-adjacent pair at most DuplicateMaxDays apart whose amounts differ by less than
// DuplicateAmountTolerance. Same-day members are ordered by amount then description so
// the result does not depend on input order.
func FindDuplicates(transactions []model.Transaction) []DuplicatePair {
	groups := make(map[string][]model.Transaction)
	for _, t := range transactions {
		key := NormalizeDescription(t.Description)
		groups[key] = append(groups[key], t)
	}

	keys := make([]string, 0, len(groups))
	for key, group := range groups {
		if len(group) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var pairs []DuplicatePair
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].Date.Equal(group[j].Date) {
				return group[i].Date.Before(group[j].Date)
			}
			if group[i].Amount != group[j].Amount {
				return group[i].Amount < group[j].Amount
			}
			return group[i].Description < group[j].Description
		})

		for i := 1; i < len(group); i++ {
			prev, curr := group[i-1], group[i]
			if model.DaysBetween(prev.Date, curr.Date) > DuplicateMaxDays {
				continue
			}
			if math.Abs(curr.Amount-prev.Amount) < DuplicateAmountTolerance {
				pairs = append(pairs, DuplicatePair{Key: key, First: prev, Repeated: curr})
			}
		}
	}
	return pairs
}

// RedundancyScore penalizes the share of transactions that look like duplicates.
func RedundancyScore(transactions []model.Transaction) float64 {
	if len(transactions) == 0 {
		return 100
	}
	rate := float64(len(FindDuplicates(transactions))) / float64(len(transactions))
	return clamp(100 - rate*DuplicateRatePenalty)
}
