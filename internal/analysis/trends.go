// Package analysis derives the secondary report views (spending trends and category
// breakdown) and renders reports for the terminal.
package analysis

import (
	"sort"

	"github.com/Veraticus/spendscore/internal/model"
)

// Direction summarizes where recent daily spending is heading.
type Direction string

// Trend directions.
const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
	DirectionStable     Direction = "stable"
)

// Trend thresholds: the recent window is compared against the overall daily mean.
const (
	RecentWindowDays = 7
	IncreasingFactor = 1.2
	DecreasingFactor = 0.8
)

// Trends is daily spending over a report.
type Trends struct {
	DailySpending        map[string]float64 `json:"daily_spending"`
	Trend                Direction          `json:"trend"`
	TotalDays            int                `json:"total_days"`
	AverageDailySpending float64            `json:"average_daily_spending"`
}

// SpendingTrends sums debit spending per calendar day and compares the mean of the last
// RecentWindowDays spending days with the mean of all spending days.
func SpendingTrends(transactions []model.Transaction) Trends {
	daily := make(map[string]float64)
	for _, t := range transactions {
		if t.IsDebit() {
			daily[t.DateKey()] += -t.Amount
		}
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	amounts := make([]float64, len(dates))
	var total float64
	for i, d := range dates {
		amounts[i] = daily[d]
		total += amounts[i]
	}

	result := Trends{
		DailySpending: daily,
		Trend:         DirectionStable,
		TotalDays:     len(dates),
	}
	if len(amounts) == 0 {
		return result
	}
	result.AverageDailySpending = total / float64(len(amounts))

	if len(amounts) > 1 {
		recent := amounts[max(0, len(amounts)-RecentWindowDays):]
		var recentTotal float64
		for _, a := range recent {
			recentTotal += a
		}
		recentAvg := recentTotal / float64(len(recent))

		switch {
		case recentAvg > result.AverageDailySpending*IncreasingFactor:
			result.Trend = DirectionIncreasing
		case recentAvg < result.AverageDailySpending*DecreasingFactor:
			result.Trend = DirectionDecreasing
		}
	}

	return result
}
