package analysis

import (
	"sort"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/shopspring/decimal"
)

// Uncategorized labels spending that carries no category.
const Uncategorized = "Uncategorized"

// CategorySpend is one row of the category breakdown.
type CategorySpend struct {
	Name             string  `json:"name"`
	Amount           float64 `json:"amount"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int     `json:"transaction_count"`
}

// Categories is debit spending grouped by category, largest first.
type Categories struct {
	TopCategory   *CategorySpend  `json:"top_category"`
	Categories    []CategorySpend `json:"categories"`
	TotalSpending float64         `json:"total_spending"`
}

// CategoryBreakdown groups debit spending by category. Amounts are rounded to cents and
// percentages to one decimal.
func CategoryBreakdown(transactions []model.Transaction) Categories {
	amounts := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	total := decimal.Zero

	for _, t := range transactions {
		if !t.IsDebit() {
			continue
		}
		name := t.Category
		if name == "" {
			name = Uncategorized
		}
		amount := decimal.NewFromFloat(t.Amount).Neg()
		amounts[name] = amounts[name].Add(amount)
		counts[name]++
		total = total.Add(amount)
	}

	result := Categories{
		Categories:    make([]CategorySpend, 0, len(amounts)),
		TotalSpending: total.Round(2).InexactFloat64(),
	}

	hundred := decimal.NewFromInt(100)
	for name, amount := range amounts {
		var pct float64
		if total.IsPositive() {
			pct = amount.Div(total).Mul(hundred).Round(1).InexactFloat64()
		}
		result.Categories = append(result.Categories, CategorySpend{
			Name:             name,
			Amount:           amount.Round(2).InexactFloat64(),
			Percentage:       pct,
			TransactionCount: counts[name],
		})
	}

	sort.Slice(result.Categories, func(i, j int) bool {
		a, b := result.Categories[i], result.Categories[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Name < b.Name
	})

	if len(result.Categories) > 0 {
		top := result.Categories[0]
		result.TopCategory = &top
	}

	return result
}
