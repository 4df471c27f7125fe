package sheets

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricRow is one sub-score line of the summary block.
type MetricRow struct {
	Name   string
	Score  decimal.Decimal
	Weight decimal.Decimal
}

// CategoryRow is one line of the category table.
type CategoryRow struct {
	Name       string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	Count      int
}

// TransactionRow is one line of the transaction table.
type TransactionRow struct {
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
}

// DateRange represents the time period covered by the report.
type DateRange struct {
	Start time.Time
	End   time.Time
}
