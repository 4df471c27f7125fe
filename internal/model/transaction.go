package model

import (
	"math"
	"time"
)

// MaxAbsAmount bounds the magnitude of a single transaction amount accepted on import.
const MaxAbsAmount = 1e12

// DateLayout is the canonical calendar date format used across storage, APIs and reports.
const DateLayout = "2006-01-02"

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time `json:"transaction_date"` // Calendar date, normalized to UTC midnight
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"` // Empty when the source has no category
	Merchant    string    `json:"merchant,omitempty"`
	Reference   string    `json:"reference_number,omitempty"`
	Amount      float64   `json:"amount"` // Negative for spend, positive for inflow
}

// ValidAmount reports whether amount is finite and no larger than MaxAbsAmount.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && math.Abs(amount) <= MaxAbsAmount
}

// IsDebit reports whether the transaction moves money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Amount < 0
}

// IsCredit reports whether the transaction moves money into the account.
func (t Transaction) IsCredit() bool {
	return t.Amount > 0
}

// DateKey returns the transaction date formatted as YYYY-MM-DD.
func (t Transaction) DateKey() string {
	return t.Date.Format(DateLayout)
}

// DateOf strips the time of day from t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a calendar date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
