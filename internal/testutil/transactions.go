package testutil

import (
	"time"

	"github.com/Veraticus/spendscore/internal/model"
)

// TransactionBuilder provides a fluent interface for constructing transaction sets
// relative to a start date.
//
// Example usage:
//
//	txns := testutil.NewTransactionBuilder(model.NewDate(2024, time.March, 1)).
//		Spend(0, "Rent", "Housing", 1200).
//		Daily(10, "Grocery Mart", "Food", 40).
//		Earn(14, "Payroll", "Income", 3000).
//		Build()
type TransactionBuilder struct {
	start        time.Time
	transactions []model.Transaction
}

// NewTransactionBuilder starts a builder whose day offsets count from start.
func NewTransactionBuilder(start time.Time) *TransactionBuilder {
	return &TransactionBuilder{start: model.DateOf(start)}
}

// Spend adds a debit of amount on the given day offset. amount is the positive size
// of the spend.
func (b *TransactionBuilder) Spend(day int, description, category string, amount float64) *TransactionBuilder {
	return b.add(day, description, category, -amount)
}

// Earn adds a credit of amount on the given day offset.
func (b *TransactionBuilder) Earn(day int, description, category string, amount float64) *TransactionBuilder {
	return b.add(day, description, category, amount)
}

// Daily adds the same debit on each of the first days days.
func (b *TransactionBuilder) Daily(days int, description, category string, amount float64) *TransactionBuilder {
	for d := 0; d < days; d++ {
		b.Spend(d, description, category, amount)
	}
	return b
}

// Build returns a copy of the accumulated transactions in insertion order.
func (b *TransactionBuilder) Build() []model.Transaction {
	return append([]model.Transaction(nil), b.transactions...)
}

func (b *TransactionBuilder) add(day int, description, category string, amount float64) *TransactionBuilder {
	b.transactions = append(b.transactions, model.Transaction{
		Date:        b.start.AddDate(0, 0, day),
		Description: description,
		Category:    category,
		Amount:      amount,
	})
	return b
}

// MonthOfSpending is a small but complete month: daily groceries, rent and one paycheck.
func MonthOfSpending(start time.Time) *TransactionBuilder {
	return NewTransactionBuilder(start).
		Daily(10, "Grocery Mart", "Food", 40).
		Spend(0, "Rent", "Housing", 1200).
		Earn(14, "Payroll", "Income", 3000)
}
