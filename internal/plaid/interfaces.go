package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
)

// TransactionFetcher is the part of the Plaid client the import command depends on.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

var _ TransactionFetcher = (*Client)(nil)
