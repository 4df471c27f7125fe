package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
)

// MockFetcher is a TransactionFetcher for tests.
type MockFetcher struct {
	GetTransactionsFn func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)

	mu    sync.Mutex
	calls []DateRange
}

// DateRange records the window of one GetTransactions call.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// GetTransactions records the call and delegates to GetTransactionsFn.
func (m *MockFetcher) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	m.calls = append(m.calls, DateRange{Start: startDate, End: endDate})
	m.mu.Unlock()

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}
	return []model.Transaction{}, nil
}

// Calls returns the recorded date ranges.
func (m *MockFetcher) Calls() []DateRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DateRange(nil), m.calls...)
}

var _ TransactionFetcher = (*MockFetcher)(nil)
