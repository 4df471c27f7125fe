// Package storage persists SpendScore reports and their transactions in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spendscore/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidReport      = errors.New("invalid report")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidStatus      = errors.New("invalid report status")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateStatus(status model.ReportStatus) error {
	switch status {
	case model.ReportProcessing, model.ReportCompleted, model.ReportFailed:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

func validateReport(report *model.Report) error {
	if report == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if strings.TrimSpace(report.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidReport)
	}
	if strings.TrimSpace(report.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidReport)
	}
	if err := validateStatus(report.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if transactions[i].Date.IsZero() {
			return fmt.Errorf("transaction at index %d: %w: missing date", i, ErrInvalidTransaction)
		}
	}
	return nil
}
