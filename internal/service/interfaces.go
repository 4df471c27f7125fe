// Package service defines the interfaces shared between the persistence layer and its callers.
package service

import (
	"context"

	"github.com/Veraticus/spendscore/internal/model"
)

// ReportFilter narrows report listings.
type ReportFilter struct {
	Status model.ReportStatus
	Limit  int
	Offset int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Report operations
	CreateReport(ctx context.Context, report *model.Report) error
	CompleteReport(ctx context.Context, id string, score *model.SpendScore) error
	FailReport(ctx context.Context, id, message string) error
	RestartReport(ctx context.Context, id string) error
	GetReport(ctx context.Context, id string) (*model.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]model.Report, error)
	DeleteReport(ctx context.Context, id string) error
	CountReportsByStatus(ctx context.Context) (map[model.ReportStatus]int, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, reportID string, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, reportID string) ([]model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
