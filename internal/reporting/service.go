// Package reporting runs the SpendScore engine over imported transactions and keeps the
// resulting reports.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spendscore/internal/analysis"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/service"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/google/uuid"
)

// Request describes a batch of transactions to turn into a report.
type Request struct {
	Title            string
	Description      string
	OriginalFilename string
	FileFormat       string
	Transactions     []model.Transaction
}

// Service creates, scores and retrieves reports.
type Service struct {
	store  service.Storage
	engine *spendscore.Engine
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a reporting service on top of store.
func NewService(store service.Storage, engine *spendscore.Engine, logger *slog.Logger) *Service {
	if engine == nil {
		engine = spendscore.NewEngine()
	}
	if logger == nil {
		logger = slog.Default().With("component", "reporting")
	}
	return &Service{
		store:  store,
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Score computes a SpendScore without storing anything.
func (s *Service) Score(transactions []model.Transaction) (*model.SpendScore, error) {
	return s.engine.Score(transactions)
}

// Generate stores the transactions as a new report and scores it. A scoring failure
// leaves the report in the failed state and is returned alongside it.
func (s *Service) Generate(ctx context.Context, req Request) (*model.Report, error) {
	now := s.now()
	report := &model.Report{
		ID:               s.newID(),
		Title:            reportTitle(req, now),
		Description:      req.Description,
		Status:           model.ReportProcessing,
		OriginalFilename: req.OriginalFilename,
		FileFormat:       req.FileFormat,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	report.Summarize(req.Transactions)

	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	if len(req.Transactions) > 0 {
		if err := s.store.SaveTransactions(ctx, report.ID, req.Transactions); err != nil {
			return s.fail(ctx, report, fmt.Errorf("failed to save transactions: %w", err))
		}
	}

	score, err := s.engine.Score(req.Transactions)
	if err != nil {
		return s.fail(ctx, report, fmt.Errorf("failed to score report: %w", err))
	}

	return s.complete(ctx, report, score, len(req.Transactions))
}

// Regenerate re-scores the stored transactions of an existing report, whatever its
// current status. A report stuck in processing or marked failed is recovered this way.
func (s *Service) Regenerate(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := report.Status
	if err := s.store.RestartReport(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to restart report: %w", err)
	}
	report.Status = model.ReportProcessing
	report.ErrorMessage = ""

	s.logger.Info("Regenerating SpendScore", "report_id", id, "previous_status", previous)

	txns, err := s.store.GetTransactions(ctx, id)
	if err != nil {
		return s.fail(ctx, report, fmt.Errorf("failed to load transactions: %w", err))
	}

	score, err := s.engine.Score(txns)
	if err != nil {
		return s.fail(ctx, report, fmt.Errorf("failed to score report: %w", err))
	}

	return s.complete(ctx, report, score, len(txns))
}

func (s *Service) complete(ctx context.Context, report *model.Report, score *model.SpendScore, n int) (*model.Report, error) {
	if err := s.store.CompleteReport(ctx, report.ID, score); err != nil {
		return s.fail(ctx, report, fmt.Errorf("failed to complete report: %w", err))
	}

	s.logger.Info("Generated SpendScore",
		"report_id", report.ID,
		"score", score.OverallScore,
		"tier", score.Tier,
		"transactions", n)

	return s.store.GetReport(ctx, report.ID)
}

func (s *Service) fail(ctx context.Context, report *model.Report, cause error) (*model.Report, error) {
	s.logger.Error("Report generation failed", "report_id", report.ID, "error", cause)

	if err := s.store.FailReport(ctx, report.ID, cause.Error()); err != nil {
		return nil, fmt.Errorf("%w (and failed to record failure: %w)", cause, err)
	}
	report.Status = model.ReportFailed
	report.ErrorMessage = cause.Error()
	return report, cause
}

func reportTitle(req Request, now time.Time) string {
	if title := strings.TrimSpace(req.Title); title != "" {
		return title
	}
	if req.OriginalFilename != "" {
		return req.OriginalFilename
	}
	return "SpendScore " + now.Format("Jan 2, 2006")
}

// Get returns a stored report.
func (s *Service) Get(ctx context.Context, id string) (*model.Report, error) {
	return s.store.GetReport(ctx, id)
}

// Transactions returns the transactions behind a report.
func (s *Service) Transactions(ctx context.Context, id string) ([]model.Transaction, error) {
	if _, err := s.store.GetReport(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetTransactions(ctx, id)
}

// List returns stored reports, newest first.
func (s *Service) List(ctx context.Context, filter service.ReportFilter) ([]model.Report, error) {
	return s.store.ListReports(ctx, filter)
}

// Delete removes a report and its transactions.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted report", "report_id", id)
	return nil
}

// Trends computes daily spending trends for a report.
func (s *Service) Trends(ctx context.Context, id string) (*analysis.Trends, error) {
	txns, err := s.Transactions(ctx, id)
	if err != nil {
		return nil, err
	}
	trends := analysis.SpendingTrends(txns)
	return &trends, nil
}

// Categories computes the category breakdown for a report.
func (s *Service) Categories(ctx context.Context, id string) (*analysis.Categories, error) {
	txns, err := s.Transactions(ctx, id)
	if err != nil {
		return nil, err
	}
	categories := analysis.CategoryBreakdown(txns)
	return &categories, nil
}

// Duplicates lists the transaction pairs the redundancy heuristic flags in a report.
func (s *Service) Duplicates(ctx context.Context, id string) ([]spendscore.DuplicatePair, error) {
	txns, err := s.Transactions(ctx, id)
	if err != nil {
		return nil, err
	}
	return spendscore.FindDuplicates(txns), nil
}
