package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/service"
)

const reportColumns = `id, title, description, status, error_message, original_filename, file_format,
	total_transactions, total_amount, date_range_start, date_range_end,
	overall_score, tier, metrics, created_at, updated_at, completed_at`

// CreateReport inserts a new report. CreatedAt and UpdatedAt are set when zero.
func (s *SQLiteStorage) CreateReport(ctx context.Context, report *model.Report) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(report); err != nil {
		return err
	}

	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	if report.UpdatedAt.IsZero() {
		report.UpdatedAt = report.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, title, description, status, error_message, original_filename, file_format,
			total_transactions, total_amount, date_range_start, date_range_end,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Title,
		nullString(report.Description),
		string(report.Status),
		nullString(report.ErrorMessage),
		nullString(report.OriginalFilename),
		nullString(report.FileFormat),
		report.TotalTransactions,
		report.TotalAmount,
		nullDate(report.DateRangeStart),
		nullDate(report.DateRangeEnd),
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("report %s: %w", report.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// CompleteReport stores the score of a report and marks it completed.
func (s *SQLiteStorage) CompleteReport(ctx context.Context, id string, score *model.SpendScore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if score == nil {
		return fmt.Errorf("%w: score", ErrNilParameter)
	}

	metrics, err := json.Marshal(score.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, overall_score = ?, tier = ?, metrics = ?,
			error_message = NULL, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, string(model.ReportCompleted), score.OverallScore, string(score.Tier), string(metrics), now, now, id)
	if err != nil {
		return fmt.Errorf("failed to complete report: %w", err)
	}
	return requireAffected(result, id)
}

// FailReport marks a report failed with the given reason.
func (s *SQLiteStorage) FailReport(ctx context.Context, id, message string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reports SET status = ?, error_message = ?, updated_at = ? WHERE id = ?
	`, string(model.ReportFailed), message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark report failed: %w", err)
	}
	return requireAffected(result, id)
}

// RestartReport puts a report back into processing and clears its previous error.
func (s *SQLiteStorage) RestartReport(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reports SET status = ?, error_message = NULL, updated_at = ? WHERE id = ?
	`, string(model.ReportProcessing), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to restart report: %w", err)
	}
	return requireAffected(result, id)
}

// CountReportsByStatus returns how many reports are in each status. Statuses with no
// reports are absent.
func (s *SQLiteStorage) CountReportsByStatus(ctx context.Context) (map[model.ReportStatus]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.ReportStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan report count: %w", err)
		}
		counts[model.ReportStatus(status)] = n
	}
	return counts, rows.Err()
}

// GetReport retrieves one report by ID.
func (s *SQLiteStorage) GetReport(ctx context.Context, id string) (*model.Report, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListReports returns reports newest first.
func (s *SQLiteStorage) ListReports(ctx context.Context, filter service.ReportFilter) ([]model.Report, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	var args []any
	if filter.Status != "" {
		if err := validateStatus(filter.Status); err != nil {
			return nil, err
		}
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []model.Report
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan report: %w", scanErr)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// DeleteReport removes a report and, through the foreign key cascade, its transactions.
func (s *SQLiteStorage) DeleteReport(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return requireAffected(result, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*model.Report, error) {
	var (
		r                                   model.Report
		status                              string
		description, errorMessage, filename sql.NullString
		format, start, end, tier, metrics   sql.NullString
		overall                             sql.NullFloat64
		completedAt                         sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.Title, &description, &status, &errorMessage, &filename, &format,
		&r.TotalTransactions, &r.TotalAmount, &start, &end,
		&overall, &tier, &metrics, &r.CreatedAt, &r.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = model.ReportStatus(status)
	r.Description = description.String
	r.ErrorMessage = errorMessage.String
	r.OriginalFilename = filename.String
	r.FileFormat = format.String

	if r.DateRangeStart, err = parseNullDate(start); err != nil {
		return nil, err
	}
	if r.DateRangeEnd, err = parseNullDate(end); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}

	if overall.Valid && metrics.Valid {
		score := &model.SpendScore{
			OverallScore: overall.Float64,
			Tier:         model.Tier(tier.String),
		}
		if err := json.Unmarshal([]byte(metrics.String), &score.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics: %w", err)
		}
		r.Score = score
	}

	return &r, nil
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("report %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(model.DateLayout), Valid: true}
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := model.ParseDate(s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", s.String, err)
	}
	return &t, nil
}
