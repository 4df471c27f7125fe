package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/service"
	"github.com/shopspring/decimal"
)

// Stats counts stored reports by status.
type Stats struct {
	ByStatus   map[model.ReportStatus]int `json:"status_breakdown"`
	Total      int                        `json:"total_reports"`
	Completed  int                        `json:"completed"`
	Processing int                        `json:"processing"`
	Failed     int                        `json:"failed"`
}

// ReportSummary is the short form of a completed report used in a Summary.
type ReportSummary struct {
	CreatedAt time.Time  `json:"created_at"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Tier      model.Tier `json:"tier"`
	Score     float64    `json:"overall_score"`
}

// Summary aggregates every completed report.
type Summary struct {
	Latest            *model.Report   `json:"latest_report"`
	Reports           []ReportSummary `json:"reports"`
	TotalReports      int             `json:"total_reports"`
	TotalTransactions int             `json:"total_transactions"`
	AverageScore      float64         `json:"average_score"`
}

// Stats returns report counts by status.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.CountReportsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ByStatus:   counts,
		Completed:  counts[model.ReportCompleted],
		Processing: counts[model.ReportProcessing],
		Failed:     counts[model.ReportFailed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// Summary folds the completed reports into totals, the average overall score rounded to
// two decimals, and the newest report.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	reports, err := s.store.ListReports(ctx, service.ReportFilter{Status: model.ReportCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to list completed reports: %w", err)
	}

	summary := &Summary{
		TotalReports: len(reports),
		Reports:      make([]ReportSummary, 0, len(reports)),
	}
	if len(reports) == 0 {
		return summary, nil
	}
	summary.Latest = &reports[0]

	var (
		total  decimal.Decimal
		scored int
	)
	for _, r := range reports {
		summary.TotalTransactions += r.TotalTransactions
		item := ReportSummary{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt}
		if r.Score != nil {
			item.Score = r.Score.OverallScore
			item.Tier = r.Score.Tier
			total = total.Add(decimal.NewFromFloat(r.Score.OverallScore))
			scored++
		}
		summary.Reports = append(summary.Reports, item)
	}
	if scored > 0 {
		summary.AverageScore = total.Div(decimal.NewFromInt(int64(scored))).RoundBank(2).InexactFloat64()
	}
	return summary, nil
}
