package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/Veraticus/spendscore/internal/analysis"
	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetTitle = "SpendScore"

// Writer exports reports to a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default().With("component", "sheets")
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write replaces the sheet contents with the report summary, its category breakdown and
// its transactions. It returns the spreadsheet ID.
func (w *Writer) Write(ctx context.Context, report *model.Report, transactions []model.Transaction) (string, error) {
	if report == nil || report.Score == nil {
		return "", fmt.Errorf("report has no score to export")
	}

	w.logger.Info("Starting sheet export", "report_id", report.ID, "transactions", len(transactions))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error {
		return w.clearSheet(ctx, spreadsheetID)
	}, retryOpts); err != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", err)
	}

	values := prepareReportData(report, transactions)

	if err := common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts); err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, len(values))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("Failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("Sheet export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return spreadsheetID, nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetTitle}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("Created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func metricRows(score *model.SpendScore) []MetricRow {
	weights := spendscore.Weights()
	rows := make([]MetricRow, 0, len(weights))
	for _, name := range spendscore.MetricNames() {
		value, _ := spendscore.MetricValue(score.Metrics, name)
		rows = append(rows, MetricRow{
			Name:   string(name),
			Score:  decimal.NewFromFloat(value).Round(1),
			Weight: decimal.NewFromFloat(weights[name]),
		})
	}
	return rows
}

func categoryRows(transactions []model.Transaction) []CategoryRow {
	breakdown := analysis.CategoryBreakdown(transactions)
	rows := make([]CategoryRow, 0, len(breakdown.Categories))
	for _, c := range breakdown.Categories {
		rows = append(rows, CategoryRow{
			Name:       c.Name,
			Amount:     decimal.NewFromFloat(c.Amount),
			Percentage: decimal.NewFromFloat(c.Percentage),
			Count:      c.TransactionCount,
		})
	}
	return rows
}

func transactionRows(transactions []model.Transaction) []TransactionRow {
	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, TransactionRow{
			Date:        t.Date,
			Description: t.Description,
			Category:    t.Category,
			Amount:      decimal.NewFromFloat(t.Amount).Round(2),
		})
	}
	// Newest first; the caller's slice is left untouched.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})
	return rows
}

// prepareReportData lays out the sheet: title, summary, metrics, categories, transactions.
func prepareReportData(report *model.Report, transactions []model.Transaction) [][]any {
	metrics := metricRows(report.Score)
	categories := categoryRows(transactions)
	txns := transactionRows(transactions)

	period := ""
	if report.DateRangeStart != nil && report.DateRangeEnd != nil {
		period = fmt.Sprintf("%s - %s",
			report.DateRangeStart.Format("Jan 2, 2006"), report.DateRangeEnd.Format("Jan 2, 2006"))
	}

	values := make([][]any, 0, 16+len(metrics)+len(categories)+len(txns))
	values = append(values,
		[]any{report.Title, period},
		[]any{},
		[]any{"Summary"},
		[]any{"Overall Score", report.Score.OverallScore},
		[]any{"Tier", string(report.Score.Tier)},
		[]any{"Total Transactions", report.Score.Metrics.TotalTransactions},
		[]any{"Total Spending", decimal.NewFromFloat(report.Score.Metrics.TotalSpending).Round(2).InexactFloat64()},
		[]any{},
		[]any{"Metric", "Score", "Weight"},
	)
	for _, m := range metrics {
		values = append(values, []any{m.Name, m.Score.InexactFloat64(), m.Weight.InexactFloat64()})
	}

	values = append(values,
		[]any{},
		[]any{"Category", "Amount", "Share %", "Count"},
	)
	for _, c := range categories {
		values = append(values, []any{c.Name, c.Amount.InexactFloat64(), c.Percentage.InexactFloat64(), c.Count})
	}

	values = append(values,
		[]any{},
		[]any{"Transaction Details"},
		[]any{"Date", "Description", "Category", "Amount"},
	)
	for _, t := range txns {
		values = append(values, []any{
			t.Date.Format(model.DateLayout),
			t.Description,
			t.Category,
			t.Amount.InexactFloat64(),
		})
	}

	return values
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("A%d", i+1),
			&sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("Wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: 0, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 2},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: 0, StartRowIndex: 2, EndRowIndex: int64(totalRows), StartColumnIndex: 0, EndColumnIndex: 1},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: 0, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 4},
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
