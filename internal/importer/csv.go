package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
)

// CSVParser reads CSV exports in any of the supported dialects.
type CSVParser struct {
	logger *slog.Logger
}

// NewCSVParser creates a CSV parser.
func NewCSVParser(logger *slog.Logger) *CSVParser {
	if logger == nil {
		logger = slog.Default().With("component", "csv")
	}
	return &CSVParser{logger: logger}
}

// Parse reads every transaction in r. With FormatAuto the dialect is detected from the
// header; the dialect actually used is returned. Rows whose date or amount cannot be
// parsed are skipped and logged.
func (p *CSVParser) Parse(ctx context.Context, r io.Reader, format Format) ([]model.Transaction, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, format, fmt.Errorf("failed to read CSV: %w", err)
	}
	data, err = Decode(data)
	if err != nil {
		return nil, format, err
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, format, common.ErrNoTransactions
	}
	if err != nil {
		return nil, format, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if format == FormatAuto || format == "" {
		format = DetectFormat(header)
	}
	l, ok := layouts[format]
	if !ok {
		return nil, format, fmt.Errorf("%w: %s is not a CSV dialect", common.ErrUnsupportedFormat, format)
	}
	cols, err := l.resolve(format, header)
	if err != nil {
		return nil, format, err
	}

	p.logger.Info("Processing CSV", "format", format, "columns", len(header))

	var transactions []model.Transaction
	line := 1
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			p.logger.Warn("Skipping row due to error", "line", line, "error", readErr)
			continue
		}
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, format, err
			}
		}

		txn, skip, rowErr := buildTransaction(record, cols, l.skipBlank)
		if skip {
			continue
		}
		if rowErr != nil {
			p.logger.Warn("Skipping row due to error", "line", line, "error", rowErr)
			continue
		}
		transactions = append(transactions, txn)
	}

	if len(transactions) == 0 {
		return nil, format, common.ErrNoTransactions
	}

	p.logger.Info("Parsed CSV", "format", format, "transactions", len(transactions))
	return transactions, format, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func buildTransaction(record []string, cols columns, skipBlank bool) (model.Transaction, bool, error) {
	rawDate := field(record, cols.date)
	desc := field(record, cols.desc)
	rawAmount := field(record, cols.amount)

	if rawDate == "" && desc == "" && rawAmount == "" {
		return model.Transaction{}, true, nil
	}
	if skipBlank && (rawDate == "" || desc == "" || rawAmount == "") {
		return model.Transaction{}, true, nil
	}

	date, err := ParseDate(rawDate)
	if err != nil {
		return model.Transaction{}, false, err
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return model.Transaction{}, false, err
	}

	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount.InexactFloat64(),
		Category:    field(record, cols.category),
		Merchant:    field(record, cols.merchant),
		Reference:   field(record, cols.reference),
	}, false, nil
}
