package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
)

// SaveTransactions stores the transactions of a report in input order.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, reportID string, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(reportID, "reportID"); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE id = ?`, reportID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up report: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("report %s: %w", reportID, common.ErrNotFound)
	}

	if err := saveTransactionsTx(ctx, tx, reportID, transactions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("Saved transactions", "report_id", reportID, "count", len(transactions))
	return nil
}

func saveTransactionsTx(ctx context.Context, tx *sql.Tx, reportID string, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			report_id, position, transaction_date, description, category, merchant, reference_number, amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		_, err = stmt.ExecContext(ctx,
			reportID,
			i,
			txn.DateKey(),
			txn.Description,
			nullString(txn.Category),
			nullString(txn.Merchant),
			nullString(txn.Reference),
			txn.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction %d: %w", i, err)
		}
	}
	return nil
}

// GetTransactions returns the transactions of a report in the order they were saved.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, reportID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(reportID, "reportID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_date, description, category, merchant, reference_number, amount
		FROM transactions
		WHERE report_id = ?
		ORDER BY position
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn                           model.Transaction
			date                          string
			category, merchant, reference sql.NullString
		)
		if err := rows.Scan(&date, &txn.Description, &category, &merchant, &reference, &txn.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if txn.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		txn.Category = category.String
		txn.Merchant = merchant.String
		txn.Reference = reference.String
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
