package model

import "time"

// ReportStatus tracks where a report is in its lifecycle.
type ReportStatus string

const (
	// ReportProcessing means transactions are stored but scoring has not finished.
	ReportProcessing ReportStatus = "processing"
	// ReportCompleted means the SpendScore has been computed and saved.
	ReportCompleted ReportStatus = "completed"
	// ReportFailed means scoring failed; ErrorMessage holds the reason.
	ReportFailed ReportStatus = "failed"
)

// Report is a stored analysis of one batch of imported transactions.
type Report struct {
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	DateRangeStart    *time.Time   `json:"date_range_start,omitempty"`
	DateRangeEnd      *time.Time   `json:"date_range_end,omitempty"`
	Score             *SpendScore  `json:"score,omitempty"`
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Status            ReportStatus `json:"status"`
	ErrorMessage      string       `json:"error_message,omitempty"`
	OriginalFilename  string       `json:"original_filename,omitempty"`
	FileFormat        string       `json:"file_format,omitempty"`
	TotalTransactions int          `json:"total_transactions"`
	TotalAmount       float64      `json:"total_amount"`
}

// IsTerminal returns true if the status represents a final state.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportCompleted || s == ReportFailed
}

// Summarize fills the transaction-derived totals and date range of the report.
func (r *Report) Summarize(transactions []Transaction) {
	r.TotalTransactions = len(transactions)
	r.TotalAmount = 0
	r.DateRangeStart = nil
	r.DateRangeEnd = nil

	for i := range transactions {
		t := transactions[i]
		if t.Amount < 0 {
			r.TotalAmount -= t.Amount
		} else {
			r.TotalAmount += t.Amount
		}

		date := t.Date
		if r.DateRangeStart == nil || date.Before(*r.DateRangeStart) {
			r.DateRangeStart = &date
		}
		if r.DateRangeEnd == nil || date.After(*r.DateRangeEnd) {
			r.DateRangeEnd = &date
		}
	}
}
