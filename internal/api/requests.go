package api

import (
	"strings"

	"github.com/Veraticus/spendscore/internal/model"
)

// TransactionRequest is one transaction in a JSON scoring request.
type TransactionRequest struct {
	Amount          *float64 `json:"amount" validate:"required,amount"`
	TransactionDate string   `json:"transaction_date" validate:"required,isodate"`
	Description     string   `json:"description" validate:"max=500"`
	Category        string   `json:"category" validate:"max=100"`
	Merchant        string   `json:"merchant" validate:"max=200"`
	Reference       string   `json:"reference_number" validate:"max=100"`
}

// ScoreRequest is the body of POST /api/spend-score.
type ScoreRequest struct {
	Transactions []TransactionRequest `json:"transactions" validate:"required,min=1,dive"`
}

// ListQuery holds the query parameters of GET /api/reports.
type ListQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=processing completed failed"`
	Limit  int    `form:"limit" validate:"gte=0,lte=500"`
	Offset int    `form:"offset" validate:"gte=0"`
}

// UploadForm holds the non-file fields of POST /api/upload.
type UploadForm struct {
	Title       string `form:"title" validate:"max=200"`
	Description string `form:"description" validate:"max=1000"`
	Format      string `form:"format"`
}

// toModel converts validated requests into engine transactions.
func toModel(reqs []TransactionRequest) []model.Transaction {
	out := make([]model.Transaction, 0, len(reqs))
	for _, r := range reqs {
		date, _ := model.ParseDate(r.TransactionDate)
		out = append(out, model.Transaction{
			Date:        date,
			Description: strings.TrimSpace(r.Description),
			Category:    strings.TrimSpace(r.Category),
			Merchant:    strings.TrimSpace(r.Merchant),
			Reference:   strings.TrimSpace(r.Reference),
			Amount:      *r.Amount,
		})
	}
	return out
}
