package model

// Tier is the coarse interpretation bucket of a SpendScore.
type Tier string

const (
	// TierGreen marks disciplined spending (score of 90 or more).
	TierGreen Tier = "Green"
	// TierAmber marks spending worth reviewing (score from 70 up to 90).
	TierAmber Tier = "Amber"
	// TierRed marks spending that needs attention (score below 70).
	TierRed Tier = "Red"
)

// String returns the tier label.
func (t Tier) String() string {
	return string(t)
}

// Metrics is the per-heuristic breakdown behind a SpendScore.
type Metrics struct {
	FrequencyScore      float64 `json:"frequency_score"`
	CategoryDiversity   float64 `json:"category_diversity"`
	BudgetAdherence     float64 `json:"budget_adherence"`
	RedundancyDetection float64 `json:"redundancy_detection"`
	SpikeDetection      float64 `json:"spike_detection"`
	WasteRatio          float64 `json:"waste_ratio"`
	TotalTransactions   int     `json:"total_transactions"`
	TotalSpending       float64 `json:"total_spending"`
	AverageTransaction  float64 `json:"average_transaction"`
}

// SpendScore is the complete engine output for one set of transactions.
type SpendScore struct {
	Tier         Tier    `json:"tier"`
	Metrics      Metrics `json:"metrics"`
	OverallScore float64 `json:"overall_score"`
}
