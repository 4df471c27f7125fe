package spendscore

// MetricName identifies one of the six sub-scores.
type MetricName string

// Sub-score names. They double as the JSON keys of model.Metrics.
const (
	MetricFrequency         MetricName = "frequency_score"
	MetricCategoryDiversity MetricName = "category_diversity"
	MetricBudgetAdherence   MetricName = "budget_adherence"
	MetricRedundancy        MetricName = "redundancy_detection"
	MetricSpike             MetricName = "spike_detection"
	MetricWasteRatio        MetricName = "waste_ratio"
)

// Weights of each sub-score in the overall SpendScore. They sum to 1.0.
const (
	WeightFrequency         = 0.15
	WeightCategoryDiversity = 0.10
	WeightBudgetAdherence   = 0.20
	WeightRedundancy        = 0.15
	WeightSpike             = 0.20
	WeightWasteRatio        = 0.20
)

// Fallback scores returned when a heuristic has too little data to say anything.
const (
	FallbackFrequencyEmpty      = 50.0
	FallbackFrequencySingleDay  = 75.0
	FallbackCategoryNone        = 50.0
	FallbackBudgetSmallSample   = 80.0
	FallbackSpikeSmallSample    = 90.0
	FallbackSpikeUniformAmounts = 95.0
	FallbackWasteNoSpending     = 80.0
)

// Minimum sample sizes for the amount-based heuristics.
const (
	MinBudgetSamples = 4
	MinSpikeSamples  = 3
)

// Penalty slopes and thresholds.
const (
	FrequencyVariancePenalty = 10.0
	BudgetIQRMultiplier      = 1.5
	DuplicateRatePenalty     = 200.0
	DuplicateMaxDays         = 1
	DuplicateAmountTolerance = 0.01
	SpikeSigmas              = 2.0
	SpikeRatePenalty         = 300.0
	WasteRatioPenalty        = 150.0
	DescriptionKeyTokens     = 3
)

// Category diversity band. A category count inside [IdealCategoriesMin, IdealCategoriesMax]
// scores 100; fewer scales linearly up to UnderTaggedCeiling, more loses OverTaggedPenalty
// per extra category down to OverTaggedFloor.
const (
	IdealCategoriesMin = 8
	IdealCategoriesMax = 12
	UnderTaggedCeiling = 80.0
	OverTaggedPenalty  = 5.0
	OverTaggedFloor    = 60.0
)

// Tier thresholds.
const (
	GreenThreshold = 90.0
	AmberThreshold = 70.0
)

// WasteKeywords mark discretionary spend when found anywhere in a lower-cased description.
var WasteKeywords = []string{
	"entertainment", "gaming", "subscription", "streaming",
	"restaurant", "takeout", "coffee", "bar", "alcohol",
	"luxury", "premium", "designer", "brand",
}
