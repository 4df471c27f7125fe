// Package spendscore computes the SpendScore: six independent spending heuristics folded
// into one weighted 0-100 score and a Green/Amber/Red tier.
package spendscore

import (
	"log/slog"

	"github.com/Veraticus/spendscore/internal/model"
	"golang.org/x/sync/errgroup"
)

// Engine scores transaction lists. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	parallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel runs the six analyzers concurrently before aggregating.
func WithParallel() Option {
	return func(e *Engine) {
		e.parallel = true
	}
}

// WithLogger sets the logger used for per-metric debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a scoring engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default().With("component", "spendscore"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the SpendScore for transactions. The slice is only read.
func (e *Engine) Score(transactions []model.Transaction) (*model.SpendScore, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptyInput
	}

	in := &input{
		transactions: transactions,
		spending:     SpendAmounts(transactions),
	}

	scores := e.runAnalyzers(in)

	overall, err := Aggregate(scores)
	if err != nil {
		return nil, err
	}

	result := &model.SpendScore{
		OverallScore: overall,
		Tier:         TierFor(overall),
		Metrics: model.Metrics{
			TotalTransactions: len(transactions),
			TotalSpending:     sum(in.spending),
		},
	}
	if len(in.spending) > 0 {
		result.Metrics.AverageTransaction = result.Metrics.TotalSpending / float64(len(in.spending))
	}
	for name, score := range scores {
		setMetric(&result.Metrics, name, score)
	}

	e.logger.Debug("Scored transactions",
		"transactions", len(transactions),
		"spend_transactions", len(in.spending),
		"overall", overall,
		"tier", result.Tier)

	return result, nil
}

func (e *Engine) runAnalyzers(in *input) map[MetricName]float64 {
	values := make([]float64, len(metrics))

	if e.parallel {
		var g errgroup.Group
		for i, m := range metrics {
			g.Go(func() error {
				values[i] = m.analyze(in)
				return nil
			})
		}
		_ = g.Wait() // analyzers never fail
	} else {
		for i, m := range metrics {
			values[i] = m.analyze(in)
		}
	}

	scores := make(map[MetricName]float64, len(metrics))
	for i, m := range metrics {
		scores[m.name] = clamp(values[i])
		e.logger.Debug("Computed metric", "metric", m.name, "score", values[i])
	}
	return scores
}

// Score is a convenience wrapper around a default Engine.
func Score(transactions []model.Transaction) (*model.SpendScore, error) {
	return NewEngine().Score(transactions)
}
