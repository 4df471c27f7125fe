package spendscore

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when there are no transactions to score.
var ErrEmptyInput = errors.New("no transactions to analyze")

// MissingMetricError reports a sub-score the aggregator expected but did not receive.
type MissingMetricError struct {
	Metric MetricName
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("missing metric %q", e.Metric)
}
