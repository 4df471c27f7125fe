package spendscore

import "math"

// SpikeThreshold returns mean + 2σ (population) of the amounts and the standard deviation.
func SpikeThreshold(amounts []float64) (threshold, stddev float64) {
	m := mean(amounts)
	stddev = math.Sqrt(populationVariance(amounts))
	return m + SpikeSigmas*stddev, stddev
}

// SpikeScore penalizes spend amounts above the two-sigma line. amounts are absolute debit values.
func SpikeScore(amounts []float64) float64 {
	if len(amounts) < MinSpikeSamples {
		return FallbackSpikeSmallSample
	}

	threshold, stddev := SpikeThreshold(amounts)
	if stddev == 0 {
		return FallbackSpikeUniformAmounts
	}

	spikes := 0
	for _, a := range amounts {
		if a > threshold {
			spikes++
		}
	}
	rate := float64(spikes) / float64(len(amounts))
	return clamp(100 - rate*SpikeRatePenalty)
}
