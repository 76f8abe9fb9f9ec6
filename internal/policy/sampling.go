package policy

import (
	"golang.org/x/exp/rand"
)

// Weights turns learned values into sampling probabilities.
//
// When the raw sum of values is not strictly positive every action is equally likely.
// Otherwise negative values are clamped to zero and the rest are normalized, so a single
// positive value among zero or negative ones still dominates.
func Weights(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	weights := make([]float64, n)

	var raw, clamped float64
	for i, v := range values {
		raw += v
		if v > 0 {
			weights[i] = v
			clamped += v
		}
	}

	if raw <= 0 || clamped <= 0 {
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= clamped
	}
	return weights
}

// Sample draws an index from weights, which must sum to 1. Zero-weight entries are never
// chosen; rounding shortfall falls back to the last positive weight.
func Sample(rng *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	sampled := rng.Float64()
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cumulative += w
		if sampled < cumulative {
			return i
		}
	}
	return last
}
