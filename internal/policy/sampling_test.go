package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/testutil"
)

func TestWeights(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{name: "empty", values: nil, want: nil},
		{name: "proportional", values: []float64{20, 20, 40}, want: []float64{0.25, 0.25, 0.5}},
		{name: "all zero is uniform", values: []float64{0, 0, 0, 0}, want: []float64{0.25, 0.25, 0.25, 0.25}},
		{name: "negative sum is uniform", values: []float64{5, -10}, want: []float64{0.5, 0.5}},
		{name: "unique positive among zeros", values: []float64{0, 3, 0}, want: []float64{0, 1, 0}},
		{name: "unique positive among negatives", values: []float64{-1, 4, -2}, want: []float64{0, 1, 0}},
		{name: "mixed signs clamp negatives", values: []float64{3, -1, 1}, want: []float64{0.75, 0, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Weights(tt.values)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "weight %d", i)
				assert.GreaterOrEqual(t, got[i], 0.0)
			}
		})
	}
}

func TestSample_NeverPicksZeroWeight(t *testing.T) {
	rng := testutil.NewTestRNG(7)
	weights := Weights([]float64{-3, 0, 9, -1})
	for i := 0; i < 500; i++ {
		assert.Equal(t, 2, Sample(rng, weights))
	}
}

func TestSample_UniformCoversEveryIndex(t *testing.T) {
	rng := testutil.NewTestRNG(42)
	weights := Weights([]float64{-5, -5, -5})
	counts := make([]int, len(weights))
	for i := 0; i < 3000; i++ {
		counts[Sample(rng, weights)]++
	}
	for i, c := range counts {
		assert.InDelta(t, 1000, c, 200, "index %d drawn %d times", i, c)
	}
}

func TestSample_FollowsWeights(t *testing.T) {
	rng := testutil.NewTestRNG(3)
	weights := Weights([]float64{10, 30})
	counts := make([]int, 2)
	const draws = 8000
	for i := 0; i < draws; i++ {
		counts[Sample(rng, weights)]++
	}
	assert.InDelta(t, 0.75, float64(counts[1])/draws, 0.03)
}

func TestSample_Empty(t *testing.T) {
	assert.Equal(t, -1, Sample(testutil.NewTestRNG(1), nil))
}
