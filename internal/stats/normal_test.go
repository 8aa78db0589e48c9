package stats_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
	"pgregory.net/rapid"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

func TestNormalCDF_KnownValues(t *testing.T) {
	tests := []struct {
		x        float64
		expected float64
	}{
		{0, 0.5},
		{1, 0.8413},
		{-1, 0.1587},
		{1.96, 0.9750},
		{-1.96, 0.0250},
		{2.58, 0.9951},
		{6, 1.0},
		{-6, 0.0},
	}

	for _, tt := range tests {
		got := stats.NormalCDF(tt.x)
		if math.Abs(got-tt.expected) > 1e-4 {
			t.Errorf("NormalCDF(%v) = %f, want %f", tt.x, got, tt.expected)
		}
	}
}

func TestNormalCDF_MatchesReferenceTo4Decimals(t *testing.T) {
	for x := -6.0; x <= 6.0; x += 0.01 {
		want := distuv.UnitNormal.CDF(x)
		assert.InDelta(t, want, stats.NormalCDF(x), 1e-6, "x=%v", x)
	}
}

func TestNormalCDF_Infinities(t *testing.T) {
	assert.Equal(t, 1.0, stats.NormalCDF(math.Inf(1)))
	assert.Equal(t, 0.0, stats.NormalCDF(math.Inf(-1)))
}

func TestNormalCDF_Symmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-50, 50).Draw(t, "x")
		assert.InDelta(t, 1-stats.NormalCDF(x), stats.NormalCDF(-x), 1e-6)
	})
}

func TestNormalCDF_Monotonic(t *testing.T) {
	prev := stats.NormalCDF(-8)
	for x := -7.99; x <= 8; x += 0.01 {
		cur := stats.NormalCDF(x)
		if cur < prev {
			t.Fatalf("NormalCDF decreased at x=%v: %v < %v", x, cur, prev)
		}
		prev = cur
	}
}
