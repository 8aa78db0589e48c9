package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

// perVariantByFormula recomputes the sample size directly from the formula.
func perVariantByFormula(baseline, mde, za, zb float64) int {
	p1 := baseline / 100
	p2 := p1 * (1 + mde/100)
	sd1 := math.Sqrt(2 * p1 * (1 - p1))
	sd2 := math.Sqrt(p1*(1-p1) + p2*(1-p2))
	effect := math.Abs(p2 - p1)
	return int(math.Ceil((za*sd1 + zb*sd2) * (za*sd1 + zb*sd2) / (effect * effect)))
}

func TestEstimateSampleSize_DefaultInputs(t *testing.T) {
	res, err := stats.EstimateSampleSize(stats.SampleSizeInput{
		BaselinePct:  5,
		MDEPct:       20,
		Confidence:   95,
		Power:        80,
		VariantCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, perVariantByFormula(5, 20, 1.96, 0.84), res.PerVariant)
	assert.Equal(t, 7655, res.PerVariant)
	assert.Equal(t, res.PerVariant*2, res.Total)
	assert.InDelta(t, 6.0, res.ExpectedRatePct, 1e-9)
	assert.Equal(t, 1.96, res.ZAlpha)
	assert.Equal(t, 0.84, res.ZBeta)
}

func TestEstimateSampleSize_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		in       stats.SampleSizeInput
		expected int
	}{
		{"10% baseline 10% lift", stats.SampleSizeInput{BaselinePct: 10, MDEPct: 10, Confidence: 95, Power: 80, VariantCount: 2}, 14297},
		{"strict levels", stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 99, Power: 99, VariantCount: 2}, 23909},
		{"half baseline", stats.SampleSizeInput{BaselinePct: 50, MDEPct: 10, Confidence: 95, Power: 80, VariantCount: 2}, 1566},
		{"loose confidence", stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 80, Power: 80, VariantCount: 2}, 4427},
		{"higher power", stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 95, Power: 90, VariantCount: 2}, 10337},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := stats.EstimateSampleSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.PerVariant)
		})
	}
}

func TestEstimateSampleSize_TotalScalesWithVariants(t *testing.T) {
	in := stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 95, Power: 80, VariantCount: 5}
	res, err := stats.EstimateSampleSize(in)
	require.NoError(t, err)
	assert.Equal(t, 7655*5, res.Total)
}

func TestEstimateSampleSize_UnknownLevelsUseDefaults(t *testing.T) {
	def, err := stats.EstimateSampleSize(stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 95, Power: 80, VariantCount: 2})
	require.NoError(t, err)

	odd, err := stats.EstimateSampleSize(stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 97, Power: 70, VariantCount: 2})
	require.NoError(t, err)

	assert.Equal(t, def, odd)
}

func TestEstimateSampleSize_InvalidInput(t *testing.T) {
	valid := stats.SampleSizeInput{BaselinePct: 5, MDEPct: 20, Confidence: 95, Power: 80, VariantCount: 2}

	tests := []struct {
		name   string
		mutate func(*stats.SampleSizeInput)
		field  string
	}{
		{"zero baseline", func(in *stats.SampleSizeInput) { in.BaselinePct = 0 }, "baseline"},
		{"full baseline", func(in *stats.SampleSizeInput) { in.BaselinePct = 100 }, "baseline"},
		{"negative baseline", func(in *stats.SampleSizeInput) { in.BaselinePct = -1 }, "baseline"},
		{"NaN baseline", func(in *stats.SampleSizeInput) { in.BaselinePct = math.NaN() }, "baseline"},
		{"zero mde", func(in *stats.SampleSizeInput) { in.MDEPct = 0 }, "mde"},
		{"negative mde", func(in *stats.SampleSizeInput) { in.MDEPct = -5 }, "mde"},
		{"infinite mde", func(in *stats.SampleSizeInput) { in.MDEPct = math.Inf(1) }, "mde"},
		{"lift above 100%", func(in *stats.SampleSizeInput) { in.BaselinePct = 60; in.MDEPct = 100 }, "mde"},
		{"single variant", func(in *stats.SampleSizeInput) { in.VariantCount = 1 }, "variants"},
		{"vanishing mde", func(in *stats.SampleSizeInput) { in.BaselinePct = 50; in.MDEPct = 1e-9 }, "mde"},
		{"subnormal mde", func(in *stats.SampleSizeInput) { in.MDEPct = 5e-324 }, "mde"},
		{"total overflows", func(in *stats.SampleSizeInput) { in.VariantCount = 1 << 62 }, "variants"},
		{"max variants", func(in *stats.SampleSizeInput) { in.VariantCount = math.MaxInt }, "variants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			res, err := stats.EstimateSampleSize(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, stats.ErrInvalidInput))
			assert.Zero(t, res)

			var inputErr *stats.InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestEstimateSampleSize_ExtremeInputsStayPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := stats.SampleSizeInput{
			BaselinePct:  rapid.Float64Range(0.001, 50).Draw(t, "baseline"),
			MDEPct:       rapid.Float64Range(1e-12, 100).Draw(t, "mde"),
			Confidence:   rapid.SampledFrom(stats.ConfidenceLevels).Draw(t, "confidence"),
			Power:        rapid.SampledFrom(stats.PowerLevels).Draw(t, "power"),
			VariantCount: rapid.IntRange(2, math.MaxInt).Draw(t, "variants"),
		}

		res, err := stats.EstimateSampleSize(in)
		if err != nil {
			if !errors.Is(err, stats.ErrInvalidInput) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		if res.PerVariant <= 0 || res.Total < res.PerVariant {
			t.Fatalf("per variant %d, total %d for %+v", res.PerVariant, res.Total, in)
		}
		if res.Total/in.VariantCount != res.PerVariant {
			t.Fatalf("total %d is not %d x %d", res.Total, res.PerVariant, in.VariantCount)
		}
	})
}

func TestEstimateSampleSize_PositiveInteger(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawSampleSizeInput(t)
		res, err := stats.EstimateSampleSize(in)
		require.NoError(t, err)
		assert.Greater(t, res.PerVariant, 0)
		assert.Equal(t, res.PerVariant*in.VariantCount, res.Total)
	})
}

func TestEstimateSampleSize_MonotonicInMDE(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawSampleSizeInput(t)
		smaller := in
		smaller.MDEPct = in.MDEPct * rapid.Float64Range(0.05, 1).Draw(t, "shrink")

		big, err := stats.EstimateSampleSize(in)
		require.NoError(t, err)
		small, err := stats.EstimateSampleSize(smaller)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, small.PerVariant, big.PerVariant)
	})
}

func TestEstimateSampleSize_MonotonicInLevels(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawSampleSizeInput(t)

		prev := 0
		for _, c := range stats.ConfidenceLevels {
			in.Confidence = c
			res, err := stats.EstimateSampleSize(in)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.PerVariant, prev, "confidence %d", c)
			prev = res.PerVariant
		}

		in.Confidence = stats.DefaultConfidence
		prev = 0
		for _, p := range stats.PowerLevels {
			in.Power = p
			res, err := stats.EstimateSampleSize(in)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.PerVariant, prev, "power %d", p)
			prev = res.PerVariant
		}
	})
}

func drawSampleSizeInput(t *rapid.T) stats.SampleSizeInput {
	baseline := rapid.Float64Range(0.1, 50).Draw(t, "baseline")
	mde := rapid.Float64Range(1, 100).Draw(t, "mde")
	return stats.SampleSizeInput{
		BaselinePct:  baseline,
		MDEPct:       mde,
		Confidence:   rapid.SampledFrom(stats.ConfidenceLevels).Draw(t, "confidence"),
		Power:        rapid.SampledFrom(stats.PowerLevels).Draw(t, "power"),
		VariantCount: rapid.IntRange(2, 5).Draw(t, "variants"),
	}
}
