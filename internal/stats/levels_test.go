package stats_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

func TestZAlpha(t *testing.T) {
	tests := []struct {
		level    stats.ConfidenceLevel
		expected float64
	}{
		{80, 1.28},
		{85, 1.44},
		{90, 1.65},
		{95, 1.96},
		{99, 2.58},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.ZAlpha(), "level %d", tt.level)
		assert.True(t, tt.level.Known())
	}
}

func TestZBeta(t *testing.T) {
	tests := []struct {
		power    stats.Power
		expected float64
	}{
		{80, 0.84},
		{85, 1.04},
		{90, 1.28},
		{95, 1.64},
		{99, 2.33},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.power.ZBeta(), "power %d", tt.power)
		assert.True(t, tt.power.Known())
	}
}

func TestUnknownLevelsFallBack(t *testing.T) {
	for _, c := range []stats.ConfidenceLevel{0, 50, 97, 100, -5} {
		assert.False(t, c.Known())
		assert.Equal(t, stats.DefaultZAlpha, c.ZAlpha())
	}
	for _, p := range []stats.Power{0, 70, 92, 100} {
		assert.False(t, p.Known())
		assert.Equal(t, stats.DefaultZBeta, p.ZBeta())
	}
}

func TestLevelsAscending(t *testing.T) {
	for i := 1; i < len(stats.ConfidenceLevels); i++ {
		assert.Greater(t, stats.ConfidenceLevels[i].ZAlpha(), stats.ConfidenceLevels[i-1].ZAlpha())
	}
	for i := 1; i < len(stats.PowerLevels); i++ {
		assert.Greater(t, stats.PowerLevels[i].ZBeta(), stats.PowerLevels[i-1].ZBeta())
	}
}

func TestAlpha(t *testing.T) {
	assert.InDelta(t, 0.05, stats.ConfidenceLevel(95).Alpha(), 1e-12)
	assert.InDelta(t, 0.01, stats.ConfidenceLevel(99).Alpha(), 1e-12)
}

func TestParseConfidenceLevel(t *testing.T) {
	c, err := stats.ParseConfidenceLevel("95%")
	require.NoError(t, err)
	assert.Equal(t, stats.ConfidenceLevel(95), c)

	c, err = stats.ParseConfidenceLevel(" 97 ")
	require.NoError(t, err)
	assert.Equal(t, stats.ConfidenceLevel(97), c)

	_, err = stats.ParseConfidenceLevel("high")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stats.ErrInvalidInput))
}

func TestParsePower(t *testing.T) {
	p, err := stats.ParsePower("80")
	require.NoError(t, err)
	assert.Equal(t, stats.Power(80), p)
	assert.Equal(t, "80%", p.String())

	_, err = stats.ParsePower("")
	assert.ErrorIs(t, err, stats.ErrInvalidInput)
}
