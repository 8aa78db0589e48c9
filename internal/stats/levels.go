package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfidenceLevel is a confidence level in percent (e.g. 95).
type ConfidenceLevel int

// Power is a statistical power in percent (e.g. 80).
type Power int

const (
	// DefaultZAlpha is used for any confidence level missing from the table.
	// It is the 95% two-sided critical value.
	DefaultZAlpha = 1.96
	// DefaultZBeta is used for any power missing from the table.
	// It is the 80% power constant.
	DefaultZBeta = 0.84

	DefaultConfidence ConfidenceLevel = 95
	DefaultPower      Power           = 80
)

// ConfidenceLevels lists the supported confidence levels in ascending order.
var ConfidenceLevels = []ConfidenceLevel{80, 85, 90, 95, 99}

// PowerLevels lists the supported power levels in ascending order.
var PowerLevels = []Power{80, 85, 90, 95, 99}

// Two-sided critical values. Read-only after init.
var zAlpha = map[ConfidenceLevel]float64{
	80: 1.28,
	85: 1.44,
	90: 1.65,
	95: 1.96,
	99: 2.58,
}

var zBeta = map[Power]float64{
	80: 0.84,
	85: 1.04,
	90: 1.28,
	95: 1.64,
	99: 2.33,
}

// ZAlpha returns the two-sided critical value for c.
// Levels outside the table fall back to DefaultZAlpha; no interpolation is done.
func (c ConfidenceLevel) ZAlpha() float64 {
	if z, ok := zAlpha[c]; ok {
		return z
	}
	return DefaultZAlpha
}

// Known reports whether c has its own entry in the z table.
func (c ConfidenceLevel) Known() bool {
	_, ok := zAlpha[c]
	return ok
}

// Alpha returns the two-sided rejection threshold 1 - c/100.
func (c ConfidenceLevel) Alpha() float64 {
	return 1 - float64(c)/100
}

func (c ConfidenceLevel) String() string {
	return strconv.Itoa(int(c)) + "%"
}

// ZBeta returns the power constant for p.
// Levels outside the table fall back to DefaultZBeta.
func (p Power) ZBeta() float64 {
	if z, ok := zBeta[p]; ok {
		return z
	}
	return DefaultZBeta
}

// Known reports whether p has its own entry in the z table.
func (p Power) Known() bool {
	_, ok := zBeta[p]
	return ok
}

func (p Power) String() string {
	return strconv.Itoa(int(p)) + "%"
}

// ParseConfidenceLevel parses "95" or "95%". Unknown but numeric levels are
// accepted; they resolve through the ZAlpha fallback.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	n, err := parsePercent(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse confidence level: %w", err)
	}
	return ConfidenceLevel(n), nil
}

// ParsePower parses "80" or "80%".
func ParsePower(s string) (Power, error) {
	n, err := parsePercent(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse power: %w", err)
	}
	return Power(n), nil
}

func parsePercent(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid("percent", "%q is not a whole number", s)
	}
	return n, nil
}
