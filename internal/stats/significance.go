package stats

import (
	"math"
	"strconv"
)

// Variant is the observed traffic of one arm of an experiment.
type Variant struct {
	Name        string `json:"name"`
	Visitors    int    `json:"visitors"`
	Conversions int    `json:"conversions"`
}

// Rate returns conversions / visitors. Callers must have validated Visitors > 0.
func (v Variant) Rate() float64 {
	return float64(v.Conversions) / float64(v.Visitors)
}

// SignificanceResult compares one treatment against the control.
type SignificanceResult struct {
	Name        string
	Visitors    int
	Conversions int
	Rate        float64 // 0-1
	CILower     float64
	CIUpper     float64

	// RelativeImprovement is the signed lift over the control rate in percent.
	// It is only meaningful when ImprovementDefined is true; a zero control
	// rate with a non-zero treatment rate has no relative lift and reports 0.
	RelativeImprovement float64
	ImprovementDefined  bool

	ZScore        float64
	PValue        float64 // two-sided, 0-1
	IsSignificant bool

	// Degenerate is set when both arms have zero variance; the test then
	// reports z=0 and p=1.
	Degenerate bool
}

// Report is the full output of Analyze.
type Report struct {
	Confidence ConfidenceLevel
	Control    ControlSummary
	Results    []SignificanceResult
}

// ControlSummary describes the control arm of a Report.
type ControlSummary struct {
	Name        string
	Visitors    int
	Conversions int
	Rate        float64
	CILower     float64
	CIUpper     float64
}

// TestSignificance runs an unpooled two-proportion z-test of every treatment
// against control. Results keep the order of treatments. No correction for
// multiple comparisons is applied.
func TestSignificance(control Variant, treatments []Variant, confidence ConfidenceLevel) ([]SignificanceResult, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	if err := control.validate("control"); err != nil {
		return nil, err
	}
	if len(treatments) == 0 {
		return nil, invalid("treatments", "must contain at least one variant")
	}
	for i, t := range treatments {
		if err := t.validate(treatmentField(i)); err != nil {
			return nil, err
		}
	}

	results := make([]SignificanceResult, len(treatments))
	for i, t := range treatments {
		results[i] = compare(control, t, confidence)
	}
	return results, nil
}

// Analyze treats variants[0] as the control and tests every other variant
// against it.
func Analyze(variants []Variant, confidence ConfidenceLevel) (*Report, error) {
	if len(variants) < 2 {
		return nil, invalid("variants", "need a control and at least one treatment, got %d", len(variants))
	}

	control := variants[0]
	results, err := TestSignificance(control, variants[1:], confidence)
	if err != nil {
		return nil, err
	}

	lower, upper := WilsonInterval(control.Conversions, control.Visitors, confidence)
	return &Report{
		Confidence: confidence,
		Control: ControlSummary{
			Name:        control.Name,
			Visitors:    control.Visitors,
			Conversions: control.Conversions,
			Rate:        control.Rate(),
			CILower:     lower,
			CIUpper:     upper,
		},
		Results: results,
	}, nil
}

func compare(control, treatment Variant, confidence ConfidenceLevel) SignificanceResult {
	controlRate := control.Rate()
	variantRate := treatment.Rate()

	controlSE := math.Sqrt(controlRate * (1 - controlRate) / float64(control.Visitors))
	variantSE := math.Sqrt(variantRate * (1 - variantRate) / float64(treatment.Visitors))
	combinedSE := math.Sqrt(controlSE*controlSE + variantSE*variantSE)

	res := SignificanceResult{
		Name:        treatment.Name,
		Visitors:    treatment.Visitors,
		Conversions: treatment.Conversions,
		Rate:        variantRate,
	}
	res.CILower, res.CIUpper = WilsonInterval(treatment.Conversions, treatment.Visitors, confidence)

	switch {
	case controlRate != 0:
		res.RelativeImprovement = (variantRate - controlRate) / controlRate * 100
		res.ImprovementDefined = true
	case variantRate == 0:
		// Both arms at zero: no change.
		res.ImprovementDefined = true
	}

	if combinedSE == 0 {
		res.PValue = 1
		res.Degenerate = true
		return res
	}

	res.ZScore = (variantRate - controlRate) / combinedSE
	res.PValue = clamp01((1 - NormalCDF(math.Abs(res.ZScore))) * 2)
	res.IsSignificant = res.PValue < confidence.Alpha()
	return res
}

func (v Variant) validate(field string) error {
	if v.Name == "" {
		return invalid(field+".name", "must not be empty")
	}
	if v.Visitors <= 0 {
		return invalid(field+".visitors", "must be at least 1, got %d", v.Visitors)
	}
	if v.Conversions < 0 || v.Conversions > v.Visitors {
		return invalid(field+".conversions", "must be between 0 and %d, got %d", v.Visitors, v.Conversions)
	}
	return nil
}

func validateConfidence(c ConfidenceLevel) error {
	if c <= 0 || c >= 100 {
		return invalid("confidence", "must be between 0 and 100 exclusive, got %d", c)
	}
	return nil
}

func treatmentField(i int) string {
	return "treatments[" + strconv.Itoa(i) + "]"
}

// clamp01 keeps p-values inside [0, 1]; the polynomial gives NormalCDF(0)
// slightly below 0.5.
func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
