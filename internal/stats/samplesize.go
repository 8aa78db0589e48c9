package stats

import "math"

// SampleSizeInput is a snapshot of the sample size calculator inputs.
type SampleSizeInput struct {
	BaselinePct  float64 // control conversion rate in percent, exclusive (0, 100)
	MDEPct       float64 // minimum detectable effect, relative lift in percent
	Confidence   ConfidenceLevel
	Power        Power
	VariantCount int // control plus treatments
}

// SampleSizeResult is the outcome of EstimateSampleSize.
type SampleSizeResult struct {
	PerVariant      int
	Total           int
	ExpectedRatePct float64 // baseline rate after the lift
	ZAlpha          float64
	ZBeta           float64
}

// EstimateSampleSize returns the visitors needed in each variant to detect a
// relative lift of MDEPct over BaselinePct.
//
// Confidence and power levels missing from the z tables use DefaultZAlpha and
// DefaultZBeta (95% / 80%).
func EstimateSampleSize(in SampleSizeInput) (SampleSizeResult, error) {
	if err := in.validate(); err != nil {
		return SampleSizeResult{}, err
	}

	za := in.Confidence.ZAlpha()
	zb := in.Power.ZBeta()

	p1 := in.BaselinePct / 100
	p2 := p1 * (1 + in.MDEPct/100)

	// Variance under the null (both arms at p1) and under the alternative.
	sd1 := math.Sqrt(2 * p1 * (1 - p1))
	sd2 := math.Sqrt(p1*(1-p1) + p2*(1-p2))
	effect := math.Abs(p2 - p1)

	n := math.Ceil(math.Pow(za*sd1+zb*sd2, 2) / math.Pow(effect, 2))
	if !(n < math.MaxInt) {
		return SampleSizeResult{}, invalid("mde", "%v%% is too small to estimate a sample size", in.MDEPct)
	}
	perVariant := int(n)
	if perVariant > math.MaxInt/in.VariantCount {
		return SampleSizeResult{}, invalid("variants", "%d variants overflow the total sample size", in.VariantCount)
	}

	return SampleSizeResult{
		PerVariant:      perVariant,
		Total:           perVariant * in.VariantCount,
		ExpectedRatePct: p2 * 100,
		ZAlpha:          za,
		ZBeta:           zb,
	}, nil
}

func (in SampleSizeInput) validate() error {
	if math.IsNaN(in.BaselinePct) || in.BaselinePct <= 0 || in.BaselinePct >= 100 {
		return invalid("baseline", "must be between 0 and 100 exclusive, got %v", in.BaselinePct)
	}
	if math.IsNaN(in.MDEPct) || math.IsInf(in.MDEPct, 0) || in.MDEPct <= 0 {
		return invalid("mde", "must be greater than 0, got %v", in.MDEPct)
	}
	if in.VariantCount < 2 {
		return invalid("variants", "must be at least 2, got %d", in.VariantCount)
	}
	if expected := in.BaselinePct * (1 + in.MDEPct/100); expected > 100 {
		return invalid("mde", "lifts baseline %v%% to %.2f%%, above 100%%", in.BaselinePct, expected)
	}
	return nil
}
