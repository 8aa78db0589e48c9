package server

import (
	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

// SampleSizeRequest is the body of POST /api/sample-size. Confidence, power
// and variants default to the server's configured values when omitted.
type SampleSizeRequest struct {
	BaselinePct *float64 `json:"baseline_pct" validate:"required"`
	MDEPct      *float64 `json:"mde_pct" validate:"required"`
	Confidence  *int     `json:"confidence,omitempty"`
	Power       *int     `json:"power,omitempty"`
	Variants    *int     `json:"variants,omitempty" validate:"omitempty,max=100"`
}

// SignificanceRequest is the body of POST /api/significance. The first
// variant is the control.
type SignificanceRequest struct {
	Confidence *int             `json:"confidence,omitempty"`
	Variants   []VariantRequest `json:"variants" validate:"required,min=2,max=100,dive"`
}

type VariantRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Visitors    *int   `json:"visitors" validate:"required"`
	Conversions *int   `json:"conversions" validate:"required"`
}

type SampleSizeResponse struct {
	PerVariant      int     `json:"per_variant"`
	Total           int     `json:"total"`
	ExpectedRatePct float64 `json:"expected_rate_pct"`
	Confidence      int     `json:"confidence"`
	Power           int     `json:"power"`
	ZAlpha          float64 `json:"z_alpha"`
	ZBeta           float64 `json:"z_beta"`
	// Fallback is set when confidence or power used the default constants.
	Fallback bool `json:"fallback,omitempty"`
}

type SignificanceResponse struct {
	Confidence int             `json:"confidence"`
	Control    ControlResponse `json:"control"`
	Results    []VariantResult `json:"results"`
}

type ControlResponse struct {
	Name        string  `json:"name"`
	Visitors    int     `json:"visitors"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
}

type VariantResult struct {
	Name        string  `json:"name"`
	Visitors    int     `json:"visitors"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	// RelativeImprovement is null when the control rate is zero.
	RelativeImprovement *float64 `json:"relative_improvement"`
	ZScore              float64  `json:"z_score"`
	PValue              float64  `json:"p_value"`
	Significant         bool     `json:"significant"`
	Degenerate          bool     `json:"degenerate,omitempty"`
}

type LevelsResponse struct {
	Confidence    []LevelEntry `json:"confidence"`
	Power         []LevelEntry `json:"power"`
	DefaultZAlpha float64      `json:"default_z_alpha"`
	DefaultZBeta  float64      `json:"default_z_beta"`
}

type LevelEntry struct {
	Level int     `json:"level"`
	Z     float64 `json:"z"`
}

type ExperimentResponse struct {
	Name      string   `json:"name"`
	Variants  []string `json:"variants"`
	CreatedAt int64    `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewSampleSizeResponse(in stats.SampleSizeInput, res stats.SampleSizeResult) SampleSizeResponse {
	return SampleSizeResponse{
		PerVariant:      res.PerVariant,
		Total:           res.Total,
		ExpectedRatePct: res.ExpectedRatePct,
		Confidence:      int(in.Confidence),
		Power:           int(in.Power),
		ZAlpha:          res.ZAlpha,
		ZBeta:           res.ZBeta,
		Fallback:        !in.Confidence.Known() || !in.Power.Known(),
	}
}

func NewSignificanceResponse(report *stats.Report) SignificanceResponse {
	resp := SignificanceResponse{
		Confidence: int(report.Confidence),
		Control: ControlResponse{
			Name:        report.Control.Name,
			Visitors:    report.Control.Visitors,
			Conversions: report.Control.Conversions,
			Rate:        report.Control.Rate,
			CILower:     report.Control.CILower,
			CIUpper:     report.Control.CIUpper,
		},
		Results: make([]VariantResult, len(report.Results)),
	}

	for i, r := range report.Results {
		var improvement *float64
		if r.ImprovementDefined {
			v := r.RelativeImprovement
			improvement = &v
		}
		resp.Results[i] = VariantResult{
			Name:                r.Name,
			Visitors:            r.Visitors,
			Conversions:         r.Conversions,
			Rate:                r.Rate,
			CILower:             r.CILower,
			CIUpper:             r.CIUpper,
			RelativeImprovement: improvement,
			ZScore:              r.ZScore,
			PValue:              r.PValue,
			Significant:         r.IsSignificant,
			Degenerate:          r.Degenerate,
		}
	}
	return resp
}

func NewLevelsResponse() LevelsResponse {
	resp := LevelsResponse{
		DefaultZAlpha: stats.DefaultZAlpha,
		DefaultZBeta:  stats.DefaultZBeta,
	}
	for _, c := range stats.ConfidenceLevels {
		resp.Confidence = append(resp.Confidence, LevelEntry{Level: int(c), Z: c.ZAlpha()})
	}
	for _, p := range stats.PowerLevels {
		resp.Power = append(resp.Power, LevelEntry{Level: int(p), Z: p.ZBeta()})
	}
	return resp
}

func (r VariantRequest) variant() stats.Variant {
	return stats.Variant{Name: r.Name, Visitors: *r.Visitors, Conversions: *r.Conversions}
}
