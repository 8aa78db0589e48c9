package stats

import "math"

// NormalCDF approximates the standard normal cumulative distribution function
// using the Zelen & Severo polynomial (Abramowitz and Stegun 26.2.17).
// Absolute error is below 1e-6 over the whole real line.
func NormalCDF(x float64) float64 {
	t := 1 / (1 + 0.2316419*math.Abs(x))
	d := 0.3989423 * math.Exp(-x*x/2)
	prob := d * t * (0.3193815 + t*(-0.3565638+t*(1.781478+t*(-1.821256+t*1.330274))))
	if x > 0 {
		prob = 1 - prob
	}
	return prob
}
