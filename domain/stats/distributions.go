package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the reference distributions the
// calculators need. Keeping quantile/CDF lookups behind one seam means the
// z-vs-t choice is always explicit at the call site.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// NormalCDF computes the standard normal CDF
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal inverse CDF
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// StudentTCDF computes the Student-t CDF with df degrees of freedom
func (d *Distributions) StudentTCDF(x float64, df int) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return tDist.CDF(x)
}

// StudentTQuantile computes the Student-t inverse CDF with df degrees of freedom
func (d *Distributions) StudentTQuantile(p float64, df int) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return tDist.Quantile(p)
}
