package stats

import (
	"math"

	"expdesign/internal/errors"
)

// SampleSizeCalculator computes required per-group sample sizes from
// closed-form formulas. All methods are pure; inputs are validated before
// any arithmetic so no call can produce NaN or Inf.
//
// The continuous formula uses a normal approximation at design time even
// though the post-hoc analysis of the same metric uses a Student-t
// reference distribution. The asymmetry is deliberate: the design stage
// has no degrees of freedom yet, and the z approximation errs slightly
// small only for tiny samples.
type SampleSizeCalculator struct {
	dist *Distributions
}

// NewSampleSizeCalculator creates a calculator
func NewSampleSizeCalculator() *SampleSizeCalculator {
	return &SampleSizeCalculator{dist: NewDistributions()}
}

// CalculateProportions returns the per-group sample size for a two-sided
// two-proportion z-test.
//
//	n = ceil( (z_a*sqrt(2*pbar*(1-pbar)) + z_b*sqrt(p1*(1-p1)+p2*(1-p2)))^2 / (p1-p2)^2 )
//
// with z_a the two-sided critical value and pbar the pooled proportion
// under the null. Symmetric in (p1, p2).
func (c *SampleSizeCalculator) CalculateProportions(p1, p2, alpha, power float64) (int, error) {
	if err := validateRate("p1", p1); err != nil {
		return 0, err
	}
	if err := validateRate("p2", p2); err != nil {
		return 0, err
	}
	if err := validateAlphaPower(alpha, power); err != nil {
		return 0, err
	}
	if p1 == p2 {
		return 0, errors.InvalidInput("p1 and p2 must differ: a zero effect needs an unbounded sample")
	}

	zAlpha := c.dist.NormalQuantile(1 - alpha/2)
	zBeta := c.dist.NormalQuantile(power)

	pooled := (p1 + p2) / 2
	numerator := math.Pow(zAlpha*math.Sqrt(2*pooled*(1-pooled))+
		zBeta*math.Sqrt(p1*(1-p1)+p2*(1-p2)), 2)
	denominator := (p1 - p2) * (p1 - p2)

	return int(math.Ceil(numerator / denominator)), nil
}

// CalculateContinuous returns the per-group sample size for a
// continuous-metric comparison using the normal approximation:
//
//	n = ceil( 2 * ((z_a + z_b) / effect_size)^2 ),  effect_size = |mean1-mean2| / std
func (c *SampleSizeCalculator) CalculateContinuous(mean1, mean2, std, alpha, power float64) (int, error) {
	if std <= 0 {
		return 0, errors.InvalidField("std", "must be positive")
	}
	if err := validateAlphaPower(alpha, power); err != nil {
		return 0, err
	}
	if mean1 == mean2 {
		return 0, errors.InvalidInput("means must differ: a zero effect needs an unbounded sample")
	}

	zAlpha := c.dist.NormalQuantile(1 - alpha/2)
	zBeta := c.dist.NormalQuantile(power)

	effectSize := math.Abs(mean1-mean2) / std
	n := 2 * math.Pow((zAlpha+zBeta)/effectSize, 2)

	return int(math.Ceil(n)), nil
}

// CalculateNonInferiority returns the per-group sample size for a
// one-sided non-inferiority proportion test with margin delta. The
// critical value is one-tailed (z_a = quantile(1-alpha), not 1-alpha/2)
// and the hypothesized treatment rate is p1 - delta.
func (c *SampleSizeCalculator) CalculateNonInferiority(p1, delta, alpha, power float64) (int, error) {
	if err := validateRate("p1", p1); err != nil {
		return 0, err
	}
	if err := validateAlphaPower(alpha, power); err != nil {
		return 0, err
	}
	if delta <= 0 {
		return 0, errors.InvalidField("delta", "must be positive")
	}
	p2 := p1 - delta
	if p2 <= 0 {
		return 0, errors.InvalidField("delta", "must be smaller than p1")
	}

	zAlpha := c.dist.NormalQuantile(1 - alpha) // one-sided
	zBeta := c.dist.NormalQuantile(power)

	pooled := (p1 + p2) / 2
	numerator := math.Pow(zAlpha*math.Sqrt(2*pooled*(1-pooled))+
		zBeta*math.Sqrt(p1*(1-p1)+p2*(1-p2)), 2)

	return int(math.Ceil(numerator / (delta * delta))), nil
}

// EstimateRuntime converts a total required sample and a daily traffic
// rate into calendar days, rounded up. A non-positive rate returns zero
// days: the explicit "no traffic" sentinel, not an error.
func (c *SampleSizeCalculator) EstimateRuntime(totalSampleSize int, dailyRate float64) int {
	if dailyRate <= 0 || totalSampleSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalSampleSize) / dailyRate))
}

func validateRate(field string, p float64) error {
	if p <= 0 || p >= 1 {
		return errors.InvalidField(field, "must be in (0, 1)")
	}
	return nil
}

func validateAlphaPower(alpha, power float64) error {
	if alpha <= 0 || alpha >= 1 {
		return errors.InvalidField("alpha", "must be in (0, 1)")
	}
	if power <= 0 || power >= 1 {
		return errors.InvalidField("power", "must be in (0, 1)")
	}
	return nil
}
