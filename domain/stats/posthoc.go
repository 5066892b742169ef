package stats

import (
	"math"

	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// PostHocAnalyzer evaluates completed-experiment results. Single-shot and
// stateless: validate, compute the branch picked by the metric kind, then
// apply the shared decision rules.
//
// Proportion metrics use a pooled two-proportion z statistic; continuous
// metrics use a pooled-variance t statistic. Both tests are one-tailed
// (upper); confidence intervals are two-sided at level 1-alpha.
type PostHocAnalyzer struct {
	dist *Distributions
}

// NewPostHocAnalyzer creates an analyzer
func NewPostHocAnalyzer() *PostHocAnalyzer {
	return &PostHocAnalyzer{dist: NewDistributions()}
}

// Analyze runs the full evaluation for one experiment
func (a *PostHocAnalyzer) Analyze(in experiment.AnalysisInput) (*experiment.AnalysisResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var res *experiment.AnalysisResult
	switch in.Metric {
	case experiment.MetricProportion:
		res = a.analyzeProportion(in)
	case experiment.MetricContinuous:
		res = a.analyzeContinuous(in)
	default:
		return nil, errors.InvalidField("metric_kind", "unsupported")
	}

	a.decide(in, res)
	return res, nil
}

func (a *PostHocAnalyzer) analyzeProportion(in experiment.AnalysisInput) *experiment.AnalysisResult {
	obs := in.Proportion

	controlRate := float64(obs.ControlSuccesses) / float64(obs.ControlN)
	treatmentRate := float64(obs.TreatmentSuccesses) / float64(obs.TreatmentN)

	pooled := float64(obs.ControlSuccesses+obs.TreatmentSuccesses) / float64(obs.ControlN+obs.TreatmentN)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(obs.ControlN) + 1/float64(obs.TreatmentN)))

	res := &experiment.AnalysisResult{
		Metric:     in.Metric,
		Test:       in.Test,
		EffectSize: treatmentRate - controlRate,
		CILevel:    1 - in.Alpha,
	}

	if se == 0 {
		// All successes or all failures in both groups pooled together:
		// the z statistic is undefined, so report the no-evidence p-value.
		res.Statistic = 0
		res.PValue = 0.5
		res.CILower, res.CIUpper = res.EffectSize, res.EffectSize
		res.Warnings = append(res.Warnings,
			errors.DegenerateResult("standard error is zero; outcomes carry no variance").Error())
		return res
	}

	shift := 0.0
	if in.Test == experiment.TestNonInferiority {
		shift = in.Margin
	}
	res.Statistic = (res.EffectSize + shift) / se
	res.PValue = 1 - a.dist.NormalCDF(res.Statistic) // one-tailed, upper

	zCrit := a.dist.NormalQuantile(1 - in.Alpha/2)
	res.CILower = res.EffectSize - zCrit*se
	res.CIUpper = res.EffectSize + zCrit*se

	return res
}

func (a *PostHocAnalyzer) analyzeContinuous(in experiment.AnalysisInput) *experiment.AnalysisResult {
	obs := in.Continuous

	nc, nt := float64(obs.ControlN), float64(obs.TreatmentN)
	df := obs.ControlN + obs.TreatmentN - 2

	pooledStd := math.Sqrt(((nc-1)*obs.ControlStd*obs.ControlStd +
		(nt-1)*obs.TreatmentStd*obs.TreatmentStd) / float64(df))
	se := pooledStd * math.Sqrt(1/nc+1/nt)

	res := &experiment.AnalysisResult{
		Metric:     in.Metric,
		Test:       in.Test,
		EffectSize: obs.TreatmentMean - obs.ControlMean,
		DF:         df,
		CILevel:    1 - in.Alpha,
	}

	shift := 0.0
	if in.Test == experiment.TestNonInferiority {
		shift = in.Margin
	}
	res.Statistic = (res.EffectSize + shift) / se
	res.PValue = 1 - a.dist.StudentTCDF(res.Statistic, df) // one-tailed, upper

	tCrit := a.dist.StudentTQuantile(1-in.Alpha/2, df)
	res.CILower = res.EffectSize - tCrit*se
	res.CIUpper = res.EffectSize + tCrit*se

	return res
}

// decide applies the shared decision and recommendation rules. The rule
// table splits on p < alpha first, so it is exhaustive: an "inconclusive"
// recommendation never arises here (callers set RunLonger themselves when
// the experiment stopped short of its pre-registered sample size).
func (a *PostHocAnalyzer) decide(in experiment.AnalysisInput, res *experiment.AnalysisResult) {
	switch {
	case res.EffectSize > 0:
		res.Direction = experiment.DirectionPositive
	case res.EffectSize < 0:
		res.Direction = experiment.DirectionNegative
	default:
		res.Direction = experiment.DirectionNone
	}

	significant := res.PValue < in.Alpha
	if significant {
		res.Decision = experiment.DecisionSignificant
	} else {
		res.Decision = experiment.DecisionNotSignificant
	}

	switch in.Test {
	case experiment.TestSuperiority:
		meetsMDE := math.Abs(res.EffectSize) >= in.MDE
		if meetsMDE {
			res.Practical = experiment.VerdictMeetsThreshold
		} else {
			res.Practical = experiment.VerdictDoesNotMeet
		}
		// CI check mirrors the point check but on the interval bound
		// nearer zero.
		if res.CILower > 0 {
			res.CIMeetsThreshold = math.Abs(res.CILower) >= in.MDE
		} else {
			res.CIMeetsThreshold = math.Abs(res.CIUpper) >= in.MDE
		}

		switch {
		case significant && meetsMDE:
			res.Recommendation = experiment.RecommendImplement
			res.RecommendationNote = "Significant and meaningful effect"
		case significant:
			res.Recommendation = experiment.RecommendConsider
			res.RecommendationNote = "Significant but may not be meaningful"
		default:
			res.Recommendation = experiment.RecommendDontImplement
			res.RecommendationNote = "No significant effect detected"
		}

	case experiment.TestNonInferiority:
		withinMargin := res.EffectSize > -in.Margin
		if withinMargin {
			res.Practical = experiment.VerdictMeetsThreshold
		} else {
			res.Practical = experiment.VerdictDoesNotMeet
		}
		res.CIMeetsThreshold = res.CILower > -in.Margin

		switch {
		case significant && withinMargin:
			res.Recommendation = experiment.RecommendImplement
			res.RecommendationNote = "Non-inferiority demonstrated"
		case significant:
			res.Recommendation = experiment.RecommendDontImplement
			res.RecommendationNote = "Treatment is inferior"
		default:
			res.Recommendation = experiment.RecommendDontImplement
			res.RecommendationNote = "Non-inferiority not demonstrated"
		}
	}
}
