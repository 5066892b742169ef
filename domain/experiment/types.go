package experiment

import (
	"expdesign/internal/errors"
)

// MetricKind distinguishes binary-outcome metrics (rates) from continuous
// ones (revenue-like values). The kind decides which test statistic the
// analyzer uses: z for proportions, pooled t for means.
type MetricKind string

const (
	MetricProportion MetricKind = "proportion"
	MetricContinuous MetricKind = "continuous"
)

// TestKind selects the hypothesis being tested
type TestKind string

const (
	// TestSuperiority asks whether treatment beats control by a meaningful amount
	TestSuperiority TestKind = "superiority"
	// TestNonInferiority asks whether treatment is not worse than control
	// by more than a pre-specified margin (one-sided)
	TestNonInferiority TestKind = "non_inferiority"
)

// ParseMetricKind validates a metric kind string
func ParseMetricKind(s string) (MetricKind, error) {
	switch MetricKind(s) {
	case MetricProportion, MetricContinuous:
		return MetricKind(s), nil
	}
	return "", errors.InvalidField("metric_kind", "must be \"proportion\" or \"continuous\"")
}

// ParseTestKind validates a test kind string
func ParseTestKind(s string) (TestKind, error) {
	switch TestKind(s) {
	case TestSuperiority, TestNonInferiority:
		return TestKind(s), nil
	}
	return "", errors.InvalidField("test_kind", "must be \"superiority\" or \"non_inferiority\"")
}

// TestSpec captures the statistical frame of a design: metric kind, test
// kind, and the error-rate parameters. Alpha and Power are probabilities;
// conventional values (alpha <= 0.10, power >= 0.70) are not enforced
// beyond range checks.
type TestSpec struct {
	Metric MetricKind `json:"metric_kind"`
	Test   TestKind   `json:"test_kind"`
	Alpha  float64    `json:"alpha"`
	Power  float64    `json:"power"`
}

// Validate checks the frame's invariants
func (s TestSpec) Validate() error {
	if _, err := ParseMetricKind(string(s.Metric)); err != nil {
		return err
	}
	if _, err := ParseTestKind(string(s.Test)); err != nil {
		return err
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return errors.InvalidField("alpha", "must be in (0, 1)")
	}
	if s.Power <= 0 || s.Power >= 1 {
		return errors.InvalidField("power", "must be in (0, 1)")
	}
	return nil
}

// ProportionInputs holds design-time rates for a two-proportion test.
// For superiority TreatmentRate is the hypothesized treatment rate; for
// non-inferiority it is derived as ControlRate - margin.
type ProportionInputs struct {
	ControlRate   float64 `json:"control_rate"`
	TreatmentRate float64 `json:"treatment_rate"`
}

// ContinuousInputs holds design-time parameters for a continuous-metric test
type ContinuousInputs struct {
	ControlMean   float64 `json:"control_mean"`
	TreatmentMean float64 `json:"treatment_mean"`
	StdDev        float64 `json:"std_dev"`
}

// SampleSizeResult is the design-time output. PerGroup is always rounded
// up since partial users cannot be recruited.
type SampleSizeResult struct {
	PerGroup int      `json:"n_per_group"`
	Total    int      `json:"n_total"`
	Warnings []string `json:"warnings,omitempty"`
}

// RuntimeEstimate is calendar days to reach the required total sample at
// the given daily traffic. Zero days is the explicit "no traffic" sentinel.
type RuntimeEstimate struct {
	Days      int      `json:"days"`
	DailyRate float64  `json:"daily_rate"`
	Notes     []string `json:"notes,omitempty"`
}

// ProportionObservations holds observed binary outcomes for both groups
type ProportionObservations struct {
	ControlN           int `json:"control_n"`
	ControlSuccesses   int `json:"control_successes"`
	TreatmentN         int `json:"treatment_n"`
	TreatmentSuccesses int `json:"treatment_successes"`
}

// Validate checks counts before any arithmetic
func (o ProportionObservations) Validate() error {
	if o.ControlN <= 0 {
		return errors.InvalidField("control_n", "must be positive")
	}
	if o.TreatmentN <= 0 {
		return errors.InvalidField("treatment_n", "must be positive")
	}
	if o.ControlSuccesses < 0 {
		return errors.InvalidField("control_successes", "cannot be negative")
	}
	if o.TreatmentSuccesses < 0 {
		return errors.InvalidField("treatment_successes", "cannot be negative")
	}
	if o.ControlSuccesses > o.ControlN {
		return errors.InvalidField("control_successes", "cannot exceed control sample size")
	}
	if o.TreatmentSuccesses > o.TreatmentN {
		return errors.InvalidField("treatment_successes", "cannot exceed treatment sample size")
	}
	return nil
}

// ContinuousObservations holds observed means and standard deviations for
// both groups. Each n must be >= 2 for the pooled variance to be defined.
type ContinuousObservations struct {
	ControlN      int     `json:"control_n"`
	ControlMean   float64 `json:"control_mean"`
	ControlStd    float64 `json:"control_std"`
	TreatmentN    int     `json:"treatment_n"`
	TreatmentMean float64 `json:"treatment_mean"`
	TreatmentStd  float64 `json:"treatment_std"`
}

// Validate checks group sizes and spreads before any arithmetic
func (o ContinuousObservations) Validate() error {
	if o.ControlN < 2 {
		return errors.InvalidField("control_n", "must be at least 2")
	}
	if o.TreatmentN < 2 {
		return errors.InvalidField("treatment_n", "must be at least 2")
	}
	if o.ControlStd <= 0 {
		return errors.InvalidField("control_std", "must be positive")
	}
	if o.TreatmentStd <= 0 {
		return errors.InvalidField("treatment_std", "must be positive")
	}
	return nil
}

// AnalysisInput is the tagged union dispatched once by the analyzer.
// Exactly one of Proportion or Continuous must be set, matching Metric.
// MDE is required for superiority tests; Margin for non-inferiority.
type AnalysisInput struct {
	Metric     MetricKind              `json:"metric_kind"`
	Test       TestKind                `json:"test_kind"`
	Alpha      float64                 `json:"alpha"`
	MDE        float64                 `json:"mde,omitempty"`
	Margin     float64                 `json:"margin,omitempty"`
	Proportion *ProportionObservations `json:"proportion,omitempty"`
	Continuous *ContinuousObservations `json:"continuous,omitempty"`
}

// Validate checks the cross-field invariants of the union
func (in AnalysisInput) Validate() error {
	if _, err := ParseMetricKind(string(in.Metric)); err != nil {
		return err
	}
	if _, err := ParseTestKind(string(in.Test)); err != nil {
		return err
	}
	if in.Alpha <= 0 || in.Alpha >= 1 {
		return errors.InvalidField("alpha", "must be in (0, 1)")
	}
	switch in.Test {
	case TestSuperiority:
		if in.MDE <= 0 {
			return errors.InvalidField("mde", "must be positive for superiority tests")
		}
	case TestNonInferiority:
		if in.Margin <= 0 {
			return errors.InvalidField("margin", "must be positive for non-inferiority tests")
		}
	}
	switch in.Metric {
	case MetricProportion:
		if in.Proportion == nil {
			return errors.InvalidField("proportion", "observations required for proportion metrics")
		}
		return in.Proportion.Validate()
	case MetricContinuous:
		if in.Continuous == nil {
			return errors.InvalidField("continuous", "observations required for continuous metrics")
		}
		return in.Continuous.Validate()
	}
	return nil
}

// Decision is the statistical verdict
type Decision string

const (
	DecisionSignificant    Decision = "significant"
	DecisionNotSignificant Decision = "not_significant"
)

// PracticalVerdict is the practical-significance verdict against the
// pre-specified MDE or non-inferiority margin
type PracticalVerdict string

const (
	VerdictMeetsThreshold PracticalVerdict = "meets_threshold"
	VerdictDoesNotMeet    PracticalVerdict = "does_not_meet"
)

// Recommendation is the combined call for the experiment owner.
// RunLonger is reserved for callers that stopped short of the
// pre-registered sample size; the analyzer's own rule table never emits
// it because significance vs non-significance is exhaustive.
type Recommendation string

const (
	RecommendImplement     Recommendation = "implement"
	RecommendConsider      Recommendation = "consider"
	RecommendDontImplement Recommendation = "dont_implement"
	RecommendRunLonger     Recommendation = "run_longer"
)

// EffectDirection flags the sign of the observed effect
type EffectDirection string

const (
	DirectionPositive EffectDirection = "positive"
	DirectionNegative EffectDirection = "negative"
	DirectionNone     EffectDirection = "none"
)

// AnalysisResult carries everything the post-hoc analyzer computed for
// one completed experiment.
type AnalysisResult struct {
	Metric     MetricKind      `json:"metric_kind"`
	Test       TestKind        `json:"test_kind"`
	EffectSize float64         `json:"effect_size"`
	Direction  EffectDirection `json:"effect_direction"`

	Statistic float64 `json:"statistic"`
	DF        int     `json:"df,omitempty"` // t-distribution only
	PValue    float64 `json:"p_value"`
	CILower   float64 `json:"ci_lower"`
	CIUpper   float64 `json:"ci_upper"`
	CILevel   float64 `json:"ci_level"`

	Decision           Decision         `json:"decision"`
	Practical          PracticalVerdict `json:"practical_verdict"`
	CIMeetsThreshold   bool             `json:"ci_meets_threshold"`
	Recommendation     Recommendation   `json:"recommendation"`
	RecommendationNote string           `json:"recommendation_note"`

	Warnings []string `json:"warnings,omitempty"`
}
