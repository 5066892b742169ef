package experiment

import (
	"fmt"
	"strings"

	"expdesign/domain/core"
	"expdesign/internal/errors"
)

// TrafficPeriod is the unit a traffic volume was entered in
type TrafficPeriod string

const (
	PeriodDaily   TrafficPeriod = "daily"
	PeriodWeekly  TrafficPeriod = "weekly"
	PeriodMonthly TrafficPeriod = "monthly"
)

// ParseTrafficPeriod validates a traffic period string
func ParseTrafficPeriod(s string) (TrafficPeriod, error) {
	switch TrafficPeriod(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return TrafficPeriod(s), nil
	}
	return "", errors.InvalidField("traffic_period", "must be \"daily\", \"weekly\" or \"monthly\"")
}

// Traffic is a volume of users entering the experiment per period
type Traffic struct {
	Period TrafficPeriod `json:"period"`
	Volume float64       `json:"volume"`
}

// DailyRate converts the volume to users per day. Weekly volumes divide by
// 7, monthly by 30, matching how runtime estimates are quoted to owners.
func (t Traffic) DailyRate() float64 {
	switch t.Period {
	case PeriodWeekly:
		return t.Volume / 7
	case PeriodMonthly:
		return t.Volume / 30
	default:
		return t.Volume
	}
}

// Validate checks the traffic entry
func (t Traffic) Validate() error {
	if _, err := ParseTrafficPeriod(string(t.Period)); err != nil {
		return err
	}
	if t.Volume < 0 {
		return errors.InvalidField("traffic_volume", "cannot be negative")
	}
	return nil
}

// CampaignMeta carries the rollout metadata attached to a design
type CampaignMeta struct {
	Campaign         string `json:"campaign,omitempty"`
	TrafficType      string `json:"traffic_type,omitempty"`
	ControlVariant   string `json:"control_variant,omitempty"`
	TreatmentVariant string `json:"treatment_variant,omitempty"`
}

// DesignDoc is a fully specified experiment design: the narrative fields
// an owner fills in, the statistical frame, and the computed sizing.
// Constructed fresh per submission and never mutated afterwards.
type DesignDoc struct {
	ID                 core.DesignID `json:"id"`
	Name               string        `json:"name"`
	FeatureDescription string        `json:"feature_description,omitempty"`
	Hypothesis         string        `json:"hypothesis,omitempty"`
	Owner              string        `json:"owner,omitempty"`
	Stakeholders       string        `json:"stakeholders,omitempty"`

	Spec             TestSpec `json:"spec"`
	PrimaryMetric    string   `json:"primary_metric"`
	SecondaryMetrics []string `json:"secondary_metrics,omitempty"`
	BaselineValue    float64  `json:"baseline_value"`
	ExpectedLift     float64  `json:"expected_lift,omitempty"`
	Margin           float64  `json:"margin,omitempty"`
	StdDev           float64  `json:"std_dev,omitempty"`
	EffectSize       float64  `json:"effect_size,omitempty"` // Cohen's d, continuous designs only

	Traffic  Traffic      `json:"traffic"`
	Campaign CampaignMeta `json:"campaign_meta"`

	SampleSize SampleSizeResult `json:"sample_size"`
	Runtime    RuntimeEstimate  `json:"runtime"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// ReportField is one row of the flat key->value mapping consumed by
// report sinks (workbook, markdown). Order is presentation order.
type ReportField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReportPayload flattens the design into the mapping every report sink
// consumes. Formatting decisions live here so all sinks agree.
func (d *DesignDoc) ReportPayload() []ReportField {
	fields := []ReportField{
		{Label: "Experiment", Value: d.Name},
		{Label: "Experiment Owner", Value: orNA(d.Owner)},
		{Label: "Stakeholders", Value: orNA(d.Stakeholders)},
		{Label: "Feature Being Tested", Value: orNA(d.FeatureDescription)},
		{Label: "Hypothesis", Value: orNA(d.Hypothesis)},
		{Label: "Test Type", Value: testLabel(d.Spec.Test)},
		{Label: "Primary Metric", Value: fmt.Sprintf("%s (baseline %s)", d.PrimaryMetric, formatMetricValue(d.Spec.Metric, d.BaselineValue))},
	}

	switch d.Spec.Test {
	case TestSuperiority:
		fields = append(fields, ReportField{Label: "Expected Lift", Value: formatMetricValue(d.Spec.Metric, d.ExpectedLift)})
	case TestNonInferiority:
		fields = append(fields, ReportField{Label: "Non-Inferiority Margin", Value: formatMetricValue(d.Spec.Metric, d.Margin)})
	}

	if d.Spec.Metric == MetricContinuous {
		fields = append(fields,
			ReportField{Label: "Standard Deviation", Value: fmt.Sprintf("%.4g", d.StdDev)},
			ReportField{Label: "Effect Size (Cohen's d)", Value: fmt.Sprintf("%.3f", d.EffectSize)},
		)
	}

	fields = append(fields,
		ReportField{Label: "Secondary Metrics", Value: orNA(strings.Join(d.SecondaryMetrics, ", "))},
		ReportField{Label: "Significance Level (alpha)", Value: fmt.Sprintf("%.2f", d.Spec.Alpha)},
		ReportField{Label: "Statistical Power", Value: fmt.Sprintf("%.2f", d.Spec.Power)},
		ReportField{Label: "Required Sample Size Per Variation", Value: fmt.Sprintf("%d users", d.SampleSize.PerGroup)},
		ReportField{Label: "Total Sample Size Required", Value: fmt.Sprintf("%d users", d.SampleSize.Total)},
	)

	if d.Runtime.DailyRate > 0 {
		fields = append(fields, ReportField{
			Label: "Estimated Runtime",
			Value: fmt.Sprintf("%d days at %.0f users/day", d.Runtime.Days, d.Runtime.DailyRate),
		})
	} else {
		fields = append(fields, ReportField{Label: "Estimated Runtime", Value: "N/A (no traffic)"})
	}

	fields = append(fields,
		ReportField{Label: "Campaign", Value: orNA(d.Campaign.Campaign)},
		ReportField{Label: "Traffic Type", Value: orNA(d.Campaign.TrafficType)},
		ReportField{Label: "Control", Value: orNA(d.Campaign.ControlVariant)},
		ReportField{Label: "Treatment", Value: orNA(d.Campaign.TreatmentVariant)},
	)

	return fields
}

// AllocationRow is one line of the 50/50 traffic allocation table
type AllocationRow struct {
	Group       string  `json:"group"`
	DailyUsers  float64 `json:"daily_users"`
	UsersNeeded int     `json:"users_needed"`
	Days        int     `json:"days"`
}

// AllocationTable builds the control/treatment/total allocation breakdown
// assuming an even split of daily traffic.
func (d *DesignDoc) AllocationTable() []AllocationRow {
	rate := d.Runtime.DailyRate
	return []AllocationRow{
		{Group: "Control", DailyUsers: rate / 2, UsersNeeded: d.SampleSize.PerGroup, Days: d.Runtime.Days},
		{Group: "Treatment", DailyUsers: rate / 2, UsersNeeded: d.SampleSize.PerGroup, Days: d.Runtime.Days},
		{Group: "Total", DailyUsers: rate, UsersNeeded: d.SampleSize.Total, Days: d.Runtime.Days},
	}
}

func testLabel(t TestKind) string {
	if t == TestNonInferiority {
		return "Non-Inferiority Test"
	}
	return "Superiority Test"
}

func formatMetricValue(m MetricKind, v float64) string {
	if m == MetricProportion {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.4g", v)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
