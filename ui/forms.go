package ui

import (
	"net/url"
	"strconv"
	"strings"

	"expdesign/app"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// designFormKeys are the designer fields persisted per session for
// pre-fill. Order matters only for readability here.
var designFormKeys = []string{
	"experiment_name", "feature_description", "hypothesis", "owner", "stakeholders",
	"metric_kind", "test_kind", "alpha", "power",
	"baseline_value", "expected_lift", "margin", "std_dev",
	"primary_metric", "secondary_metrics",
	"traffic_period", "traffic_volume",
	"campaign", "traffic_type", "control_variant", "treatment_variant",
}

func formFloat(form url.Values, key string) (float64, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidField(key, "must be a number")
	}
	return v, nil
}

func formInt(form url.Values, key string) (int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidField(key, "must be a whole number")
	}
	return v, nil
}

// parseDesignForm converts a designer form submission into a request
func parseDesignForm(form url.Values) (app.DesignRequest, error) {
	var req app.DesignRequest
	var err error

	req.Name = strings.TrimSpace(form.Get("experiment_name"))
	req.FeatureDescription = strings.TrimSpace(form.Get("feature_description"))
	req.Hypothesis = strings.TrimSpace(form.Get("hypothesis"))
	req.Owner = strings.TrimSpace(form.Get("owner"))
	req.Stakeholders = strings.TrimSpace(form.Get("stakeholders"))
	req.PrimaryMetric = strings.TrimSpace(form.Get("primary_metric"))

	if raw := strings.TrimSpace(form.Get("secondary_metrics")); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				req.SecondaryMetrics = append(req.SecondaryMetrics, m)
			}
		}
	}

	if req.Spec.Metric, err = experiment.ParseMetricKind(form.Get("metric_kind")); err != nil {
		return req, err
	}
	if req.Spec.Test, err = experiment.ParseTestKind(form.Get("test_kind")); err != nil {
		return req, err
	}
	if req.Spec.Alpha, err = formFloat(form, "alpha"); err != nil {
		return req, err
	}
	if req.Spec.Power, err = formFloat(form, "power"); err != nil {
		return req, err
	}
	if req.BaselineValue, err = formFloat(form, "baseline_value"); err != nil {
		return req, err
	}
	if req.ExpectedLift, err = formFloat(form, "expected_lift"); err != nil {
		return req, err
	}
	if req.Margin, err = formFloat(form, "margin"); err != nil {
		return req, err
	}
	if req.StdDev, err = formFloat(form, "std_dev"); err != nil {
		return req, err
	}

	period := form.Get("traffic_period")
	if period == "" {
		period = string(experiment.PeriodDaily)
	}
	if req.Traffic.Period, err = experiment.ParseTrafficPeriod(period); err != nil {
		return req, err
	}
	if req.Traffic.Volume, err = formFloat(form, "traffic_volume"); err != nil {
		return req, err
	}

	req.Campaign = experiment.CampaignMeta{
		Campaign:         strings.TrimSpace(form.Get("campaign")),
		TrafficType:      strings.TrimSpace(form.Get("traffic_type")),
		ControlVariant:   strings.TrimSpace(form.Get("control_variant")),
		TreatmentVariant: strings.TrimSpace(form.Get("treatment_variant")),
	}

	return req, nil
}

// parseAnalysisForm converts an analysis form submission into input for
// the post-hoc analyzer.
func parseAnalysisForm(form url.Values) (experiment.AnalysisInput, error) {
	var in experiment.AnalysisInput
	var err error

	if in.Metric, err = experiment.ParseMetricKind(form.Get("metric_kind")); err != nil {
		return in, err
	}
	if in.Test, err = experiment.ParseTestKind(form.Get("test_kind")); err != nil {
		return in, err
	}
	if in.Alpha, err = formFloat(form, "alpha"); err != nil {
		return in, err
	}
	if in.MDE, err = formFloat(form, "mde"); err != nil {
		return in, err
	}
	if in.Margin, err = formFloat(form, "margin"); err != nil {
		return in, err
	}

	switch in.Metric {
	case experiment.MetricProportion:
		obs := &experiment.ProportionObservations{}
		if obs.ControlN, err = formInt(form, "control_n"); err != nil {
			return in, err
		}
		if obs.ControlSuccesses, err = formInt(form, "control_successes"); err != nil {
			return in, err
		}
		if obs.TreatmentN, err = formInt(form, "treatment_n"); err != nil {
			return in, err
		}
		if obs.TreatmentSuccesses, err = formInt(form, "treatment_successes"); err != nil {
			return in, err
		}
		in.Proportion = obs

	case experiment.MetricContinuous:
		obs := &experiment.ContinuousObservations{}
		if obs.ControlN, err = formInt(form, "control_n"); err != nil {
			return in, err
		}
		if obs.ControlMean, err = formFloat(form, "control_mean"); err != nil {
			return in, err
		}
		if obs.ControlStd, err = formFloat(form, "control_std"); err != nil {
			return in, err
		}
		if obs.TreatmentN, err = formInt(form, "treatment_n"); err != nil {
			return in, err
		}
		if obs.TreatmentMean, err = formFloat(form, "treatment_mean"); err != nil {
			return in, err
		}
		if obs.TreatmentStd, err = formFloat(form, "treatment_std"); err != nil {
			return in, err
		}
		in.Continuous = obs
	}

	return in, nil
}

// parseSweepForm parses the calculator submission: the base design fields
// plus comma-separated candidate lifts and powers.
func parseSweepForm(form url.Values) (app.DesignRequest, []float64, []float64, error) {
	req, err := parseDesignForm(form)
	if err != nil {
		return req, nil, nil, err
	}

	lifts, err := parseFloatList(form, "lifts")
	if err != nil {
		return req, nil, nil, err
	}
	powers, err := parseFloatList(form, "powers")
	if err != nil {
		return req, nil, nil, err
	}
	return req, lifts, powers, nil
}

func parseFloatList(form url.Values, key string) ([]float64, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return nil, errors.InvalidField(key, "needs at least one value")
	}

	var out []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, errors.InvalidField(key, "must be a comma-separated list of numbers")
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.InvalidField(key, "needs at least one value")
	}
	return out, nil
}

// sessionFields extracts the persisted designer fields from a submission
func sessionFields(form url.Values) map[string]string {
	fields := make(map[string]string, len(designFormKeys))
	for _, key := range designFormKeys {
		if v := strings.TrimSpace(form.Get(key)); v != "" {
			fields[key] = v
		}
	}
	return fields
}
