// Package samples summarizes raw per-user observations so continuous
// metrics can be analyzed without the caller pre-computing moments.
package samples

import (
	"github.com/montanaflynn/stats"

	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// Summary holds the descriptive statistics of one group's observations
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summarize computes descriptive statistics for a slice of observations.
// The standard deviation is the sample (n-1) estimate, matching what the
// pooled-variance t-test expects.
func Summarize(data []float64) (Summary, error) {
	if len(data) < 2 {
		return Summary{}, errors.InvalidField("observations", "need at least 2 values")
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, errors.Wrap(err, "mean computation failed")
	}
	stdDev, err := stats.StandardDeviationSample(data)
	if err != nil {
		return Summary{}, errors.Wrap(err, "std dev computation failed")
	}
	min, err := stats.Min(data)
	if err != nil {
		return Summary{}, errors.Wrap(err, "min computation failed")
	}
	max, err := stats.Max(data)
	if err != nil {
		return Summary{}, errors.Wrap(err, "max computation failed")
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, errors.Wrap(err, "median computation failed")
	}

	return Summary{
		N:      len(data),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
	}, nil
}

// Observations builds the analyzer's continuous-observations input from
// two raw samples. A zero spread in either group is rejected here, before
// the pooled variance would divide by it.
func Observations(control, treatment []float64) (*experiment.ContinuousObservations, error) {
	cs, err := Summarize(control)
	if err != nil {
		return nil, errors.Wrap(err, "control group")
	}
	ts, err := Summarize(treatment)
	if err != nil {
		return nil, errors.Wrap(err, "treatment group")
	}
	if cs.StdDev <= 0 {
		return nil, errors.InvalidField("control observations", "have zero spread")
	}
	if ts.StdDev <= 0 {
		return nil, errors.InvalidField("treatment observations", "have zero spread")
	}

	return &experiment.ContinuousObservations{
		ControlN:      cs.N,
		ControlMean:   cs.Mean,
		ControlStd:    cs.StdDev,
		TreatmentN:    ts.N,
		TreatmentMean: ts.Mean,
		TreatmentStd:  ts.StdDev,
	}, nil
}
