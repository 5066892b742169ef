package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/domain/stats"
	"expdesign/internal/errors"
	"expdesign/ports"
)

// DesignService turns a designer-form submission into a complete design
// document: sample size first, then runtime. When the sample size
// computation fails, the runtime is withheld rather than estimated from
// garbage. Completed documents go to the archive when one is configured.
type DesignService struct {
	calc    *stats.SampleSizeCalculator
	archive ports.DesignArchive
}

// NewDesignService creates a design service. A nil archive disables
// design history.
func NewDesignService(calc *stats.SampleSizeCalculator, archive ports.DesignArchive) *DesignService {
	return &DesignService{calc: calc, archive: archive}
}

// DesignRequest is one immutable designer-form submission
type DesignRequest struct {
	Name               string
	FeatureDescription string
	Hypothesis         string
	Owner              string
	Stakeholders       string

	Spec             experiment.TestSpec
	PrimaryMetric    string
	SecondaryMetrics []string

	// BaselineValue is a rate in (0,1) for proportion metrics, a mean for
	// continuous ones. ExpectedLift applies to superiority designs,
	// Margin to non-inferiority, StdDev to continuous metrics.
	BaselineValue float64
	ExpectedLift  float64
	Margin        float64
	StdDev        float64

	Traffic  experiment.Traffic
	Campaign experiment.CampaignMeta
}

// BuildDesign validates the request, computes the required sample size
// for the metric/test pair, estimates the runtime, and assembles the
// design document.
func (s *DesignService) BuildDesign(ctx context.Context, req DesignRequest) (*experiment.DesignDoc, error) {
	if req.Name == "" {
		return nil, errors.InvalidField("experiment_name", "cannot be empty")
	}
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}
	if err := req.Traffic.Validate(); err != nil {
		return nil, err
	}

	perGroup, err := s.sampleSize(req)
	if err != nil {
		return nil, err
	}

	doc := &experiment.DesignDoc{
		ID:                 core.DesignID(core.NewID()),
		Name:               req.Name,
		FeatureDescription: req.FeatureDescription,
		Hypothesis:         req.Hypothesis,
		Owner:              req.Owner,
		Stakeholders:       req.Stakeholders,
		Spec:               req.Spec,
		PrimaryMetric:      req.PrimaryMetric,
		SecondaryMetrics:   req.SecondaryMetrics,
		BaselineValue:      req.BaselineValue,
		ExpectedLift:       req.ExpectedLift,
		Margin:             req.Margin,
		StdDev:             req.StdDev,
		Traffic:            req.Traffic,
		Campaign:           req.Campaign,
		SampleSize: experiment.SampleSizeResult{
			PerGroup: perGroup,
			Total:    perGroup * 2,
		},
		CreatedAt: core.Now(),
	}

	if req.Spec.Metric == experiment.MetricContinuous && req.StdDev > 0 {
		doc.EffectSize = abs(req.ExpectedLift) / req.StdDev
	}
	if perGroup == 0 {
		doc.SampleSize.Warnings = append(doc.SampleSize.Warnings,
			"required sample size of zero; check the design inputs")
	}

	doc.Runtime = s.runtime(doc.SampleSize.Total, req.Traffic)

	if s.archive != nil {
		// Archiving is best-effort: a storage hiccup must not discard a
		// design the user is looking at.
		if err := s.archive.Save(ctx, doc); err != nil {
			doc.SampleSize.Warnings = append(doc.SampleSize.Warnings,
				"design could not be archived: "+err.Error())
		}
	}
	return doc, nil
}

// RecentDesigns lists archived designs, newest first
func (s *DesignService) RecentDesigns(ctx context.Context, limit int) ([]*experiment.DesignDoc, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.ListRecent(ctx, limit)
}

// Design returns one archived design
func (s *DesignService) Design(ctx context.Context, id core.DesignID) (*experiment.DesignDoc, error) {
	if s.archive == nil {
		return nil, errors.NotFound("design " + id.String())
	}
	return s.archive.Get(ctx, id)
}

func (s *DesignService) sampleSize(req DesignRequest) (int, error) {
	switch {
	case req.Spec.Metric == experiment.MetricProportion && req.Spec.Test == experiment.TestSuperiority:
		return s.calc.CalculateProportions(
			req.BaselineValue, req.BaselineValue+req.ExpectedLift, req.Spec.Alpha, req.Spec.Power)

	case req.Spec.Metric == experiment.MetricProportion && req.Spec.Test == experiment.TestNonInferiority:
		return s.calc.CalculateNonInferiority(
			req.BaselineValue, req.Margin, req.Spec.Alpha, req.Spec.Power)

	case req.Spec.Metric == experiment.MetricContinuous && req.Spec.Test == experiment.TestSuperiority:
		return s.calc.CalculateContinuous(
			req.BaselineValue, req.BaselineValue+req.ExpectedLift, req.StdDev, req.Spec.Alpha, req.Spec.Power)

	default:
		// Sizing formulas exist for proportion margins only; continuous
		// non-inferiority designs are analyzed post hoc but not sized.
		return 0, errors.InvalidField("test_kind",
			"non-inferiority sizing is supported for proportion metrics only")
	}
}

func (s *DesignService) runtime(total int, traffic experiment.Traffic) experiment.RuntimeEstimate {
	rate := traffic.DailyRate()
	est := experiment.RuntimeEstimate{
		Days:      s.calc.EstimateRuntime(total, rate),
		DailyRate: rate,
	}

	switch {
	case rate <= 0:
		est.Notes = append(est.Notes, "no traffic volume provided; runtime unavailable")
	case est.Days > 30:
		est.Notes = append(est.Notes,
			fmt.Sprintf("long runtime (%d days); consider more traffic or a larger detectable effect", est.Days))
	case est.Days < 7:
		est.Notes = append(est.Notes, fmt.Sprintf("quick experiment; completes in %d days", est.Days))
	}
	return est
}

// SweepCell is one point of the sensitivity grid
type SweepCell struct {
	Lift     float64 `json:"lift"`
	Power    float64 `json:"power"`
	PerGroup int     `json:"n_per_group"`
	Days     int     `json:"days"`
	Err      string  `json:"error,omitempty"`
}

// SensitivitySweep computes per-group sample sizes across a grid of
// candidate lifts and powers, holding the rest of the request fixed.
// Cells are independent closed-form evaluations, so they run
// concurrently; a cell that fails validation carries its error instead
// of poisoning the whole grid.
func (s *DesignService) SensitivitySweep(ctx context.Context, req DesignRequest, lifts, powers []float64) ([]SweepCell, error) {
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}
	if len(lifts) == 0 || len(powers) == 0 {
		return nil, errors.InvalidInput("sweep needs at least one lift and one power")
	}

	cells := make([]SweepCell, len(lifts)*len(powers))
	g, ctx := errgroup.WithContext(ctx)

	for i, lift := range lifts {
		for j, power := range powers {
			idx, lift, power := i*len(powers)+j, lift, power
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				cellReq := req
				cellReq.Spec.Power = power
				// For non-inferiority designs the swept effect is the margin.
				if cellReq.Spec.Test == experiment.TestNonInferiority {
					cellReq.Margin = lift
				} else {
					cellReq.ExpectedLift = lift
				}

				cell := SweepCell{Lift: lift, Power: power}
				if n, err := s.sampleSize(cellReq); err != nil {
					cell.Err = err.Error()
				} else {
					cell.PerGroup = n
					cell.Days = s.calc.EstimateRuntime(n*2, req.Traffic.DailyRate())
				}
				cells[idx] = cell
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cells, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
