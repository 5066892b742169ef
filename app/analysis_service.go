package app

import (
	"context"

	"expdesign/domain/experiment"
	"expdesign/domain/stats"
	"expdesign/internal/samples"
)

// AnalysisService fronts the post-hoc analyzer for the UI and API layers
type AnalysisService struct {
	analyzer *stats.PostHocAnalyzer
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(analyzer *stats.PostHocAnalyzer) *AnalysisService {
	return &AnalysisService{analyzer: analyzer}
}

// Analyze evaluates one completed experiment
func (s *AnalysisService) Analyze(ctx context.Context, in experiment.AnalysisInput) (*experiment.AnalysisResult, error) {
	return s.analyzer.Analyze(in)
}

// AnalyzeRawSamples summarizes per-user continuous observations for both
// groups and evaluates them, so callers can paste raw values instead of
// pre-computed means and deviations.
func (s *AnalysisService) AnalyzeRawSamples(ctx context.Context, test experiment.TestKind, alpha, mde, margin float64, control, treatment []float64) (*experiment.AnalysisResult, error) {
	obs, err := samples.Observations(control, treatment)
	if err != nil {
		return nil, err
	}

	return s.analyzer.Analyze(experiment.AnalysisInput{
		Metric:     experiment.MetricContinuous,
		Test:       test,
		Alpha:      alpha,
		MDE:        mde,
		Margin:     margin,
		Continuous: obs,
	})
}
