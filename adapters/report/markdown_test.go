package report

import (
	"context"
	"strings"
	"testing"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
)

func sampleDoc() *experiment.DesignDoc {
	return &experiment.DesignDoc{
		ID:            core.DesignID(core.NewID()),
		Name:          "Dynamic CTA Text",
		Owner:         "growth-team",
		PrimaryMetric: "App Rate",
		Spec: experiment.TestSpec{
			Metric: experiment.MetricProportion,
			Test:   experiment.TestSuperiority,
			Alpha:  0.05,
			Power:  0.80,
		},
		BaselineValue: 0.75,
		ExpectedLift:  0.012,
		Traffic:       experiment.Traffic{Period: experiment.PeriodDaily, Volume: 12000},
		SampleSize:    experiment.SampleSizeResult{PerGroup: 20108, Total: 40216},
		Runtime: experiment.RuntimeEstimate{
			Days:      4,
			DailyRate: 12000,
			Notes:     []string{"quick experiment; completes in 4 days"},
		},
		CreatedAt: core.Now(),
	}
}

func TestMarkdownWriter(t *testing.T) {
	out, err := NewMarkdownWriter().Write(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"# Experiment Design: Dynamic CTA Text",
		"| Experiment Owner | growth-team |",
		"| Required Sample Size Per Variation | 20108 users |",
		"| Estimated Runtime | 4 days at 12000 users/day |",
		"## Traffic Allocation",
		"| Control | 6000 | 20108 | 4 |",
		"quick experiment",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownWriter_EscapesPipes(t *testing.T) {
	doc := sampleDoc()
	doc.Name = "A|B test"

	out, err := NewMarkdownWriter().Write(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `A\|B test`) {
		t.Error("pipe in a field value should be escaped in the table")
	}
}

func TestHTMLWriter(t *testing.T) {
	writer := NewHTMLWriter()
	out, err := writer.Write(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := string(out)

	if !strings.Contains(html, "<table>") {
		t.Error("markdown table should render as an HTML table")
	}
	if !strings.Contains(html, "Dynamic CTA Text") {
		t.Error("page should carry the experiment name")
	}
	if writer.ContentType() != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", writer.ContentType())
	}
}
