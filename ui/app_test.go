package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expdesign/adapters/memstore"
	"expdesign/adapters/report"
	"expdesign/app"
	"expdesign/domain/stats"
	"expdesign/internal/config"
	"expdesign/ports"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := NewApp(
		app.NewDesignService(stats.NewSampleSizeCalculator(), memstore.NewArchive()),
		app.NewAnalysisService(stats.NewPostHocAnalyzer()),
		app.NewReportService(map[string]ports.ReportWriter{
			"md": report.NewMarkdownWriter(),
		}),
		memstore.New(),
		config.DefaultsConfig{Alpha: 0.05, Power: 0.80},
	)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return a
}

func designForm() url.Values {
	return url.Values{
		"experiment_name": {"Dynamic CTA Text"},
		"metric_kind":     {"proportion"},
		"test_kind":       {"superiority"},
		"alpha":           {"0.05"},
		"power":           {"0.80"},
		"primary_metric":  {"App Rate"},
		"baseline_value":  {"0.75"},
		"expected_lift":   {"0.012"},
		"traffic_period":  {"daily"},
		"traffic_volume":  {"12000"},
	}
}

func postForm(t *testing.T, a *App, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDesignerPageRenders(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Design an Experiment") {
		t.Error("page title missing")
	}
	if !strings.Contains(body, "0.05") {
		t.Error("default alpha should pre-fill the form")
	}

	var sessionIssued bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			sessionIssued = true
		}
	}
	if !sessionIssued {
		t.Error("first visit should issue a session cookie")
	}
}

func TestBuildDesignRendersSummary(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/design", designForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Dynamic CTA Text", "20108 users", "40216 users", "Download .md"} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}
}

func TestBuildDesignInvalidInputReRendersForm(t *testing.T) {
	a := newTestApp(t)
	form := designForm()
	form.Set("expected_lift", "0")

	rec := postForm(t, a, "/design", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "class=\"error\"") {
		t.Error("validation error should render in the form")
	}
	if !strings.Contains(body, "Dynamic CTA Text") {
		t.Error("submitted values should survive a rejected submission")
	}
}

func TestSessionPreFillsDesigner(t *testing.T) {
	a := newTestApp(t)

	// Establish a session, then submit the form under it.
	first := httptest.NewRecorder()
	a.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	var session *http.Cookie
	for _, c := range first.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie issued")
	}

	postForm(t, a, "/design", designForm(), session)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "Dynamic CTA Text") {
		t.Error("second visit should pre-fill the saved experiment name")
	}
}

func TestClearSessionResetsForm(t *testing.T) {
	a := newTestApp(t)

	first := httptest.NewRecorder()
	a.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	var session *http.Cookie
	for _, c := range first.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}

	postForm(t, a, "/design", designForm(), session)
	rec := postForm(t, a, "/session/clear", url.Values{}, session)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	after := httptest.NewRecorder()
	a.Handler().ServeHTTP(after, req)
	if strings.Contains(after.Body.String(), "Dynamic CTA Text") {
		t.Error("cleared session should not pre-fill the form")
	}
}

func TestRecentDesignsListedAndViewable(t *testing.T) {
	a := newTestApp(t)
	postForm(t, a, "/design", designForm())

	// The designer page now lists the archived design with a link.
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "Recent Designs") {
		t.Fatal("recent designs section missing")
	}

	start := strings.Index(body, `href="/designs/`)
	if start < 0 {
		t.Fatal("no design link on the page")
	}
	link := body[start+len(`href="`):]
	link = link[:strings.Index(link, `"`)]

	viewRec := httptest.NewRecorder()
	a.Handler().ServeHTTP(viewRec, httptest.NewRequest(http.MethodGet, link, nil))
	if viewRec.Code != http.StatusOK {
		t.Fatalf("view status = %d", viewRec.Code)
	}
	if !strings.Contains(viewRec.Body.String(), "20108 users") {
		t.Error("archived design summary missing sample size")
	}
}

func TestViewUnknownDesign(t *testing.T) {
	a := newTestApp(t)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/designs/00000000-0000-0000-0000-000000000000", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownloadMarkdownReport(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/design/report/md", designForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "markdown") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "experiment-design.md") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "# Experiment Design: Dynamic CTA Text") {
		t.Error("markdown body missing title")
	}
}

func TestDownloadUnknownFormat(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/design/report/pdf", designForm())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeFormRoundTrip(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/analysis", url.Values{
		"metric_kind":         {"proportion"},
		"test_kind":           {"superiority"},
		"alpha":               {"0.05"},
		"mde":                 {"0.012"},
		"control_n":           {"20000"},
		"control_successes":   {"15000"},
		"treatment_n":         {"20000"},
		"treatment_successes": {"15600"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Implement the treatment") {
		t.Error("verdict missing from analysis page")
	}
	if !strings.Contains(body, "significant") {
		t.Error("statistical decision missing")
	}
}

func TestAnalyzeInvalidInputShowsError(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/analysis", url.Values{
		"metric_kind": {"proportion"},
		"test_kind":   {"superiority"},
		"alpha":       {"0.05"},
		"mde":         {"0.012"},
		// observations missing
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (the form page re-renders with the error)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "class=\"error\"") {
		t.Error("validation error should render in the form")
	}
}

func TestCalculatorPageRenders(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/calculator", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sample Size Calculator") {
		t.Error("page title missing")
	}
}

func TestCalculatorRendersGrid(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/calculator", url.Values{
		"metric_kind":    {"proportion"},
		"test_kind":      {"superiority"},
		"alpha":          {"0.05"},
		"baseline_value": {"0.75"},
		"traffic_period": {"daily"},
		"traffic_volume": {"12000"},
		"lifts":          {"0.006, 0.012"},
		"powers":         {"0.80, 0.90"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Per-Group Sample Sizes") {
		t.Fatal("grid table missing")
	}
	// The 1.2pp lift at 80% power matches the single-design path.
	if !strings.Contains(body, "20108 (4d)") {
		t.Error("reference cell missing from the grid")
	}
	// Two powers head the grid columns.
	for _, want := range []string{"<th>0.8</th>", "<th>0.9</th>"} {
		if !strings.Contains(body, want) {
			t.Errorf("grid missing power column %q", want)
		}
	}
}

func TestCalculatorMissingLiftsShowsError(t *testing.T) {
	a := newTestApp(t)
	rec := postForm(t, a, "/calculator", url.Values{
		"metric_kind":    {"proportion"},
		"test_kind":      {"superiority"},
		"alpha":          {"0.05"},
		"baseline_value": {"0.75"},
		"powers":         {"0.80"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (the form page re-renders with the error)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "class=\"error\"") {
		t.Error("validation error should render in the form")
	}
}
