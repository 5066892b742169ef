package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"expdesign/adapters/memstore"
	"expdesign/app"
	"expdesign/domain/stats"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(
		app.NewDesignService(stats.NewSampleSizeCalculator(), memstore.NewArchive()),
		app.NewAnalysisService(stats.NewPostHocAnalyzer()),
	)
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSampleSizeEndpoint(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/sample-size", map[string]interface{}{
		"metric":         "proportion",
		"test":           "superiority",
		"alpha":          0.05,
		"power":          0.80,
		"baseline_value": 0.75,
		"expected_lift":  0.012,
		"traffic_period": "daily",
		"traffic_volume": 12000,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		PerGroup int `json:"n_per_group"`
		Total    int `json:"n_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PerGroup != 20108 || resp.Total != 40216 {
		t.Errorf("sizes = %d/%d, want 20108/40216", resp.PerGroup, resp.Total)
	}
}

func TestSampleSizeEndpoint_InvalidInput(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/sample-size", map[string]interface{}{
		"metric":         "proportion",
		"test":           "superiority",
		"alpha":          0.05,
		"power":          0.80,
		"baseline_value": 0.75,
		"expected_lift":  0, // equal proportions
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", resp.Code)
	}
}

func TestSampleSizeEndpoint_UnknownMetric(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/sample-size", map[string]interface{}{
		"metric": "ratio",
		"test":   "superiority",
		"alpha":  0.05,
		"power":  0.80,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSweepEndpoint(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/sample-size/sweep", map[string]interface{}{
		"metric":         "proportion",
		"test":           "superiority",
		"alpha":          0.05,
		"power":          0.80,
		"baseline_value": 0.75,
		"lifts":          []float64{0.012, 0.024},
		"powers":         []float64{0.80},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Cells []app.SweepCell `json:"cells"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(resp.Cells))
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/analyze", map[string]interface{}{
		"metric": "proportion",
		"test":   "superiority",
		"alpha":  0.05,
		"mde":    0.012,
		"proportion": map[string]interface{}{
			"control_n":           20000,
			"control_successes":   15000,
			"treatment_n":         20000,
			"treatment_successes": 15600,
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Decision       string `json:"decision"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Decision != "significant" {
		t.Errorf("decision = %q, want significant", resp.Decision)
	}
	if resp.Recommendation != "implement" {
		t.Errorf("recommendation = %q, want implement", resp.Recommendation)
	}
}

func TestAnalyzeRawEndpoint(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/analyze/raw", map[string]interface{}{
		"test":      "superiority",
		"alpha":     0.05,
		"mde":       1.0,
		"control":   []float64{10, 12, 11, 13, 12, 10, 11, 12, 13, 11},
		"treatment": []float64{14, 16, 15, 17, 16, 14, 15, 16, 17, 15},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Metric   string `json:"metric_kind"`
		Decision string `json:"decision"`
		DF       int    `json:"df"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Metric != "continuous" || resp.Decision != "significant" || resp.DF != 18 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDesignArchiveEndpoints(t *testing.T) {
	s := newTestServer()

	// Building a design archives it.
	rec := postJSON(t, s, "/api/v1/sample-size", map[string]interface{}{
		"metric":         "proportion",
		"test":           "superiority",
		"alpha":          0.05,
		"power":          0.80,
		"baseline_value": 0.75,
		"expected_lift":  0.012,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("sample-size status = %d", rec.Code)
	}

	listRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/v1/designs", nil))
	if listRec.Code != http.StatusOK {
		t.Fatalf("designs status = %d", listRec.Code)
	}

	var list struct {
		Count   int `json:"count"`
		Designs []struct {
			ID string `json:"id"`
		} `json:"designs"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("count = %d, want 1", list.Count)
	}

	getRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/api/v1/designs/"+list.Designs[0].ID, nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("design status = %d", getRec.Code)
	}
}

func TestGetDesign_Unknown(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/designs/00000000-0000-0000-0000-000000000000", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeEndpoint_MissingObservations(t *testing.T) {
	s := newTestServer()
	rec := postJSON(t, s, "/api/v1/analyze", map[string]interface{}{
		"metric": "proportion",
		"test":   "superiority",
		"alpha":  0.05,
		"mde":    0.012,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
	}
}
