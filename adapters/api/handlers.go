package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"expdesign/app"
	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// sampleSizeRequest is the JSON body for POST /api/v1/sample-size
type sampleSizeRequest struct {
	Metric        string  `json:"metric"`
	Test          string  `json:"test"`
	Alpha         float64 `json:"alpha"`
	Power         float64 `json:"power"`
	BaselineValue float64 `json:"baseline_value"`
	ExpectedLift  float64 `json:"expected_lift"`
	Margin        float64 `json:"margin"`
	StdDev        float64 `json:"std_dev"`
	TrafficPeriod string  `json:"traffic_period"`
	TrafficVolume float64 `json:"traffic_volume"`
}

func (r sampleSizeRequest) toDesignRequest() (app.DesignRequest, error) {
	metric, err := experiment.ParseMetricKind(r.Metric)
	if err != nil {
		return app.DesignRequest{}, err
	}
	test, err := experiment.ParseTestKind(r.Test)
	if err != nil {
		return app.DesignRequest{}, err
	}

	period := experiment.TrafficPeriod(r.TrafficPeriod)
	if r.TrafficPeriod == "" {
		period = experiment.PeriodDaily
	}

	return app.DesignRequest{
		Name: "api-request",
		Spec: experiment.TestSpec{
			Metric: metric,
			Test:   test,
			Alpha:  r.Alpha,
			Power:  r.Power,
		},
		BaselineValue: r.BaselineValue,
		ExpectedLift:  r.ExpectedLift,
		Margin:        r.Margin,
		StdDev:        r.StdDev,
		Traffic:       experiment.Traffic{Period: period, Volume: r.TrafficVolume},
	}, nil
}

func (s *Server) handleSampleSize(c *gin.Context) {
	var req sampleSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("malformed JSON body"))
		return
	}

	designReq, err := req.toDesignRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := s.design.BuildDesign(c.Request.Context(), designReq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"n_per_group": doc.SampleSize.PerGroup,
		"n_total":     doc.SampleSize.Total,
		"runtime":     doc.Runtime,
		"warnings":    doc.SampleSize.Warnings,
	})
}

// sweepRequest is the JSON body for POST /api/v1/sample-size/sweep
type sweepRequest struct {
	sampleSizeRequest
	Lifts  []float64 `json:"lifts"`
	Powers []float64 `json:"powers"`
}

func (s *Server) handleSweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("malformed JSON body"))
		return
	}

	designReq, err := req.toDesignRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	cells, err := s.design.SensitivitySweep(c.Request.Context(), designReq, req.Lifts, req.Powers)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cells": cells})
}

func (s *Server) handleListDesigns(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	designs, err := s.design.RecentDesigns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"designs": designs,
		"count":   len(designs),
	})
}

func (s *Server) handleGetDesign(c *gin.Context) {
	id, err := core.ParseDesignID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidField("id", "must be a design ID"))
		return
	}

	doc, err := s.design.Design(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// analyzeRequest is the JSON body for POST /api/v1/analyze
type analyzeRequest struct {
	Metric string  `json:"metric"`
	Test   string  `json:"test"`
	Alpha  float64 `json:"alpha"`
	MDE    float64 `json:"mde"`
	Margin float64 `json:"margin"`

	Proportion *experiment.ProportionObservations `json:"proportion,omitempty"`
	Continuous *experiment.ContinuousObservations `json:"continuous,omitempty"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("malformed JSON body"))
		return
	}

	metric, err := experiment.ParseMetricKind(req.Metric)
	if err != nil {
		respondError(c, err)
		return
	}
	test, err := experiment.ParseTestKind(req.Test)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.analysis.Analyze(c.Request.Context(), experiment.AnalysisInput{
		Metric:     metric,
		Test:       test,
		Alpha:      req.Alpha,
		MDE:        req.MDE,
		Margin:     req.Margin,
		Proportion: req.Proportion,
		Continuous: req.Continuous,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// analyzeRawRequest is the JSON body for POST /api/v1/analyze/raw
type analyzeRawRequest struct {
	Test      string    `json:"test"`
	Alpha     float64   `json:"alpha"`
	MDE       float64   `json:"mde"`
	Margin    float64   `json:"margin"`
	Control   []float64 `json:"control"`
	Treatment []float64 `json:"treatment"`
}

func (s *Server) handleAnalyzeRaw(c *gin.Context) {
	var req analyzeRawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("malformed JSON body"))
		return
	}

	test, err := experiment.ParseTestKind(req.Test)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.analysis.AnalyzeRawSamples(c.Request.Context(),
		test, req.Alpha, req.MDE, req.Margin, req.Control, req.Treatment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
