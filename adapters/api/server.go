package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expdesign/app"
	"expdesign/internal/errors"
)

// Server exposes the calculators as a JSON API for scripted callers.
// It shares the app services with the HTML UI but carries no session
// state of its own.
type Server struct {
	design   *app.DesignService
	analysis *app.AnalysisService
	router   *gin.Engine
}

// NewServer creates a JSON API server
func NewServer(design *app.DesignService, analysis *app.AnalysisService) *Server {
	s := &Server{
		design:   design,
		analysis: analysis,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the http handler for mounting or serving
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the API server on the given address
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/sample-size", s.handleSampleSize)
		v1.POST("/sample-size/sweep", s.handleSweep)
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/analyze/raw", s.handleAnalyzeRaw)
		v1.GET("/designs", s.handleListDesigns)
		v1.GET("/designs/:id", s.handleGetDesign)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps application error codes to HTTP statuses
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeDegenerateResult:
		return http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
