package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expdesign/app"
	"expdesign/internal/config"
	"expdesign/ports"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App is the HTML front end: the designer form, the analysis form, and
// report downloads. All statistics run through the app services.
type App struct {
	router    *chi.Mux
	templates *template.Template

	design   *app.DesignService
	analysis *app.AnalysisService
	reports  *app.ReportService
	store    ports.FormStore
	defaults config.DefaultsConfig
}

// NewApp creates the UI application
func NewApp(design *app.DesignService, analysis *app.AnalysisService, reports *app.ReportService, store ports.FormStore, defaults config.DefaultsConfig) (*App, error) {
	funcMap := template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"num":     func(v float64) string { return fmt.Sprintf("%.4g", v) },
		"selected": func(current, option string) template.HTMLAttr {
			if current == option {
				return template.HTMLAttr(`selected`)
			}
			return ""
		},
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		templates: templates,
		design:    design,
		analysis:  analysis,
		reports:   reports,
		store:     store,
		defaults:  defaults,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleDesigner)
	a.router.Post("/design", a.handleBuildDesign)
	a.router.Get("/designs/{id}", a.handleViewDesign)
	a.router.Post("/design/report/{format}", a.handleDownloadReport)

	a.router.Get("/calculator", a.handleCalculatorForm)
	a.router.Post("/calculator", a.handleCalculator)

	a.router.Get("/analysis", a.handleAnalysisForm)
	a.router.Post("/analysis", a.handleAnalyze)

	a.router.Post("/session/clear", a.handleClearSession)
}

// Handler returns the http handler for serving or tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(port string) error {
	addr := ":" + port
	log.Printf("Starting experiment designer UI on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// StartSessionCleanup prunes idle sessions until ctx is cancelled
func (a *App) StartSessionCleanup(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.store.CleanupExpired(ctx, ttl); err != nil {
					log.Printf("Session cleanup failed: %v", err)
				}
			}
		}
	}()
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
