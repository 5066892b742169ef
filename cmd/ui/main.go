package main

import (
	"log"

	"expdesign/adapters/memstore"
	"expdesign/adapters/report"
	"expdesign/app"
	"expdesign/domain/stats"
	"expdesign/internal/config"
	"expdesign/ports"
	"expdesign/ui"
)

// Minimal UI entrypoint: in-memory sessions, markdown and HTML reports,
// no database. The root main.go is the full bootstrap.
func main() {
	uiApp, err := ui.NewApp(
		app.NewDesignService(stats.NewSampleSizeCalculator(), memstore.NewArchive()),
		app.NewAnalysisService(stats.NewPostHocAnalyzer()),
		app.NewReportService(map[string]ports.ReportWriter{
			"md":   report.NewMarkdownWriter(),
			"html": report.NewHTMLWriter(),
		}),
		memstore.New(),
		config.DefaultsConfig{Alpha: 0.05, Power: 0.80},
	)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Println("Starting experiment designer on http://localhost:8080")
	log.Fatal(uiApp.Start("8080"))
}
