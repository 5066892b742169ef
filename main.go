package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"expdesign/adapters/excel"
	"expdesign/adapters/memstore"
	"expdesign/adapters/postgres"
	"expdesign/adapters/report"
	"expdesign/app"
	"expdesign/domain/stats"
	"expdesign/internal/config"
	"expdesign/ports"
	"expdesign/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	store, archive := initStorage(ctx, appConfig)

	designService := app.NewDesignService(stats.NewSampleSizeCalculator(), archive)
	analysisService := app.NewAnalysisService(stats.NewPostHocAnalyzer())
	reportService := app.NewReportService(map[string]ports.ReportWriter{
		"xlsx": excel.NewReportWriter(),
		"md":   report.NewMarkdownWriter(),
		"html": report.NewHTMLWriter(),
	})

	uiApp, err := ui.NewApp(designService, analysisService, reportService, store, appConfig.Defaults)
	if err != nil {
		log.Fatalf("Failed to create UI application: %v", err)
	}

	uiApp.StartSessionCleanup(ctx, appConfig.Session.CleanupInterval, appConfig.Session.TTL)

	if err := uiApp.Start(appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initStorage connects the Postgres session store and design archive when
// DATABASE_URL is set and falls back to the in-memory versions otherwise.
// Session state is pre-fill only and the archive is convenience history,
// so running without a database loses nothing essential.
func initStorage(ctx context.Context, appConfig *config.Config) (ports.FormStore, ports.DesignArchive) {
	if !appConfig.Database.Enabled {
		log.Println("No DATABASE_URL set, using in-memory storage")
		return memstore.New(), memstore.NewArchive()
	}

	db, err := postgres.Connect(ctx, appConfig.Database.URL)
	if err != nil {
		log.Printf("Database connection failed (%v), falling back to in-memory storage", err)
		return memstore.New(), memstore.NewArchive()
	}

	store := postgres.NewFormStore(db)
	archive := postgres.NewDesignArchive(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Printf("Schema setup failed (%v), falling back to in-memory storage", err)
		return memstore.New(), memstore.NewArchive()
	}
	if err := archive.EnsureSchema(ctx); err != nil {
		log.Printf("Schema setup failed (%v), falling back to in-memory storage", err)
		return memstore.New(), memstore.NewArchive()
	}

	log.Println("Using Postgres storage")
	return store, archive
}
