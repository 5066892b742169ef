package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"expdesign/adapters/api"
	"expdesign/adapters/memstore"
	"expdesign/app"
	"expdesign/domain/stats"
	"expdesign/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)

	server := api.NewServer(
		app.NewDesignService(stats.NewSampleSizeCalculator(), memstore.NewArchive()),
		app.NewAnalysisService(stats.NewPostHocAnalyzer()),
	)

	addr := ":" + appConfig.Server.APIPort
	log.Printf("Starting experiment design API on %s", addr)
	if err := server.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
