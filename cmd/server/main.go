package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/yearscope/internal/handlers"
	"github.com/alimgiray/yearscope/internal/middleware"
	"github.com/alimgiray/yearscope/internal/repositories"
	"github.com/alimgiray/yearscope/internal/services"
	"github.com/alimgiray/yearscope/pkg/config"
	"github.com/alimgiray/yearscope/pkg/database"
	"github.com/alimgiray/yearscope/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	githubService, err := services.NewGithubService(config.AppConfig.GitHub.Token)
	if err != nil {
		logger.Fatalf("Failed to initialize GitHub client: %v", err)
	}

	analysisRepo := repositories.NewAnalysisRepository(database.DB)
	analyzerService := services.NewAnalyzerService()
	cacheTTL := time.Duration(config.AppConfig.Cache.TTLHours) * time.Hour
	analysisService := services.NewAnalysisService(githubService, analyzerService, analysisRepo, cacheTTL)
	exportService := services.NewExportService()

	// Initialize router
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	setupRoutes(router, analysisService, exportService, githubService)

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
}

func setupRoutes(router *gin.Engine, analysisService *services.AnalysisService, exportService *services.ExportService, githubService *services.GithubService) {
	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService, exportService)
	rateLimitHandler := handlers.NewRateLimitHandler(githubService)
	healthHandler := handlers.NewHealthHandler()

	api := router.Group("/api")
	{
		api.POST("/analyze", analysisHandler.Analyze)
		api.GET("/export/:username/:year", analysisHandler.Export)
		api.GET("/rate-limit", rateLimitHandler.RateLimit)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
