package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/events"
	"portfolio/internal/handlers"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"
	"portfolio/internal/middleware"
	"portfolio/internal/services"
	"portfolio/internal/validator"
)

// @title           Portfolio API
// @version         1.0
// @description     Multi-tenant API for tracking financial assets and their AI-generated value forecasts.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	dispatcher := events.Multi{events.NewLogDispatcher(), events.NewAuditDispatcher(db)}
	assetService := services.NewAssetService(db, dispatcher)

	// Initialize handlers
	assetHandler := handlers.NewAssetHandler(assetService)
	forecastHandler := handlers.NewForecastHandler(assetService)

	collector := metrics.NewCollector()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(collector.Middleware())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operational endpoints
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	// API v1 group, all routes authenticated
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	assets := v1.Group("/assets")
	assets.POST("", middleware.RequirePermission(middleware.PermAssetsCreate), assetHandler.CreateAsset)
	assets.POST("/search", middleware.RequirePermission(middleware.PermAssetsView), assetHandler.SearchAssets)
	assets.GET("/:id", middleware.RequirePermission(middleware.PermAssetsView), assetHandler.GetAsset)
	assets.PUT("/:id", middleware.RequirePermission(middleware.PermAssetsUpdate), assetHandler.UpdateAsset)
	assets.DELETE("/:id", middleware.RequirePermission(middleware.PermAssetsDelete), assetHandler.DeleteAsset)

	assets.POST("/:id/forecasts", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.AddForecast)
	assets.GET("/:id/forecasts", middleware.RequirePermission(middleware.PermAssetsView), forecastHandler.GetAssetForecasts)
	assets.PUT("/:id/forecasts/:forecastId", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.UpdateForecast)
	assets.DELETE("/:id/forecasts/:forecastId", middleware.RequirePermission(middleware.PermAssetsUpdate), forecastHandler.RemoveForecast)

	log.Infof("Starting portfolio API server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
