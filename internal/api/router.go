package api

import (
	"github.com/gin-gonic/gin"

	"github.com/calen/phototagger/internal/api/handler"
	"github.com/calen/phototagger/internal/api/middleware"
	"github.com/calen/phototagger/internal/config"
	"github.com/calen/phototagger/internal/relay"
	"github.com/calen/phototagger/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	sessions *service.SessionService,
	forwarder *relay.Forwarder,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))
	r.Use(middleware.BodyLimit(cfg.Upload.MaxBodyBytes()))

	// Create handlers
	healthHandler := handler.NewHealthHandler("phototagger")
	relayHandler := handler.NewRelayHandler(forwarder)
	assetHandler := handler.NewAssetHandler(sessions)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Raw chat-completion passthrough to the model provider
	r.POST("/api/generate-caption", relayHandler.Generate)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Upload sessions
		v1.POST("/assets", assetHandler.Upload)
		v1.GET("/assets/:id", assetHandler.Get)
		v1.DELETE("/assets/:id", assetHandler.Delete)

		// Captioning
		v1.POST("/assets/:id/caption", assetHandler.GenerateCaption)
		v1.PUT("/assets/:id/caption", assetHandler.SetCaption)

		// Keyword editing
		v1.POST("/assets/:id/keywords", assetHandler.AddKeyword)
		v1.DELETE("/assets/:id/keywords/:index", assetHandler.RemoveKeyword)

		// Export
		v1.GET("/assets/:id/export", assetHandler.Export)
	}

	return r
}
