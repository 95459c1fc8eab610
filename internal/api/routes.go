// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/streameme/backend/internal/analyzer"
	"github.com/streameme/backend/internal/storage"
	"github.com/streameme/backend/internal/upload"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Engine       analyzer.Engine
	History      storage.History
	MaxFileBytes int64
	Version      string
	Logger       zerolog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Upload  UploadHandler
	Results ResultsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	decoder := &upload.Decoder{MaxFileBytes: deps.MaxFileBytes}
	return &Handlers{
		Health:  NewHealthHandler(deps.Version),
		Upload:  NewUploadHandler(deps.Engine, deps.History, decoder, deps.Logger),
		Results: NewResultsHandler(deps.History),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Upload and analyze
	e.POST("/upload", handlers.Upload.HandleUpload)

	// Analysis history
	resultsGroup := e.Group("/results")
	resultsGroup.GET("/recent", handlers.Results.HandleRecentResults)
	resultsGroup.GET("/:id", handlers.Results.HandleGetResult)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
