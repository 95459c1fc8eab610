// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// UploadHandler handles video upload and analysis requests
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// ResultsHandler handles analysis history queries
type ResultsHandler interface {
	HandleRecentResults(c echo.Context) error
	HandleGetResult(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
