// handlers_results.go - Analysis history handlers
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/streameme/backend/internal/storage"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// ResultsHandlerImpl implements the ResultsHandler interface
type ResultsHandlerImpl struct {
	history storage.History
}

// NewResultsHandler creates a new results handler instance
func NewResultsHandler(history storage.History) ResultsHandler {
	return &ResultsHandlerImpl{
		history: history,
	}
}

// HandleRecentResults returns the most recent analysis results, newest
// first. Clients that send Accept: application/msgpack get a msgpack
// body instead of JSON.
func (h *ResultsHandlerImpl) HandleRecentResults(c echo.Context) error {
	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewMalformedRequestError("limit must be a positive integer", err)
		}
		limit = n
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := h.history.Recent(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to load recent results", err)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "application/msgpack") {
		data, err := msgpack.Marshal(records)
		if err != nil {
			return NewInternalError("failed to encode results", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}

	return c.JSON(http.StatusOK, records)
}

// HandleGetResult returns a single analysis result by ID
func (h *ResultsHandlerImpl) HandleGetResult(c echo.Context) error {
	id := c.Param("id")

	rec, err := h.history.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("analysis result", id)
		}
		return NewInternalError("failed to load result", err)
	}

	return c.JSON(http.StatusOK, rec)
}
