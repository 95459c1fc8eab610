// handlers_upload.go - Video upload and analysis handler
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/streameme/backend/internal/analyzer"
	"github.com/streameme/backend/internal/models"
	"github.com/streameme/backend/internal/storage"
	"github.com/streameme/backend/internal/upload"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	engine  analyzer.Engine
	history storage.History
	decoder *upload.Decoder
	log     zerolog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(engine analyzer.Engine, history storage.History, decoder *upload.Decoder, log zerolog.Logger) UploadHandler {
	return &UploadHandlerImpl{
		engine:  engine,
		history: history,
		decoder: decoder,
		log:     log,
	}
}

// HandleUpload accepts a multipart request carrying a metadata part and a
// video part, runs the analysis engine against the video, and returns the
// result document. An engine crash still produces a 200 response, with
// suggestions set to null.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	mr, err := c.Request().MultipartReader()
	if err != nil {
		return NewMalformedRequestError("request body is not multipart", err)
	}

	dec, err := h.decoder.Decode(mr)
	if err != nil {
		return mapDecodeError(err)
	}

	out, err := h.engine.Analyze(c.Request().Context(), analyzer.Request{
		Video:     dec.Video,
		VideoName: dec.FileName,
		Mode:      dec.Metadata.Mode,
	})
	if err != nil {
		// The client went away; there is nobody left to respond to.
		if errors.Is(err, context.Canceled) {
			return err
		}
		return NewInternalError("failed to run analysis", err)
	}

	if out.Crashed {
		h.log.Error().
			Str("file_name", dec.FileName).
			Str("analyze_mode", dec.Metadata.Mode.String()).
			Msg("analysis engine crashed")
	}

	res := models.NewUploadResponse(dec.FileName, dec.Metadata.Mode, out)
	h.recordResult(c.Request().Context(), res, out.Crashed)

	return c.JSON(http.StatusOK, res)
}

// recordResult stores the response document in the analysis history.
// History is best-effort: a storage failure must not fail the upload.
func (h *UploadHandlerImpl) recordResult(ctx context.Context, res *models.UploadResponse, crashed bool) {
	rec := &models.AnalysisRecord{
		ID:          uuid.New().String(),
		FileName:    res.FileName,
		AnalyzeTime: res.AnalyzeTime,
		AnalyzeMode: res.AnalyzeMode,
		Crashed:     crashed,
		Suggestions: res.Suggestions,
	}
	if err := h.history.Record(ctx, rec); err != nil {
		h.log.Warn().Err(err).Str("id", rec.ID).Msg("failed to record analysis result")
	}
}

// mapDecodeError translates decoder errors into API errors
func mapDecodeError(err error) *APIError {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return NewTooLargeError(err.Error())
	case errors.Is(err, upload.ErrUnsupportedMode):
		return NewUnsupportedModeError(err)
	case errors.Is(err, upload.ErrInvalidMetadata):
		return NewInvalidMetadataError(err)
	default:
		return NewMalformedRequestError("invalid upload request", err)
	}
}
