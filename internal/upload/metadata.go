// metadata.go - Validation of the JSON control block accompanying an upload
package upload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streameme/backend/internal/models"
)

var (
	// ErrInvalidMetadata is returned when the metadata part is not valid
	// JSON, or its mode is missing, not an integer, or out of range.
	ErrInvalidMetadata = errors.New("invalid upload metadata")

	// ErrUnsupportedMode is returned for modes that validate but are not
	// implemented by the engine. It is raised here, before any invocation,
	// so an unsupported request never reaches the engine.
	ErrUnsupportedMode = errors.New("analysis mode not implemented")
)

// ParseMetadata parses raw bytes as {"mode": <integer>} and validates the
// resolved mode.
func ParseMetadata(raw []byte) (models.UploadMetadata, error) {
	var doc struct {
		Mode json.RawMessage `json:"mode"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.UploadMetadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if len(doc.Mode) == 0 {
		return models.UploadMetadata{}, fmt.Errorf("%w: missing mode", ErrInvalidMetadata)
	}

	// json.Number would also accept a quoted numeric string, so reject
	// anything that is not a bare number token before parsing.
	var n json.Number
	if doc.Mode[0] == '"' || json.Unmarshal(doc.Mode, &n) != nil {
		return models.UploadMetadata{}, fmt.Errorf("%w: mode must be an integer", ErrInvalidMetadata)
	}
	v, err := n.Int64()
	if err != nil {
		return models.UploadMetadata{}, fmt.Errorf("%w: mode must be an integer", ErrInvalidMetadata)
	}

	mode, err := models.ParseMode(v)
	if err != nil {
		return models.UploadMetadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if mode == models.ModeBinary {
		return models.UploadMetadata{}, fmt.Errorf("%w: binary analysis", ErrUnsupportedMode)
	}

	return models.UploadMetadata{Mode: mode}, nil
}
