// Package analyzer drives the external inference engine and normalizes its
// output into analysis outcomes.
package analyzer

import (
	"context"

	"github.com/streameme/backend/internal/models"
)

// Request carries one video to be analyzed.
type Request struct {
	Video     []byte
	VideoName string
	Mode      models.AnalyzeMode
}

// Engine runs a single analysis to completion.
//
// A crashing engine is not an error: abnormal termination, timeouts and
// malformed output are all reported through the outcome's crash marker. The
// returned error is reserved for failures to stage the invocation itself
// (scratch storage I/O) and for context cancellation.
type Engine interface {
	Analyze(ctx context.Context, req Request) (models.Outcome, error)
}
