package analyzer

import (
	"context"

	"github.com/streameme/backend/internal/models"
)

// Limited wraps an Engine with a bounded number of simultaneous
// invocations. The default capacity of one matches the engine's single
// accelerator: requests queue rather than contend. The per-request contract
// of the wrapped engine is unchanged.
type Limited struct {
	engine Engine
	slots  chan struct{}
}

// Limit wraps engine with the given invocation capacity.
func Limit(engine Engine, capacity int) *Limited {
	if capacity < 1 {
		capacity = 1
	}
	return &Limited{
		engine: engine,
		slots:  make(chan struct{}, capacity),
	}
}

// Analyze waits for a free slot, then delegates. Waiting is abandoned when
// the request context ends.
func (l *Limited) Analyze(ctx context.Context, req Request) (models.Outcome, error) {
	select {
	case l.slots <- struct{}{}:
		defer func() { <-l.slots }()
	case <-ctx.Done():
		return models.Outcome{}, ctx.Err()
	}
	return l.engine.Analyze(ctx, req)
}
