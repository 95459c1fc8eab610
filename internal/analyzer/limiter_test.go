package analyzer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streameme/backend/internal/models"
)

// gateEngine blocks inside Analyze until released, counting how many
// invocations run at once.
type gateEngine struct {
	release chan struct{}
	active  atomic.Int32
	peak    atomic.Int32
}

func (g *gateEngine) Analyze(ctx context.Context, _ Request) (models.Outcome, error) {
	n := g.active.Add(1)
	defer g.active.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-g.release:
		return models.Outcome{Suggestions: []models.Suggestion{}}, nil
	case <-ctx.Done():
		return models.Outcome{}, ctx.Err()
	}
}

func TestLimited_CapsConcurrency(t *testing.T) {
	gate := &gateEngine{release: make(chan struct{})}
	limited := Limit(gate, 1)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limited.Analyze(context.Background(), Request{})
		}()
	}

	// Give the goroutines time to pile up on the single slot.
	time.Sleep(100 * time.Millisecond)
	close(gate.release)
	wg.Wait()

	if peak := gate.peak.Load(); peak != 1 {
		t.Errorf("expected at most 1 concurrent invocation, saw %d", peak)
	}
}

func TestLimited_CancelWhileQueued(t *testing.T) {
	gate := &gateEngine{release: make(chan struct{})}
	limited := Limit(gate, 1)

	// Occupy the only slot.
	started := make(chan struct{})
	go func() {
		close(started)
		limited.Analyze(context.Background(), Request{})
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := limited.Analyze(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled while queued, got %v", err)
	}

	close(gate.release)
}

func TestLimit_MinimumCapacity(t *testing.T) {
	gate := &gateEngine{release: make(chan struct{})}
	close(gate.release)

	limited := Limit(gate, 0)
	if _, err := limited.Analyze(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
