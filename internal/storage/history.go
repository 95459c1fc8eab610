package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/streameme/backend/internal/models"
)

// ErrNotFound is returned when a requested analysis record does not exist.
var ErrNotFound = errors.New("analysis record not found")

// History records completed analyses for the read-only results API. Writes
// are best-effort from the caller's perspective: a failed Record must never
// fail the upload response it trails.
type History interface {
	Record(ctx context.Context, rec *models.AnalysisRecord) error
	Recent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)
	Close() error
}

// MemoryHistory keeps analysis records in memory. It is the default store
// when no history database is configured; records do not survive restarts.
type MemoryHistory struct {
	mu      sync.RWMutex
	records map[string]*models.AnalysisRecord
}

// NewMemoryHistory creates an empty MemoryHistory.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		records: make(map[string]*models.AnalysisRecord),
	}
}

// Record stores a copy of the analysis record.
func (m *MemoryHistory) Record(_ context.Context, rec *models.AnalysisRecord) error {
	cp := *rec

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[cp.ID] = &cp
	return nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]*models.AnalysisRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.AnalysisRecord, 0, len(m.records))
	for _, rec := range m.records {
		list = append(list, rec)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].AnalyzeTime.After(list[j].AnalyzeTime)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Get retrieves a single record by ID.
func (m *MemoryHistory) Get(_ context.Context, id string) (*models.AnalysisRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryHistory) Close() error {
	return nil
}
