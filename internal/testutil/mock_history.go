package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/streameme/backend/internal/models"
	"github.com/streameme/backend/internal/storage"
)

// MockHistory implements storage.History for testing. Set RecordErr to
// simulate a storage failure on writes.
type MockHistory struct {
	mu      sync.Mutex
	Records []*models.AnalysisRecord

	RecordErr error
	RecentErr error
}

// Record appends the record unless RecordErr is set
func (m *MockHistory) Record(_ context.Context, rec *models.AnalysisRecord) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return nil
}

// Recent returns up to limit stored records, newest first
func (m *MockHistory) Recent(_ context.Context, limit int) ([]*models.AnalysisRecord, error) {
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.AnalysisRecord, len(m.Records))
	copy(out, m.Records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].AnalyzeTime.After(out[j].AnalyzeTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns a stored record by ID
func (m *MockHistory) Get(_ context.Context, id string) (*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.Records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Close is a no-op
func (m *MockHistory) Close() error { return nil }

// Stored returns a snapshot of recorded entries
func (m *MockHistory) Stored() []*models.AnalysisRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AnalysisRecord, len(m.Records))
	copy(out, m.Records)
	return out
}
