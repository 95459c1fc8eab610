// Package testutil provides hand-written mocks for handler tests.
package testutil

import (
	"context"
	"sync"

	"github.com/streameme/backend/internal/analyzer"
	"github.com/streameme/backend/internal/models"
)

// MockEngine implements analyzer.Engine for testing. It records every
// request and returns a configured outcome or error.
type MockEngine struct {
	mu       sync.Mutex
	Requests []analyzer.Request

	Outcome models.Outcome
	Err     error
}

// Analyze records the request and returns the configured result
func (m *MockEngine) Analyze(_ context.Context, req analyzer.Request) (models.Outcome, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return models.Outcome{}, m.Err
	}
	return m.Outcome, nil
}

// CallCount returns how many times Analyze was invoked
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
