// duckhistory_test.go - Tests for DuckDB-backed analysis history
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/streameme/backend/internal/models"
)

// createTestHistory creates a temporary DuckHistory for testing
func createTestHistory(t *testing.T) (*DuckHistory, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.duckdb")

	h, err := NewDuckHistory(dbPath)
	if err != nil {
		t.Fatalf("Failed to create DuckHistory: %v", err)
	}

	cleanup := func() {
		h.Close()
	}

	return h, cleanup
}

func TestDuckHistory_RecordAndGet(t *testing.T) {
	h, cleanup := createTestHistory(t)
	defer cleanup()
	ctx := context.Background()

	rec := sampleRecord("rec-1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), false)
	if err := h.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := h.Get(ctx, "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FileName != "video.mp4" {
		t.Errorf("Expected file name video.mp4, got %s", got.FileName)
	}
	if got.AnalyzeMode != "multi" {
		t.Errorf("Expected mode multi, got %s", got.AnalyzeMode)
	}
	if got.Crashed {
		t.Error("Expected non-crashed record")
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0].Suggestion != "sorrow" {
		t.Errorf("Suggestions not round-tripped: %+v", got.Suggestions)
	}
}

func TestDuckHistory_CrashedRecordNullSuggestions(t *testing.T) {
	h, cleanup := createTestHistory(t)
	defer cleanup()
	ctx := context.Background()

	rec := sampleRecord("crashed-1", time.Now().UTC(), true)
	if err := h.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := h.Get(ctx, "crashed-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Crashed {
		t.Error("Expected crashed record")
	}
	if got.Suggestions != nil {
		t.Errorf("Expected nil suggestions for crashed record, got %+v", got.Suggestions)
	}
}

func TestDuckHistory_EmptySuggestionsSurvive(t *testing.T) {
	h, cleanup := createTestHistory(t)
	defer cleanup()
	ctx := context.Background()

	rec := sampleRecord("empty-1", time.Now().UTC(), false)
	rec.Suggestions = []models.Suggestion{}
	if err := h.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := h.Get(ctx, "empty-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Suggestions == nil || len(got.Suggestions) != 0 {
		t.Errorf("Expected empty non-nil suggestions, got %#v", got.Suggestions)
	}
}

func TestDuckHistory_GetMissing(t *testing.T) {
	h, cleanup := createTestHistory(t)
	defer cleanup()

	if _, err := h.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDuckHistory_RecentNewestFirst(t *testing.T) {
	h, cleanup := createTestHistory(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := h.Record(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Hour), false)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	list, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("Wrong order: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestDuckHistory_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.duckdb")
	ctx := context.Background()

	h, err := NewDuckHistory(dbPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.Record(ctx, sampleRecord("persist-1", time.Now().UTC(), false)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	h2, err := NewDuckHistory(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h2.Close()

	got, err := h2.Get(ctx, "persist-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.FileName != "video.mp4" {
		t.Errorf("Record did not survive reopen: %+v", got)
	}
}
