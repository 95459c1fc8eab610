package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streameme/backend/internal/models"
)

func sampleRecord(id string, at time.Time, crashed bool) *models.AnalysisRecord {
	rec := &models.AnalysisRecord{
		ID:          id,
		FileName:    "video.mp4",
		AnalyzeTime: at,
		AnalyzeMode: "multi",
		Crashed:     crashed,
	}
	if !crashed {
		rec.Suggestions = []models.Suggestion{{Start: 30, End: 60, Suggestion: "sorrow"}}
	}
	return rec
}

func TestMemoryHistory_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory()

	rec := sampleRecord("a", time.Now().UTC(), false)
	if err := h.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := h.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FileName != "video.mp4" || got.AnalyzeMode != "multi" {
		t.Errorf("unexpected record %+v", got)
	}

	// Mutating the caller's record must not change the stored copy.
	rec.FileName = "changed.mp4"
	got, _ = h.Get(ctx, "a")
	if got.FileName != "video.mp4" {
		t.Error("stored record shares memory with caller's record")
	}
}

func TestMemoryHistory_GetMissing(t *testing.T) {
	h := NewMemoryHistory()
	if _, err := h.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryHistory_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		if err := h.Record(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute), false)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	list, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("wrong order: %s, %s", list[0].ID, list[1].ID)
	}
}

func TestSpool_AcquireRelease(t *testing.T) {
	root := filepath.Join(t.TempDir(), "spool")
	s, err := NewSpool(root)
	if err != nil {
		t.Fatalf("new spool: %v", err)
	}

	dir, release, err := s.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "video"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	release()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("scratch directory still present after release")
	}
}

func TestSpool_AcquireIsUnique(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("new spool: %v", err)
	}

	a, releaseA, err := s.Acquire()
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()
	b, releaseB, err := s.Acquire()
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	defer releaseB()

	if a == b {
		t.Errorf("both acquisitions returned %s", a)
	}
}
