package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcboeker/go-duckdb"

	"github.com/streameme/backend/internal/models"
)

// DuckHistory persists analysis records in a DuckDB database file so the
// results API survives restarts. Suggestions are stored as their JSON
// serialization; a SQL NULL marks a crashed analysis.
type DuckHistory struct {
	db *sql.DB
}

// NewDuckHistory opens (or creates) the history database at dbPath.
func NewDuckHistory(dbPath string) (*DuckHistory, error) {
	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id           VARCHAR PRIMARY KEY,
			file_name    VARCHAR NOT NULL,
			analyze_time TIMESTAMP NOT NULL,
			analyze_mode VARCHAR NOT NULL,
			crashed      BOOLEAN NOT NULL,
			suggestions  VARCHAR
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating analyses table: %w", err)
	}

	return &DuckHistory{db: db}, nil
}

// Record inserts one analysis record.
func (h *DuckHistory) Record(ctx context.Context, rec *models.AnalysisRecord) error {
	var suggestions sql.NullString
	if !rec.Crashed {
		data, err := json.Marshal(rec.Suggestions)
		if err != nil {
			return fmt.Errorf("encoding suggestions: %w", err)
		}
		suggestions = sql.NullString{String: string(data), Valid: true}
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO analyses (id, file_name, analyze_time, analyze_mode, crashed, suggestions)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.FileName, rec.AnalyzeTime.UTC(), rec.AnalyzeMode, rec.Crashed, suggestions)
	if err != nil {
		return fmt.Errorf("inserting analysis record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *DuckHistory) Recent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, file_name, analyze_time, analyze_mode, crashed, suggestions
		FROM analyses
		ORDER BY analyze_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analysis records: %w", err)
	}
	defer rows.Close()

	var list []*models.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading analysis records: %w", err)
	}
	return list, nil
}

// Get retrieves a single record by ID.
func (h *DuckHistory) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, file_name, analyze_time, analyze_mode, crashed, suggestions
		FROM analyses
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Close closes the underlying database.
func (h *DuckHistory) Close() error {
	return h.db.Close()
}

func scanRecord(scan func(dest ...any) error) (*models.AnalysisRecord, error) {
	var (
		rec         models.AnalysisRecord
		suggestions sql.NullString
	)
	if err := scan(&rec.ID, &rec.FileName, &rec.AnalyzeTime, &rec.AnalyzeMode, &rec.Crashed, &suggestions); err != nil {
		return nil, err
	}

	if suggestions.Valid {
		if err := json.Unmarshal([]byte(suggestions.String), &rec.Suggestions); err != nil {
			return nil, fmt.Errorf("decoding suggestions for %s: %w", rec.ID, err)
		}
		if rec.Suggestions == nil {
			rec.Suggestions = []models.Suggestion{}
		}
	}
	rec.AnalyzeTime = rec.AnalyzeTime.UTC()
	return &rec, nil
}
