package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS loads (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	paths TEXT NOT NULL DEFAULT '[]',
	row_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	warnings TEXT NOT NULL DEFAULT '[]',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loads_kind_created ON loads (kind, created_at);
`

// DefaultListLimit caps ListLoads when no limit is given
const DefaultListLimit = 100

// Store keeps the load history in SQLite
type Store struct {
	db *sqlx.DB
}

// loadRow is the table shape of a LoadRecord; list columns are JSON text
type loadRow struct {
	model.LoadRecord
	PathsJSON    string `db:"paths"`
	WarningsJSON string `db:"warnings"`
}

// Open connects to the SQLite database at path and creates the schema
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to open load history", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.DatabaseError("failed to create schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLoad stores a load history entry
func (s *Store) SaveLoad(ctx context.Context, rec model.LoadRecord) error {
	paths, err := json.Marshal(nonNil(rec.Paths))
	if err != nil {
		return fmt.Errorf("failed to marshal paths: %w", err)
	}
	warnings, err := json.Marshal(nonNil(rec.Warnings))
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	row := loadRow{LoadRecord: rec, PathsJSON: string(paths), WarningsJSON: string(warnings)}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO loads (
		id, kind, paths, row_count, status, warnings, error_message, duration_ms, created_at
	) VALUES (
		:id, :kind, :paths, :row_count, :status, :warnings, :error_message, :duration_ms, :created_at
	)`, row)
	if err != nil {
		return apperrors.DatabaseError("failed to save load "+rec.ID, err)
	}
	return nil
}

// ListLoads returns the most recent loads first, optionally for one kind
func (s *Store) ListLoads(ctx context.Context, kind string, limit int) ([]model.LoadRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, kind, paths, row_count, status, warnings, error_message, duration_ms, created_at FROM loads`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	var rows []loadRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.DatabaseError("failed to list loads", err)
	}

	out := make([]model.LoadRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetLoad returns one load by id
func (s *Store) GetLoad(ctx context.Context, id string) (model.LoadRecord, error) {
	var row loadRow
	err := s.db.GetContext(ctx, &row, `SELECT id, kind, paths, row_count, status, warnings, error_message, duration_ms, created_at FROM loads WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LoadRecord{}, apperrors.NotFound("load " + id)
	}
	if err != nil {
		return model.LoadRecord{}, apperrors.DatabaseError("failed to get load "+id, err)
	}
	return row.record()
}

func (r loadRow) record() (model.LoadRecord, error) {
	rec := r.LoadRecord
	if err := json.Unmarshal([]byte(r.PathsJSON), &rec.Paths); err != nil {
		return rec, fmt.Errorf("failed to unmarshal paths of load %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(r.WarningsJSON), &rec.Warnings); err != nil {
		return rec, fmt.Errorf("failed to unmarshal warnings of load %s: %w", rec.ID, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
