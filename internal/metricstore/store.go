package metricstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/finlens/ipoagent/internal/document"
)

// ErrNotFound is returned when a metric has no stored value.
var ErrNotFound = errors.New("metric not found")

// Store persists extracted financial metrics in SQLite. One row per
// (document, metric); re-ingestion overwrites, no history.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS financials (
	doc_id      TEXT NOT NULL,
	metric_name TEXT NOT NULL,
	value       REAL NOT NULL,
	unit        TEXT NOT NULL DEFAULT 'Crores',
	period      TEXT NOT NULL DEFAULT 'Latest Year',
	PRIMARY KEY (doc_id, metric_name)
)`

// NewStore opens (creating if needed) the metric database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Set writes one metric value, replacing any prior value for the same
// document and key.
func (s *Store) Set(ctx context.Context, docID string, key document.MetricKey, value float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financials (doc_id, metric_name, value)
		VALUES (?, ?, ?)
		ON CONFLICT (doc_id, metric_name) DO UPDATE SET value = excluded.value`,
		docID, string(key), value)
	if err != nil {
		return fmt.Errorf("storing metric %s: %w", key, err)
	}
	return nil
}

// Get returns one metric value, or ErrNotFound.
func (s *Store) Get(ctx context.Context, docID string, key document.MetricKey) (float64, error) {
	var value float64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM financials WHERE doc_id = ? AND metric_name = ?`,
		docID, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading metric %s: %w", key, err)
	}
	return value, nil
}

// GetAll returns every stored metric for the document. Keys never extracted
// are absent from the map.
func (s *Store) GetAll(ctx context.Context, docID string) (map[document.MetricKey]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT metric_name, value FROM financials WHERE doc_id = ?`, docID)
	if err != nil {
		return nil, fmt.Errorf("reading metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[document.MetricKey]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning metric row: %w", err)
		}
		out[document.MetricKey(name)] = value
	}
	return out, rows.Err()
}

// DeleteDocument removes all metric rows for docID. Called before
// re-ingestion so a re-uploaded document starts clean.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM financials WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("deleting metrics: %w", err)
	}
	return nil
}
