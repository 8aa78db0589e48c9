package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

var _ Source = (*SQLiteStore)(nil)

// Schema is applied on Open. Events are written by the tracking side; this
// package only reads them.
const Schema = `
CREATE TABLE IF NOT EXISTS experiments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    variants TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    experiment TEXT NOT NULL,
    variant INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    FOREIGN KEY (experiment) REFERENCES experiments(name)
);

CREATE INDEX IF NOT EXISTS idx_events_experiment ON events(experiment, event_type);
CREATE UNIQUE INDEX IF NOT EXISTS idx_events_dedup ON events(experiment, visitor_id, event_type);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) GetExperiment(ctx context.Context, name string) (*Experiment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, variants, created_at FROM experiments WHERE name = ?`, name,
	)

	exp, err := scanExperiment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return exp, nil
}

func (s *SQLiteStore) ListExperiments(ctx context.Context) ([]*Experiment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, variants, created_at FROM experiments ORDER BY created_at DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		experiments = append(experiments, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	return experiments, nil
}

// GetVariantCounts returns distinct viewing and converting visitors per
// variant index, for indexes that have at least one event.
func (s *SQLiteStore) GetVariantCounts(ctx context.Context, name string) ([]VariantCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			variant,
			COUNT(DISTINCT CASE WHEN event_type = 'view' THEN visitor_id END) as visitors,
			COUNT(DISTINCT CASE WHEN event_type = 'convert' THEN visitor_id END) as conversions
		FROM events
		WHERE experiment = ?
		GROUP BY variant
		ORDER BY variant
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant counts: %w", err)
	}
	defer rows.Close()

	var counts []VariantCounts
	for rows.Next() {
		var c VariantCounts
		if err := rows.Scan(&c.Variant, &c.Visitors, &c.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan counts: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get variant counts: %w", err)
	}

	return counts, nil
}

// GetVariants returns the experiment's variants in declared order, control
// first, with their observed counts. Variants without events have zero
// visitors; counts for undeclared variant indexes are ignored.
func (s *SQLiteStore) GetVariants(ctx context.Context, name string) ([]stats.Variant, error) {
	exp, err := s.GetExperiment(ctx, name)
	if err != nil {
		return nil, err
	}

	counts, err := s.GetVariantCounts(ctx, name)
	if err != nil {
		return nil, err
	}

	variants := make([]stats.Variant, len(exp.Variants))
	for i, label := range exp.Variants {
		variants[i].Name = label
	}
	for _, c := range counts {
		if c.Variant < 0 || c.Variant >= len(variants) {
			continue
		}
		variants[c.Variant].Visitors = c.Visitors
		variants[c.Variant].Conversions = c.Conversions
	}

	return variants, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row scanner) (*Experiment, error) {
	var exp Experiment
	var variantsJSON string
	var createdAt int64

	if err := row.Scan(&exp.ID, &exp.Name, &variantsJSON, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(variantsJSON), &exp.Variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}
	exp.CreatedAt = time.Unix(createdAt, 0)

	return &exp, nil
}
