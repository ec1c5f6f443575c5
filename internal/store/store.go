// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists content records, subscribers, and collections in
// a SQLite database and answers filtered, ranked, paginated queries.
// Records are keyed by URL; batch upserts are transactional and
// re-classification runs inside the same transaction so readers never
// observe a half-written batch.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/neurotrack/internal/scoring"
	"github.com/pdiddy/neurotrack/pkg/types"
)

const dbFile = "neurotrack.db"

const (
	maxPageSize     = 200
	defaultPageSize = 50
)

// Store manages the tracker SQLite database. Ingestion (upsert plus
// classification) is serialized through a single-writer mutex; reads run
// concurrently with each other and with an in-flight ingestion.
type Store struct {
	db  *sql.DB
	log zerolog.Logger

	defaultPageSize int

	// mu serializes write cycles. A second ingestion arriving while one
	// is in flight queues behind it rather than interleaving.
	mu sync.Mutex
}

// New opens or creates the tracker database at cfg.DataDir/neurotrack.db,
// creates the schema if needed, and seeds the preset collections.
func New(cfg types.StoreConfig, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	s := &Store{db: db, log: log, defaultPageSize: pageSize}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.seedPresetCollections(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding preset collections: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			title_zh TEXT DEFAULT '',
			authors TEXT DEFAULT '',
			source TEXT DEFAULT '',
			date TEXT DEFAULT '',
			abstract TEXT DEFAULT '',
			category TEXT DEFAULT '',
			provider TEXT DEFAULT '',
			importance INTEGER DEFAULT 0,
			importance_level TEXT DEFAULT 'low',
			fetched_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_category ON records(category)`,
		`CREATE INDEX IF NOT EXISTS idx_records_provider ON records(provider)`,
		`CREATE INDEX IF NOT EXISTS idx_records_date ON records(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_records_importance ON records(importance DESC)`,
		`CREATE TABLE IF NOT EXISTS subscribers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			name TEXT DEFAULT '',
			active INTEGER DEFAULT 1,
			created_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			icon TEXT DEFAULT '📁',
			rules TEXT DEFAULT '[]',
			is_preset INTEGER DEFAULT 0,
			created_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS collection_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection_id INTEGER NOT NULL REFERENCES collections(id),
			record_id INTEGER NOT NULL REFERENCES records(id),
			added_by TEXT DEFAULT 'auto',
			added_at TEXT DEFAULT (datetime('now')),
			UNIQUE(collection_id, record_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertSummary holds counts from a batch upsert.
type UpsertSummary struct {
	// Stored counts records inserted or updated.
	Stored int
	// Skipped counts records dropped for having no URL. They cannot be
	// deduplicated, so they never reach the table.
	Skipped int
	// Invalid counts records rejected by per-item validation (missing
	// title). The rest of the batch still applies.
	Invalid int
}

// UpsertBatch inserts or updates records keyed by URL in a single
// transaction, recomputing the importance score for each, and runs
// auto-classification over the batch inside the same transaction. An I/O
// failure rolls back the entire batch; per-item validation failures skip
// only the offending record.
func (s *Store) UpsertBatch(ctx context.Context, records []types.Record) (UpsertSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary UpsertSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (url, title, title_zh, authors, source, date, abstract, category, provider, importance, importance_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			title=excluded.title, title_zh=excluded.title_zh,
			authors=excluded.authors, source=excluded.source,
			date=excluded.date, abstract=excluded.abstract,
			category=excluded.category, provider=excluded.provider,
			importance=excluded.importance, importance_level=excluded.importance_level`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	stored := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			summary.Skipped++
			continue
		}
		if rec.Title == "" {
			summary.Invalid++
			continue
		}

		rec.Importance, rec.ImportanceLevel = scoring.Evaluate(rec)

		_, err := stmt.ExecContext(ctx,
			rec.URL, rec.Title, rec.TitleZh, rec.Authors, rec.Source,
			rec.Date, rec.Abstract, string(rec.Category), rec.Provider,
			rec.Importance, string(rec.ImportanceLevel),
		)
		if err != nil {
			return UpsertSummary{}, fmt.Errorf("upserting %s: %w", rec.URL, err)
		}
		summary.Stored++
		stored = append(stored, rec)
	}

	if err := s.classifyTx(ctx, tx, stored); err != nil {
		return UpsertSummary{}, err
	}

	if err := tx.Commit(); err != nil {
		return UpsertSummary{}, fmt.Errorf("committing batch: %w", err)
	}
	return summary, nil
}

// AutoClassify re-runs rule-based classification over the given records in
// its own transaction. A nil slice classifies every stored record.
// Matching is insert-if-absent, so repeated runs are no-ops for existing
// memberships.
func (s *Store) AutoClassify(ctx context.Context, records []types.Record) error {
	if records == nil {
		rows, err := s.db.QueryContext(ctx, recordColumns+` FROM records`)
		if err != nil {
			return fmt.Errorf("loading records: %w", err)
		}
		records, err = scanRecords(rows)
		rows.Close()
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.classifyTx(ctx, tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats returns the total and per-category record counts, computed live.
func (s *Store) Stats(ctx context.Context) (types.Stats, error) {
	var stats types.Stats

	err := s.db.QueryRowContext(ctx, `SELECT
			count(*),
			count(*) FILTER (WHERE category = 'journal'),
			count(*) FILTER (WHERE category = 'preprint'),
			count(*) FILTER (WHERE category = 'news')
		FROM records`).
		Scan(&stats.Total, &stats.Journals, &stats.Preprints, &stats.News)
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting records: %w", err)
	}
	return stats, nil
}

// Providers returns the sorted, de-duplicated, non-empty provider names,
// optionally restricted to one category.
func (s *Store) Providers(ctx context.Context, category types.Category) ([]string, error) {
	query := `SELECT DISTINCT provider FROM records WHERE provider != ''`
	args := []any{}
	if category != "" && category != types.CategoryAll {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY provider`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying providers: %w", err)
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// RecordsSince returns records first fetched within the last hoursAgo
// hours, most important first. It feeds the briefing generator.
func (s *Store) RecordsSince(ctx context.Context, hoursAgo int) ([]types.Record, error) {
	since := time.Now().UTC().Add(-time.Duration(hoursAgo) * time.Hour).
		Format("2006-01-02 15:04:05")

	rows, err := s.db.QueryContext(ctx,
		recordColumns+` FROM records WHERE fetched_at >= ? ORDER BY importance DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// recordColumns is the shared SELECT list for scanning full records.
const recordColumns = `SELECT url, title, title_zh, authors, source, date, abstract,
	category, provider, importance, importance_level, fetched_at`

func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	var records []types.Record
	for rows.Next() {
		var (
			rec      types.Record
			category string
			level    string
		)
		if err := rows.Scan(
			&rec.URL, &rec.Title, &rec.TitleZh, &rec.Authors, &rec.Source,
			&rec.Date, &rec.Abstract, &category, &rec.Provider,
			&rec.Importance, &level, &rec.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Category = types.Category(category)
		rec.ImportanceLevel = types.ImportanceLevel(level)
		records = append(records, rec)
	}
	return records, rows.Err()
}
