// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// ErrPresetCollection is returned when deleting a preset collection.
var ErrPresetCollection = errors.New("preset collections cannot be deleted")

// ErrCollectionNotFound is returned for operations on unknown collections.
var ErrCollectionNotFound = errors.New("collection not found")

// presetCollections are seeded once at startup. Seeding is INSERT OR
// IGNORE, so existing rows (including user edits to icons) are untouched.
var presetCollections = []types.Collection{
	{Name: "Neuralink 动态", Icon: "🧠", Rules: []string{"neuralink"}},
	{Name: "Synchron 进展", Icon: "🔌", Rules: []string{"synchron", "stentrode"}},
	{Name: "BCI 融资事件", Icon: "💰", Rules: []string{"funding", "series a", "series b", "series c", "series d", "series e", "融资", "投资", "raised", "venture"}},
	{Name: "柔性电极技术", Icon: "🔬", Rules: []string{"soft electrode", "flexible electrode", "flexible probe", "柔性", "polymer electrode", "hydrogel"}},
	{Name: "FDA/监管审批", Icon: "📋", Rules: []string{"fda", "approval", "clinical trial", "临床试验", "regulatory", "clearance"}},
	{Name: "非侵入式 BCI", Icon: "⚡", Rules: []string{"non-invasive", "eeg", "无创", "fnirs", "transcranial", "wearable bci"}},
}

func (s *Store) seedPresetCollections() error {
	for _, c := range presetCollections {
		rules, err := json.Marshal(c.Rules)
		if err != nil {
			return fmt.Errorf("encoding rules for %s: %w", c.Name, err)
		}
		_, err = s.db.Exec(
			`INSERT OR IGNORE INTO collections (name, icon, rules, is_preset) VALUES (?, ?, ?, 1)`,
			c.Name, c.Icon, string(rules),
		)
		if err != nil {
			return fmt.Errorf("inserting preset %s: %w", c.Name, err)
		}
	}
	return nil
}

// ListCollections returns all collections with live item counts, presets
// first, then by creation order.
func (s *Store) ListCollections(ctx context.Context) ([]types.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, c.rules, c.is_preset, c.created_at, count(ci.id)
		FROM collections c
		LEFT JOIN collection_items ci ON ci.collection_id = c.id
		GROUP BY c.id
		ORDER BY c.is_preset DESC, c.created_at ASC, c.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []types.Collection
	for rows.Next() {
		var (
			c         types.Collection
			rulesJSON string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &rulesJSON, &c.IsPreset, &c.CreatedAt, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		if err := json.Unmarshal([]byte(rulesJSON), &c.Rules); err != nil {
			s.log.Warn().Str("collection", c.Name).Err(err).Msg("invalid rules JSON")
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// CollectionItems returns one page of a collection's records, most
// important first.
func (s *Store) CollectionItems(ctx context.Context, collectionID int64, page, pageSize int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM collection_items WHERE collection_id = ?`, collectionID).
		Scan(&total)
	if err != nil {
		return SearchPage{}, fmt.Errorf("counting collection items: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.url, r.title, r.title_zh, r.authors, r.source, r.date, r.abstract,
			r.category, r.provider, r.importance, r.importance_level, r.fetched_at
		FROM collection_items ci
		JOIN records r ON r.id = ci.record_id
		WHERE ci.collection_id = ?
		ORDER BY r.importance DESC, r.date DESC
		LIMIT ? OFFSET ?`, collectionID, pageSize, offset)
	if err != nil {
		return SearchPage{}, fmt.Errorf("querying collection items: %w", err)
	}
	defer rows.Close()

	items, err := scanRecords(rows)
	if err != nil {
		return SearchPage{}, err
	}

	return SearchPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  offset+pageSize < total,
	}, nil
}

// AddToCollection links a record to a collection with the given
// attribution ("manual" for user action, "auto" for classification).
// Adding an existing membership is a no-op.
func (s *Store) AddToCollection(ctx context.Context, collectionID int64, recordURL, addedBy string) error {
	var recordID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM records WHERE url = ?`, recordURL).Scan(&recordID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record %s not found", recordURL)
	}
	if err != nil {
		return fmt.Errorf("looking up record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collection_items (collection_id, record_id, added_by) VALUES (?, ?, ?)`,
		collectionID, recordID, addedBy,
	)
	if err != nil {
		return fmt.Errorf("adding collection item: %w", err)
	}
	return nil
}

// RemoveFromCollection removes a membership. Removal is independent of
// classification runs: the record is not re-added until a later ingestion
// matches it again.
func (s *Store) RemoveFromCollection(ctx context.Context, collectionID int64, recordURL string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM collection_items
		WHERE collection_id = ? AND record_id = (SELECT id FROM records WHERE url = ?)`,
		collectionID, recordURL,
	)
	if err != nil {
		return fmt.Errorf("removing collection item: %w", err)
	}
	return nil
}

// CreateCollection adds a custom (non-preset) collection with no rules.
func (s *Store) CreateCollection(ctx context.Context, name, icon string) (int64, error) {
	if icon == "" {
		icon = "📁"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, icon, rules, is_preset) VALUES (?, ?, '[]', 0)`,
		name, icon,
	)
	if err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}
	return res.LastInsertId()
}

// DeleteCollection removes a custom collection and its memberships.
// Preset collections are immutable in identity and cannot be deleted.
func (s *Store) DeleteCollection(ctx context.Context, id int64) error {
	var isPreset bool
	err := s.db.QueryRowContext(ctx, `SELECT is_preset FROM collections WHERE id = ?`, id).Scan(&isPreset)
	if err == sql.ErrNoRows {
		return ErrCollectionNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up collection: %w", err)
	}
	if isPreset {
		return ErrPresetCollection
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_items WHERE collection_id = ?`, id); err != nil {
		return fmt.Errorf("deleting collection items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ? AND is_preset = 0`, id); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return tx.Commit()
}

// classifyTx matches records against every collection with a non-empty
// rule set and inserts missing memberships with "auto" attribution.
// Existing memberships are untouched; a collection with unreadable rules
// is logged and skipped without aborting the transaction.
func (s *Store) classifyTx(ctx context.Context, tx *sql.Tx, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, rules FROM collections WHERE rules != '[]'`)
	if err != nil {
		return fmt.Errorf("loading collection rules: %w", err)
	}

	type ruleSet struct {
		id    int64
		rules []string
	}
	var sets []ruleSet
	for rows.Next() {
		var (
			id        int64
			name      string
			rulesJSON string
		)
		if err := rows.Scan(&id, &name, &rulesJSON); err != nil {
			rows.Close()
			return fmt.Errorf("scanning collection rules: %w", err)
		}
		var rules []string
		if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
			s.log.Warn().Str("collection", name).Err(err).Msg("skipping collection with invalid rules")
			continue
		}
		if len(rules) > 0 {
			sets = append(sets, ruleSet{id: id, rules: rules})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO collection_items (collection_id, record_id, added_by)
		SELECT ?, id, 'auto' FROM records WHERE url = ?`)
	if err != nil {
		return fmt.Errorf("preparing membership insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		text := strings.ToLower(rec.Title + " " + rec.Abstract)
		for _, set := range sets {
			if !matchesAny(text, set.rules) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, set.id, rec.URL); err != nil {
				return fmt.Errorf("classifying %s: %w", rec.URL, err)
			}
		}
	}
	return nil
}

// matchesAny reports whether any rule occurs as a substring of the
// lower-cased text.
func matchesAny(text string, rules []string) bool {
	for _, rule := range rules {
		if rule != "" && strings.Contains(text, strings.ToLower(rule)) {
			return true
		}
	}
	return false
}
