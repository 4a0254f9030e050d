// Package postgres implements the prediction store against PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// predictionStore writes bounded chunks of prediction records into the
// per-domain result tables.
type predictionStore struct {
	db *sqlx.DB
}

// NewPredictionStore creates a prediction store backed by PostgreSQL.
func NewPredictionStore(db *sqlx.DB) ports.PredictionStore {
	return &predictionStore{db: db}
}

// InsertChunk writes one chunk as pure inserts. Duplicate prediction ids are
// impossible by construction (UUID-backed), so no conflict clause is needed.
func (s *predictionStore) InsertChunk(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	query, args := buildInsert(table, rows, nil)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classify(fmt.Errorf("failed to insert chunk into %s: %w", table, err))
	}
	return nil
}

// UpsertChunk writes one chunk superseding rows that share the conflict key.
// The incoming row only wins when its batch timestamp is not older than the
// stored one, so racing uploads converge on the newer batch regardless of
// arrival order.
func (s *predictionStore) UpsertChunk(ctx context.Context, table string, rows []map[string]any, conflictKey []string) error {
	if len(rows) == 0 {
		return nil
	}
	if len(conflictKey) == 0 {
		return s.InsertChunk(ctx, table, rows)
	}
	// ON CONFLICT DO UPDATE rejects a statement touching the same key twice,
	// so collapse in-chunk duplicates first. Last occurrence wins, matching
	// the newest-batch-wins rule across statements.
	rows = dedupeByKey(rows, conflictKey)
	query, args := buildInsert(table, rows, conflictKey)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classify(fmt.Errorf("failed to upsert chunk into %s: %w", table, err))
	}
	return nil
}

// Count returns the stored row count for a table.
func (s *predictionStore) Count(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// Recent returns the latest stored rows, newest batch first.
func (s *predictionStore) Recent(ctx context.Context, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY batch_at DESC, prediction_id DESC LIMIT $1", pq.QuoteIdentifier(table))
	rows, err := s.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent rows from %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// buildInsert renders a multi-row INSERT with stable column ordering, plus an
// ON CONFLICT DO UPDATE clause when a conflict key is given.
func buildInsert(table string, rows []map[string]any, conflictKey []string) (string, []any) {
	columns := make([]string, 0, len(rows[0]))
	for column := range rows[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = pq.QuoteIdentifier(column)
	}

	var (
		placeholders []string
		args         []any
	)
	n := 1
	for _, row := range rows {
		slots := make([]string, len(columns))
		for i, column := range columns {
			slots[i] = fmt.Sprintf("$%d", n)
			args = append(args, row[column])
			n++
		}
		placeholders = append(placeholders, "("+strings.Join(slots, ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	if len(conflictKey) > 0 {
		keySet := make(map[string]bool, len(conflictKey))
		quotedKey := make([]string, len(conflictKey))
		for i, key := range conflictKey {
			keySet[key] = true
			quotedKey[i] = pq.QuoteIdentifier(key)
		}
		var updates []string
		for _, column := range columns {
			if keySet[column] {
				continue
			}
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pq.QuoteIdentifier(column), pq.QuoteIdentifier(column)))
		}
		query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s WHERE %s.batch_at <= EXCLUDED.batch_at",
			strings.Join(quotedKey, ", "), strings.Join(updates, ", "), pq.QuoteIdentifier(table))
	}
	return query, args
}

// dedupeByKey keeps the last row for each conflict-key tuple, preserving the
// order of first appearance.
func dedupeByKey(rows []map[string]any, conflictKey []string) []map[string]any {
	type slot struct{ index int }
	seen := make(map[string]slot, len(rows))
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		var key strings.Builder
		for _, column := range conflictKey {
			fmt.Fprintf(&key, "%v\x00", row[column])
		}
		if s, ok := seen[key.String()]; ok {
			out[s.index] = row
			continue
		}
		seen[key.String()] = slot{index: len(out)}
		out = append(out, row)
	}
	return out
}

// classify wraps a store error with its retry class. Cardinality, integrity,
// data and syntax violations will fail identically on retry; everything else
// is treated as a transient network/store condition.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "21", "22", "23", "42", "0A":
			return &ports.ChunkError{Transient: false, Err: err}
		}
	}
	return &ports.ChunkError{Transient: true, Err: err}
}
