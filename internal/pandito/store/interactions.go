package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Interaction is one handled chat turn: who wrote, what kind of event it
// was, what intent it resolved to and how the turn ended.
type Interaction struct {
	ID      int64
	At      time.Time
	TraceID string
	Sender  string
	Kind    string
	Intent  string
	Query   sql.NullString
	Result  string
}

// WriteInteraction appends one row to the audit trail. Query may be empty
// for button presses.
func (s *Store) WriteInteraction(ctx context.Context, traceID, sender, kind, intent, query, result string) error {
	var queryNull sql.NullString
	if query != "" {
		queryNull = sql.NullString{String: query, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (ts, trace_id, sender, kind, intent, query, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now(), traceID, sender, kind, intent, queryNull, result)
	if err != nil {
		return fmt.Errorf("write interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns the newest entries, most recent first.
func (s *Store) RecentInteractions(ctx context.Context, limit int) ([]*Interaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, sender, kind, intent, query, result
		FROM interactions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var entries []*Interaction
	for rows.Next() {
		entry := &Interaction{}
		if err := rows.Scan(
			&entry.ID, &entry.At, &entry.TraceID, &entry.Sender,
			&entry.Kind, &entry.Intent, &entry.Query, &entry.Result,
		); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
