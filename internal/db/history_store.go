package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchEntry is one remembered search query
type SearchEntry struct {
	ID       int64  `json:"id"`
	Query    string `json:"query"`
	UseCount int    `json:"use_count"`
	LastUsed int64  `json:"last_used"`
}

// HistoryStore handles database operations for search history
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a new history store
func NewHistoryStore(store *Store) *HistoryStore {
	return &HistoryStore{
		db: store.DB(),
	}
}

// RecordSearch saves a query or bumps its use count if it already exists
func (s *HistoryStore) RecordSearch(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}

	// Nanosecond precision so back-to-back searches keep a stable order.
	now := time.Now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (query, use_count, last_used)
		VALUES (?, 1, ?)
		ON CONFLICT(query) DO UPDATE SET
			use_count = use_count + 1,
			last_used = excluded.last_used`,
		strings.TrimSpace(query), now)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// RecentSearches returns the most recently used queries, newest first
func (s *HistoryStore) RecentSearches(ctx context.Context, limit int) ([]SearchEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, use_count, last_used
		FROM search_history
		ORDER BY last_used DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchEntry
	for rows.Next() {
		var entry SearchEntry
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.UseCount, &entry.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ClearHistory removes every remembered query
func (s *HistoryStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM search_history"); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
