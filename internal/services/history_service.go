package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewdeck/reviewdeck/internal/db"
)

// HistoryServiceImpl implements HistoryService
type HistoryServiceImpl struct {
	store *db.HistoryStore
}

// NewHistoryService creates a new history service
func NewHistoryService(store *db.HistoryStore) *HistoryServiceImpl {
	return &HistoryServiceImpl{
		store: store,
	}
}

func (s *HistoryServiceImpl) RecordSearch(ctx context.Context, query string) error {
	if s.store == nil {
		// History is optional; running without the local database is fine.
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return s.store.RecordSearch(ctx, query)
}

func (s *HistoryServiceImpl) RecentSearches(ctx context.Context, limit int) ([]db.SearchEntry, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.RecentSearches(ctx, limit)
}
