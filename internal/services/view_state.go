package services

import (
	"strings"
	"sync"

	"github.com/reviewdeck/reviewdeck/internal/api"
)

// ViewStateMachine tracks which of the three sources backs the table, plus
// the pagination cursor and query text. Mode precedence is an explicit
// transition rule, not an emergent branch: a non-empty (trimmed) query
// always means Search, an empty query with a successful upload means
// UploadedView, otherwise Browse.
type ViewStateMachine struct {
	mu         sync.RWMutex
	mode       ViewMode
	page       int
	totalPages int
	query      string
	records    []api.FileRecord
	excluded   map[string]struct{}
	uploaded   *api.UploadPayload
	uploadName string
}

// NewViewStateMachine starts in Browse on page 1.
func NewViewStateMachine() *ViewStateMachine {
	return &ViewStateMachine{
		mode:       ModeBrowse,
		page:       1,
		totalPages: 1,
	}
}

// Snapshot returns a copy of the current state; the records slice and
// exclusion set are copied so callers can't mutate the machine.
func (m *ViewStateMachine) Snapshot() ViewState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]api.FileRecord, len(m.records))
	copy(records, m.records)
	excluded := make(map[string]struct{}, len(m.excluded))
	for name := range m.excluded {
		excluded[name] = struct{}{}
	}
	return ViewState{
		Mode:       m.mode,
		Page:       m.page,
		TotalPages: m.totalPages,
		Query:      m.query,
		Records:    records,
		Excluded:   excluded,
		Uploaded:   m.uploaded != nil,
		UploadName: m.uploadName,
	}
}

// UploadPayload returns the retained upload bytes, or nil if no upload
// has succeeded.
func (m *ViewStateMachine) UploadPayload() *api.UploadPayload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uploaded
}

// SetQuery updates the query text. A change resets the page cursor to 1
// and re-evaluates the view mode.
func (m *ViewStateMachine) SetQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.query == query {
		return
	}
	m.query = query
	m.page = 1
	m.recomputeMode()
}

// SetPage moves the pagination cursor, clamped to [1, totalPages].
func (m *ViewStateMachine) SetPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if page > m.totalPages {
		page = m.totalPages
	}
	m.page = page
}

// CommitPage replaces the table wholesale with a fetched page, but only if
// (query, page, mode) still match the current state at resolution time.
// A stale response is discarded: last relevant write wins, not last issued.
func (m *ViewStateMachine) CommitPage(page *api.Page, query string, pageNum int, mode ViewMode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(m.query) != strings.TrimSpace(query) || m.page != pageNum || m.mode != mode {
		return false
	}
	m.records = page.Records
	m.totalPages = page.TotalPages
	if m.totalPages < 1 {
		m.totalPages = 1
	}
	return true
}

// CommitUpload installs a successful upload: the payload is retained for
// re-query, the exclusion set replaces the old one, the table shows the
// first page of the server's response, the query clears and the machine
// transitions to UploadedView.
func (m *ViewStateMachine) CommitUpload(payload *api.UploadPayload, first *api.Page, excluded map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = payload
	m.uploadName = payload.FileName
	m.excluded = excluded
	m.records = first.Records
	m.totalPages = first.TotalPages
	if m.totalPages < 1 {
		m.totalPages = 1
	}
	m.page = 1
	m.query = ""
	m.recomputeMode()
}

// Reset clears query, pagination, uploaded data and the exclusion set in
// one atomic step and returns the machine to Browse.
func (m *ViewStateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = ""
	m.page = 1
	m.totalPages = 1
	m.records = nil
	m.excluded = nil
	m.uploaded = nil
	m.uploadName = ""
	m.recomputeMode()
}

// recomputeMode applies the transition rules. Callers hold the lock.
func (m *ViewStateMachine) recomputeMode() {
	switch {
	case strings.TrimSpace(m.query) != "":
		m.mode = ModeSearch
	case m.uploaded != nil:
		m.mode = ModeUploadedView
	default:
		m.mode = ModeBrowse
	}
}
