package services

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/db"
)

// ViewMode selects which data source currently backs the table.
type ViewMode int

const (
	ModeBrowse ViewMode = iota
	ModeSearch
	ModeUploadedView
)

func (m ViewMode) String() string {
	switch m {
	case ModeBrowse:
		return "Browse"
	case ModeSearch:
		return "Search"
	case ModeUploadedView:
		return "UploadedView"
	}
	return "Unknown"
}

// FileRepository is the gateway the orchestration layer fetches through.
type FileRepository interface {
	FetchPage(ctx context.Context, query string, page int) (*api.Page, error)
	RequeryUpload(ctx context.Context, payload *api.UploadPayload, page int) (*api.Page, error)
	Upload(ctx context.Context, payload *api.UploadPayload) (*api.Page, error)
}

// UploadService drives the validate-then-send upload pipeline
type UploadService interface {
	Upload(ctx context.Context, path string) (*api.Page, error)
	CancelUpload()
	Uploading() bool
}

// ExportService walks every server page of the active source and writes the
// grouped summary spreadsheet
type ExportService interface {
	ExportAll(ctx context.Context, onProgress func(DownloadProgress)) (*ExportResult, error)
	CancelExport()
	Exporting() bool
}

// HistoryService remembers settled search queries
type HistoryService interface {
	RecordSearch(ctx context.Context, query string) error
	RecentSearches(ctx context.Context, limit int) ([]db.SearchEntry, error)
}

// Data structures

// DownloadProgress reports bulk export progress in whole pages.
type DownloadProgress struct {
	Current int
	Total   int
}

// ViewState is an immutable snapshot of the table's backing state.
type ViewState struct {
	Mode       ViewMode
	Page       int
	TotalPages int
	Query      string
	Records    []api.FileRecord
	Excluded   map[string]struct{}
	Uploaded   bool
	UploadName string
}

// ExportResult describes a completed export.
type ExportResult struct {
	Path     string
	RowCount int
	Pages    int
}
