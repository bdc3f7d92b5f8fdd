package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

// ExportServiceImpl implements ExportService. It walks pages 1..totalPages
// of the active source sequentially; the server is not assumed to tolerate
// concurrent identical requests, and sequential access lets cancellation
// take effect between pages. The aggregator keeps its own page counter and
// never shares the view state's cursor, so the operator can keep browsing
// while an export runs.
type ExportServiceImpl struct {
	repo      FileRepository
	state     *ViewStateMachine
	slot      operationSlot
	exportDir string
	logger    *log.Logger
	now       func() time.Time
}

// NewExportService creates a new export service writing into exportDir.
func NewExportService(repo FileRepository, state *ViewStateMachine, exportDir string) *ExportServiceImpl {
	return &ExportServiceImpl{
		repo:      repo,
		state:     state,
		exportDir: exportDir,
		now:       time.Now,
	}
}

// SetLogger sets the logger for debug output
func (s *ExportServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// ExportAll aggregates every server page of the active source, reduces the
// aggregate into grouped rows and writes the spreadsheet. Only one export
// runs at a time; a second call while one is in flight returns
// ErrExportActive instead of superseding it. A cancelled export discards
// partial results, performs no file write, resets progress to {0,0} and
// returns ErrCancelled.
func (s *ExportServiceImpl) ExportAll(ctx context.Context, onProgress func(DownloadProgress)) (*ExportResult, error) {
	if s.slot.active() {
		return nil, ErrExportActive
	}

	snap := s.state.Snapshot()

	op := s.slot.begin(ctx)
	defer s.slot.finish(op)

	report := func(current, total int) {
		if onProgress != nil {
			onProgress(DownloadProgress{Current: current, Total: total})
		}
	}
	abort := func() (*ExportResult, error) {
		report(0, 0)
		if s.logger != nil {
			s.logger.Printf("export %s: cancelled", op.ID())
		}
		return nil, ErrCancelled
	}

	fetch := func(page int) (*api.Page, error) {
		switch snap.Mode {
		case ModeSearch:
			return s.repo.FetchPage(op.Context(), snap.Query, page)
		case ModeUploadedView:
			return s.repo.RequeryUpload(op.Context(), s.state.UploadPayload(), page)
		default:
			return s.repo.FetchPage(op.Context(), "", page)
		}
	}

	report(0, 0)
	if op.Cancelled() {
		return abort()
	}

	first, err := fetch(1)
	if err != nil {
		if op.Cancelled() || IsCancel(err) {
			return abort()
		}
		report(0, 0)
		return nil, err
	}

	totalPages := first.TotalPages
	report(1, totalPages)

	aggregate := append([]api.FileRecord(nil), first.Records...)
	fetched := 1

	for page := 2; page <= totalPages; page++ {
		// Cancellation is checked before each page request.
		if op.Cancelled() {
			return abort()
		}
		pg, err := fetch(page)
		if err != nil {
			if op.Cancelled() || IsCancel(err) {
				return abort()
			}
			report(0, 0)
			return nil, err
		}
		fetched++
		if len(pg.Records) == 0 {
			// The server's total_page and actual page content can disagree;
			// an empty page ends the walk early rather than looping on air.
			if s.logger != nil {
				s.logger.Printf("export %s: empty page %d of %d, stopping early", op.ID(), page, totalPages)
			}
			break
		}
		aggregate = append(aggregate, pg.Records...)
		report(page, totalPages)
	}

	if op.Cancelled() {
		return abort()
	}

	rows := BuildExportRows(aggregate, snap.Excluded)
	if len(rows) == 0 {
		report(0, 0)
		return nil, ErrNoData
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		report(0, 0)
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.exportDir, sheet.ExportFileName(snap.Mode == ModeSearch, s.now()))
	if err := sheet.WriteExport(path, rows); err != nil {
		report(0, 0)
		return nil, err
	}

	if s.logger != nil {
		s.logger.Printf("export %s: wrote %d rows from %d pages to %s", op.ID(), len(rows), fetched, path)
	}
	return &ExportResult{Path: path, RowCount: len(rows), Pages: fetched}, nil
}

// CancelExport aborts the in-flight export, if any.
func (s *ExportServiceImpl) CancelExport() {
	s.slot.cancelCurrent()
}

// Exporting reports whether an export is in flight.
func (s *ExportServiceImpl) Exporting() bool {
	return s.slot.active()
}
