package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/sheet"
)

// UploadServiceImpl implements UploadService. The pipeline is: type gate,
// client-side parse and validation, exclusion-set extraction, cancellable
// send, commit. Nothing touches the view state until the server accepts
// the upload, so a failed or cancelled upload leaves the table untouched.
type UploadServiceImpl struct {
	repo     FileRepository
	state    *ViewStateMachine
	slot     operationSlot
	logger   *log.Logger
	maxBytes int64
}

// NewUploadService creates a new upload service
func NewUploadService(repo FileRepository, state *ViewStateMachine) *UploadServiceImpl {
	return &UploadServiceImpl{
		repo:     repo,
		state:    state,
		maxBytes: sheet.MaxUploadBytes,
	}
}

// SetLogger sets the logger for debug output
func (s *UploadServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Upload runs the full pipeline for the spreadsheet at path. It returns
// ErrCancelled when the operator aborts the send, a *sheet.ValidationError
// when rows are invalid (upload never attempted), and the first page of
// the server's derived view on success.
func (s *UploadServiceImpl) Upload(ctx context.Context, path string) (*api.Page, error) {
	if !sheet.IsAccepted(path) {
		return nil, fmt.Errorf("%w: only .xlsx and .xls files are accepted", ErrUnsupportedFileType)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat upload file: %w", err)
	}
	if info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}

	rows, err := sheet.Parse(data)
	if err != nil {
		return nil, err
	}
	if rowErrs := sheet.Validate(rows); len(rowErrs) > 0 {
		// Every offending row is reported; nothing is sent.
		return nil, &sheet.ValidationError{Rows: rowErrs}
	}

	excluded := sheet.ExclusionSet(rows)

	payload, err := api.NewUploadPayload(path, data)
	if err != nil {
		return nil, err
	}

	op := s.slot.begin(ctx)
	defer s.slot.finish(op)
	if s.logger != nil {
		s.logger.Printf("upload %s: sending %s (%d rows)", op.ID(), payload.FileName, len(rows))
	}

	first, err := s.repo.Upload(op.Context(), payload)
	if err != nil {
		if op.Cancelled() || IsCancel(err) {
			if s.logger != nil {
				s.logger.Printf("upload %s: cancelled", op.ID())
			}
			return nil, ErrCancelled
		}
		return nil, err
	}

	s.state.CommitUpload(payload, first, excluded)
	if s.logger != nil {
		s.logger.Printf("upload %s: committed, %d records, %d pages", op.ID(), len(first.Records), first.TotalPages)
	}
	return first, nil
}

// CancelUpload aborts the in-flight upload, if any. The pipeline resolves
// as cancelled, not failed.
func (s *UploadServiceImpl) CancelUpload() {
	s.slot.cancelCurrent()
}

// Uploading reports whether an upload is in flight.
func (s *UploadServiceImpl) Uploading() bool {
	return s.slot.active()
}
