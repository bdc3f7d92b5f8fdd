package services

import (
	"context"
	"errors"

	"github.com/reviewdeck/reviewdeck/internal/api"
)

// Standard service errors for the orchestration layer
var (
	// Cancellation is user-initiated and is never surfaced as a failure
	ErrCancelled = errors.New("operation cancelled")

	// Upload pipeline errors
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum upload size")
	ErrNoUploadData        = errors.New("no uploaded file data")

	// Export errors
	ErrNoData       = errors.New("no data to export")
	ErrExportActive = errors.New("an export is already running")
)

// IsCancel reports whether err represents a user-initiated abort, either of
// the whole operation or of the underlying network call.
func IsCancel(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsAuthError reports whether err must force a session termination rather
// than being shown as a transient network failure.
func IsAuthError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
