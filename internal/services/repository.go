package services

import (
	"context"
	"fmt"

	"github.com/reviewdeck/reviewdeck/internal/api"
)

// FileRepositoryImpl implements FileRepository on top of the API client
type FileRepositoryImpl struct {
	client *api.Client
}

// NewFileRepository creates a new file repository
func NewFileRepository(client *api.Client) *FileRepositoryImpl {
	return &FileRepositoryImpl{
		client: client,
	}
}

func (r *FileRepositoryImpl) FetchPage(ctx context.Context, query string, page int) (*api.Page, error) {
	if r.client == nil {
		return nil, fmt.Errorf("api client not available")
	}
	return r.client.FetchPage(ctx, query, page)
}

func (r *FileRepositoryImpl) RequeryUpload(ctx context.Context, payload *api.UploadPayload, page int) (*api.Page, error) {
	if r.client == nil {
		return nil, fmt.Errorf("api client not available")
	}
	if payload == nil {
		return nil, ErrNoUploadData
	}
	return r.client.RequeryUpload(ctx, payload, page)
}

func (r *FileRepositoryImpl) Upload(ctx context.Context, payload *api.UploadPayload) (*api.Page, error) {
	if r.client == nil {
		return nil, fmt.Errorf("api client not available")
	}
	if payload == nil {
		return nil, ErrNoUploadData
	}
	return r.client.Upload(ctx, payload)
}
