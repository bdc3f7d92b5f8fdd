package services

import (
	"context"
	"sync"

	"github.com/reviewdeck/reviewdeck/internal/api"
	"github.com/reviewdeck/reviewdeck/internal/db"
)

// repoCall records one gateway invocation for assertions.
type repoCall struct {
	Op    string // "fetch", "requery", "upload"
	Query string
	Page  int
}

// fakeRepo is a scriptable FileRepository for orchestration tests.
type fakeRepo struct {
	mu    sync.Mutex
	calls []repoCall

	fetchFn   func(ctx context.Context, query string, page int) (*api.Page, error)
	requeryFn func(ctx context.Context, payload *api.UploadPayload, page int) (*api.Page, error)
	uploadFn  func(ctx context.Context, payload *api.UploadPayload) (*api.Page, error)
}

func (r *fakeRepo) record(call repoCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *fakeRepo) Calls() []repoCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repoCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *fakeRepo) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRepo) FetchPage(ctx context.Context, query string, page int) (*api.Page, error) {
	r.record(repoCall{Op: "fetch", Query: query, Page: page})
	if r.fetchFn != nil {
		return r.fetchFn(ctx, query, page)
	}
	return &api.Page{TotalPages: 1}, nil
}

func (r *fakeRepo) RequeryUpload(ctx context.Context, payload *api.UploadPayload, page int) (*api.Page, error) {
	r.record(repoCall{Op: "requery", Page: page})
	if r.requeryFn != nil {
		return r.requeryFn(ctx, payload, page)
	}
	return &api.Page{TotalPages: 1}, nil
}

func (r *fakeRepo) Upload(ctx context.Context, payload *api.UploadPayload) (*api.Page, error) {
	r.record(repoCall{Op: "upload", Page: 1})
	if r.uploadFn != nil {
		return r.uploadFn(ctx, payload)
	}
	return &api.Page{TotalPages: 1}, nil
}

// historyFunc adapts a function to HistoryService for scheduler tests.
type historyFunc func(ctx context.Context, query string) error

func (f historyFunc) RecordSearch(ctx context.Context, query string) error {
	return f(ctx, query)
}

func (f historyFunc) RecentSearches(ctx context.Context, limit int) ([]db.SearchEntry, error) {
	return nil, nil
}

// record builds a single-conference record for test fixtures.
func record(title, conf, decision string) api.FileRecord {
	return api.FileRecord{
		Title: title,
		Conferences: []api.ConferenceEntry{
			{ConferenceName: conf, DecisionWithComments: decision},
		},
	}
}
