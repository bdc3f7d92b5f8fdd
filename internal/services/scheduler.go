package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/reviewdeck/reviewdeck/internal/api"
)

// DefaultDebounceInterval is how long the scheduler waits for the operator
// to stop typing or paging before issuing a fetch.
const DefaultDebounceInterval = 500 * time.Millisecond

// FetchScheduler converts bursts of query/page changes into a single
// settled fetch. It is a trailing-edge debounce: any call while the timer
// is pending restarts it with the new arguments, so at most one network
// call is issued per settled (query, page, mode) tuple. It does not cancel
// an in-flight call from an earlier settle; the state machine's staleness
// check decides which response is committed.
type FetchScheduler struct {
	mu    sync.Mutex
	timer *time.Timer

	delay   time.Duration
	repo    FileRepository
	state   *ViewStateMachine
	history HistoryService
	logger  *log.Logger
	baseCtx context.Context

	onCommit func(ViewState)
	onError  func(error)
}

// NewFetchScheduler creates a scheduler over the given repository and state
// machine. A non-positive delay falls back to the default 500ms.
func NewFetchScheduler(ctx context.Context, repo FileRepository, state *ViewStateMachine, delay time.Duration) *FetchScheduler {
	if delay <= 0 {
		delay = DefaultDebounceInterval
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &FetchScheduler{
		delay:   delay,
		repo:    repo,
		state:   state,
		baseCtx: ctx,
	}
}

// SetHistory wires the optional search-history recorder.
func (s *FetchScheduler) SetHistory(history HistoryService) {
	s.history = history
}

// SetLogger sets the logger for debug output
func (s *FetchScheduler) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// SetCallbacks registers the UI hooks invoked after a committed table
// update or a fetch failure. Both run off the UI goroutine.
func (s *FetchScheduler) SetCallbacks(onCommit func(ViewState), onError func(error)) {
	s.onCommit = onCommit
	s.onError = onError
}

// Schedule restarts the debounce timer with the given tuple.
func (s *FetchScheduler) Schedule(query string, page int, mode ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.dispatch(query, page, mode)
	})
}

// ScheduleCurrent debounces a fetch for the state machine's current tuple.
func (s *FetchScheduler) ScheduleCurrent() {
	snap := s.state.Snapshot()
	s.Schedule(snap.Query, snap.Page, snap.Mode)
}

// Stop cancels a pending (not yet settled) fetch.
func (s *FetchScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// RefreshNow bypasses the debounce and fetches the current tuple at once.
func (s *FetchScheduler) RefreshNow() {
	snap := s.state.Snapshot()
	s.dispatch(snap.Query, snap.Page, snap.Mode)
}

// dispatch issues the mode-appropriate gateway call and commits the result
// if the tuple is still current when the response lands. Search wins over
// UploadedView whenever the query is non-empty.
func (s *FetchScheduler) dispatch(query string, page int, mode ViewMode) {
	trimmed := strings.TrimSpace(query)

	var fetched *api.Page
	var err error

	switch {
	case trimmed != "":
		fetched, err = s.repo.FetchPage(s.baseCtx, trimmed, page)
	case mode == ModeUploadedView:
		payload := s.state.UploadPayload()
		if payload == nil {
			// Upload vanished between settle and dispatch (reset raced the
			// timer); the browse path serves the empty query instead.
			mode = ModeBrowse
			fetched, err = s.repo.FetchPage(s.baseCtx, "", page)
			break
		}
		fetched, err = s.repo.RequeryUpload(s.baseCtx, payload, page)
	default:
		fetched, err = s.repo.FetchPage(s.baseCtx, "", page)
	}

	if err != nil {
		if s.logger != nil {
			s.logger.Printf("scheduler: fetch (%q, %d, %s) failed: %v", trimmed, page, mode, err)
		}
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	if !s.state.CommitPage(fetched, query, page, mode) {
		if s.logger != nil {
			s.logger.Printf("scheduler: discarded stale response for (%q, %d, %s)", trimmed, page, mode)
		}
		return
	}

	if trimmed != "" && s.history != nil {
		if err := s.history.RecordSearch(s.baseCtx, trimmed); err != nil && s.logger != nil {
			s.logger.Printf("scheduler: record search history: %v", err)
		}
	}
	if s.onCommit != nil {
		s.onCommit(s.state.Snapshot())
	}
}
