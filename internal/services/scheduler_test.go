package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reviewdeck/reviewdeck/internal/api"
)

const testDebounce = 30 * time.Millisecond

func waitForCalls(t *testing.T, repo *fakeRepo, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.CallCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d calls, got %d", want, repo.CallCount())
}

func TestFetchScheduler_CoalescesBursts(t *testing.T) {
	repo := &fakeRepo{}
	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, testDebounce)

	// "alpha" typed character by character, well within the debounce window.
	for _, q := range []string{"a", "al", "alp", "alph", "alpha"} {
		state.SetQuery(q)
		sched.Schedule(q, 1, ModeSearch)
		time.Sleep(2 * time.Millisecond)
	}

	waitForCalls(t, repo, 1)
	time.Sleep(3 * testDebounce) // nothing else should settle

	calls := repo.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, repoCall{Op: "fetch", Query: "alpha", Page: 1}, calls[0])
}

func TestFetchScheduler_StaleResponseDiscarded(t *testing.T) {
	slowRelease := make(chan struct{})
	repo := &fakeRepo{}
	repo.fetchFn = func(ctx context.Context, query string, page int) (*api.Page, error) {
		if query == "old" {
			<-slowRelease
			return &api.Page{Records: []api.FileRecord{record("OLD", "C", "d")}, TotalPages: 1}, nil
		}
		return &api.Page{Records: []api.FileRecord{record("NEW", "C", "d")}, TotalPages: 1}, nil
	}

	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

	var commits atomic.Int32
	sched.SetCallbacks(func(ViewState) { commits.Add(1) }, nil)

	// A settles first but resolves last.
	state.SetQuery("old")
	sched.Schedule("old", 1, ModeSearch)
	waitForCalls(t, repo, 1)

	state.SetQuery("new")
	sched.Schedule("new", 1, ModeSearch)
	waitForCalls(t, repo, 2)

	// Wait for the fast response to commit, then release the slow one.
	deadline := time.Now().Add(2 * time.Second)
	for commits.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	require.GreaterOrEqual(t, commits.Load(), int32(1))
	close(slowRelease)
	time.Sleep(50 * time.Millisecond)

	snap := state.Snapshot()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "NEW", snap.Records[0].Title, "stale response must not overwrite the table")
	assert.Equal(t, int32(1), commits.Load())
}

func TestFetchScheduler_DispatchPaths(t *testing.T) {
	t.Run("non_empty_query_uses_search_path", func(t *testing.T) {
		repo := &fakeRepo{}
		state := NewViewStateMachine()
		state.SetQuery("  alpha  ")
		sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

		sched.Schedule("  alpha  ", 1, ModeSearch)
		waitForCalls(t, repo, 1)
		assert.Equal(t, repoCall{Op: "fetch", Query: "alpha", Page: 1}, repo.Calls()[0])
	})

	t.Run("uploaded_view_requeries_upload", func(t *testing.T) {
		repo := &fakeRepo{}
		state := NewViewStateMachine()
		state.CommitUpload(&api.UploadPayload{FileName: "f.xlsx"}, &api.Page{TotalPages: 3}, nil)
		state.SetPage(2)
		sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

		sched.ScheduleCurrent()
		waitForCalls(t, repo, 1)
		assert.Equal(t, repoCall{Op: "requery", Page: 2}, repo.Calls()[0])
	})

	t.Run("browse_uses_empty_query", func(t *testing.T) {
		repo := &fakeRepo{}
		state := NewViewStateMachine()
		sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

		sched.ScheduleCurrent()
		waitForCalls(t, repo, 1)
		assert.Equal(t, repoCall{Op: "fetch", Query: "", Page: 1}, repo.Calls()[0])
	})

	t.Run("uploaded_view_without_payload_falls_back_to_browse", func(t *testing.T) {
		repo := &fakeRepo{}
		state := NewViewStateMachine()
		sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

		sched.Schedule("", 1, ModeUploadedView)
		waitForCalls(t, repo, 1)
		assert.Equal(t, "fetch", repo.Calls()[0].Op)
	})
}

func TestFetchScheduler_ErrorsReportedNotCommitted(t *testing.T) {
	repo := &fakeRepo{}
	repo.fetchFn = func(ctx context.Context, query string, page int) (*api.Page, error) {
		return nil, assert.AnError
	}
	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

	errCh := make(chan error, 1)
	sched.SetCallbacks(nil, func(err error) { errCh <- err })

	sched.Schedule("", 1, ModeBrowse)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(2 * time.Second):
		t.Fatal("expected error callback")
	}
	assert.Empty(t, state.Snapshot().Records)
}

func TestFetchScheduler_RecordsSettledSearches(t *testing.T) {
	repo := &fakeRepo{}
	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

	recorded := make(chan string, 1)
	sched.SetHistory(historyFunc(func(ctx context.Context, query string) error {
		recorded <- query
		return nil
	}))

	state.SetQuery("alpha")
	sched.Schedule("alpha", 1, ModeSearch)

	select {
	case q := <-recorded:
		assert.Equal(t, "alpha", q)
	case <-time.After(2 * time.Second):
		t.Fatal("expected search to be recorded")
	}
}

func TestFetchScheduler_StopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("time.Sleep"))

	repo := &fakeRepo{}
	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, time.Millisecond)

	sched.Schedule("alpha", 1, ModeSearch)
	waitForCalls(t, repo, 1)
	sched.Stop()
	time.Sleep(20 * time.Millisecond)
}

func TestFetchScheduler_StopCancelsPendingTimer(t *testing.T) {
	repo := &fakeRepo{}
	state := NewViewStateMachine()
	sched := NewFetchScheduler(context.Background(), repo, state, 20*time.Millisecond)

	sched.Schedule("", 1, ModeBrowse)
	sched.Stop()
	time.Sleep(80 * time.Millisecond)

	assert.Zero(t, repo.CallCount())
}
