package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPage_NormalizesWireShape(t *testing.T) {
	var gotQuery, gotPage, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotPage = r.URL.Query().Get("page")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"Title": "Ethics in AI", "Conference": [
					{"Conference_Name": "ICML", "Decision_With_Comments": "Accepted", "Precheck_Comments": "ok", "Firstset_Comments": ""}
				]},
				{"Title": "No Confs"}
			],
			"total_page": 7
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok-123", time.Second)
	page, err := client.FetchPage(context.Background(), "ethics ai", 3)
	require.NoError(t, err)

	assert.Equal(t, "ethics ai", gotQuery)
	assert.Equal(t, "3", gotPage)
	assert.Equal(t, "Bearer tok-123", gotAuth)

	assert.Equal(t, 7, page.TotalPages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "Ethics in AI", page.Records[0].Title)
	require.Len(t, page.Records[0].Conferences, 1)
	assert.Equal(t, "ICML", page.Records[0].Conferences[0].ConferenceName)
	assert.Equal(t, "Accepted", page.Records[0].Conferences[0].DecisionWithComments)
	assert.Equal(t, "ok", page.Records[0].Conferences[0].PrecheckComments)
	assert.Empty(t, page.Records[1].Conferences)
}

func TestFetchPage_ZeroTotalPageDefaultsToOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [], "total_page": 0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", time.Second)
	page, err := client.FetchPage(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Records)
}

func TestUpload_UsesResponseKeyAndFileField(t *testing.T) {
	var gotPage string
	var gotFileName string
	var gotContent []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		gotFileName = header.Filename
		gotContent, _ = io.ReadAll(file)
		_, _ = w.Write([]byte(`{"response": [{"Title": "T1", "Conference": []}], "total_page": 2}`))
	}))
	defer srv.Close()

	payload, err := NewUploadPayload("/tmp/reviews.xlsx", []byte("sheet-bytes"))
	require.NoError(t, err)

	client := NewClient(srv.URL, "tok", time.Second)
	page, err := client.Upload(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, "1", gotPage)
	assert.Equal(t, "reviews.xlsx", gotFileName)
	assert.Equal(t, []byte("sheet-bytes"), gotContent)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "T1", page.Records[0].Title)
}

func TestRequeryUpload_ReplaysSameBytesWithNewPage(t *testing.T) {
	var bodies [][]byte
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		buf, _ := io.ReadAll(file)
		_ = file.Close()
		bodies = append(bodies, buf)
		_, _ = w.Write([]byte(`{"response": [], "total_page": 3}`))
	}))
	defer srv.Close()

	payload, err := NewUploadPayload("r.xlsx", []byte("same-bytes"))
	require.NoError(t, err)

	client := NewClient(srv.URL, "tok", time.Second)
	_, err = client.Upload(context.Background(), payload)
	require.NoError(t, err)
	_, err = client.RequeryUpload(context.Background(), payload, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}

func TestClient_UnauthorizedIsSentinel(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", status)
		}))

		client := NewClient(srv.URL, "expired", time.Second)
		_, err := client.FetchPage(context.Background(), "", 1)
		assert.ErrorIs(t, err, ErrUnauthorized, "status %d", status)
		srv.Close()
	}
}

func TestClient_ServerErrorIncludesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", time.Second)
	_, err := client.FetchPage(context.Background(), "", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_CancelSurfacesContextError(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := client.FetchPage(ctx, "slow", 1)
		errCh <- err
	}()

	<-started
	cancel()

	err := <-errCh
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
