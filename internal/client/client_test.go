package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postpilot/postpilot/internal/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gallery", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "watermarked", r.URL.Query().Get("filter"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": 1, "pageSize": 2, "totalItems": 4, "totalPages": 2, "hasMore": true,
			"items": []map[string]any{
				{"id": 1, "filename": "a.jpg", "mimeType": "image/jpeg", "bytes": 100,
					"isWatermarked": true, "createdAt": "2024-01-01T00:00:00Z",
					"lastRepostedAt": "2024-01-02T00:00:00Z"},
				{"id": 2, "filename": "b.jpg", "mimeType": "image/jpeg", "bytes": 200,
					"isWatermarked": false, "createdAt": "2024-01-01T00:00:00Z"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	page, err := c.FetchPage(context.Background(), gallery.PageRequest{Page: 1, PageSize: 2, Filter: "watermarked"})
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	require.NotNil(t, page.Items[0].LastRepostedAt)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), page.Items[0].LastRepostedAt.UTC())
	assert.Nil(t, page.Items[1].LastRepostedAt)
}

// a malformed timestamp degrades to "never reposted" instead of failing the page
func TestFetchPageLenientTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"pageSize":1,"totalItems":1,"totalPages":1,"hasMore":false,
			"items":[{"id":7,"filename":"x.jpg","mimeType":"image/jpeg","bytes":1,
			"createdAt":"2024-01-01T00:00:00Z","lastRepostedAt":"not-a-date"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	page, err := c.FetchPage(context.Background(), gallery.PageRequest{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].LastRepostedAt)

	// an unparsable lastRepostedAt evaluates as eligible
	v := gallery.NewEvaluator(0).Evaluate(page.Items[0].LastRepostedAt, time.Now())
	assert.False(t, v.Active)
}

func TestFetchPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to load gallery"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.FetchPage(context.Background(), gallery.PageRequest{Page: 1, PageSize: 10})

	var serr *gallery.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Equal(t, "failed to load gallery", serr.Message)
}

func TestSubmitRepost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reddit/quick-repost", r.URL.Path)

		var req gallery.RepostRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(2), req.AssetID)
		assert.Equal(t, "pics", req.Subreddit)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"repostedAt":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	result, err := c.SubmitRepost(context.Background(), gallery.RepostRequest{AssetID: 2, Subreddit: "pics", Title: "hi"})
	require.NoError(t, err)
	require.NotNil(t, result.RepostedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.RepostedAt.UTC())
}

func TestSubmitRepostServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"cooldown active, 62h remaining","hoursRemaining":62}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SubmitRepost(context.Background(), gallery.RepostRequest{AssetID: 1, Subreddit: "pics", Title: "hi"})

	var serr *gallery.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusTooManyRequests, serr.StatusCode)
}

// end to end: the engine syncs pages from the client and patches the store
// after a successful repost.
func TestEngineAgainstHTTPServer(t *testing.T) {
	repostedAt := "2024-01-01T00:00:00Z"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/gallery":
			page := r.URL.Query().Get("page")
			if page == "1" {
				_, _ = w.Write([]byte(`{"page":1,"pageSize":1,"totalItems":2,"totalPages":2,"hasMore":true,
					"items":[{"id":1,"filename":"a.jpg","mimeType":"image/jpeg","bytes":100,"createdAt":"2024-01-01T00:00:00Z"}]}`))
			} else {
				_, _ = w.Write([]byte(`{"page":2,"pageSize":1,"totalItems":2,"totalPages":2,"hasMore":false,
					"items":[{"id":2,"filename":"b.jpg","mimeType":"image/jpeg","bytes":200,"createdAt":"2024-01-01T01:00:00Z"}]}`))
			}
		case "/reddit/quick-repost":
			_, _ = w.Write([]byte(`{"repostedAt":"` + repostedAt + `"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	engine := gallery.NewEngine(New(srv.URL, ""), gallery.EngineOptions{PageSize: 1})
	defer engine.Close()
	ctx := context.Background()

	require.NoError(t, engine.LoadInitial(ctx))
	require.NoError(t, engine.LoadMore(ctx))
	assert.Len(t, engine.Snapshot(), 2)
	assert.False(t, engine.SyncState().HasMore)

	require.NoError(t, engine.SubmitRepost(ctx, gallery.RepostRequest{AssetID: 2, Subreddit: "pics", Title: "hi"}))

	snap := engine.Snapshot()
	require.NotNil(t, snap[1].LastRepostedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), snap[1].LastRepostedAt.UTC())
	assert.Empty(t, engine.InFlightIDs())
}
