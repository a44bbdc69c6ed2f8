package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemoteTestServer(t *testing.T, status int, body string, seen *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r.Clone(context.Background())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSourceFetchPosts(t *testing.T) {
	body := `{"result": [
		{"_id": "1", "title": "Performance no React", "slug": {"current": "performance-no-react"}, "date": "2023-06-01", "excerpt": "memo", "content": "# Hi"},
		{"_id": "2", "title": "JavaScript Basics", "slug": "javascript-basics", "date": "2022-03-04T10:00:00Z"},
		{"_id": "drafts.3", "title": "Draft", "slug": "draft", "date": "2023-07-01"},
		{"_id": "4", "title": "Bad Date", "slug": "bad-date", "date": "soon"},
		{"_id": "5", "slug": "no-title", "date": "2023-01-01"},
		{"_id": 6},
		{"_id": "7", "title": "Duplicate", "slug": "javascript-basics", "date": "2020-01-01"}
	]}`

	var seen http.Request
	srv := newRemoteTestServer(t, http.StatusOK, body, &seen)
	src := NewRemoteSource(RemoteConfig{BaseURL: srv.URL, Dataset: "production"}, srv.Client(), nil)

	snap, err := src.FetchPosts(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "/v2021-10-21/data/query/production", seen.URL.Path)
	assert.Equal(t, "published", seen.URL.Query().Get("perspective"))
	assert.Equal(t, DefaultIndexQuery, seen.URL.Query().Get("query"))
	assert.Empty(t, seen.Header.Get("Authorization"))

	var slugs []string
	for _, p := range snap.Posts {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"performance-no-react", "javascript-basics", "bad-date"}, slugs)

	first, err := snap.Find("performance-no-react")
	require.NoError(t, err)
	assert.Equal(t, "memo", first.Excerpt)
	assert.Contains(t, first.HTML, "<h1")

	assert.Len(t, snap.Issues, 4)
	assert.Equal(t, 3, snap.Skipped())
}

func TestRemoteSourcePreview(t *testing.T) {
	body := `{"result": [{"_id": "drafts.3", "title": "Draft", "slug": "draft", "date": "2023-07-01"}]}`

	var seen http.Request
	srv := newRemoteTestServer(t, http.StatusOK, body, &seen)
	src := NewRemoteSource(RemoteConfig{BaseURL: srv.URL, Dataset: "production", Token: "tok"}, srv.Client(), nil)

	snap, err := src.FetchPosts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, snap.Posts, 1)
	assert.Equal(t, "previewDrafts", seen.URL.Query().Get("perspective"))
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
}

func TestRemoteSourcePreviewDrafts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "draft served under its published id",
			body: `{"result": [
				{"_id": "post-1", "_originalId": "drafts.post-1", "title": "Edited title", "slug": "hello", "date": "2023-07-01"},
				{"_id": "post-2", "title": "Untouched", "slug": "untouched", "date": "2023-05-01"}
			]}`,
		},
		{
			name: "both copies returned",
			body: `{"result": [
				{"_id": "post-1", "title": "Original title", "slug": "hello", "date": "2023-07-01"},
				{"_id": "drafts.post-1", "title": "Edited title", "slug": "hello", "date": "2023-07-01"},
				{"_id": "post-2", "title": "Untouched", "slug": "untouched", "date": "2023-05-01"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRemoteTestServer(t, http.StatusOK, tt.body, nil)
			src := NewRemoteSource(RemoteConfig{BaseURL: srv.URL, Dataset: "production", Token: "tok"}, srv.Client(), nil)

			snap, err := src.FetchPosts(context.Background(), true)
			require.NoError(t, err)
			assert.Empty(t, snap.Issues)
			require.Len(t, snap.Posts, 2)

			edited, err := snap.Find("hello")
			require.NoError(t, err)
			assert.Equal(t, "Edited title", edited.Title)
			assert.True(t, edited.Draft)

			untouched, err := snap.Find("untouched")
			require.NoError(t, err)
			assert.False(t, untouched.Draft)
		})
	}
}

func TestRemoteSourceUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: ``},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "wrong envelope", status: http.StatusOK, body: `{"result": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRemoteTestServer(t, tt.status, tt.body, nil)
			src := NewRemoteSource(RemoteConfig{BaseURL: srv.URL, Dataset: "production"}, srv.Client(), nil)
			_, err := src.FetchPosts(context.Background(), false)
			assert.ErrorIs(t, err, ErrSourceUnavailable)
		})
	}

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		src := NewRemoteSource(RemoteConfig{BaseURL: srv.URL, Dataset: "production"}, nil, nil)
		_, err := src.FetchPosts(context.Background(), false)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("missing dataset", func(t *testing.T) {
		src := NewRemoteSource(RemoteConfig{ProjectID: "abc"}, nil, nil)
		_, err := src.FetchPosts(context.Background(), false)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}

func TestRemoteSourceEndpoint(t *testing.T) {
	src := NewRemoteSource(RemoteConfig{ProjectID: "abc123", Dataset: "production", APIVersion: "v2023-05-03"}, nil, nil)

	endpoint, err := src.Endpoint(true)
	require.NoError(t, err)

	u, err := url.Parse(endpoint)
	require.NoError(t, err)
	assert.Equal(t, "abc123.api.sanity.io", u.Host)
	assert.Equal(t, "/v2023-05-03/data/query/production", u.Path)
	assert.Equal(t, "published", u.Query().Get("perspective"), "no token means no drafts")

	_, err = NewRemoteSource(RemoteConfig{Dataset: "production"}, nil, nil).Endpoint(false)
	assert.Error(t, err)
}
