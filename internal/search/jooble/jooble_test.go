package jooble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"devhub-engine/internal/search/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSource(srv *httptest.Server) *Source {
	return New(Config{BaseURL: srv.URL, APIKey: "secret"}, nil, zap.NewNop().Sugar())
}

func TestFetchPostsKeywordsAndLocation(t *testing.T) {
	var gotPath string
	var gotBody apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"totalCount": 0, "jobs": []normalize.JoobleJob{}})
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "berlin", "", 10)
	require.Empty(t, res.Err)
	assert.Equal(t, "/secret", gotPath, "the API key is the request path")
	assert.Equal(t, apiRequest{Keywords: "go", Location: "berlin"}, gotBody)
}

func TestFetchPlaceholderFields(t *testing.T) {
	jobs := []normalize.JoobleJob{
		{ID: 7, Title: "*", Company: "*", Location: "*", Link: "*", Snippet: "go services"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"totalCount": 1, "jobs": jobs})
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "", "", 10)
	require.Empty(t, res.Err)
	require.Len(t, res.Jobs, 1)

	j := res.Jobs[0]
	assert.Equal(t, "jooble-7", j.ID)
	assert.Equal(t, "Untitled Position", j.Title)
	assert.Equal(t, "Unknown Company", j.CompanyName)
	assert.Empty(t, j.Location)
	assert.Empty(t, j.URL)
}

func TestFetchFiltersOnSnippet(t *testing.T) {
	jobs := []normalize.JoobleJob{
		{ID: 1, Title: "Backend Engineer", Snippet: "Rust and Go microservices"},
		{ID: 2, Title: "Backend Engineer", Snippet: "PHP monolith"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"totalCount": 2, "jobs": jobs})
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "", "", 10)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "jooble-1", res.Jobs[0].ID)
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "", "", 10)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Err, "403")
}
