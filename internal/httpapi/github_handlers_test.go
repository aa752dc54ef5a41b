package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devhub-engine/internal/events"
	"devhub-engine/internal/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGithubMux(t *testing.T, upstream *httptest.Server) (*http.ServeMux, *events.Hub) {
	log := zap.NewNop().Sugar()
	client := github.NewClient(upstream.URL, "", log)
	repos := github.NewRepoService(client, 10*time.Minute, nil, log)
	hub := events.NewHub()
	return NewMux(Deps{
		Log:      log,
		Hub:      hub,
		Repos:    repos,
		Activity: github.NewActivity(client, log),
	}), hub
}

func waitEvent(t *testing.T, ch chan string) events.Event {
	t.Helper()
	select {
	case raw := <-ch:
		var e events.Event
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		return e
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return events.Event{}
	}
}

func TestTechnologiesQuotaBlockPublishesWarning(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	mux, hub := newGithubMux(t, upstream)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/technologies/u1?techs=go", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string `json:"message"`
		Cached  bool   `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, github.RateLimitMessage, body.Message)

	e := waitEvent(t, ch)
	assert.Equal(t, events.TypeRateLimitWarning, e.Type)

	var data map[string]string
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "technologies", data["scope"])
	assert.Equal(t, "u1", data["subject"])

	// the blocked batch is cached; serving it again stays silent
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/technologies/u1?techs=go", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Cached)
	select {
	case raw := <-ch:
		t.Fatalf("unexpected event on cache hit: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUserReposQuotaBlockPublishesWarning(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	mux, hub := newGithubMux(t, upstream)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/repos/bob", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	e := waitEvent(t, ch)
	assert.Equal(t, events.TypeRateLimitWarning, e.Type)

	var data map[string]string
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "repos", data["scope"])
	assert.Equal(t, "bob", data["subject"])
}

func TestUserReposHealthyNoWarning(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]github.Repo{{ID: 1, Name: "one"}})
	}))
	defer upstream.Close()

	mux, hub := newGithubMux(t, upstream)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/repos/alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case raw := <-ch:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}
