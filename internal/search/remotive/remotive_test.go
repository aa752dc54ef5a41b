package remotive

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
	return New(Config{BaseURL: srv.URL}, nil, zap.NewNop().Sugar())
}

func serveJobs(t *testing.T, jobs []normalize.RemotiveJob) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"job-count": len(jobs),
			"jobs":      jobs,
		})
	}))
}

func TestFetchFiltersAndTruncates(t *testing.T) {
	jobs := []normalize.RemotiveJob{
		{ID: 1, Title: "Senior Go Engineer", Tags: []string{"golang"}, CandidateRequiredLocation: "USA"},
		{ID: 2, Title: "Go Developer", CandidateRequiredLocation: "USA"},
		{ID: 3, Title: "Ruby Developer", CandidateRequiredLocation: "USA"}, // wrong tech
		{ID: 4, Title: "Go Platform Engineer", CandidateRequiredLocation: "Germany"}, // wrong location
		{ID: 5, Title: "Backend dev", Tags: []string{"go", "grpc"}, CandidateRequiredLocation: "USA"},
	}
	srv := serveJobs(t, jobs)
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "usa", "", 2)
	require.Empty(t, res.Err)
	assert.Equal(t, "remotive", res.Source)

	// three match tech+location, then the page cap trims to the first two
	require.Len(t, res.Jobs, 2)
	assert.Equal(t, "remotive-1", res.Jobs[0].ID)
	assert.Equal(t, "remotive-2", res.Jobs[1].ID)
}

func TestFetchTechMatchesTags(t *testing.T) {
	jobs := []normalize.RemotiveJob{
		{ID: 1, Title: "Backend Engineer", Tags: []string{"python", "django"}},
		{ID: 2, Title: "Backend Engineer", Tags: []string{"java"}},
	}
	srv := serveJobs(t, jobs)
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "python", "", "", 10)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "remotive-1", res.Jobs[0].ID)
}

func TestFetchRemoteTypeFilter(t *testing.T) {
	jobs := []normalize.RemotiveJob{
		{ID: 1, Title: "Go dev", JobType: "full_time", CandidateRequiredLocation: "Worldwide Remote"},
		{ID: 2, Title: "Go dev", JobType: "full_time", CandidateRequiredLocation: "New York office"},
	}
	srv := serveJobs(t, jobs)
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "", "remote", 10)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "remotive-1", res.Jobs[0].ID)
	assert.Equal(t, "remote", res.Jobs[0].RemoteType)
}

func TestFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "go", "", "", 10)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Err, "503")
	assert.Empty(t, res.Jobs)
}

func TestFetchSendsSearchTerm(t *testing.T) {
	var gotSearch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		json.NewEncoder(w).Encode(map[string]any{"job-count": 0, "jobs": []normalize.RemotiveJob{}})
	}))
	defer srv.Close()

	s := newTestSource(srv)

	res := s.Fetch(context.Background(), "react native", "", "", 10)
	require.Empty(t, res.Err)
	assert.Equal(t, "react native", gotSearch)
}
