package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

// recordedSleep replaces the client's sleep so tests never actually wait.
type recordedSleep struct {
	mu   sync.Mutex
	durs []time.Duration
}

func (r *recordedSleep) fn(ctx context.Context, d time.Duration) {
	r.mu.Lock()
	r.durs = append(r.durs, d)
	r.mu.Unlock()
}

func TestClientMinSpacing(t *testing.T) {
	var mu sync.Mutex
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())

	for i := 0; i < 2; i++ {
		resp, err := c.Do(context.Background(), srv.URL+"/ping")
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, times, 2)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), minSpacing)
}

func TestClientQuotaWaitAndRetryOnce(t *testing.T) {
	now := time.Now()
	reset := now.Add(10 * time.Minute)

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("x-ratelimit-remaining", "0")
			w.Header().Set("x-ratelimit-reset", fmt.Sprint(reset.Unix()))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("x-ratelimit-remaining", "4999")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sleeps := &recordedSleep{}
	c := NewClient(srv.URL, "", testLogger())
	c.sleep = sleeps.fn
	c.now = func() time.Time { return now }

	resp, err := c.Do(context.Background(), srv.URL+"/search")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, calls, "exactly one retry")

	require.NotEmpty(t, sleeps.durs)
	wait := sleeps.durs[len(sleeps.durs)-1]
	// reset - now + 1s buffer, allowing for unix-second truncation
	assert.InDelta(t, (10*time.Minute + time.Second).Seconds(), wait.Seconds(), 1.5)
}

func TestClientQuotaWaitOutOfBounds(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		reset time.Time
	}{
		{"reset too far away", now.Add(2 * time.Hour)},
		{"reset in the past", now.Add(-2 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("x-ratelimit-remaining", "0")
				w.Header().Set("x-ratelimit-reset", fmt.Sprint(tt.reset.Unix()))
				w.WriteHeader(http.StatusForbidden)
			}))
			defer srv.Close()

			sleeps := &recordedSleep{}
			c := NewClient(srv.URL, "", testLogger())
			c.sleep = sleeps.fn
			c.now = func() time.Time { return now }

			resp, err := c.Do(context.Background(), srv.URL+"/search")
			require.NoError(t, err)
			defer resp.Body.Close()

			// stale response comes back unmodified, no retry loop
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestClientCriticalQuotaDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining", "3")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sleeps := &recordedSleep{}
	c := NewClient(srv.URL, "", testLogger())
	c.sleep = sleeps.fn

	resp, err := c.Do(context.Background(), srv.URL+"/x")
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, sleeps.durs, 1)
	assert.Equal(t, criticalDelay, sleeps.durs[0])
}

func TestClientMissingHeadersDisableQuotaLogic(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden) // no rate-limit headers
	}))
	defer srv.Close()

	sleeps := &recordedSleep{}
	c := NewClient(srv.URL, "", testLogger())
	c.sleep = sleeps.fn

	resp, err := c.Do(context.Background(), srv.URL+"/x")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.durs)
}

func TestQuotaFrom(t *testing.T) {
	h := http.Header{}
	assert.False(t, quotaFrom(h).Known)

	h.Set("x-ratelimit-remaining", "12")
	h.Set("x-ratelimit-reset", "1760000000")
	q := quotaFrom(h)
	assert.True(t, q.Known)
	assert.Equal(t, 12, q.Remaining)
	assert.Equal(t, time.Unix(1760000000, 0), q.ResetAt)

	h.Set("x-ratelimit-remaining", "not-a-number")
	assert.False(t, quotaFrom(h).Known)
}
