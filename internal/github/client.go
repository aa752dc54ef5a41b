// Package github holds the rate-limit-aware GitHub API client, the TTL
// resource caches built on it, and the commit-activity scanners. Every GitHub
// request in the engine goes through Client.Do — no other code touches the
// upstream, so the quota bookkeeping sees every call.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.github.com"

	// minimum spacing between any two calls through the client
	minSpacing = 100 * time.Millisecond

	// quota thresholds from the x-ratelimit-remaining header
	lowWater      = 10
	criticalWater = 5

	// inserted after a call when remaining drops below criticalWater,
	// protecting the next call rather than this one
	criticalDelay = 2 * time.Second

	// a reset wait outside (0, maxResetWait) means the stale response is
	// returned unmodified instead of sleeping
	maxResetWait = time.Hour
)

// QuotaSnapshot is derived from one response's rate-limit headers and
// consulted once; it is never stored.
type QuotaSnapshot struct {
	Remaining int
	ResetAt   time.Time
	Known     bool // false when the headers were absent
}

func quotaFrom(h http.Header) QuotaSnapshot {
	rem := h.Get("x-ratelimit-remaining")
	if rem == "" {
		return QuotaSnapshot{}
	}
	n, err := strconv.Atoi(rem)
	if err != nil {
		return QuotaSnapshot{}
	}
	q := QuotaSnapshot{Remaining: n, Known: true}
	if reset := h.Get("x-ratelimit-reset"); reset != "" {
		if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
			q.ResetAt = time.Unix(sec, 0)
		}
	}
	return q
}

type Client struct {
	base    string
	token   string
	hc      *http.Client
	spacing *rate.Limiter
	log     *zap.SugaredLogger

	// test hooks
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

func NewClient(baseURL, token string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		base:    baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 30 * time.Second},
		spacing: rate.NewLimiter(rate.Every(minSpacing), 1),
		log:     log,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// BaseURL is the API root every caller should build paths under.
func (c *Client) BaseURL() string { return c.base }

// Do issues one GitHub request with the full quota discipline: enforce the
// minimum inter-call spacing, read the rate-limit headers, warn and slow down
// near exhaustion, and on an explicit quota block (403 with remaining == 0)
// wait for the reset and reissue the request exactly once.
func (c *Client) Do(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.issue(ctx, url)
	if err != nil {
		return nil, err
	}

	q := quotaFrom(resp.Header)
	if q.Known {
		if q.Remaining < lowWater {
			c.log.Warnf("[github] rate limit low: %d remaining", q.Remaining)
		}
		if q.Remaining < criticalWater {
			c.sleep(ctx, criticalDelay)
		}
	}

	if resp.StatusCode == http.StatusForbidden && q.Known && q.Remaining == 0 && !q.ResetAt.IsZero() {
		wait := q.ResetAt.Sub(c.now()) + time.Second
		if wait > 0 && wait < maxResetWait {
			resp.Body.Close()
			c.log.Warnf("[github] quota exhausted, waiting %s until reset", wait.Round(time.Second))
			c.sleep(ctx, wait)
			// one retry only; whatever comes back now is final
			return c.issue(ctx, url)
		}
		c.log.Warnf("[github] quota exhausted, reset wait %s out of bounds, returning as-is", wait.Round(time.Second))
	}

	return resp, nil
}

func (c *Client) issue(ctx context.Context, url string) (*http.Response, error) {
	if err := c.spacing.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "DevHub/1.0 (+local)")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github get: %w", err)
	}
	return resp, nil
}
