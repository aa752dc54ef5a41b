package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devhub-engine/internal/domain"
	"devhub-engine/internal/search/normalize"
	"devhub-engine/internal/search/types"
	"devhub-engine/internal/search/util"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.adzuna.com/v1/api/jobs"

type Config struct {
	BaseURL string // override for tests
	AppID   string
	AppKey  string
	Country string // e.g. "us", part of the URL path
}

type Source struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	log     *zap.SugaredLogger
}

func New(cfg Config, limiter *util.HostLimiter, log *zap.SugaredLogger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	return &Source{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (s *Source) Name() string { return normalize.SourceAdzuna }

type apiResponse struct {
	Count   int                   `json:"count"`
	Results []normalize.AdzunaJob `json:"results"`
}

func (s *Source) Fetch(ctx context.Context, tech, location, jobType string, perPage int) types.SourceResult {
	// Adzuna needs both a "what" and a "where"; an underspecified query would
	// return country-wide noise, so skip the call entirely.
	if strings.TrimSpace(tech) == "" || strings.TrimSpace(location) == "" {
		return types.SourceResult{Source: s.Name(), Jobs: []*domain.Job{}}
	}

	q := url.Values{}
	q.Set("app_id", s.cfg.AppID)
	q.Set("app_key", s.cfg.AppKey)
	q.Set("what", tech)
	q.Set("where", location)
	q.Set("results_per_page", fmt.Sprint(perPage))
	apiURL := fmt.Sprintf("%s/%s/search/1?%s", s.cfg.BaseURL, s.cfg.Country, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return s.fail(fmt.Sprintf("adzuna request: %v", err))
	}
	req.Header.Set("User-Agent", "DevHub/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return s.fail(fmt.Sprintf("adzuna wait: %v", err))
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return s.fail(fmt.Sprintf("adzuna get: %v", err))
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return s.fail(fmt.Sprintf("adzuna status %d", res.StatusCode))
	}

	var ar apiResponse
	if err := json.NewDecoder(res.Body).Decode(&ar); err != nil {
		return s.fail(fmt.Sprintf("adzuna decode: %v", err))
	}

	kept := make([]normalize.AdzunaJob, 0, len(ar.Results))
	for _, j := range ar.Results {
		if !matchesTech(j, tech) {
			continue
		}
		// location was already sent upstream as "where"; no exact re-check,
		// Adzuna returns region matches the user asked for.
		if !matchesType(j, jobType) {
			continue
		}
		kept = append(kept, j)
	}
	if len(kept) > perPage {
		kept = kept[:perPage]
	}

	out := make([]*domain.Job, 0, len(kept))
	for _, j := range kept {
		if n := normalize.Job(j, normalize.SourceAdzuna); n != nil {
			out = append(out, n)
		}
	}

	s.log.Infof("[adzuna] kept %d of %d", len(out), len(ar.Results))
	return types.SourceResult{Source: s.Name(), Jobs: out}
}

func matchesTech(j normalize.AdzunaJob, tech string) bool {
	tech = strings.ToLower(strings.TrimSpace(tech))
	if tech == "" {
		return true
	}
	blob := strings.ToLower(j.Title + " " + j.Description)
	return strings.Contains(blob, tech)
}

func matchesType(j normalize.AdzunaJob, jobType string) bool {
	want := util.NormalizeToken(jobType)
	if want == "" {
		return true
	}
	if want == "remote" {
		return util.ContainsRemote(j.ContractTime, j.Location.DisplayName, j.Title)
	}
	return strings.Contains(util.NormalizeToken(j.ContractTime), want)
}

func (s *Source) fail(reason string) types.SourceResult {
	s.log.Warnf("[adzuna] %s", reason)
	return types.SourceResult{Source: s.Name(), Err: reason}
}
