package remotive

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

const defaultBaseURL = "https://remotive.com/api/remote-jobs"

type Config struct {
	BaseURL string // override for tests; defaults to the public API
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
	return &Source{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
		log:     log,
	}
}

func (s *Source) Name() string { return normalize.SourceRemotive }

type apiResponse struct {
	JobCount int                     `json:"job-count"`
	Jobs     []normalize.RemotiveJob `json:"jobs"`
}

func (s *Source) Fetch(ctx context.Context, tech, location, jobType string, perPage int) types.SourceResult {
	apiURL := s.cfg.BaseURL
	if strings.TrimSpace(tech) != "" {
		apiURL += "?search=" + url.QueryEscape(tech)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return s.fail(fmt.Sprintf("remotive request: %v", err))
	}
	req.Header.Set("User-Agent", "DevHub/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return s.fail(fmt.Sprintf("remotive wait: %v", err))
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return s.fail(fmt.Sprintf("remotive get: %v", err))
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return s.fail(fmt.Sprintf("remotive status %d", res.StatusCode))
	}

	var ar apiResponse
	if err := json.NewDecoder(res.Body).Decode(&ar); err != nil {
		return s.fail(fmt.Sprintf("remotive decode: %v", err))
	}

	kept := make([]normalize.RemotiveJob, 0, len(ar.Jobs))
	for _, j := range ar.Jobs {
		if !matchesTech(j, tech) {
			continue
		}
		if location != "" && !util.SameLocation(j.CandidateRequiredLocation, location) {
			continue
		}
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
		if n := normalize.Job(j, normalize.SourceRemotive); n != nil {
			out = append(out, n)
		}
	}

	s.log.Infof("[remotive] kept %d of %d", len(out), len(ar.Jobs))
	return types.SourceResult{Source: s.Name(), Jobs: out}
}

func matchesTech(j normalize.RemotiveJob, tech string) bool {
	tech = strings.ToLower(strings.TrimSpace(tech))
	if tech == "" {
		return true
	}
	blob := strings.ToLower(j.Title + " " + strings.Join(j.Tags, " "))
	return strings.Contains(blob, tech)
}

func matchesType(j normalize.RemotiveJob, jobType string) bool {
	want := util.NormalizeToken(jobType)
	if want == "" {
		return true
	}
	if want == "remote" {
		return util.ContainsRemote(j.JobType, j.CandidateRequiredLocation, strings.Join(j.Tags, " "))
	}
	return strings.Contains(util.NormalizeToken(j.JobType), want)
}

func (s *Source) fail(reason string) types.SourceResult {
	s.log.Warnf("[remotive] %s", reason)
	return types.SourceResult{Source: s.Name(), Err: reason}
}
