package jooble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"devhub-engine/internal/domain"
	"devhub-engine/internal/search/normalize"
	"devhub-engine/internal/search/types"
	"devhub-engine/internal/search/util"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://jooble.org/api"

type Config struct {
	BaseURL string // override for tests
	APIKey  string
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

func (s *Source) Name() string { return normalize.SourceJooble }

type apiRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

type apiResponse struct {
	TotalCount int                   `json:"totalCount"`
	Jobs       []normalize.JoobleJob `json:"jobs"`
}

func (s *Source) Fetch(ctx context.Context, tech, location, jobType string, perPage int) types.SourceResult {
	apiURL := fmt.Sprintf("%s/%s", s.cfg.BaseURL, s.cfg.APIKey)

	body, _ := json.Marshal(apiRequest{Keywords: tech, Location: location})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return s.fail(fmt.Sprintf("jooble request: %v", err))
	}
	req.Header.Set("User-Agent", "DevHub/1.0 (+local)")
	req.Header.Set("Content-Type", "application/json")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return s.fail(fmt.Sprintf("jooble wait: %v", err))
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return s.fail(fmt.Sprintf("jooble post: %v", err))
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return s.fail(fmt.Sprintf("jooble status %d", res.StatusCode))
	}

	var ar apiResponse
	if err := json.NewDecoder(res.Body).Decode(&ar); err != nil {
		return s.fail(fmt.Sprintf("jooble decode: %v", err))
	}

	kept := make([]normalize.JoobleJob, 0, len(ar.Jobs))
	for _, j := range ar.Jobs {
		if !matchesTech(j, tech) {
			continue
		}
		if location != "" && !util.SameLocation(j.Location, location) {
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
		if n := normalize.Job(j, normalize.SourceJooble); n != nil {
			out = append(out, n)
		}
	}

	s.log.Infof("[jooble] kept %d of %d", len(out), len(ar.Jobs))
	return types.SourceResult{Source: s.Name(), Jobs: out}
}

func matchesTech(j normalize.JoobleJob, tech string) bool {
	tech = strings.ToLower(strings.TrimSpace(tech))
	if tech == "" {
		return true
	}
	blob := strings.ToLower(j.Title + " " + j.Snippet)
	return strings.Contains(blob, tech)
}

func matchesType(j normalize.JoobleJob, jobType string) bool {
	want := util.NormalizeToken(jobType)
	if want == "" {
		return true
	}
	if want == "remote" {
		return util.ContainsRemote(j.Type, j.Location)
	}
	return strings.Contains(util.NormalizeToken(j.Type), want)
}

func (s *Source) fail(reason string) types.SourceResult {
	s.log.Warnf("[jooble] %s", reason)
	return types.SourceResult{Source: s.Name(), Err: reason}
}
