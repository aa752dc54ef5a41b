package github

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devhub-engine/internal/cache"

	"go.uber.org/zap"
)

const (
	searchPageSize = 5
	ownReposLimit  = 6

	// stars floor for repo search is randomized inside these bounds per call
	// to vary result diversity
	starsFloorLow  = 100
	starsFloorHigh = 2000

	// extra pause between per-technology calls, only applied when the batch
	// is larger than seqDelayThreshold
	seqDelayThreshold = 3
	seqDelay          = 500 * time.Millisecond

	// RateLimitMessage is the distinguished message surfaced when GitHub
	// explicitly signals quota exhaustion.
	RateLimitMessage = "Rate limit exceeded"
)

// DefaultTechnologies backs users who never declared a stack.
var DefaultTechnologies = []string{"javascript", "python", "react", "node"}

// Repo is the projected field subset kept from GitHub's repository records.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	UpdatedAt   string `json:"updated_at"`
}

// TechResult is the per-technology search outcome. A failed fetch carries its
// reason in Error and an empty repository list; the batch keeps going.
type TechResult struct {
	Technology   string `json:"technology"`
	Repositories []Repo `json:"repositories"`
	Count        int    `json:"count"`
	Error        string `json:"error,omitempty"`
}

// BatchResult is a user's full technology-to-repositories result set.
type BatchResult struct {
	Success           bool         `json:"success"`
	Technologies      []TechResult `json:"technologies"`
	TotalTechnologies int          `json:"totalTechnologies"`
	Message           string       `json:"message"`
}

// OwnReposResult is the most-recently-updated slice of a user's own repos.
type OwnReposResult struct {
	Success      bool   `json:"success"`
	Repositories []Repo `json:"repositories"`
	Message      string `json:"message,omitempty"`
}

// RepoService layers three independent TTL caches over the rate-limited
// client: per-technology search, per-user tech batch, per-user own repos.
type RepoService struct {
	client     *Client
	techCache  *cache.Store
	batchCache *cache.Store
	ownCache   *cache.Store
	defaults   []string
	log        *zap.SugaredLogger

	// test hooks
	sleep func(ctx context.Context, d time.Duration)
	intn  func(n int) int
}

func NewRepoService(client *Client, ttl time.Duration, defaults []string, log *zap.SugaredLogger) *RepoService {
	if len(defaults) == 0 {
		defaults = DefaultTechnologies
	}
	return &RepoService{
		client:     client,
		techCache:  cache.New(ttl),
		batchCache: cache.New(ttl),
		ownCache:   cache.New(ttl),
		defaults:   defaults,
		log:        log,
		sleep:      sleepCtx,
		intn:       rand.Intn,
	}
}

// TechRepos returns the repository search result for one technology, cached
// by technology name. Failures are captured in the result (never an error)
// and never cached.
func (s *RepoService) TechRepos(ctx context.Context, tech string) (TechResult, bool) {
	key := "tech:" + strings.ToLower(strings.TrimSpace(tech))
	if v, ok := s.techCache.Get(key); ok {
		if r, ok := v.(TechResult); ok {
			return r, true
		}
	}

	r := s.fetchTechRepos(ctx, tech)
	if r.Error == "" {
		s.techCache.Put(key, r)
	}
	return r, false
}

func (s *RepoService) fetchTechRepos(ctx context.Context, tech string) TechResult {
	stars := starsFloorLow + s.intn(starsFloorHigh-starsFloorLow)
	q := url.QueryEscape(fmt.Sprintf("%s stars:>%d", tech, stars))
	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		s.client.BaseURL(), q, searchPageSize)

	resp, err := s.client.Do(ctx, u)
	if err != nil {
		s.log.Warnf("[github] tech=%s search failed: %v", tech, err)
		return TechResult{Technology: tech, Repositories: []Repo{}, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warnf("[github] tech=%s search status %d", tech, resp.StatusCode)
		return TechResult{Technology: tech, Repositories: []Repo{}, Error: statusMessage(resp.StatusCode)}
	}

	var body struct {
		Items []Repo `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TechResult{Technology: tech, Repositories: []Repo{}, Error: fmt.Sprintf("decode: %v", err)}
	}
	return TechResult{Technology: tech, Repositories: body.Items, Count: len(body.Items)}
}

// UserTechnologies builds (or serves from cache) the ordered per-technology
// result set for one user, iterating sequentially to respect the shared
// GitHub quota. Each technology's result is also cached individually via
// TechRepos.
func (s *RepoService) UserTechnologies(ctx context.Context, userID string, techs []string) (BatchResult, bool) {
	key := "user:" + userID
	if v, ok := s.batchCache.Get(key); ok {
		if r, ok := v.(BatchResult); ok {
			return r, true
		}
	}

	if len(techs) == 0 {
		techs = s.defaults
	}

	out := make([]TechResult, 0, len(techs))
	rateLimited := false
	for i, tech := range techs {
		if i > 0 && len(techs) > seqDelayThreshold {
			s.sleep(ctx, seqDelay)
		}
		r, _ := s.TechRepos(ctx, tech)
		if r.Error == RateLimitMessage {
			rateLimited = true
		}
		out = append(out, r)
	}

	batch := BatchResult{
		Success:           true,
		Technologies:      out,
		TotalTechnologies: len(out),
		Message:           fmt.Sprintf("Fetched repositories for %d technologies", len(out)),
	}
	if rateLimited {
		batch.Message = RateLimitMessage
	}
	s.batchCache.Put(key, batch)
	return batch, false
}

// OwnRepos returns the user's most-recently-updated repositories, cached by
// username.
func (s *RepoService) OwnRepos(ctx context.Context, username string) (OwnReposResult, bool) {
	key := "own:" + strings.ToLower(strings.TrimSpace(username))
	if v, ok := s.ownCache.Get(key); ok {
		if r, ok := v.(OwnReposResult); ok {
			return r, true
		}
	}

	u := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=%d",
		s.client.BaseURL(), url.PathEscape(username), ownReposLimit)

	resp, err := s.client.Do(ctx, u)
	if err != nil {
		s.log.Warnf("[github] user=%s repos failed: %v", username, err)
		return OwnReposResult{Repositories: []Repo{}, Message: err.Error()}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OwnReposResult{Repositories: []Repo{}, Message: statusMessage(resp.StatusCode)}, false
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return OwnReposResult{Repositories: []Repo{}, Message: fmt.Sprintf("decode: %v", err)}, false
	}

	r := OwnReposResult{Success: true, Repositories: repos}
	s.ownCache.Put(key, r)
	return r, false
}

func statusMessage(status int) string {
	if status == http.StatusForbidden {
		return RateLimitMessage
	}
	return fmt.Sprintf("github status %d", status)
}
