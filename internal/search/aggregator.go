package search

import (
	"context"
	"sort"
	"time"

	"devhub-engine/internal/domain"
	"devhub-engine/internal/search/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Each source gets asked for a generously large page regardless of the
// caller's perPage, so the global filter/sort stage has a real candidate pool.
const sourceFetchCap = 50

// Result is one computed page of the aggregated search. Errors maps source
// name to its failure reason; a failing source contributes nothing else.
type Result struct {
	Jobs   []*domain.Job     `json:"jobs"`
	Total  int               `json:"total"`
	Errors map[string]string `json:"errors"`
}

type Aggregator struct {
	fetchers []types.Fetcher
	log      *zap.SugaredLogger
	now      func() time.Time // test hook
}

func NewAggregator(fetchers []types.Fetcher, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{fetchers: fetchers, log: log, now: time.Now}
}

// Search fans out to every source concurrently, joins all of them (one
// source failing never cancels the siblings), then filters, sorts and
// paginates the merged pool. It never returns an error: even all sources
// failing yields an empty page with Errors populated.
func (a *Aggregator) Search(ctx context.Context, q Query) Result {
	results := make(chan types.SourceResult, len(a.fetchers))

	var g errgroup.Group
	for _, f := range a.fetchers {
		f := f
		g.Go(func() error {
			results <- f.Fetch(ctx, q.TechStack, q.Location, q.JobType, sourceFetchCap)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	pool := make([]*domain.Job, 0, sourceFetchCap*len(a.fetchers))
	errs := map[string]string{}
	for r := range results {
		if r.Failed() {
			errs[r.Source] = r.Err
			a.log.Warnf("[aggregate] source=%s failed: %s", r.Source, r.Err)
			continue
		}
		for _, j := range r.Jobs {
			if j == nil {
				continue
			}
			pool = append(pool, j)
		}
	}

	pool = applyFilters(pool, q, a.now())

	sort.SliceStable(pool, func(i, k int) bool {
		return publishedAt(pool[i]).After(publishedAt(pool[k]))
	})

	total := len(pool)
	page := paginate(pool, q.Page, clampPerPage(q.PerPage))

	a.log.Infof("[aggregate] total=%d page=%d returned=%d errors=%d",
		total, q.Page, len(page), len(errs))
	return Result{Jobs: page, Total: total, Errors: errs}
}

func paginate(jobs []*domain.Job, page, perPage int) []*domain.Job {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(jobs) {
		return []*domain.Job{}
	}
	end := start + perPage
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}
