package search

import (
	"context"

	"devhub-engine/internal/cache"
)

// Service wraps the aggregator with the query-fingerprint cache. Identical
// queries inside the TTL window are served from the stored page, aggregator
// untouched.
type Service struct {
	agg   *Aggregator
	cache *cache.Store
}

func NewService(agg *Aggregator, c *cache.Store) *Service {
	return &Service{agg: agg, cache: c}
}

// Search returns the page for q plus whether it came from cache.
func (s *Service) Search(ctx context.Context, q Query) (Result, bool) {
	key := q.CacheKey()
	if v, ok := s.cache.Get(key); ok {
		if r, ok := v.(Result); ok {
			return r, true
		}
	}
	r := s.agg.Search(ctx, q)
	s.cache.Put(key, r)
	return r, false
}
