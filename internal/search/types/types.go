package types

import (
	"context"

	"devhub-engine/internal/domain"
)

// SourceResult is what one adapter invocation produces: either a batch of
// normalized jobs or a source-scoped failure reason. Never both.
type SourceResult struct {
	Source string
	Jobs   []*domain.Job
	Err    string // failure reason; empty on success
}

func (r SourceResult) Failed() bool { return r.Err != "" }

// Fetcher is one upstream job source. Fetch applies the source-local filters
// (tech/location/type), truncates to perPage, and normalizes. It must never
// let an upstream error escape; failures come back inside the SourceResult.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, tech, location, jobType string, perPage int) SourceResult
}
