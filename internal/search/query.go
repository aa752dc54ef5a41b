package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Query carries every job-search filter plus pagination. All filter fields are
// optional; "" means unset. Salary bounds stay strings so the cache key can
// substitute them verbatim.
type Query struct {
	TechStack       string
	Location        string
	JobType         string
	SalaryMin       string
	SalaryMax       string
	ExperienceLevel string
	Company         string
	DatePosted      string // "24h", "7d", anything else means no cutoff
	RemoteType      string
	Page            int
	PerPage         int
}

// ParseQuery builds a Query from request parameters, applying the page
// defaults and the [1,100] perPage clamp.
func ParseQuery(v url.Values) Query {
	q := Query{
		TechStack:       strings.TrimSpace(v.Get("techStack")),
		Location:        strings.TrimSpace(v.Get("location")),
		JobType:         strings.TrimSpace(v.Get("jobType")),
		SalaryMin:       strings.TrimSpace(v.Get("salaryMin")),
		SalaryMax:       strings.TrimSpace(v.Get("salaryMax")),
		ExperienceLevel: strings.TrimSpace(v.Get("experienceLevel")),
		Company:         strings.TrimSpace(v.Get("company")),
		DatePosted:      strings.TrimSpace(v.Get("datePosted")),
		RemoteType:      strings.TrimSpace(v.Get("remoteType")),
		Page:            1,
		PerPage:         defaultPerPage,
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("perPage")); err == nil {
		q.PerPage = n
	}
	q.PerPage = clampPerPage(q.PerPage)
	return q
}

func clampPerPage(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxPerPage {
		return maxPerPage
	}
	return n
}

// CacheKey is an order-stable serialization of every filter plus pagination.
// Unset filters contribute empty segments so two logically identical queries
// always collide.
func (q Query) CacheKey() string {
	return fmt.Sprintf("jobs:%s|%s|%s|%s|%s|%s|%s|%s|%s|%d|%d",
		q.TechStack, q.Location, q.JobType,
		q.SalaryMin, q.SalaryMax,
		q.ExperienceLevel, q.Company, q.DatePosted, q.RemoteType,
		q.Page, clampPerPage(q.PerPage),
	)
}
