package search

import (
	"strconv"
	"strings"
	"time"

	"devhub-engine/internal/domain"
)

// applyFilters runs the cross-source filters in a fixed order. Each filter is
// independent and only active when its query field is set.
func applyFilters(jobs []*domain.Job, q Query, now time.Time) []*domain.Job {
	out := jobs

	if min, ok := parseNumber(q.SalaryMin); ok {
		out = keep(out, func(j *domain.Job) bool {
			low, _, has := parseSalaryRange(j.Salary)
			// a missing salary never excludes
			return !has || low >= min
		})
	}
	if max, ok := parseNumber(q.SalaryMax); ok {
		out = keep(out, func(j *domain.Job) bool {
			_, high, has := parseSalaryRange(j.Salary)
			return !has || high <= max
		})
	}
	if q.ExperienceLevel != "" {
		want := strings.ToLower(q.ExperienceLevel)
		out = keep(out, func(j *domain.Job) bool {
			return strings.Contains(strings.ToLower(j.Experience+" "+j.Title), want)
		})
	}
	if q.Company != "" {
		want := strings.ToLower(q.Company)
		out = keep(out, func(j *domain.Job) bool {
			return strings.Contains(strings.ToLower(j.CompanyName), want)
		})
	}
	if cutoff, ok := dateCutoff(q.DatePosted, now); ok {
		out = keep(out, func(j *domain.Job) bool {
			// unparsable dates come back as the zero time, which is always
			// before any real cutoff, so they drop out here
			return !publishedAt(j).Before(cutoff)
		})
	}
	if q.RemoteType != "" {
		want := strings.ToLower(q.RemoteType)
		out = keep(out, func(j *domain.Job) bool {
			return j.RemoteType == want
		})
	}
	return out
}

func keep(jobs []*domain.Job, pred func(*domain.Job) bool) []*domain.Job {
	out := jobs[:0:0]
	for _, j := range jobs {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out
}

func dateCutoff(datePosted string, now time.Time) (time.Time, bool) {
	switch datePosted {
	case "24h":
		return now.Add(-24 * time.Hour), true
	case "7d":
		return now.Add(-7 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// parseSalaryRange reads a "low-high" salary string. has is false when the
// value carries no parseable range (empty or free text).
func parseSalaryRange(s string) (low, high float64, has bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, ok1 := parseNumber(parts[0])
	high, ok2 := parseNumber(parts[1])
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return low, high, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", "k", "000", "K", "000").Replace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// publishedAt parses a job's publication date; unparsable dates collapse to
// the zero time so they sort last and miss every cutoff.
func publishedAt(j *domain.Job) time.Time {
	s := strings.TrimSpace(j.PublicationDate)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
