package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(url.Values{})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.PerPage)
	assert.Empty(t, q.TechStack)
}

func TestParseQueryClamp(t *testing.T) {
	tests := []struct {
		name    string
		perPage string
		want    int
	}{
		{"zero", "0", 1},
		{"negative", "-5", 1},
		{"in range", "42", 42},
		{"above max", "500", 100},
		{"garbage keeps default", "abc", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(url.Values{"perPage": {tt.perPage}})
			assert.Equal(t, tt.want, q.PerPage)
		})
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := ParseQuery(url.Values{"techStack": {"go"}, "location": {"Berlin"}, "page": {"2"}})
	b := ParseQuery(url.Values{"page": {"2"}, "location": {"Berlin"}, "techStack": {"go"}})
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c := ParseQuery(url.Values{"techStack": {"go"}, "location": {"Berlin"}, "page": {"3"}})
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())

	// unset filters are serialized verbatim as empty segments
	empty := ParseQuery(url.Values{})
	assert.Equal(t, "jobs:|||||||||1|20", empty.CacheKey())
}
