package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeToken folds a job-type-ish value for comparison: lowercase with
// spaces, dashes and underscores stripped, so "Full-Time" == "full_time".
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{" ", "-", "_"} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

// ContainsRemote reports whether any of the given fields mentions "remote",
// case-insensitive.
func ContainsRemote(fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "remote") {
			return true
		}
	}
	return false
}

// SameLocation compares two locations trimmed and case-folded.
func SameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// StripHTML reduces an HTML fragment (Jooble snippets, Remotive descriptions)
// to plain text. On parse failure the input is returned cleaned but untouched.
func StripHTML(html string) string {
	if !strings.ContainsRune(html, '<') {
		return CleanText(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CleanText(html)
	}
	return CleanText(doc.Text())
}
