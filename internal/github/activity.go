package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	scanPageSize     = 100
	searchTotalClamp = 1000 // GitHub search only serves the first 1000 results
	historyRepoLimit = 20
)

// DayCount is one bucket of the dated commit history.
type DayCount struct {
	Date  string `json:"date"` // "2006-01-02"
	Count int    `json:"count"`
}

// Activity runs the two commit scanners over the rate-limited client.
type Activity struct {
	client *Client
	log    *zap.SugaredLogger
	now    func() time.Time // test hook
}

func NewActivity(client *Client, log *zap.SugaredLogger) *Activity {
	return &Activity{client: client, log: log, now: time.Now}
}

type commitSearchPage struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Commit struct {
			Author struct {
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	} `json:"items"`
}

// ActiveDays counts the distinct calendar dates with at least one commit
// authored by username since Jan 2 of the current year. Page fetch errors are
// logged and end the walk; whatever was accumulated is returned.
func (a *Activity) ActiveDays(ctx context.Context, username string) int {
	cutoff := time.Date(a.now().Year(), time.January, 2, 0, 0, 0, 0, time.UTC)
	cutoffStr := cutoff.Format("2006-01-02")

	days := map[string]struct{}{}
	total := 0
	for page := 1; ; page++ {
		q := url.QueryEscape(fmt.Sprintf("author:%s author-date:>=%s", username, cutoffStr))
		u := fmt.Sprintf("%s/search/commits?q=%s&per_page=%d&page=%d",
			a.client.BaseURL(), q, scanPageSize, page)

		resp, err := a.client.Do(ctx, u)
		if err != nil {
			a.log.Warnf("[activity] user=%s page=%d: %v", username, page, err)
			break
		}
		var body commitSearchPage
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		status := resp.StatusCode
		resp.Body.Close()
		if status != http.StatusOK || decodeErr != nil {
			a.log.Warnf("[activity] user=%s page=%d status=%d err=%v", username, page, status, decodeErr)
			break
		}

		if page == 1 {
			total = body.TotalCount
			if total > searchTotalClamp {
				total = searchTotalClamp
			}
		}
		if len(body.Items) == 0 {
			break
		}
		for _, it := range body.Items {
			d := it.Commit.Author.Date
			if len(d) < 10 {
				continue
			}
			if d[:10] >= cutoffStr {
				days[d[:10]] = struct{}{}
			}
		}
		if page*scanPageSize >= total {
			break
		}
	}
	return len(days)
}

type repoCommit struct {
	Commit struct {
		Author struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// CommitHistory buckets the user's commit counts by date over the trailing
// 365 days, walking up to the 20 most-recently-updated repositories
// sequentially. A failing repository is skipped, never aborting the scan.
func (a *Activity) CommitHistory(ctx context.Context, username string) []DayCount {
	since := a.now().AddDate(-1, 0, 0)

	repos := a.recentRepos(ctx, username)
	buckets := map[string]int{}
	for _, repo := range repos {
		u := fmt.Sprintf("%s/repos/%s/%s/commits?author=%s&since=%s&per_page=%d",
			a.client.BaseURL(),
			url.PathEscape(username), url.PathEscape(repo.Name),
			url.QueryEscape(username), url.QueryEscape(since.Format(time.RFC3339)),
			scanPageSize)

		resp, err := a.client.Do(ctx, u)
		if err != nil {
			a.log.Warnf("[activity] repo=%s commits failed: %v", repo.Name, err)
			continue
		}
		var commits []repoCommit
		decodeErr := json.NewDecoder(resp.Body).Decode(&commits)
		status := resp.StatusCode
		resp.Body.Close()
		if status != http.StatusOK || decodeErr != nil {
			a.log.Warnf("[activity] repo=%s status=%d err=%v", repo.Name, status, decodeErr)
			continue
		}
		for _, c := range commits {
			d := c.Commit.Author.Date
			if len(d) >= 10 {
				buckets[d[:10]]++
			}
		}
	}

	out := make([]DayCount, 0, len(buckets))
	for d, n := range buckets {
		out = append(out, DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Date < out[k].Date })
	return out
}

func (a *Activity) recentRepos(ctx context.Context, username string) []Repo {
	u := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=%d",
		a.client.BaseURL(), url.PathEscape(username), historyRepoLimit)

	resp, err := a.client.Do(ctx, u)
	if err != nil {
		a.log.Warnf("[activity] user=%s repos failed: %v", username, err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.log.Warnf("[activity] user=%s repos status %d", username, resp.StatusCode)
		return nil
	}
	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		a.log.Warnf("[activity] user=%s repos decode: %v", username, err)
		return nil
	}
	return repos
}
