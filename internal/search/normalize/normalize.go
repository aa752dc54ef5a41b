// Package normalize owns the raw schemas of the three job upstreams and the
// single mapping of each into the canonical domain.Job. Adding a source means
// adding one raw type and one case here; filter/sort code never changes.
package normalize

import (
	"fmt"
	"strings"

	"devhub-engine/internal/domain"
	"devhub-engine/internal/search/util"
)

// Source tags. Adapters pass these to Normalize and prefix job IDs with them.
const (
	SourceRemotive = "remotive"
	SourceAdzuna   = "adzuna"
	SourceJooble   = "jooble"
)

const (
	fallbackTitle   = "Untitled Position"
	fallbackCompany = "Unknown Company"
)

// RemotiveJob is one record from the Remotive remote-jobs API.
type RemotiveJob struct {
	ID                        int64    `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

// AdzunaJob is one record from the Adzuna search API.
type AdzunaJob struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	ContractTime string  `json:"contract_time"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	Description  string  `json:"description"`
}

// JoobleJob is one record from the Jooble POST API. Jooble pads absent fields
// with a literal "*" placeholder, which Normalize treats as missing.
type JoobleJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Link     string `json:"link"`
	Updated  string `json:"updated"`
	Type     string `json:"type"`
	Salary   string `json:"salary"`
	Snippet  string `json:"snippet"`
}

// Job maps one raw record into the canonical shape. Pure, no I/O. Every field
// of the result is populated (possibly with "" or a fallback label); nil is
// returned only when the source tag or raw type is unrecognized.
func Job(raw any, source string) *domain.Job {
	switch source {
	case SourceRemotive:
		r, ok := raw.(RemotiveJob)
		if !ok {
			return nil
		}
		return fromRemotive(r)
	case SourceAdzuna:
		r, ok := raw.(AdzunaJob)
		if !ok {
			return nil
		}
		return fromAdzuna(r)
	case SourceJooble:
		r, ok := raw.(JoobleJob)
		if !ok {
			return nil
		}
		return fromJooble(r)
	default:
		return nil
	}
}

func fromRemotive(r RemotiveJob) *domain.Job {
	remote := ""
	if util.ContainsRemote(r.JobType, r.CandidateRequiredLocation, strings.Join(r.Tags, " ")) {
		remote = "remote"
	}
	return &domain.Job{
		ID:              fmt.Sprintf("%s-%d", SourceRemotive, r.ID),
		Title:           orFallback(r.Title, fallbackTitle),
		CompanyName:     orFallback(r.CompanyName, fallbackCompany),
		Location:        util.CleanText(r.CandidateRequiredLocation),
		URL:             strings.TrimSpace(r.URL),
		PublicationDate: strings.TrimSpace(r.PublicationDate),
		JobType:         strings.TrimSpace(r.JobType),
		Salary:          util.CleanText(r.Salary),
		Experience:      "",
		RemoteType:      remote,
		Description:     util.StripHTML(r.Description),
	}
}

func fromAdzuna(r AdzunaJob) *domain.Job {
	salary := ""
	if r.SalaryMin > 0 || r.SalaryMax > 0 {
		salary = fmt.Sprintf("%.0f-%.0f", r.SalaryMin, r.SalaryMax)
	}
	remote := ""
	if util.ContainsRemote(r.ContractTime, r.Location.DisplayName, r.Title) {
		remote = "remote"
	}
	return &domain.Job{
		ID:              fmt.Sprintf("%s-%s", SourceAdzuna, r.ID),
		Title:           orFallback(r.Title, fallbackTitle),
		CompanyName:     orFallback(r.Company.DisplayName, fallbackCompany),
		Location:        util.CleanText(r.Location.DisplayName),
		URL:             strings.TrimSpace(r.RedirectURL),
		PublicationDate: strings.TrimSpace(r.Created),
		JobType:         strings.TrimSpace(r.ContractTime),
		Salary:          salary,
		Experience:      "",
		RemoteType:      remote,
		Description:     util.StripHTML(r.Description),
	}
}

func fromJooble(r JoobleJob) *domain.Job {
	title := placeholder(r.Title)
	company := placeholder(r.Company)
	location := placeholder(r.Location)
	link := placeholder(r.Link)
	updated := placeholder(r.Updated)

	remote := ""
	if util.ContainsRemote(r.Type, location) {
		remote = "remote"
	}
	return &domain.Job{
		ID:              fmt.Sprintf("%s-%d", SourceJooble, r.ID),
		Title:           orFallback(title, fallbackTitle),
		CompanyName:     orFallback(company, fallbackCompany),
		Location:        util.CleanText(location),
		URL:             strings.TrimSpace(link),
		PublicationDate: strings.TrimSpace(updated),
		JobType:         strings.TrimSpace(r.Type),
		Salary:          util.CleanText(placeholder(r.Salary)),
		Experience:      "",
		RemoteType:      remote,
		Description:     util.StripHTML(r.Snippet),
	}
}

// placeholder treats Jooble's literal "*" as an absent value.
func placeholder(s string) string {
	if strings.TrimSpace(s) == "*" {
		return ""
	}
	return s
}

func orFallback(s, fallback string) string {
	s = util.CleanText(s)
	if s == "" {
		return fallback
	}
	return s
}
