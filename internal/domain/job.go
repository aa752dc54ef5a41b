package domain

// Job is the canonical shape every source gets normalized into.
// Every field is always present; absent upstream values are defaulted to ""
// (or a fixed fallback label) so downstream filters never branch on absence.
type Job struct {
	ID              string `json:"id"` // source-prefixed, e.g. "remotive-12345"
	Title           string `json:"title"`
	CompanyName     string `json:"companyName"`
	Location        string `json:"location"`
	URL             string `json:"url"`
	PublicationDate string `json:"publicationDate"` // ISO-8601 or ""
	JobType         string `json:"jobType"`
	Salary          string `json:"salary"` // "low-high" or free text or ""
	Experience      string `json:"experience"`
	RemoteType      string `json:"remoteType"` // "remote" or ""
	Description     string `json:"description"`
}
