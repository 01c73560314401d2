package archive

import (
	"strings"
	"time"
)

// Entry is one archived digest article. Authors and Matched are stored
// comma-joined; the archive only renders them.
type Entry struct {
	Key        string
	Source     string
	Title      string
	Authors    string
	Journal    string
	Year       string
	DOI        string
	URL        string
	Abstract   string
	Citations  int
	Score      float64
	Matched    string
	DigestedAt time.Time
}

// Link returns the best link for reading the entry: its URL when present,
// otherwise a doi.org resolver link, otherwise empty.
func (e Entry) Link() string {
	if e.URL != "" {
		return e.URL
	}
	if e.DOI != "" {
		return "https://doi.org/" + strings.TrimPrefix(e.DOI, "doi:")
	}
	return ""
}

type ListOpts struct {
	Since   time.Time
	Sources []string
	Search  string
	Limit   int
}
