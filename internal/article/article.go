package article

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Source tags identifying where an article record came from.
const (
	SourceScholar = "google_scholar"
	SourceEndNote = "endnote"
	SourceFeed    = "feed"
)

// Sources lists every known source tag in display order.
var Sources = []string{SourceScholar, SourceEndNote, SourceFeed}

// Year holds a publication year as loosely typed by upstream sources.
// Some emit a JSON string, others a bare number; both decode to the
// decimal string form.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*y = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*y = Year(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("year must be a string or number: %w", err)
	}
	*y = Year(num.String())
	return nil
}

// Article is one scholarly article record. Only Title is load-bearing;
// importers fill the rest with empty defaults so downstream code never
// branches on absence.
type Article struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors,omitempty"`
	Abstract        string   `json:"abstract,omitempty"`
	Year            Year     `json:"year,omitempty"`
	Journal         string   `json:"journal,omitempty"`
	DOI             string   `json:"doi,omitempty"`
	URL             string   `json:"url,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Citations       int      `json:"citations,omitempty"`
	Source          string   `json:"source,omitempty"`
	Query           string   `json:"query,omitempty"`
	RelevanceScore  float64  `json:"relevance_score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Key derives the identity key for a title: lower-cased, stripped of every
// rune outside [a-z0-9], then md5-hashed to 32 hex characters. Titles that
// differ only in case, whitespace, or punctuation share a key. An empty
// title is valid and collides with every other effectively-empty title.
func Key(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Key returns the identity key for the article's title.
func (a Article) Key() string {
	return Key(a.Title)
}

// Link returns the best link for reading the article: the direct URL when
// present, otherwise a doi.org resolver link, otherwise empty.
func (a Article) Link() string {
	if a.URL != "" {
		return a.URL
	}
	if a.DOI != "" {
		return "https://doi.org/" + strings.TrimPrefix(a.DOI, "doi:")
	}
	return ""
}
