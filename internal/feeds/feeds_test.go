package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scholarbrief/internal/article"
	"scholarbrief/internal/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Caries Research</title>
  <item>
    <title>Nano-hydroxyapatite toothpaste trial</title>
    <link>https://example.org/chr/1</link>
    <description>&lt;p&gt;Background: a &lt;b&gt;randomized&lt;/b&gt; trial of nHA toothpaste.&lt;/p&gt;</description>
    <author>editor@example.org (R. Meier)</author>
    <category>remineralization</category>
    <category>toothpaste</category>
    <pubDate>Mon, 18 Aug 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Ancient archive item</title>
    <link>https://example.org/chr/0</link>
    <pubDate>Mon, 06 Jan 2020 10:00:00 GMT</pubDate>
  </item>
</channel></rss>`

func testFeedServer(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetchMapsItems(t *testing.T) {
	url := testFeedServer(t, sampleRSS)
	src := config.Feed{Name: "caries-alerts", URL: url, Enabled: true}

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := New().Fetch(context.Background(), src, since)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 item within window, got %d", len(got))
	}

	a := got[0]
	if a.Title != "Nano-hydroxyapatite toothpaste trial" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if a.Journal != "Caries Research" {
		t.Errorf("expected feed title as journal, got %q", a.Journal)
	}
	if a.Abstract != "Background: a randomized trial of nHA toothpaste." {
		t.Errorf("expected stripped abstract, got %q", a.Abstract)
	}
	if a.URL != "https://example.org/chr/1" {
		t.Errorf("unexpected url %q", a.URL)
	}
	if a.Year != "2025" {
		t.Errorf("expected year 2025, got %q", a.Year)
	}
	if len(a.Keywords) != 2 || a.Keywords[0] != "remineralization" {
		t.Errorf("unexpected keywords %v", a.Keywords)
	}
	if a.Source != article.SourceFeed {
		t.Errorf("expected feed source, got %q", a.Source)
	}
}

func TestFetchZeroSinceKeepsEverything(t *testing.T) {
	url := testFeedServer(t, sampleRSS)
	src := config.Feed{Name: "caries-alerts", URL: url}

	got, err := New().Fetch(context.Background(), src, time.Time{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items without cutoff, got %d", len(got))
	}
}

func TestFetchBadFeed(t *testing.T) {
	url := testFeedServer(t, "not a feed")
	if _, err := New().Fetch(context.Background(), config.Feed{Name: "broken", URL: url}, time.Time{}); err == nil {
		t.Error("expected parse error")
	}
}

func TestFetchAllKeepsSourceOrderAndErrors(t *testing.T) {
	good := testFeedServer(t, sampleRSS)
	bad := testFeedServer(t, "nope")

	result := FetchAll(context.Background(), []config.Feed{
		{Name: "first", URL: good},
		{Name: "broken", URL: bad},
		{Name: "second", URL: good},
	}, time.Time{})

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if len(result.Articles) != 4 {
		t.Fatalf("expected 4 articles from 2 good feeds, got %d", len(result.Articles))
	}
	// Slot order: both of feed one's items precede feed two's.
	if result.Articles[0].Title != "Nano-hydroxyapatite toothpaste trial" {
		t.Errorf("unexpected first article %q", result.Articles[0].Title)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	input := "こんにちは世界です"
	got := truncate(input, 5)
	want := "こん..."
	if got != want {
		t.Errorf("truncate(%q, 5) = %q, want %q", input, got, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"<a href=\"url\">Link</a> text", "Link text"},
	}
	for _, tt := range tests {
		got := stripHTML(tt.input)
		if got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
