package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"scholarbrief/internal/article"
)

const resultsPage = `<!DOCTYPE html><html><body>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt"><span class="gs_ctc">[PDF]</span>
    <a href="https://example.org/enamel">Enamel remineralization with fluoride varnish</a></h3>
  <div class="gs_a">J Smith, A Jones… - Journal of Dental Research, 2024 - journals.example.com</div>
  <div class="gs_rs">Fluoride varnish promotes   enamel
remineralization in vitro…</div>
  <div class="gs_fl"><a href="#">Save</a> <a href="/citations">Cited by 42</a> <a href="#">Related articles</a></div>
</div></div>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt"><span>[CITATION]</span> Citation-only result without link</h3>
  <div class="gs_a">K Lee - 2019</div>
  <div class="gs_rs"></div>
  <div class="gs_fl"><a href="#">Related articles</a></div>
</div></div>
</body></html>`

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{httpClient: srv.Client(), baseURL: srv.URL}
}

func TestSearchParsesResults(t *testing.T) {
	var gotQuery map[string][]string
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(resultsPage))
	})

	got, err := c.Search(context.Background(), `"remineralization"`, SearchOpts{MaxResults: 10, YearFrom: 2023})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}

	first := got[0]
	if first.Title != "Enamel remineralization with fluoride varnish" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.URL != "https://example.org/enamel" {
		t.Errorf("unexpected url %q", first.URL)
	}
	if !reflect.DeepEqual(first.Authors, []string{"J Smith", "A Jones"}) {
		t.Errorf("unexpected authors %v", first.Authors)
	}
	if first.Journal != "Journal of Dental Research" || first.Year != "2024" {
		t.Errorf("unexpected journal/year %q/%q", first.Journal, first.Year)
	}
	if first.Abstract != "Fluoride varnish promotes enamel remineralization in vitro…" {
		t.Errorf("expected whitespace-collapsed snippet, got %q", first.Abstract)
	}
	if first.Citations != 42 {
		t.Errorf("expected 42 citations, got %d", first.Citations)
	}
	if first.Source != article.SourceScholar || first.Query != `"remineralization"` {
		t.Errorf("unexpected source/query %q/%q", first.Source, first.Query)
	}

	second := got[1]
	if second.Title != "Citation-only result without link" {
		t.Errorf("expected marker stripped, got %q", second.Title)
	}
	if second.URL != "" {
		t.Errorf("expected no url, got %q", second.URL)
	}
	if second.Year != "2019" || second.Journal != "" {
		t.Errorf("unexpected year/journal %q/%q", second.Year, second.Journal)
	}

	if gotQuery["as_ylo"][0] != "2023" {
		t.Errorf("expected as_ylo=2023, got %v", gotQuery["as_ylo"])
	}
	if gotQuery["num"][0] != "10" {
		t.Errorf("expected num=10, got %v", gotQuery["num"])
	}
}

func TestSearchCapsResults(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	})
	got, err := c.Search(context.Background(), "x", SearchOpts{MaxResults: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 result, got %d", len(got))
	}
}

func TestSearchRateLimited(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := c.Search(context.Background(), "x", SearchOpts{}); err == nil {
		t.Error("expected rate limit error")
	}
}

func TestSearchServerError(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := c.Search(context.Background(), "x", SearchOpts{}); err == nil {
		t.Error("expected status error")
	}
}

func TestSearchEmptyPage(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><div id='gs_res_ccl_mid'></div></body></html>"))
	})
	got, err := c.Search(context.Background(), "x", SearchOpts{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestParseByline(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantAuthors []string
		wantJournal string
		wantYear    article.Year
	}{
		{
			"full",
			"J Smith, A Jones - Caries Research, 2023 - karger.com",
			[]string{"J Smith", "A Jones"}, "Caries Research", "2023",
		},
		{
			"no venue",
			"K Lee - 2019",
			[]string{"K Lee"}, "", "2019",
		},
		{
			"authors only",
			"M Chen",
			[]string{"M Chen"}, "", "",
		},
		{
			"ellipsis author dropped",
			"J Smith, … - Dental Materials, 2022 - sciencedirect.com",
			[]string{"J Smith"}, "Dental Materials", "2022",
		},
		{
			"empty",
			"",
			nil, "", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authors, journal, year := parseByline(tt.in)
			if !reflect.DeepEqual(authors, tt.wantAuthors) {
				t.Errorf("authors: expected %v, got %v", tt.wantAuthors, authors)
			}
			if journal != tt.wantJournal {
				t.Errorf("journal: expected %q, got %q", tt.wantJournal, journal)
			}
			if year != tt.wantYear {
				t.Errorf("year: expected %q, got %q", tt.wantYear, year)
			}
		})
	}
}

func TestParseCitedBy(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"Cited by 42", 42, true},
		{"Cited by 1", 1, true},
		{"Related articles", 0, false},
		{"Cited by many", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCitedBy(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseCitedBy(%q) = %d, %v; expected %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
