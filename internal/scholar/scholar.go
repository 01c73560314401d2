package scholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scholarbrief/internal/article"
)

const defaultBaseURL = "https://scholar.google.com"

// Scholar serves bot-looking clients a captcha page, so requests carry a
// browser user agent. Heavy query volume still gets rate limited.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client fetches search results from Google Scholar.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// SearchOpts narrow a query.
type SearchOpts struct {
	MaxResults int // results to keep, at most one page (20)
	YearFrom   int // publication year lower bound, 0 disables
}

// Search runs one Scholar query and parses the organic results. Results
// are tagged with the scholar source and the originating query.
func (c *Client) Search(ctx context.Context, query string, opts SearchOpts) ([]article.Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("as_sdt", "0,5")
	if opts.YearFrom > 0 {
		q.Set("as_ylo", strconv.Itoa(opts.YearFrom))
	}
	if opts.MaxResults > 0 && opts.MaxResults <= 20 {
		q.Set("num", strconv.Itoa(opts.MaxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scholar?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building scholar request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching scholar results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("scholar rate limited query %q", query)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scholar returned status %d for query %q", resp.StatusCode, query)
	}

	articles, err := parseResults(resp.Body, query)
	if err != nil {
		return nil, err
	}
	if opts.MaxResults > 0 && len(articles) > opts.MaxResults {
		articles = articles[:opts.MaxResults]
	}
	return articles, nil
}

func parseResults(r io.Reader, query string) ([]article.Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing scholar page: %w", err)
	}

	var out []article.Article
	doc.Find("div.gs_ri").Each(func(_ int, item *goquery.Selection) {
		titleSel := item.Find("h3.gs_rt")
		// Drop the [PDF], [BOOK], [CITATION] markers.
		titleSel.Find("span").Remove()
		title := clean(titleSel.Text())
		if title == "" {
			return
		}

		a := article.Article{
			Title:    title,
			Abstract: clean(item.Find("div.gs_rs").Text()),
			Source:   article.SourceScholar,
			Query:    query,
		}
		if href, ok := titleSel.Find("a").First().Attr("href"); ok {
			a.URL = href
		}
		a.Authors, a.Journal, a.Year = parseByline(item.Find("div.gs_a").Text())
		item.Find("div.gs_fl a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			if n, ok := parseCitedBy(link.Text()); ok {
				a.Citations = n
				return false
			}
			return true
		})
		out = append(out, a)
	})
	return out, nil
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// parseByline splits the result metadata line, typically
// "A Author, B Author - Journal of X, 2024 - journals.example.com".
// Every part is optional in practice.
func parseByline(s string) (authors []string, journal string, year article.Year) {
	parts := strings.Split(s, " - ")
	for _, name := range strings.Split(parts[0], ",") {
		if name = clean(strings.Trim(name, "…  ")); name != "" {
			authors = append(authors, name)
		}
	}
	if len(parts) > 1 {
		venue := strings.TrimSpace(parts[1])
		if ys := yearRe.FindAllString(venue, -1); len(ys) > 0 {
			y := ys[len(ys)-1]
			year = article.Year(y)
			venue = strings.TrimSpace(strings.TrimSuffix(venue, y))
		}
		journal = strings.Trim(venue, " ,…")
	}
	return authors, journal, year
}

func parseCitedBy(s string) (int, bool) {
	after, ok := strings.CutPrefix(strings.TrimSpace(s), "Cited by ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil {
		return 0, false
	}
	return n, true
}

// clean collapses runs of whitespace into single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
