package feeds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"scholarbrief/internal/article"
	"scholarbrief/internal/config"
)

// Journal alert descriptions routinely embed the full abstract; keep a
// generous slice of it for scoring.
const maxAbstract = 500

// Fetcher pulls articles from journal alert feeds (RSS or Atom).
type Fetcher struct {
	parser *gofeed.Parser
}

func New() *Fetcher {
	return &Fetcher{parser: gofeed.NewParser()}
}

// Fetch parses one feed and maps its items to articles. Items published
// before since are skipped; items without any date are kept.
func (f *Fetcher) Fetch(ctx context.Context, src config.Feed, since time.Time) ([]article.Article, error) {
	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", src.Name, err)
	}

	journal := src.Name
	if feed.Title != "" {
		journal = feed.Title
	}

	now := time.Now()
	articles := make([]article.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}
		if !since.IsZero() && pub.Before(since) {
			continue
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		var authors []string
		for _, p := range item.Authors {
			if p != nil && p.Name != "" {
				authors = append(authors, p.Name)
			}
		}

		articles = append(articles, article.Article{
			Title:    strings.TrimSpace(item.Title),
			Authors:  authors,
			Abstract: truncate(stripHTML(desc), maxAbstract),
			Year:     article.Year(pub.Format("2006")),
			Journal:  journal,
			URL:      item.Link,
			Keywords: item.Categories,
			Source:   article.SourceFeed,
		})
	}
	return articles, nil
}

// Result carries whatever FetchAll could get. Feeds that failed contribute
// an error instead of aborting the others.
type Result struct {
	Articles []article.Article
	Errors   []error
}

// FetchAll fetches every feed concurrently. Articles keep the order of the
// sources slice so downstream ranking stays deterministic.
func FetchAll(ctx context.Context, sources []config.Feed, since time.Time) Result {
	batches := make([][]article.Article, len(sources))
	errs := make([]error, len(sources))

	fetcher := New()
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, s config.Feed) {
			defer wg.Done()
			batches[i], errs[i] = fetcher.Fetch(ctx, s, since)
		}(i, src)
	}
	wg.Wait()

	var result Result
	for i := range sources {
		if errs[i] != nil {
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		result.Articles = append(result.Articles, batches[i]...)
	}
	return result
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
