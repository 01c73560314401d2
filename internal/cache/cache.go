package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scholarbrief/internal/article"
)

// maxSeenTitles bounds the cache so it cannot grow without limit. When
// exceeded, the oldest keys are dropped first.
const maxSeenTitles = 500

// Cache remembers the identity keys of articles that appeared in earlier
// digests, so each run reports only what is new since the last one.
type Cache struct {
	SeenTitles []string `json:"seen_titles"`
	LastRun    string   `json:"last_run,omitempty"`

	path string
}

// Open loads the cache at path. A missing file yields a fresh empty cache.
// An unreadable or malformed file is an error: silently starting over
// would re-report every previously seen article.
func Open(path string) (*Cache, error) {
	c := &Cache{SeenTitles: []string{}, path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading novelty cache: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing novelty cache %s: %w", path, err)
	}
	if c.SeenTitles == nil {
		c.SeenTitles = []string{}
	}
	return c, nil
}

// FilterNew returns the articles whose identity keys are not yet in the
// cache and records those keys as seen. Within a batch the first occurrence
// of a key wins. LastRun is refreshed even when nothing is new. The caller
// owns persisting the updated state via Save.
func (c *Cache) FilterNew(articles []article.Article) []article.Article {
	seen := make(map[string]bool, len(c.SeenTitles))
	for _, k := range c.SeenTitles {
		seen[k] = true
	}

	fresh := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		k := a.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		c.SeenTitles = append(c.SeenTitles, k)
		fresh = append(fresh, a)
	}

	if len(c.SeenTitles) > maxSeenTitles {
		c.SeenTitles = c.SeenTitles[len(c.SeenTitles)-maxSeenTitles:]
	}
	c.LastRun = time.Now().UTC().Format(time.RFC3339)
	return fresh
}

// Save writes the cache to its path, creating parent directories as needed.
func (c *Cache) Save() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding novelty cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing novelty cache: %w", err)
	}
	return nil
}

// Len reports how many identity keys the cache holds.
func (c *Cache) Len() int {
	return len(c.SeenTitles)
}

// LastRunTime parses the LastRun stamp. ok is false when the cache has
// never been saved or the stamp does not parse.
func (c *Cache) LastRunTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, c.LastRun)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
