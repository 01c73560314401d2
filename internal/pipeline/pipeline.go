package pipeline

import (
	"fmt"
	"sort"

	"scholarbrief/internal/article"
	"scholarbrief/internal/cache"
	"scholarbrief/internal/relevance"
)

// Dedupe collapses articles sharing an identity key, keeping the first
// occurrence in input order. The input is never mutated.
func Dedupe(articles []article.Article) []article.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		k := a.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// Reconcile merges the raw batches from every source into the ranked list
// of articles for this run: flatten in batch order, dedupe, drop what
// earlier runs already reported, score against the keywords, then sort by
// score descending. The sort is stable, so equal scores keep their
// post-dedupe order. The updated novelty cache is saved before returning;
// a save failure aborts the run, since losing it would mean re-reporting
// everything next time.
//
// An empty result is a normal outcome, not an error.
func Reconcile(batches [][]article.Article, keywords []string, seen *cache.Cache) ([]article.Article, error) {
	var all []article.Article
	for _, b := range batches {
		all = append(all, b...)
	}

	fresh := seen.FilterNew(Dedupe(all))
	if err := seen.Save(); err != nil {
		return nil, fmt.Errorf("saving novelty cache: %w", err)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	for i := range fresh {
		relevance.Score(&fresh[i], keywords)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].RelevanceScore > fresh[j].RelevanceScore
	})
	return fresh, nil
}
