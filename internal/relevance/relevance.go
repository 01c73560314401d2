package relevance

import (
	"strings"

	"scholarbrief/internal/article"
)

// Keywords appearing in the title count extra on top of their text matches.
const titleBonus = 3.0

// Score rates how well an article matches the configured keywords and
// stores the result on the article. The score is the total occurrence
// count of each keyword across title, abstract, and keyword list, plus a
// 3.0 bonus per keyword present in the title. Matching is case-insensitive
// and substring-based. MatchedKeywords keeps the caller's order and casing.
func Score(a *article.Article, keywords []string) float64 {
	blob := strings.ToLower(a.Title + " " + a.Abstract + " " + strings.Join(a.Keywords, " "))
	title := strings.ToLower(a.Title)

	var score float64
	var matched []string
	for _, kw := range keywords {
		if n := strings.Count(blob, strings.ToLower(kw)); n > 0 {
			score += float64(n)
			matched = append(matched, kw)
		}
	}
	for _, kw := range keywords {
		if strings.Contains(title, strings.ToLower(kw)) {
			score += titleBonus
		}
	}

	a.RelevanceScore = score
	a.MatchedKeywords = matched
	return score
}
