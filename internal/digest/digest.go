package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scholarbrief/internal/ai"
	"scholarbrief/internal/article"
)

// Fallback abstracts are cut well before prompt-sized ones; the listing is
// meant for skimming.
const maxFallbackAbstract = 300

// Header opens every digest with the date and the run's key counts.
func Header(queries, articles int) string {
	return fmt.Sprintf("# Scholar Digest: %s\n\n**Search queries:** %d | **New articles:** %d\n\n",
		time.Now().Format("2006-01-02"), queries, articles)
}

// Render produces the digest body for the ranked articles: the summarizer's
// prose when one is available, otherwise the plain ranked listing. A failed
// AI call falls back to the listing rather than aborting the run.
func Render(ctx context.Context, articles []article.Article, keywords []string, s ai.Summarizer) string {
	if s != nil {
		text, err := s.Digest(ctx, articles, keywords)
		if err == nil {
			return strings.TrimSpace(text) + "\n"
		}
		slog.Warn("AI digest failed, falling back to ranked listing", "error", err)
	}
	return Fallback(articles)
}

// Fallback renders the ranked listing used when no AI digest is available.
// Articles arrive ranked; their order is preserved.
func Fallback(articles []article.Article) string {
	var sb strings.Builder
	sb.WriteString("## Ranked articles (no AI summary)\n\n")
	for i, a := range articles {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, a.Title)
		if len(a.Authors) > 0 {
			n := min(len(a.Authors), 3)
			fmt.Fprintf(&sb, "- **Authors:** %s\n", strings.Join(a.Authors[:n], ", "))
		}
		if a.Year != "" {
			fmt.Fprintf(&sb, "- **Year:** %s\n", a.Year)
		}
		if a.Journal != "" {
			fmt.Fprintf(&sb, "- **Journal:** %s\n", a.Journal)
		}
		fmt.Fprintf(&sb, "- **Relevance:** %.1f", a.RelevanceScore)
		if len(a.MatchedKeywords) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(a.MatchedKeywords, ", "))
		}
		sb.WriteString("\n")
		if a.Abstract != "" {
			fmt.Fprintf(&sb, "- **Abstract:** %s\n", truncate(a.Abstract, maxFallbackAbstract))
		}
		if link := a.Link(); link != "" {
			fmt.Fprintf(&sb, "- **Link:** %s\n", link)
		}
		sb.WriteString("\n")
	}
	return sb.String()
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
