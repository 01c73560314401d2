package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scholarbrief/internal/article"
	"scholarbrief/internal/config"
)

// Summarizer turns a ranked article list into digest prose.
type Summarizer interface {
	Digest(ctx context.Context, articles []article.Article, keywords []string) (string, error)
}

// New creates a Summarizer from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (Summarizer, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	client := &http.Client{Timeout: 120 * time.Second}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		return &claudeProvider{apiKey: apiKey, model: model, client: client, baseURL: "https://api.anthropic.com"}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openaiProvider{apiKey: apiKey, model: model, client: client, baseURL: "https://api.openai.com"}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

const digestPrompt = `You are a research assistant tracking the scholarly literature on: %s.

Below are %d newly found articles, ranked by keyword relevance.

%s

Write a digest in Markdown with these sections:
1. **Overview** - two or three sentences on the overall picture in this batch.
2. **Most relevant articles** - the top articles (at most 5): core finding, why it matters for the focus areas, and the method when notable.
3. **Also appeared** - one line each for the remaining articles.
4. **Reading recommendations** - which two or three articles to read first, and why.

Stay factual and base every statement on the abstracts above.`

// Prompt abstracts get a generous slice; full abstracts can run well past
// the point of diminishing returns.
const maxPromptAbstract = 1000

func formatArticles(articles []article.Article) string {
	var sb strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, a.Title)
		if line := authorLine(a.Authors); line != "" {
			fmt.Fprintf(&sb, "Authors: %s\n", line)
		}
		if a.Year != "" {
			fmt.Fprintf(&sb, "Year: %s\n", a.Year)
		}
		if a.Journal != "" {
			fmt.Fprintf(&sb, "Journal: %s\n", a.Journal)
		}
		if a.Citations > 0 {
			fmt.Fprintf(&sb, "Citations: %d\n", a.Citations)
		}
		fmt.Fprintf(&sb, "Relevance: %.1f", a.RelevanceScore)
		if len(a.MatchedKeywords) > 0 {
			fmt.Fprintf(&sb, " (matched: %s)", strings.Join(a.MatchedKeywords, ", "))
		}
		sb.WriteString("\n")
		if a.Abstract != "" {
			fmt.Fprintf(&sb, "Abstract: %s\n", truncate(a.Abstract, maxPromptAbstract))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func authorLine(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
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

// --- Claude provider ---

type claudeProvider struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *claudeProvider) Digest(ctx context.Context, articles []article.Article, keywords []string) (string, error) {
	prompt := fmt.Sprintf(digestPrompt, strings.Join(keywords, ", "), len(articles), formatArticles(articles))
	return c.call(ctx, prompt)
}

func (c *claudeProvider) call(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("claude API %d: %s", resp.StatusCode, string(b))
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty claude response")
	}
	return cr.Content[0].Text, nil
}

// --- OpenAI provider ---

type openaiProvider struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

type openaiRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiProvider) Digest(ctx context.Context, articles []article.Article, keywords []string) (string, error) {
	prompt := fmt.Sprintf(digestPrompt, strings.Join(keywords, ", "), len(articles), formatArticles(articles))
	return o.call(ctx, prompt)
}

func (o *openaiProvider) call(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(openaiRequest{
		Model:     o.model,
		MaxTokens: 4096,
		Messages:  []openaiMessage{{Role: "user", Content: prompt}},
	})

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var or openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", err
	}
	if len(or.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return or.Choices[0].Message.Content, nil
}
