package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Write stores the digest under dir as digest_YYYY-MM-DD.md or .html and
// returns the path written. The html format converts the markdown content
// and wraps it in a standalone page; anything else is written as markdown.
func Write(content, dir, format string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	date := time.Now().Format("2006-01-02")
	if format == "html" {
		page, err := renderHTML(content, date)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, "digest_"+date+".html")
		if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
			return "", fmt.Errorf("writing digest: %w", err)
		}
		return path, nil
	}

	path := filepath.Join(dir, "digest_"+date+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing digest: %w", err)
	}
	return path, nil
}

func renderHTML(content, date string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return fmt.Sprintf(htmlPage, date, buf.String()), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Scholar Digest - %s</title>
<style>
  body { font-family: Georgia, serif; max-width: 900px; margin: 0 auto; padding: 2em 1em; line-height: 1.6; color: #333; }
  h1 { color: #1a5276; border-bottom: 2px solid #1a5276; padding-bottom: 0.3em; }
  h2 { color: #2980b9; margin-top: 1.5em; }
  h3 { color: #2c3e50; }
  a { color: #2980b9; }
  li { margin: 0.25em 0; }
  blockquote { border-left: 3px solid #2980b9; margin-left: 0; padding-left: 1em; color: #555; }
</style>
</head>
<body>
%s
</body>
</html>
`
