package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scholarbrief/internal/archive"
)

func renderPreview(e *archive.Entry, width, height, scroll int) string {
	if e == nil {
		return centerText("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(e.Title)

	venue := sourceLabel(e.Source)
	if e.Journal != "" {
		venue = e.Journal
		if e.Year != "" {
			venue += " (" + e.Year + ")"
		}
	}
	meta := previewMetaStyle.Render(
		fmt.Sprintf("%s · digested %s", venue, e.DigestedAt.Format("Jan 2, 2006")),
	)

	sections := []string{title, meta}

	if e.Authors != "" {
		sections = append(sections, previewBodyStyle.Width(contentWidth).Render(e.Authors))
	}

	score := fmt.Sprintf("Relevance %.1f", e.Score)
	if e.Matched != "" {
		score += " · matched: " + e.Matched
	}
	if e.Citations > 0 {
		score += fmt.Sprintf(" · cited by %d", e.Citations)
	}
	sections = append(sections, previewScoreStyle.Width(contentWidth).Render(score))

	abstract := e.Abstract
	if abstract == "" {
		abstract = "(No abstract available)"
	}
	sections = append(sections, "", previewBodyStyle.Width(contentWidth).Render(wrapText(abstract, contentWidth)))

	if link := e.Link(); link != "" {
		sections = append(sections, "", previewLinkStyle.Width(contentWidth).Render("Read: "+link))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
