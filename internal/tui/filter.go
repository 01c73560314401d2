package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scholarbrief/internal/article"
)

// sourceLabels maps raw source tags to the short names shown in the
// filter bar. Unknown tags fall through unchanged.
var sourceLabels = map[string]string{
	article.SourceScholar: "scholar",
	article.SourceEndNote: "endnote",
	article.SourceFeed:    "feeds",
}

func sourceLabel(tag string) string {
	if label, ok := sourceLabels[tag]; ok {
		return label
	}
	return tag
}

type sourceFilter struct {
	tags    []string
	active  map[string]bool
	editing bool
	cursor  int
}

func newSourceFilter() sourceFilter {
	return sourceFilter{
		tags:   article.Sources,
		active: make(map[string]bool),
	}
}

func (f *sourceFilter) toggle(tag string) {
	if f.active[tag] {
		delete(f.active, tag)
	} else {
		f.active[tag] = true
	}
}

func (f *sourceFilter) toggleCurrent() {
	if f.cursor < len(f.tags) {
		f.toggle(f.tags[f.cursor])
	}
}

// activeSources returns the raw tags to filter on; nil means all sources.
func (f *sourceFilter) activeSources() []string {
	if len(f.active) == 0 {
		return nil
	}
	var out []string
	for _, tag := range f.tags {
		if f.active[tag] {
			out = append(out, tag)
		}
	}
	return out
}

func (f *sourceFilter) activeLabel() string {
	active := f.activeSources()
	if active == nil {
		return "All"
	}
	labels := make([]string, len(active))
	for i, tag := range active {
		labels[i] = sourceLabel(tag)
	}
	return strings.Join(labels, ", ")
}

func (f *sourceFilter) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	// "All" tab
	if len(f.active) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, tag := range f.tags {
		style := tabInactiveStyle
		if f.active[tag] {
			style = tabActiveStyle
		}
		label := sourceLabel(tag)
		if f.editing && i == f.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
