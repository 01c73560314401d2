package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(entryCount int, filterLabel string, lastDigest time.Time, width int, searching bool) string {
	left := fmt.Sprintf(" %d articles", entryCount)
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if !lastDigest.IsZero() {
		left += " · last digest " + relativeTime(lastDigest)
	}

	right := " / search  f filter  r reload  ? help  q quit "
	if searching {
		right = " esc cancel  enter search "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderHintBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
