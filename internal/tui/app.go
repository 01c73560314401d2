package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scholarbrief/internal/archive"
	"scholarbrief/internal/browser"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

type App struct {
	db      *archive.Archive
	entries []archive.Entry
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	filter      sourceFilter

	// State
	since         time.Time
	previewScroll int
	currentDate   string
	lastDigest    time.Time
	reloading     bool
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	DB    *archive.Archive
	Since time.Time
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search archive..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	app := &App{
		db:          opts.DB,
		since:       opts.Since,
		filter:      newSourceFilter(),
		searchInput: ti,
		spinner:     sp,
		currentDate: time.Now().Format("Jan 2"),
	}
	if t, ok := opts.DB.LastDigest(); ok {
		app.lastDigest = t
	}
	return app
}

func (a *App) Init() tea.Cmd {
	return a.loadEntriesCmd()
}

// loadEntriesCmd captures current query state into the closure to avoid races.
func (a *App) loadEntriesCmd() tea.Cmd {
	opts := archive.ListOpts{
		Since:   a.since,
		Sources: a.filter.activeSources(),
		Search:  a.searchInput.Value(),
	}
	db := a.db
	return func() tea.Msg {
		entries, err := db.List(opts)
		if err != nil {
			return archiveErrMsg{err: err}
		}
		return entriesLoadedMsg{entries: entries}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if url == "" {
			return archiveErrMsg{err: errors.New("article has no link")}
		}
		if err := browser.Open(url); err != nil {
			return archiveErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case entriesLoadedMsg:
		a.entries = msg.entries
		a.reloading = false
		if a.cursor >= len(a.entries) {
			a.cursor = max(0, len(a.entries)-1)
		}
		return a, nil

	case archiveErrMsg:
		a.err = msg.err
		a.reloading = false
		return a, nil

	case spinner.TickMsg:
		if a.reloading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?", "esc":
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.entries)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if len(a.entries) > 0 && a.cursor < len(a.entries) {
			return a, openBrowserCmd(a.entries[a.cursor].Link())
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filter.editing = true
		return a, nil
	case "r":
		if !a.reloading {
			a.reloading = true
			return a, tea.Batch(a.loadEntriesCmd(), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		return a, a.loadEntriesCmd()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.cursor = 0
		return a, a.loadEntriesCmd()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filter.editing = false
		return a, nil
	case "left", "h":
		if a.filter.cursor > 0 {
			a.filter.cursor--
		}
		return a, nil
	case "right", "l":
		if a.filter.cursor < len(a.filter.tags)-1 {
			a.filter.cursor++
		}
		return a, nil
	case " ", "enter":
		a.filter.toggleCurrent()
		a.cursor = 0
		return a, a.loadEntriesCmd()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.filter.tags) {
			a.filter.toggle(a.filter.tags[idx])
			a.cursor = 0
			return a, a.loadEntriesCmd()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) withHintBar(content string, hints string) string {
	bar := renderHintBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  scholarbrief")
	}

	if a.mode == modeHelp {
		return a.withHintBar(a.renderHelp(), "? close  q quit")
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1 // gap

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("scholarbrief")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Filter bar
	filter := a.filter.render(a.width)

	// Search bar (replaces filter when searching)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	// List pane
	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.entries, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	// Preview pane
	var selected *archive.Entry
	if len(a.entries) > 0 && a.cursor < len(a.entries) {
		selected = &a.entries[a.cursor]
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	// Join panes
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	// Status bar
	status := renderStatusBar(
		len(a.entries),
		a.filter.activeLabel(),
		a.lastDigest,
		a.width,
		a.mode == modeSearch,
	)

	if a.reloading {
		status = a.spinner.View() + " " + status
	}

	// Error display
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("scholarbrief")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate article list\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open article in browser\n" +
		"  r             Reload from archive\n" +
		"  /             Search title and abstract\n" +
		"  f             Toggle source filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between sources\n" +
		"  space/enter   Toggle source\n" +
		"  1-9           Toggle source by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the archive browser.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
