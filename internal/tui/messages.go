package tui

import (
	"scholarbrief/internal/archive"
)

type entriesLoadedMsg struct {
	entries []archive.Entry
}

type archiveErrMsg struct {
	err error
}
