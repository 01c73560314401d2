package endnote

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"scholarbrief/internal/article"
)

// RIS lines look like "TI  - Some title": a two-character tag, two spaces,
// a dash, then the value.
var risTag = regexp.MustCompile(`^([A-Z][A-Z0-9])\s{2}-\s?(.*)$`)

// ParseRIS reads RIS reference records. Unknown tags and untagged lines
// are skipped. ER closes a record; a trailing record without ER is kept.
// Repeated scalar tags overwrite, while authors and keywords accumulate.
func ParseRIS(r io.Reader) ([]article.Article, error) {
	var (
		out     []article.Article
		cur     article.Article
		started bool
	)
	flush := func() {
		if started {
			out = append(out, cur)
		}
		cur = article.Article{}
		started = false
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := risTag.FindStringSubmatch(strings.TrimRight(sc.Text(), "\r"))
		if m == nil {
			continue
		}
		tag, val := m[1], strings.TrimSpace(m[2])
		switch tag {
		case "ER":
			flush()
			continue
		case "TY":
			// Record type is not carried over, but it does open a record.
		case "TI", "T1":
			cur.Title = val
		case "AU", "A1":
			cur.Authors = append(cur.Authors, val)
		case "AB", "N2":
			cur.Abstract = val
		case "PY", "Y1":
			cur.Year = article.Year(val)
		case "JO", "JF":
			cur.Journal = val
		case "DO":
			cur.DOI = val
		case "UR":
			cur.URL = val
		case "KW":
			cur.Keywords = append(cur.Keywords, val)
		default:
			continue
		}
		started = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading RIS input: %w", err)
	}
	flush()
	return out, nil
}
