package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scholarbrief/internal/article"
)

// Archive is the long-term record of every article that appeared in a
// digest. It keeps separate read and write handles: sqlite allows a single
// writer, and the read handle opens the database read-only.
type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
	path    string
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB, path: dbPath}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			key         TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			title       TEXT NOT NULL,
			authors     TEXT NOT NULL DEFAULT '',
			journal     TEXT NOT NULL DEFAULT '',
			year        TEXT NOT NULL DEFAULT '',
			doi         TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT '',
			abstract    TEXT NOT NULL DEFAULT '',
			citations   INTEGER NOT NULL DEFAULT 0,
			score       REAL NOT NULL DEFAULT 0,
			matched     TEXT NOT NULL DEFAULT '',
			digested_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_digested ON articles(digested_at DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	var errs []error
	if a.readDB != nil {
		errs = append(errs, a.readDB.Close())
	}
	if a.writeDB != nil {
		errs = append(errs, a.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Record stores the ranked articles of one digest run. A key that was
// digested before is updated in place.
func (a *Archive) Record(articles []article.Article, digestedAt time.Time) error {
	tx, err := a.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (key, source, title, authors, journal, year, doi, url, abstract, citations, score, matched, digested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			authors = excluded.authors,
			journal = excluded.journal,
			year = excluded.year,
			doi = excluded.doi,
			url = excluded.url,
			abstract = excluded.abstract,
			citations = excluded.citations,
			score = excluded.score,
			matched = excluded.matched,
			digested_at = excluded.digested_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, art := range articles {
		_, err := stmt.Exec(
			art.Key(), art.Source, art.Title,
			strings.Join(art.Authors, ", "), art.Journal, string(art.Year),
			art.DOI, art.URL, art.Abstract, art.Citations,
			art.RelevanceScore, strings.Join(art.MatchedKeywords, ", "),
			digestedAt,
		)
		if err != nil {
			return fmt.Errorf("recording article %q: %w", art.Title, err)
		}
	}

	return tx.Commit()
}

func (a *Archive) List(opts ListOpts) ([]Entry, error) {
	var (
		where []string
		args  []interface{}
	)

	if !opts.Since.IsZero() {
		where = append(where, "digested_at >= ?")
		args = append(args, opts.Since)
	}

	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")")
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR abstract LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT key, source, title, authors, journal, year, doi, url, abstract, citations, score, matched, digested_at FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY digested_at DESC, score DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Source, &e.Title, &e.Authors, &e.Journal, &e.Year,
			&e.DOI, &e.URL, &e.Abstract, &e.Citations, &e.Score, &e.Matched, &e.DigestedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries digested before the cutoff and reports how many
// were removed.
func (a *Archive) Prune(olderThan time.Duration) (int64, error) {
	res, err := a.writeDB.Exec("DELETE FROM articles WHERE digested_at < ?", time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("pruning archive: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports the number of archived articles and the database file size.
func (a *Archive) Stats() (count int, size int64, err error) {
	if err := a.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	fi, err := os.Stat(a.path)
	if err != nil {
		return count, 0, fmt.Errorf("sizing archive: %w", err)
	}
	return count, fi.Size(), nil
}

func (a *Archive) SetLastDigest(t time.Time) error {
	_, err := a.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_digest', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, t.Format(time.RFC3339))
	return err
}

// LastDigest returns when the most recent digest was recorded; ok is false
// before the first one.
func (a *Archive) LastDigest() (time.Time, bool) {
	var value string
	if err := a.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_digest'").Scan(&value); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
