// Package store persists an Index snapshot to a SQLite file so a later
// process can serve search() without re-crawling. The schema is a
// trimmed, single-purpose descendant of gopherseo's pages/links/
// inverted_index tables: enough to reconstruct every observable API
// output (TF, IDF, TF-IDF, PageRank, Outgoing, Incoming), nothing more.
//
// PageRank itself is not stored: index.BuildFromSnapshot recomputes it
// from the persisted link graph, and power iteration is deterministic,
// so the restored ranks are bit-for-bit what a fresh Build would have
// produced.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gophersearch/internal/index"
	"gophersearch/internal/urlnorm"
)

// DefaultPath is where Engine stores its snapshot when no path is
// given explicitly.
const DefaultPath = "./data/crawl.dat"

// mu serialises snapshot writes the same way gopherseo's DBMutex
// serialised its crawl-time inserts; Save and Load each open and close
// their own *sql.DB, so this only prevents two goroutines from racing
// on the same file.
var mu sync.Mutex

const schema = `
CREATE TABLE meta (
	seed_url           TEXT NOT NULL,
	crawl_time         INTEGER NOT NULL,
	total_docs         INTEGER NOT NULL,
	total_unique_words INTEGER NOT NULL
);
CREATE TABLE pages (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	url   TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL
);
CREATE TABLE page_terms (
	page_id INTEGER NOT NULL REFERENCES pages(id),
	term    TEXT NOT NULL,
	count   INTEGER NOT NULL
);
CREATE TABLE links (
	from_id INTEGER NOT NULL REFERENCES pages(id),
	to_url  TEXT NOT NULL
);
`

// Save writes idx to path as a fresh snapshot, replacing any file
// already there. An empty path falls back to DefaultPath.
func Save(idx *index.Index, path string) error {
	mu.Lock()
	defer mu.Unlock()
	path = withDefault(path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create %s: %w", dir, err)
		}
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remove stale snapshot: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	if err := writeSnapshot(tx, idx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func writeSnapshot(tx *sql.Tx, idx *index.Index) error {
	if _, err := tx.Exec(`INSERT INTO meta (seed_url, crawl_time, total_docs, total_unique_words) VALUES (?, ?, ?, ?)`,
		idx.SeedURL, idx.CrawlTime.Unix(), idx.TotalDocs, idx.TotalUniqueWords); err != nil {
		return fmt.Errorf("store: insert meta: %w", err)
	}

	pages := idx.PagesInOrder()
	pageID := make(map[urlnorm.NormalURL]int64, len(pages))

	insertPage, err := tx.Prepare(`INSERT INTO pages (url, title) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare page insert: %w", err)
	}
	defer insertPage.Close()

	for _, p := range pages {
		res, err := insertPage.Exec(p.URL.String(), p.Title)
		if err != nil {
			return fmt.Errorf("store: insert page %s: %w", p.URL, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("store: page id for %s: %w", p.URL, err)
		}
		pageID[p.URL] = id
	}

	insertTerm, err := tx.Prepare(`INSERT INTO page_terms (page_id, term, count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare term insert: %w", err)
	}
	defer insertTerm.Close()

	insertLink, err := tx.Prepare(`INSERT INTO links (from_id, to_url) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare link insert: %w", err)
	}
	defer insertLink.Close()

	for _, p := range pages {
		id := pageID[p.URL]
		for word, stat := range p.WordMap {
			if _, err := insertTerm.Exec(id, word, stat.Count); err != nil {
				return fmt.Errorf("store: insert term %q for %s: %w", word, p.URL, err)
			}
		}
		for _, v := range p.Outlinks {
			if _, err := insertLink.Exec(id, v.String()); err != nil {
				return fmt.Errorf("store: insert link %s->%s: %w", p.URL, v, err)
			}
		}
	}
	return nil
}

// Load reconstructs an Index from the snapshot at path. An empty path
// falls back to DefaultPath.
func Load(path string) (*index.Index, error) {
	mu.Lock()
	defer mu.Unlock()
	path = withDefault(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	defer db.Close()

	var seedURL string
	var crawlUnix int64
	if err := db.QueryRow(`SELECT seed_url, crawl_time FROM meta LIMIT 1`).Scan(&seedURL, &crawlUnix); err != nil {
		return nil, fmt.Errorf("store: read meta: %w", err)
	}

	order, idToURL, titleOf, err := readPages(db)
	if err != nil {
		return nil, err
	}
	counts, err := readTermCounts(db)
	if err != nil {
		return nil, err
	}
	outlinks, err := readLinks(db)
	if err != nil {
		return nil, err
	}

	docs := make([]index.DocSnapshot, 0, len(order))
	for _, id := range order {
		docs = append(docs, index.DocSnapshot{
			URL:      idToURL[id],
			Title:    titleOf[id],
			Counts:   counts[id],
			Outlinks: outlinks[id],
		})
	}

	return index.BuildFromSnapshot(seedURL, time.Unix(crawlUnix, 0).UTC(), docs, index.Options{}, nil), nil
}

func readPages(db *sql.DB) (order []int64, idToURL map[int64]urlnorm.NormalURL, titleOf map[int64]string, err error) {
	rows, err := db.Query(`SELECT id, url, title FROM pages ORDER BY id ASC`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("store: read pages: %w", err)
	}
	defer rows.Close()

	idToURL = make(map[int64]urlnorm.NormalURL)
	titleOf = make(map[int64]string)
	for rows.Next() {
		var id int64
		var rawURL, title string
		if err := rows.Scan(&id, &rawURL, &title); err != nil {
			return nil, nil, nil, fmt.Errorf("store: scan page: %w", err)
		}
		u, perr := urlnorm.Parse(rawURL)
		if perr != nil {
			continue // snapshot only ever stores NormalURL.String() output
		}
		order = append(order, id)
		idToURL[id] = u
		titleOf[id] = title
	}
	return order, idToURL, titleOf, rows.Err()
}

func readTermCounts(db *sql.DB) (map[int64]map[string]int, error) {
	rows, err := db.Query(`SELECT page_id, term, count FROM page_terms`)
	if err != nil {
		return nil, fmt.Errorf("store: read terms: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]map[string]int)
	for rows.Next() {
		var pageID int64
		var term string
		var count int
		if err := rows.Scan(&pageID, &term, &count); err != nil {
			return nil, fmt.Errorf("store: scan term: %w", err)
		}
		m, ok := counts[pageID]
		if !ok {
			m = make(map[string]int)
			counts[pageID] = m
		}
		m[term] = count
	}
	return counts, rows.Err()
}

func readLinks(db *sql.DB) (map[int64][]urlnorm.NormalURL, error) {
	rows, err := db.Query(`SELECT from_id, to_url FROM links ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("store: read links: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]urlnorm.NormalURL)
	for rows.Next() {
		var fromID int64
		var toURL string
		if err := rows.Scan(&fromID, &toURL); err != nil {
			return nil, fmt.Errorf("store: scan link: %w", err)
		}
		v, perr := urlnorm.Parse(toURL)
		if perr != nil {
			continue
		}
		out[fromID] = append(out[fromID], v)
	}
	return out, rows.Err()
}

// Exists reports whether a snapshot is present at path.
func Exists(path string) bool {
	_, err := os.Stat(withDefault(path))
	return err == nil
}

// Clear deletes the snapshot at path, if any.
func Clear(path string) error {
	path = withDefault(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: clear %s: %w", path, err)
	}
	return nil
}

func withDefault(path string) string {
	if path == "" {
		return DefaultPath
	}
	return path
}
