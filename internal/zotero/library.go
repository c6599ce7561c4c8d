// Package zotero bridges papers to records in a Zotero library: a CSV
// snapshot of the library indexed in SQLite, plus the Zotero Web API for
// items and collections.
package zotero

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no library row matched.
var ErrNotFound = errors.New("not found in library")

// ErrAmbiguous indicates more than one library row matched.
var ErrAmbiguous = errors.New("ambiguous library match")

// Snapshot column names.
const (
	colKey   = "Key"
	colTitle = "Title"
	colDOI   = "DOI"
	colNotes = "Notes"
	colFiles = "File Attachments"
	colLinks = "Link Attachments"
)

// Row is one item of the library snapshot.
type Row struct {
	Key   string
	Title string
	DOI   string
	Notes string
	Files string
	Links string
}

// Library is an in-memory SQLite index over the exported library CSV.
type Library struct {
	path string
	mu   sync.Mutex // serializes Reload
	db   *sql.DB
}

// OpenLibrary loads the CSV export at path.
func OpenLibrary(path string) (*Library, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`
		CREATE TABLE items (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			doi TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			files TEXT NOT NULL DEFAULT '',
			links TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX idx_items_title ON items(title);
		CREATE INDEX idx_items_doi ON items(doi) WHERE doi != '';
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	l := &Library{path: path, db: db}
	if err := l.Reload(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close releases the index.
func (l *Library) Close() error {
	return l.db.Close()
}

// Path returns the CSV path backing the snapshot.
func (l *Library) Path() string {
	return l.path
}

// Reload re-reads the CSV and replaces the index contents atomically.
func (l *Library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("opening library export: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", l.path, err)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO items (key, title, doi, notes, files, links) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Key, r.Title, r.DOI, r.Notes, r.Files, r.Links); err != nil {
			return fmt.Errorf("inserting %s: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

const utf8BOM = "\ufeff"

// ReadRows parses a library CSV export. Columns are located by header name;
// rows without a key are skipped.
func ReadRows(r io.Reader) ([]Row, error) {
	// Zotero writes a UTF-8 BOM ahead of the quoted header, which the csv
	// reader would otherwise treat as a bare quote.
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx[colKey]; !ok {
		return nil, fmt.Errorf("missing %q column", colKey)
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := Row{
			Key:   strings.TrimSpace(field(rec, colKey)),
			Title: field(rec, colTitle),
			DOI:   strings.TrimSpace(field(rec, colDOI)),
			Notes: field(rec, colNotes),
			Files: field(rec, colFiles),
			Links: field(rec, colLinks),
		}
		if row.Key == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Row returns the snapshot row for key.
func (l *Library) Row(ctx context.Context, key string) (Row, error) {
	var r Row
	err := l.db.QueryRowContext(ctx,
		`SELECT key, title, doi, notes, files, links FROM items WHERE key = ?`, key,
	).Scan(&r.Key, &r.Title, &r.DOI, &r.Notes, &r.Files, &r.Links)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, fmt.Errorf("%w: key %s", ErrNotFound, key)
	}
	if err != nil {
		return Row{}, fmt.Errorf("querying key %s: %w", key, err)
	}
	return r, nil
}

// KeyByTitle returns the key of the single row whose title equals title.
func (l *Library) KeyByTitle(ctx context.Context, title string) (string, error) {
	return l.uniqueKey(ctx, "title", title)
}

// KeyByDOI returns the key of the single row whose DOI equals doi.
func (l *Library) KeyByDOI(ctx context.Context, doi string) (string, error) {
	return l.uniqueKey(ctx, "doi", doi)
}

func (l *Library) uniqueKey(ctx context.Context, column, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: empty %s", ErrNotFound, column)
	}
	// column is one of two constants, never user input.
	rows, err := l.db.QueryContext(ctx, `SELECT key FROM items WHERE `+column+` = ? LIMIT 2`, value)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", column, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return "", err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(keys) {
	case 0:
		return "", fmt.Errorf("%w: %s %q", ErrNotFound, column, value)
	case 1:
		return keys[0], nil
	default:
		return "", fmt.Errorf("%w: %s %q", ErrAmbiguous, column, value)
	}
}

// Notes returns the raw annotation HTML of key.
func (l *Library) Notes(ctx context.Context, key string) (string, error) {
	r, err := l.Row(ctx, key)
	if err != nil {
		return "", err
	}
	return r.Notes, nil
}

// PDFPath returns the first PDF attachment of key, or "" if there is none.
func (l *Library) PDFPath(ctx context.Context, key string) (string, error) {
	r, err := l.Row(ctx, key)
	if err != nil {
		return "", err
	}
	for _, fn := range strings.Split(r.Files, "; ") {
		if strings.HasSuffix(strings.ToLower(strings.TrimSpace(fn)), ".pdf") {
			return strings.TrimSpace(fn), nil
		}
	}
	return "", nil
}

// SemanticScholarID returns the paper id taken from the item's Semantic
// Scholar link attachment, or "" if it has none.
func (l *Library) SemanticScholarID(ctx context.Context, key string) (string, error) {
	r, err := l.Row(ctx, key)
	if err != nil {
		return "", err
	}
	for _, link := range strings.Split(r.Links, "; ") {
		link = strings.TrimSpace(link)
		if !strings.Contains(link, "semantic") {
			continue
		}
		link = strings.TrimSuffix(link, "/")
		return link[strings.LastIndex(link, "/")+1:], nil
	}
	return "", nil
}
