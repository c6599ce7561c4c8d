package zotero

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/s2"
)

// MaxCollectionDepth bounds the parent walk of a collection hierarchy.
const MaxCollectionDepth = 32

// pathCacheSize bounds the collection path memo.
const pathCacheSize = 1024

var (
	// ErrNoAPI indicates an operation needs the Web API but none is configured.
	ErrNoAPI = errors.New("zotero web API not configured")

	// ErrCollectionCycle indicates a collection is its own ancestor.
	ErrCollectionCycle = errors.New("collection hierarchy contains a cycle")

	// ErrCollectionTooDeep indicates the parent walk exceeded MaxCollectionDepth.
	ErrCollectionTooDeep = errors.New("collection hierarchy too deep")
)

// API is the part of the Zotero Web API the bridge depends on.
type API interface {
	Item(ctx context.Context, key string) (*Item, error)
	Collection(ctx context.Context, key string) (*Collection, error)
	Collections(ctx context.Context) ([]Collection, error)
	CollectionItems(ctx context.Context, key string) ([]Item, error)
}

// Bridge maps papers onto library records.
type Bridge struct {
	lib    *Library
	api    API
	paths  *lru.Cache[string, []string]
	logger *slog.Logger
}

// NewBridge creates a bridge over lib. api may be nil, in which case records
// carry no collections and collection lookups fail with ErrNoAPI.
func NewBridge(lib *Library, api API, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	paths, _ := lru.New[string, []string](pathCacheSize)
	return &Bridge{lib: lib, api: api, paths: paths, logger: logger}
}

// Library returns the underlying snapshot.
func (b *Bridge) Library() *Library {
	return b.lib
}

// Reload re-reads the library snapshot.
func (b *Bridge) Reload() error {
	return b.lib.Reload()
}

// FindRecord locates the library record for a paper: by key first, then by
// DOI when it is syntactically valid, then by exact title. No match and
// ambiguous matches both yield (nil, nil); err is reserved for failures of
// the library itself.
func (b *Bridge) FindRecord(ctx context.Context, key, doi, title string) (*paper.LibraryRecord, error) {
	resolved := ""
	if key != "" {
		if _, err := b.lib.Row(ctx, key); err == nil {
			resolved = key
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	lookups := []struct {
		name  string
		value string
		find  func(context.Context, string) (string, error)
	}{
		{"doi", doi, b.lib.KeyByDOI},
		{"title", title, b.lib.KeyByTitle},
	}
	for _, l := range lookups {
		if resolved != "" {
			break
		}
		if l.value == "" || (l.name == "doi" && !s2.IsValidDOI(l.value)) {
			continue
		}
		k, err := l.find(ctx, l.value)
		switch {
		case err == nil:
			resolved = k
		case errors.Is(err, ErrAmbiguous):
			b.logger.Warn("ambiguous library match", "by", l.name, "value", l.value)
		case errors.Is(err, ErrNotFound):
			b.logger.Debug("no library match", "by", l.name, "value", l.value)
		default:
			return nil, err
		}
	}
	if resolved == "" {
		return nil, nil
	}

	row, err := b.lib.Row(ctx, resolved)
	if err != nil {
		return nil, err
	}
	rec := &paper.LibraryRecord{
		Key:   row.Key,
		Title: row.Title,
		DOI:   row.DOI,
		Notes: row.Notes,
	}

	if b.api != nil {
		item, err := b.api.Item(ctx, resolved)
		switch {
		case errors.Is(err, ErrNotFound):
			// The export can be newer than the synced web library.
			b.logger.Warn("library item missing from web API, collections unknown", "key", resolved)
		case err != nil:
			return nil, fmt.Errorf("fetching item %s: %w", resolved, err)
		default:
			rec.Collections = append([]string(nil), item.Data.Collections...)
		}
	}

	b.logger.Debug("library match", "key", rec.Key, "collections", len(rec.Collections))
	return rec, nil
}

// Annotations returns the annotation HTML of key, or ErrNotFound when the
// item is missing or has no notes.
func (b *Bridge) Annotations(ctx context.Context, key string) (string, error) {
	notes, err := b.lib.Notes(ctx, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(notes) == "" {
		return "", fmt.Errorf("%w: no notes for %s", ErrNotFound, key)
	}
	return notes, nil
}

// PDFPath returns the PDF attachment path of key, or "" if there is none.
func (b *Bridge) PDFPath(ctx context.Context, key string) (string, error) {
	return b.lib.PDFPath(ctx, key)
}

// CollectionPath returns the collection names from collectionID up to the
// root. Results are memoized per id.
func (b *Bridge) CollectionPath(ctx context.Context, collectionID string) ([]string, error) {
	if b.api == nil {
		return nil, ErrNoAPI
	}
	if names, ok := b.paths.Get(collectionID); ok {
		return names, nil
	}

	var names []string
	seen := make(map[string]bool)
	for cur := collectionID; cur != ""; {
		if seen[cur] {
			return nil, fmt.Errorf("%w: %s", ErrCollectionCycle, cur)
		}
		if len(names) >= MaxCollectionDepth {
			return nil, fmt.Errorf("%w: %s", ErrCollectionTooDeep, collectionID)
		}
		seen[cur] = true

		col, err := b.api.Collection(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("fetching collection %s: %w", cur, err)
		}
		names = append(names, col.Data.Name)
		cur = col.Parent()
	}

	b.paths.Add(collectionID, names)
	return names, nil
}

// CollectionPaperIDs lists the Semantic Scholar ids linked from the items of
// the collection named name. Items without such a link are skipped.
func (b *Bridge) CollectionPaperIDs(ctx context.Context, name string) ([]string, error) {
	if b.api == nil {
		return nil, ErrNoAPI
	}
	cols, err := b.api.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var match *Collection
	for i := range cols {
		if cols[i].Data.Name != name {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: collection name %q", ErrAmbiguous, name)
		}
		match = &cols[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, name)
	}

	items, err := b.api.CollectionItems(ctx, match.Key)
	if err != nil {
		return nil, fmt.Errorf("listing items of %s: %w", match.Key, err)
	}

	var ids []string
	for _, it := range items {
		id, err := b.lib.SemanticScholarID(ctx, it.Key)
		if err != nil {
			b.logger.Debug("collection item not in snapshot", "key", it.Key, "error", err)
			continue
		}
		if id == "" {
			b.logger.Warn("no semantic scholar link", "key", it.Key, "title", it.Data.Title)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
