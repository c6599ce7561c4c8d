package refextract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/file-citas/zotgraph/internal/metrics"
	"github.com/file-citas/zotgraph/internal/storage"
)

// Cache stores raw extraction results, one JSON file per paper id.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating extraction cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(paperID string) string {
	return filepath.Join(c.dir, url.PathEscape(paperID)+".json")
}

// Load returns the cached result for paperID. Unreadable entries count as
// misses.
func (c *Cache) Load(paperID string) (*Result, bool) {
	data, err := os.ReadFile(c.path(paperID))
	if err != nil {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Store writes res for paperID, replacing any previous entry.
func (c *Cache) Store(paperID string, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding extraction result: %w", err)
	}
	return storage.WriteFileAtomic(c.path(paperID), data, 0644)
}

// Source returns the extraction result of a paper, extracting at most once
// per paper id. The primary extractor is tried first and the fallback, if
// any, when the primary fails.
type Source struct {
	cache    *Cache
	primary  Extractor
	fallback Extractor
	logger   *slog.Logger
}

// NewSource creates a caching source. primary may be nil to use only the
// fallback.
func NewSource(cache *Cache, primary, fallback Extractor, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{cache: cache, primary: primary, fallback: fallback, logger: logger}
}

// References returns the cached result for paperID or extracts pdfPath.
func (s *Source) References(ctx context.Context, paperID, pdfPath string) (*Result, error) {
	if res, ok := s.cache.Load(paperID); ok {
		metrics.ExtractionRequests.WithLabelValues("cache", "ok").Inc()
		return res, nil
	}
	if pdfPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPDF, paperID)
	}

	var res *Result
	var err error
	for _, ex := range []struct {
		name string
		e    Extractor
	}{{"service", s.primary}, {"local", s.fallback}} {
		if ex.e == nil {
			continue
		}
		res, err = ex.e.Extract(ctx, pdfPath)
		if err == nil {
			metrics.ExtractionRequests.WithLabelValues(ex.name, "ok").Inc()
			break
		}
		metrics.ExtractionRequests.WithLabelValues(ex.name, "error").Inc()
		s.logger.Warn("reference extraction failed", "paperId", paperID, "extractor", ex.name, "error", err)
	}
	if res == nil {
		if err == nil {
			err = fmt.Errorf("no extractor configured")
		}
		return nil, err
	}

	if err := s.cache.Store(paperID, res); err != nil {
		s.logger.Warn("caching extraction result", "paperId", paperID, "error", err)
	}
	return res, nil
}
