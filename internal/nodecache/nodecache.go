// Package nodecache keeps one JSON snapshot per resolved paper on disk.
package nodecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/file-citas/zotgraph/internal/metrics"
	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/storage"
)

// ErrEmptyID is returned for operations on an empty paper id.
var ErrEmptyID = errors.New("paper id is required")

// Cache is a directory of per-paper records.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates the cache directory if needed.
func New(dir string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating node cache: %w", err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(id string) string {
	return filepath.Join(c.dir, url.PathEscape(id))
}

// Load returns the cached record for id, or nil on a miss. An unreadable
// entry is logged, removed and reported as a miss. Session expansion flags
// are always reset.
func (c *Cache) Load(id string) *paper.Record {
	if id == "" {
		return nil
	}
	data, err := os.ReadFile(c.path(id))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("reading cached node", "paperId", id, "error", err)
		}
		metrics.NodeCacheLookups.WithLabelValues("miss").Inc()
		return nil
	}

	var rec paper.Record
	if err := json.Unmarshal(data, &rec); err != nil || rec.PaperID == "" {
		c.logger.Warn("discarding corrupt cached node", "paperId", id, "error", err)
		metrics.NodeCacheLookups.WithLabelValues("corrupt").Inc()
		if err := os.Remove(c.path(id)); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("removing corrupt cached node", "paperId", id, "error", err)
		}
		return nil
	}

	rec.ResetSession()
	metrics.NodeCacheLookups.WithLabelValues("hit").Inc()
	c.logger.Debug("loaded cached node", "paperId", id)
	return &rec
}

// Store writes rec under id. An existing entry is kept unless overwrite is
// set. It reports whether the entry was written.
func (c *Cache) Store(id string, rec *paper.Record, overwrite bool) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	if !overwrite {
		if _, err := os.Stat(c.path(id)); err == nil {
			return false, nil
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encoding node %s: %w", id, err)
	}
	if err := storage.WriteFileAtomic(c.path(id), data, 0644); err != nil {
		return false, fmt.Errorf("storing node %s: %w", id, err)
	}
	return true, nil
}

// Clear removes the entry for id. A missing entry is not an error.
func (c *Cache) Clear(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := os.Remove(c.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing node %s: %w", id, err)
	}
	return nil
}
