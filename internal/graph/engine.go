// Package graph maintains a project's citation graph: it resolves papers
// into nodes, materializes citation edges between present nodes, tracks
// aggregate ranges and renders nodes and info panels for the front end.
//
// All Engine methods take one mutex. Operations are driven by a single user
// and are dominated by network and disk time, so they are fully serialized.
package graph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/file-citas/zotgraph/internal/alias"
	"github.com/file-citas/zotgraph/internal/coloring"
	"github.com/file-citas/zotgraph/internal/config"
	"github.com/file-citas/zotgraph/internal/linker"
	"github.com/file-citas/zotgraph/internal/metrics"
	"github.com/file-citas/zotgraph/internal/nodecache"
	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/refextract"
	"github.com/file-citas/zotgraph/internal/storage"
)

// Resolver looks papers up in the metadata service.
type Resolver interface {
	Paper(ctx context.Context, id string) (*paper.Metadata, error)
}

// Library is the reference-manager bridge.
type Library interface {
	FindRecord(ctx context.Context, key, doi, title string) (*paper.LibraryRecord, error)
	Annotations(ctx context.Context, key string) (string, error)
	PDFPath(ctx context.Context, key string) (string, error)
	CollectionPath(ctx context.Context, collectionID string) ([]string, error)
	Reload() error
}

// ReferenceSource extracts the reference list of a paper's PDF.
type ReferenceSource interface {
	References(ctx context.Context, paperID, pdfPath string) (*refextract.Result, error)
}

// Options configures an Engine. Resolver and Cache are required.
type Options struct {
	// Project labels metrics and log lines.
	Project string

	// Dir is the project directory. Empty disables persistence.
	Dir    string
	Filter config.Filter

	Resolver Resolver
	Cache    *nodecache.Cache
	Library  Library
	Refs     ReferenceSource
	Aliases  *alias.Table
	Linker   *linker.Linker

	// TitleFloor is the minimum score for deriving an extracted title.
	TitleFloor int

	Logger *slog.Logger
}

// Engine is one project's graph.
type Engine struct {
	mu sync.Mutex

	project    string
	dir        string
	filter     config.Filter
	resolver   Resolver
	cache      *nodecache.Cache
	lib        Library
	refs       ReferenceSource
	aliases    *alias.Table
	linker     *linker.Linker
	titleFloor int
	logger     *slog.Logger

	store    *Store
	nodes    map[string]*paper.Record
	excluded storage.IDSet
	ranges   *Ranges
	colors   *coloring.Engine
}

// New creates an empty engine. Call Open to load a persisted project.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lk := opts.Linker
	if lk == nil {
		lk = linker.New(logger)
	}
	return &Engine{
		project:    opts.Project,
		dir:        opts.Dir,
		filter:     opts.Filter,
		resolver:   opts.Resolver,
		cache:      opts.Cache,
		lib:        opts.Library,
		refs:       opts.Refs,
		aliases:    opts.Aliases,
		linker:     lk,
		titleFloor: opts.TitleFloor,
		logger:     logger.With("project", opts.Project),
		store:      NewStore(),
		nodes:      make(map[string]*paper.Record),
		excluded:   make(storage.IDSet),
		ranges:     NewRanges(),
		colors:     coloring.New(),
	}
}

// LinkOptions selects which neighbors AddLinks expands.
type LinkOptions struct {
	OnlyReferences  bool
	OnlyCitations   bool
	InfluentialOnly bool
}

// NodeData is the vis-network node.
type NodeData struct {
	Color string `json:"color"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Shape string `json:"shape"`
}

// NodeView is the rendered form of a present node.
type NodeView struct {
	Author   string   `json:"author"`
	Year     int      `json:"year"`
	NCit     int      `json:"ncit"`
	Title    string   `json:"title"`
	NodeData NodeData `json:"node_data"`
	Level    int      `json:"level"`
}

// EdgeView is the rendered form of an edge.
type EdgeView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Color  string `json:"color"`
	Weight int    `json:"weight"`
}

// Info is the rendered info panel of a node.
type Info struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

// Delta lists what an operation added or changed, for incremental UI
// updates. A failed operation returns an empty Delta.
type Delta struct {
	Nodes   []NodeView `json:"nodes"`
	Edges   []EdgeView `json:"edges"`
	Info    []Info     `json:"info"`
	Removed []string   `json:"removed,omitempty"`
}

// Empty reports whether d carries no changes.
func (d Delta) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0 && len(d.Info) == 0 && len(d.Removed) == 0
}

// Merge appends the changes of o to d.
func (d *Delta) Merge(o Delta) {
	d.Nodes = append(d.Nodes, o.Nodes...)
	d.Edges = append(d.Edges, o.Edges...)
	d.Info = append(d.Info, o.Info...)
	d.Removed = append(d.Removed, o.Removed...)
}

func (e *Engine) canonical(id string) string {
	return e.aliases.Canonical(id)
}

func (e *Engine) present(id string) bool {
	return e.store.Has(id)
}

// Has reports whether the canonical form of id is a present node.
func (e *Engine) Has(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.present(e.canonical(id))
}

// Excluded reports whether the canonical form of id is filtered.
func (e *Engine) Excluded(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.excluded.Has(e.canonical(id))
}

// Record returns the record of a present node.
func (e *Engine) Record(id string) (*paper.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.nodes[e.canonical(id)]
	return rec, ok
}

// Ranges returns the current year and citation-count spans.
func (e *Engine) Ranges() (years, cits coloring.Span) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ranges.Years(), e.ranges.Citations()
}

func (e *Engine) updateGauges() {
	metrics.GraphNodes.WithLabelValues(e.project).Set(float64(e.store.Len()))
	metrics.GraphEdges.WithLabelValues(e.project).Set(float64(e.store.EdgeCount()))
}
