package graph

import (
	"context"
	"errors"

	"github.com/file-citas/zotgraph/internal/coloring"
	"github.com/file-citas/zotgraph/internal/edge"
	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/storage"
)

// AddNode adds the paper id to the graph with no parent.
func (e *Engine) AddNode(ctx context.Context, id string) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.addNode(ctx, id, "", false, false)
	e.updateGauges()
	return d
}

// addNode adds id and, when parent is set, the edge joining them: parent
// references id when isRef, otherwise id cites parent.
func (e *Engine) addNode(ctx context.Context, id, parent string, isRef, influential bool) Delta {
	var d Delta
	id = e.canonical(id)
	if id == "" {
		return d
	}
	if e.excluded.Has(id) {
		e.logger.Debug("paper is filtered", "paperId", id)
		return d
	}
	if e.present(id) {
		e.connect(&d, parent, id, isRef, influential)
		return d
	}

	rec, err := e.loadOrResolve(ctx, id)
	if err != nil {
		e.logger.Error("no node produced", "paperId", id, "error", err)
		return d
	}
	if rec.PaperID != id {
		// A DOI or title lookup resolved to a different paper id.
		id = rec.PaperID
		if e.excluded.Has(id) {
			return d
		}
		if e.present(id) {
			e.connect(&d, parent, id, isRef, influential)
			return d
		}
	}

	year, hasYear := rec.Year()
	if e.filter.Rejects(year, hasYear, rec.CitationCount()) {
		e.logger.Info("filtering paper", "paperId", id, "title", rec.Title, "year", year, "ncit", rec.CitationCount())
		e.exclude(id)
		return d
	}

	e.insert(rec)
	e.logger.Info("added node", "paperId", id, "label", rec.Label())
	d.Nodes = append(d.Nodes, e.nodeView(rec))
	d.Info = append(d.Info, e.info(ctx, id))
	e.connect(&d, parent, id, isRef, influential)
	d.Edges = append(d.Edges, e.refreshLinks(id)...)
	return d
}

func (e *Engine) insert(rec *paper.Record) {
	e.nodes[rec.PaperID] = rec
	e.store.AddNode(rec.PaperID)
	e.ranges.Add(rec)
}

func (e *Engine) connect(d *Delta, parent, id string, isRef, influential bool) {
	if parent == "" {
		return
	}
	from, to := id, parent
	if isRef {
		from, to = parent, id
	}
	if ev, ok := e.addEdge(from, to, influential); ok {
		d.Edges = append(d.Edges, ev)
	}
}

// addEdge inserts from -> to unless the papers are already connected. A
// citing paper older than the paper it cites is logged and still linked.
func (e *Engine) addEdge(from, to string, influential bool) (EdgeView, bool) {
	ed := edge.Edge{SourceID: from, TargetID: to, Influential: influential}
	if err := e.store.AddEdge(ed); err != nil {
		if !errors.Is(err, ErrEdgeExists) {
			e.logger.Debug("edge rejected", "from", from, "to", to, "error", err)
		}
		return EdgeView{}, false
	}

	fy, fok := e.nodes[from].Year()
	ty, tok := e.nodes[to].Year()
	if fok && tok && fy < ty {
		e.logger.Warn("corrupted chronology", "from", from, "fromYear", fy, "to", to, "toYear", ty)
	}
	return edgeView(ed), true
}

func edgeView(ed edge.Edge) EdgeView {
	s := ed.Styled()
	return EdgeView{From: s.SourceID, To: s.TargetID, Color: s.Color, Weight: s.Weight}
}

// refreshLinks materializes every edge from id's own reference and citation
// lists to neighbors that are already present.
func (e *Engine) refreshLinks(id string) []EdgeView {
	rec, ok := e.nodes[id]
	if !ok {
		return nil
	}
	var out []EdgeView
	for _, ref := range rec.References() {
		if e.present(ref.PaperID) {
			if ev, ok := e.addEdge(id, ref.PaperID, ref.IsInfluential); ok {
				out = append(out, ev)
			}
		}
	}
	for _, cit := range rec.Citations() {
		if e.present(cit.PaperID) {
			if ev, ok := e.addEdge(cit.PaperID, id, cit.IsInfluential); ok {
				out = append(out, ev)
			}
		}
	}
	return out
}

// RefreshAllLinks materializes the edges of every present node.
func (e *Engine) RefreshAllLinks() []EdgeView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.refreshAll()
	e.updateGauges()
	return out
}

func (e *Engine) refreshAll() []EdgeView {
	var out []EdgeView
	for _, id := range e.store.Nodes() {
		out = append(out, e.refreshLinks(id)...)
	}
	return out
}

// AddLinks expands the neighbors of a present node. Each direction is
// expanded at most once per session.
func (e *Engine) AddLinks(ctx context.Context, id string, opts LinkOptions) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()

	var d Delta
	id = e.canonical(id)
	if e.excluded.Has(id) {
		e.logger.Debug("paper is filtered", "paperId", id)
		return d
	}
	rec, ok := e.nodes[id]
	if !ok {
		e.logger.Error("no node for paper", "paperId", id)
		return d
	}

	expand := func(links []paper.Link, isRef bool) {
		for _, l := range links {
			if opts.InfluentialOnly && !l.IsInfluential {
				continue
			}
			d.Merge(e.addNode(ctx, l.PaperID, id, isRef, l.IsInfluential))
		}
	}
	if !opts.OnlyCitations && !rec.ReferencesExpanded {
		expand(rec.References(), true)
		rec.ReferencesExpanded = true
	}
	if !opts.OnlyReferences && !rec.CitationsExpanded {
		expand(rec.Citations(), false)
		rec.CitationsExpanded = true
	}
	e.updateGauges()
	return d
}

// RemoveNode excludes id permanently and deletes it from the graph.
func (e *Engine) RemoveNode(id string) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()
	var d Delta
	id = e.canonical(id)
	if id == "" {
		return d
	}
	e.exclude(id)
	d.Removed = append(d.Removed, id)
	e.updateGauges()
	return d
}

// exclude adds id to the exclusion set, persists the set and drops the
// node if it is present.
func (e *Engine) exclude(id string) {
	if e.excluded.Add(id) {
		e.persistExclusions()
	}
	if rec, ok := e.nodes[id]; ok {
		e.ranges.Remove(rec)
		delete(e.nodes, id)
	}
	e.store.RemoveNode(id)
	e.logger.Info("removed paper", "paperId", id)
}

func (e *Engine) persistExclusions() {
	if e.dir == "" {
		return
	}
	if err := storage.WriteIDSet(e.exclusionPath(), e.excluded); err != nil {
		e.logger.Error("writing exclusion set", "error", err)
	}
}

// Rescan re-resolves a present node, bypassing the node cache. Edges are
// left untouched.
func (e *Engine) Rescan(ctx context.Context, id string) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reloadLibrary()
	return e.rescan(ctx, e.canonical(id))
}

// RescanAll reloads the library and re-resolves every present node.
func (e *Engine) RescanAll(ctx context.Context) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reloadLibrary()
	return e.rescanAll(ctx)
}

// RescanLoaded re-resolves every present node against the library as it is
// currently loaded. Callers that have just reloaded the library use it.
func (e *Engine) RescanLoaded(ctx context.Context) Delta {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rescanAll(ctx)
}

func (e *Engine) rescanAll(ctx context.Context) Delta {
	var d Delta
	for _, id := range e.store.Nodes() {
		d.Merge(e.rescan(ctx, id))
	}
	return d
}

func (e *Engine) reloadLibrary() {
	if e.lib == nil {
		return
	}
	if err := e.lib.Reload(); err != nil {
		e.logger.Warn("reloading library", "error", err)
	}
}

func (e *Engine) rescan(ctx context.Context, id string) Delta {
	var d Delta
	old, ok := e.nodes[id]
	if !ok {
		e.logger.Error("no node for paper", "paperId", id)
		return d
	}
	if err := e.cache.Clear(id); err != nil {
		e.logger.Warn("clearing cached node", "paperId", id, "error", err)
	}
	rec, err := e.resolve(ctx, id)
	if err != nil {
		e.logger.Error("rescan failed", "paperId", id, "error", err)
		return d
	}
	if rec.PaperID != id {
		e.logger.Warn("rescan resolved to a different paper", "paperId", id, "resolved", rec.PaperID)
		rec.PaperID = id
	}
	rec.ReferencesExpanded = old.ReferencesExpanded
	rec.CitationsExpanded = old.CitationsExpanded

	e.ranges.Remove(old)
	e.nodes[id] = rec
	e.ranges.Add(rec)
	e.logger.Info("rescanned node", "paperId", id)

	d.Nodes = append(d.Nodes, e.nodeView(rec))
	d.Info = append(d.Info, e.info(ctx, id))
	return d
}

// SetColoring switches the partition key. It reports false for an unknown
// key.
func (e *Engine) SetColoring(key string) bool {
	k, err := coloring.ParseKey(key)
	if err != nil {
		e.logger.Error("invalid coloring", "error", err)
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.colors.SetKey(k)
	return true
}

// Coloring returns the active partition key.
func (e *Engine) Coloring() coloring.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.colors.Key()
}

// Graph returns every present node and every edge between present nodes.
func (e *Engine) Graph() ([]NodeView, []EdgeView) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.store.Nodes()
	nodes := make([]NodeView, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, e.nodeView(e.nodes[id]))
	}

	_, valid := edge.DetectOrphanedEdges(e.store.Edges(), e.present)
	edges := make([]EdgeView, 0, len(valid))
	for _, ed := range valid {
		edges = append(edges, edgeView(ed))
	}
	return nodes, edges
}

// PaperInfo renders the info panel of every present node.
func (e *Engine) PaperInfo(ctx context.Context) []Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.store.Nodes()
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.info(ctx, id))
	}
	return out
}

func (e *Engine) nodeView(rec *paper.Record) NodeView {
	v := NodeView{Author: "?", Title: paper.UnknownTitle, NCit: rec.CitationCount()}
	if name, ok := rec.FirstAuthor(); ok {
		v.Author = name
	}
	if y, ok := rec.Year(); ok {
		v.Year = y
	}
	if rec.Title != "" {
		v.Title = rec.Title
	}
	v.NodeData = NodeData{
		Color: e.colors.NodeColor(rec, e.ranges.Years(), e.ranges.Citations()),
		ID:    rec.PaperID,
		Label: rec.Label(),
		Shape: "box",
	}
	v.Level = e.ranges.Level(rec)
	return v
}
