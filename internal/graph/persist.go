package graph

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/file-citas/zotgraph/internal/config"
	"github.com/file-citas/zotgraph/internal/edge"
	"github.com/file-citas/zotgraph/internal/storage"
)

// nodeEntry is one line of nodes.jsonl.
type nodeEntry struct {
	PaperID string `json:"paperId"`
	Label   string `json:"label"`
	Shape   string `json:"shape"`
	Color   string `json:"color"`
}

func (e *Engine) nodesPath() string     { return filepath.Join(e.dir, config.NodesFile) }
func (e *Engine) edgesPath() string     { return filepath.Join(e.dir, storage.EdgesFile) }
func (e *Engine) exclusionPath() string { return filepath.Join(e.dir, storage.FilterFile) }

// Open loads the persisted project: the exclusion set and every saved node,
// re-read through the node cache. Saved edges are discarded and re-derived
// from the nodes' own lists.
func (e *Engine) Open(ctx context.Context) error {
	if e.dir == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	excluded, err := storage.ReadIDSet(e.exclusionPath())
	if err != nil {
		return fmt.Errorf("loading exclusion set: %w", err)
	}
	e.excluded = excluded

	entries, err := storage.ReadJSONL[nodeEntry](e.nodesPath())
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	for _, ent := range entries {
		id := e.canonical(ent.PaperID)
		if id == "" || e.excluded.Has(id) || e.present(id) {
			continue
		}
		rec, err := e.loadOrResolve(ctx, id)
		if err != nil {
			e.logger.Error("dropping saved node", "paperId", id, "error", err)
			continue
		}
		rec.PaperID = id
		e.insert(rec)
	}

	e.checkSavedEdges()
	e.store.ClearEdges()
	e.refreshAll()
	e.logger.Info("opened project", "nodes", e.store.Len(), "edges", e.store.EdgeCount(), "excluded", len(e.excluded))
	e.updateGauges()
	return nil
}

// checkSavedEdges reports inconsistencies in the saved edge file.
func (e *Engine) checkSavedEdges() {
	saved, err := storage.ReadAllEdges(e.edgesPath())
	if err != nil {
		e.logger.Warn("reading saved edges", "error", err)
		return
	}
	orphaned, _ := edge.DetectOrphanedEdges(saved, e.present)
	if len(orphaned) > 0 {
		e.logger.Warn("saved edges with missing endpoints", "count", len(orphaned))
	}
	if dups := edge.FindDuplicateEdges(saved); len(dups) > 0 {
		e.logger.Warn("saved edges joining the same papers twice", "pairs", len(dups))
	}
}

// Save rewrites the node, edge and exclusion files of the project.
func (e *Engine) Save() error {
	if e.dir == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.store.Nodes()
	entries := make([]nodeEntry, 0, len(ids))
	for _, id := range ids {
		v := e.nodeView(e.nodes[id])
		entries = append(entries, nodeEntry{
			PaperID: id,
			Label:   v.NodeData.Label,
			Shape:   v.NodeData.Shape,
			Color:   v.NodeData.Color,
		})
	}
	if err := storage.WriteJSONL(e.nodesPath(), entries); err != nil {
		return fmt.Errorf("saving nodes: %w", err)
	}

	edges := e.store.Edges()
	for i := range edges {
		edges[i] = edges[i].Styled()
	}
	if err := storage.WriteAllEdges(e.edgesPath(), edges); err != nil {
		return fmt.Errorf("saving edges: %w", err)
	}

	if err := storage.WriteIDSet(e.exclusionPath(), e.excluded); err != nil {
		return fmt.Errorf("saving exclusion set: %w", err)
	}
	e.logger.Info("saved project", "nodes", len(entries), "edges", len(edges))
	return nil
}
