package storage

import (
	"fmt"

	"github.com/file-citas/zotgraph/internal/edge"
)

// EdgesFile is the name of the edges JSONL file.
const EdgesFile = "edges.jsonl"

// ReadAllEdges reads all edges from a JSONL file.
// Returns an error if any edge fails structural validation (fail-fast).
func ReadAllEdges(path string) ([]edge.Edge, error) {
	edges, err := ReadJSONL[edge.Edge](path)
	if err != nil {
		return nil, err
	}
	for i := range edges {
		if err := edges[i].ValidateForCreate(); err != nil {
			return nil, fmt.Errorf("invalid edge %d: %w", i+1, err)
		}
	}
	return edges, nil
}

// WriteAllEdges replaces the edges file.
func WriteAllEdges(path string, edges []edge.Edge) error {
	return WriteJSONL(path, edges)
}
