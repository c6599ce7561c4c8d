package viz

import (
	"encoding/json"
	"fmt"
)

// ToJSON converts GraphData to the {nodes, edges} object vis-network loads.
func (g *GraphData) ToJSON() (string, error) {
	out := struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}{Nodes: g.Nodes, Edges: g.Edges}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}

	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshaling vis-network data to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
