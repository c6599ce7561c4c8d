// Package viz renders a project's citation graph as a standalone HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Project string `json:"-"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Node is a paper in vis-network's node format.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Shape string `json:"shape"`
	Level int    `json:"level"`

	// Tooltip text shown on hover.
	Title string `json:"title,omitempty"`

	// Rendered info panel, shown when the node is selected.
	Info string `json:"info,omitempty"`
}

// Edge is a citation in vis-network's edge format. From cites To.
type Edge struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Color  string `json:"color"`
	Width  int    `json:"width"`
	Arrows string `json:"arrows"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
