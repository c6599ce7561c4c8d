package viz

import (
	"fmt"
	"strings"

	"github.com/file-citas/zotgraph/internal/graph"
)

// Build assembles the page data from the engine's views. Edges whose
// endpoints are not among nodes are dropped.
func Build(project string, nodes []graph.NodeView, edges []graph.EdgeView, infos []graph.Info) *GraphData {
	panels := make(map[string]string, len(infos))
	for _, in := range infos {
		panels[in.ID] = in.HTML
	}

	g := &GraphData{
		Project: project,
		Nodes:   make([]Node, 0, len(nodes)),
		Edges:   make([]Edge, 0, len(edges)),
	}
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.NodeData.ID] = true
		g.Nodes = append(g.Nodes, newNode(n, panels[n.NodeData.ID]))
	}
	for _, e := range edges {
		if !present[e.From] || !present[e.To] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:     edgeID(e.From, e.To),
			From:   e.From,
			To:     e.To,
			Color:  e.Color,
			Width:  e.Weight,
			Arrows: "to",
		})
	}
	return g
}

func newNode(n graph.NodeView, info string) Node {
	return Node{
		ID:    n.NodeData.ID,
		Label: wrapLabel(n.NodeData.Label, 30),
		Color: n.NodeData.Color,
		Shape: n.NodeData.Shape,
		Level: n.Level,
		Title: tooltip(n),
		Info:  info,
	}
}

func tooltip(n graph.NodeView) string {
	year := "?"
	if n.Year != 0 {
		year = fmt.Sprint(n.Year)
	}
	return fmt.Sprintf("%s\n%s (%s), %d citations", n.Title, n.Author, year, n.NCit)
}

// wrapLabel breaks a label into lines of at most width runes, on spaces.
func wrapLabel(label string, width int) string {
	words := strings.Fields(label)
	if len(words) == 0 {
		return label
	}
	var b strings.Builder
	line := 0
	for i, w := range words {
		n := len([]rune(w))
		if i > 0 {
			if line+1+n > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(w)
		line += n
	}
	return b.String()
}

// edgeID is stable for a pair because the graph holds one edge per pair.
func edgeID(from, to string) string {
	return from + "->" + to
}
