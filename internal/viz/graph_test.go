package viz

import (
	"strings"
	"testing"

	"github.com/file-citas/zotgraph/internal/graph"
)

func nodeView(id string, year int) graph.NodeView {
	return graph.NodeView{
		Author: "Ada Lovelace",
		Year:   year,
		NCit:   3,
		Title:  "Paper " + id,
		NodeData: graph.NodeData{
			Color: "#B1D8F1",
			ID:    id,
			Label: "label " + id,
			Shape: "box",
		},
		Level: 1,
	}
}

func TestBuild(t *testing.T) {
	nodes := []graph.NodeView{nodeView("a", 2015), nodeView("b", 0)}
	edges := []graph.EdgeView{
		{From: "a", To: "b", Color: "#2e5361", Weight: 6},
		{From: "a", To: "gone", Color: "#bdc9c4", Weight: 1},
	}
	infos := []graph.Info{{ID: "a", HTML: "<h2>Paper a</h2>"}}

	g := Build("proj", nodes, edges, infos)

	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("got %d edges, want 1 (edge to absent node dropped)", len(g.Edges))
	}
	e := g.Edges[0]
	if e.ID != "a->b" || e.Width != 6 || e.Arrows != "to" {
		t.Errorf("edge = %+v", e)
	}
	if g.Nodes[0].Info != "<h2>Paper a</h2>" || g.Nodes[1].Info != "" {
		t.Errorf("info panels not attached: %q, %q", g.Nodes[0].Info, g.Nodes[1].Info)
	}
	if !strings.Contains(g.Nodes[0].Title, "(2015)") {
		t.Errorf("tooltip = %q", g.Nodes[0].Title)
	}
	if !strings.Contains(g.Nodes[1].Title, "(?)") {
		t.Errorf("tooltip without year = %q", g.Nodes[1].Title)
	}
}

func TestWrapLabel(t *testing.T) {
	tests := []struct {
		label string
		width int
		want  string
	}{
		{"", 10, ""},
		{"short", 10, "short"},
		{"2015 - 3 - A title", 10, "2015 - 3 -\nA title"},
		{"averyveryverylongword x", 5, "averyveryverylongword\nx"},
	}
	for _, tt := range tests {
		if got := wrapLabel(tt.label, tt.width); got != tt.want {
			t.Errorf("wrapLabel(%q, %d) = %q, want %q", tt.label, tt.width, got, tt.want)
		}
	}
}

func TestGenerateHTML(t *testing.T) {
	g := Build("proj", []graph.NodeView{nodeView("a", 2015)}, nil, []graph.Info{{ID: "a", HTML: "<p>x</p>"}})

	html, err := GenerateHTML(g, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	for _, want := range []string{"<title>proj</title>", "vis-network", "highlight_edge", `"id":"a"`} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "hierarchical:") {
		t.Error("force layout should not configure a hierarchy")
	}

	html, err = GenerateHTML(g, HTMLOptions{Layout: "hierarchical"})
	if err != nil {
		t.Fatalf("GenerateHTML(hierarchical) error = %v", err)
	}
	if !strings.Contains(html, "hierarchical:") {
		t.Error("hierarchical layout missing")
	}
}

func TestGenerateHTML_Errors(t *testing.T) {
	if _, err := GenerateHTML(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil graph")
	}
	g := Build("proj", []graph.NodeView{nodeView("a", 2015)}, nil, nil)
	if _, err := GenerateHTML(g, HTMLOptions{Layout: "spiral"}); err == nil {
		t.Error("expected error for invalid layout")
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(&GraphData{Project: "empty-proj"}, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "No papers in empty-proj") {
		t.Errorf("empty page = %q", html)
	}
}
