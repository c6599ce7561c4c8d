package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/file-citas/zotgraph/internal/graph"
)

// LabelMaxLen truncates node labels in human output.
const LabelMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GraphResponse is the whole rendered graph of a project.
type GraphResponse struct {
	Project  string           `json:"project"`
	Coloring string           `json:"coloring"`
	Nodes    []graph.NodeView `json:"nodes"`
	Edges    []graph.EdgeView `json:"edges"`
}

// outputDelta prints the changes of a graph operation.
func outputDelta(d graph.Delta) error {
	if !humanOutput {
		return outputJSON(d)
	}
	if d.Empty() {
		outputHuman("No changes\n")
		return nil
	}
	for _, n := range d.Nodes {
		outputHuman("+ %-40s %s\n", n.NodeData.ID, truncateString(n.NodeData.Label, LabelMaxLen))
	}
	for _, e := range d.Edges {
		outputHuman("+ %s -> %s\n", e.From, e.To)
	}
	for _, id := range d.Removed {
		outputHuman("- %s\n", id)
	}
	return nil
}

// outputGraph prints every node and edge of a project.
func outputGraph(resp GraphResponse) error {
	if !humanOutput {
		return outputJSON(resp)
	}
	outputHuman("%s: %d papers, %d citations (colored by %s)\n\n",
		resp.Project, len(resp.Nodes), len(resp.Edges), strings.ToLower(resp.Coloring))
	for _, n := range resp.Nodes {
		outputHuman("[%d] %-40s %s\n", n.Level, n.NodeData.ID, truncateString(n.NodeData.Label, LabelMaxLen))
	}
	if len(resp.Edges) > 0 {
		outputHuman("\n")
	}
	for _, e := range resp.Edges {
		outputHuman("%s -> %s\n", e.From, e.To)
	}
	return nil
}

// truncateString shortens s to at most max runes, marking the cut with "...".
func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
