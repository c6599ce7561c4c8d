package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/file-citas/zotgraph/internal/edge"
)

func TestEdgesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), EdgesFile)
	edges := []edge.Edge{
		{SourceID: "P1", TargetID: "P2", Influential: true},
		{SourceID: "P3", TargetID: "P1"},
	}
	if err := WriteAllEdges(path, edges); err != nil {
		t.Fatalf("WriteAllEdges() error = %v", err)
	}

	got, err := ReadAllEdges(path)
	if err != nil {
		t.Fatalf("ReadAllEdges() error = %v", err)
	}
	if len(got) != 2 || got[0] != edges[0] || got[1] != edges[1] {
		t.Errorf("ReadAllEdges() = %+v", got)
	}
}

func TestReadAllEdges_RejectsSelfEdge(t *testing.T) {
	path := filepath.Join(t.TempDir(), EdgesFile)
	if err := os.WriteFile(path, []byte(`{"source_id":"a","target_id":"a"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAllEdges(path); err == nil {
		t.Error("ReadAllEdges() accepted a self edge")
	}
}

func TestIDSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), FilterFile)

	set, err := ReadIDSet(path)
	if err != nil || len(set) != 0 {
		t.Fatalf("ReadIDSet(missing) = %v, %v", set, err)
	}

	if !set.Add("b") || !set.Add("a") || set.Add("a") {
		t.Error("Add() reported wrong novelty")
	}
	if err := WriteIDSet(path, set); err != nil {
		t.Fatalf("WriteIDSet() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "a\nb\n" {
		t.Errorf("file = %q, want sorted lines", data)
	}

	back, err := ReadIDSet(path)
	if err != nil || !back.Has("a") || !back.Has("b") || len(back) != 2 {
		t.Errorf("ReadIDSet() = %v, %v", back, err)
	}
	if !back.Remove("a") || back.Remove("a") {
		t.Error("Remove() reported wrong presence")
	}
}
