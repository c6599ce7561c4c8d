package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func TestReadJSONL_NonExistentFile(t *testing.T) {
	rows, err := ReadJSONL[row]("/nonexistent/path/nodes.jsonl")
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v (should return nil for nonexistent file)", err)
	}
	if len(rows) != 0 {
		t.Errorf("ReadJSONL() returned %v, want empty", rows)
	}
}

func TestReadJSONL_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	content := "{\"id\":\"a\",\"label\":\"A\"}\n\n  \n{\"id\":\"b\"}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadJSONL[row](path)
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(rows) != 2 || rows[0].Label != "A" || rows[1].ID != "b" {
		t.Errorf("ReadJSONL() = %+v", rows)
	}
}

func TestReadJSONL_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":\"a\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJSONL[row](path); err == nil {
		t.Error("ReadJSONL() succeeded on invalid line")
	}
}

func TestWriteJSONL_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.jsonl")
	want := []row{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}

	if err := WriteJSONL(path, want); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	// Overwrite with fewer rows; no stale content may survive.
	if err := WriteJSONL(path, want[:1]); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}

	got, err := ReadJSONL[row](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("after rewrite got %+v", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
