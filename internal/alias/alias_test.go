package alias

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/file-citas/zotgraph/internal/paper"
)

func TestTable_Canonical(t *testing.T) {
	tab := New(map[string]string{
		"dupA":  "canon",
		"dupB":  "dupA", // chain
		"loop1": "loop2",
		"loop2": "loop1",
		"self":  "self",
	})

	tests := []struct {
		id   string
		want string
	}{
		{"dupA", "canon"},
		{"dupB", "canon"},
		{"canon", "canon"},
		{"unknown", "unknown"},
		{"self", "self"},
		{"loop1", "loop1"},
		{"loop2", "loop1"},
	}
	for _, tt := range tests {
		if got := tab.Canonical(tt.id); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	if got := tab.Duplicates("canon"); !reflect.DeepEqual(got, []string{"dupA", "dupB"}) {
		t.Errorf("Duplicates(canon) = %v", got)
	}
	if !tab.IsAlias("dupB") || tab.IsAlias("canon") {
		t.Error("IsAlias() misclassified ids")
	}
}

func TestTable_CycleResolvesConsistently(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]string
		want string
	}{
		{"pair", map[string]string{"A": "B", "B": "A"}, "A"},
		{"triangle", map[string]string{"c": "a", "a": "b", "b": "c"}, "a"},
		{"tail into cycle", map[string]string{"x": "q", "q": "p", "p": "q"}, "p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := New(tt.m)
			for id := range tt.m {
				if got := tab.Canonical(id); got != tt.want {
					t.Errorf("Canonical(%q) = %q, want %q", id, got, tt.want)
				}
			}
			if tab.IsAlias(tt.want) {
				t.Errorf("IsAlias(%q) = true for the representative", tt.want)
			}
			if got := len(tab.Duplicates(tt.want)); got != len(tt.m)-1 {
				t.Errorf("Duplicates(%q) has %d ids, want %d", tt.want, got, len(tt.m)-1)
			}
		})
	}

	links := New(map[string]string{"A": "B", "B": "A"}).MergeLinks(
		[]paper.Link{{PaperID: "B"}},
		[]paper.Link{{PaperID: "A", IsInfluential: true}},
	)
	if len(links) != 1 || links[0].PaperID != "A" || !links[0].IsInfluential {
		t.Errorf("MergeLinks() over a cycle = %+v", links)
	}
}

func TestTable_NilIsIdentity(t *testing.T) {
	var tab *Table
	if tab.Canonical("x") != "x" || tab.Len() != 0 || tab.Duplicates("x") != nil {
		t.Error("nil table is not the identity")
	}
}

func TestTable_MergeLinks(t *testing.T) {
	tab := New(map[string]string{"dup": "canon"})
	a := []paper.Link{{PaperID: "canon", Title: "first"}, {PaperID: "other"}}
	b := []paper.Link{{PaperID: "dup", Title: "second", IsInfluential: true}, {PaperID: "new"}}

	got := tab.MergeLinks(a, b)
	if len(got) != 3 {
		t.Fatalf("MergeLinks() = %+v", got)
	}
	if got[0].PaperID != "canon" || got[0].Title != "first" || !got[0].IsInfluential {
		t.Errorf("merged link = %+v", got[0])
	}
	if got[2].PaperID != "new" {
		t.Errorf("order not preserved: %+v", got)
	}
	if a[0].IsInfluential {
		t.Error("MergeLinks mutated its input")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yml")
	if err := os.WriteFile(path, []byte("dup1: canon\ndup2: canon\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tab, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tab.Len() != 2 || tab.Canonical("dup2") != "canon" {
		t.Errorf("Load() table = %+v", tab)
	}

	empty, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil || empty.Len() != 0 {
		t.Errorf("Load(missing) = %v, %v", empty, err)
	}

	if err := os.WriteFile(path, []byte("- not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a non-map document")
	}
}
