package paper

import "testing"

func intPtr(v int) *int { return &v }

func TestRecord_Label(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "full metadata",
			rec: Record{PaperID: "p1", Meta: &Metadata{
				Title:     "Graphs",
				Year:      intPtr(2010),
				Citations: []Link{{PaperID: "a"}, {PaperID: "b"}},
			}},
			want: "2010 - 2 - Graphs",
		},
		{
			name: "missing year falls back to id",
			rec:  Record{PaperID: "p2", Meta: &Metadata{Title: "No year"}},
			want: "p2",
		},
		{
			name: "no metadata",
			rec:  Record{PaperID: "p3"},
			want: "p3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_CollectionKey(t *testing.T) {
	rec := Record{Library: &LibraryRecord{Key: "K", Collections: []string{"ZZ", "AA", "MM"}}}
	if got := rec.CollectionKey(); got != "AA_MM_ZZ" {
		t.Errorf("CollectionKey() = %q, want AA_MM_ZZ", got)
	}
	// Must not reorder the record's own slice.
	if rec.Library.Collections[0] != "ZZ" {
		t.Errorf("CollectionKey mutated collections: %v", rec.Library.Collections)
	}

	empty := Record{}
	if got := empty.CollectionKey(); got != "" {
		t.Errorf("CollectionKey() without library = %q, want empty", got)
	}
}

func TestRecord_Accessors(t *testing.T) {
	var nilRec *Record
	if _, ok := nilRec.Year(); ok {
		t.Error("Year() on nil record reported ok")
	}
	if got := nilRec.CitationCount(); got != -1 {
		t.Errorf("CitationCount() on nil record = %d, want -1", got)
	}

	rec := &Record{Meta: &Metadata{Authors: []Author{{Name: " Ada Lovelace "}, {Name: "B"}}}}
	if name, ok := rec.FirstAuthor(); !ok || name != "Ada Lovelace" {
		t.Errorf("FirstAuthor() = %q, %v", name, ok)
	}
	if _, ok := rec.Abstract(); ok {
		t.Error("Abstract() reported ok for nil abstract")
	}
}
