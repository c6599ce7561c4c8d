package fuzzy

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 0},
		{"graph", "graph", 100},
		{"abcd", "abce", 75},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"graph", "a graph of citations", 100},
		{"a graph of citations", "graph", 100},
		{"", "anything", 0},
		{"abcd", "xxabcexx", 75},
	}
	for _, tt := range tests {
		if got := PartialRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("PartialRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBest(t *testing.T) {
	cands := []string{"unrelated", "deep learning", "deep learning"}
	idx, score := Best("deep learning", cands, Ratio)
	if idx != 1 || score != 100 {
		t.Errorf("Best() = %d, %d, want 1, 100", idx, score)
	}

	idx, score = Best("x", nil, Ratio)
	if idx != -1 || score != 0 {
		t.Errorf("Best(empty) = %d, %d", idx, score)
	}
}
