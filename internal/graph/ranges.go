package graph

import (
	"github.com/tidwall/btree"

	"github.com/file-citas/zotgraph/internal/coloring"
	"github.com/file-citas/zotgraph/internal/paper"
)

type rangeItem struct {
	Value  int
	NodeID string
}

func rangeItemLess(a, b rangeItem) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.NodeID < b.NodeID
}

// multiset is an ordered set of (value, node) pairs, so that several nodes
// may share a value and removing one leaves the others in place.
type multiset struct {
	tree *btree.BTreeG[rangeItem]
}

func newMultiset() multiset {
	return multiset{tree: btree.NewBTreeG[rangeItem](rangeItemLess)}
}

func (m multiset) add(v int, id string)    { m.tree.Set(rangeItem{Value: v, NodeID: id}) }
func (m multiset) remove(v int, id string) { m.tree.Delete(rangeItem{Value: v, NodeID: id}) }

func (m multiset) span() coloring.Span {
	lo, ok := m.tree.Min()
	if !ok {
		return coloring.Span{}
	}
	hi, _ := m.tree.Max()
	return coloring.Span{Min: lo.Value, Max: hi.Value, OK: true}
}

// rank returns the number of distinct values below v.
func (m multiset) rank(v int) int {
	n := 0
	last, seen := 0, false
	m.tree.Scan(func(it rangeItem) bool {
		if it.Value >= v {
			return false
		}
		if !seen || it.Value != last {
			n++
			last, seen = it.Value, true
		}
		return true
	})
	return n
}

// Ranges tracks the year and citation-count spans of the present nodes.
type Ranges struct {
	years multiset
	cits  multiset
}

// NewRanges returns empty ranges.
func NewRanges() *Ranges {
	return &Ranges{years: newMultiset(), cits: newMultiset()}
}

// Add includes rec's year and citation count, when known.
func (r *Ranges) Add(rec *paper.Record) {
	if y, ok := rec.Year(); ok {
		r.years.add(y, rec.PaperID)
	}
	if n := rec.CitationCount(); n >= 0 {
		r.cits.add(n, rec.PaperID)
	}
}

// Remove excludes rec's values. It must see the same record that was added.
func (r *Ranges) Remove(rec *paper.Record) {
	if y, ok := rec.Year(); ok {
		r.years.remove(y, rec.PaperID)
	}
	if n := rec.CitationCount(); n >= 0 {
		r.cits.remove(n, rec.PaperID)
	}
}

// Years returns the current year span.
func (r *Ranges) Years() coloring.Span { return r.years.span() }

// Citations returns the current citation-count span.
func (r *Ranges) Citations() coloring.Span { return r.cits.span() }

// Level returns the rank of rec's year among the distinct years present, so
// the oldest papers are level 0. Papers without a year are level 0.
func (r *Ranges) Level(rec *paper.Record) int {
	y, ok := rec.Year()
	if !ok {
		return 0
	}
	return r.years.rank(y)
}
