package graph

import (
	"errors"
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/file-citas/zotgraph/internal/edge"
)

var (
	ErrNodeAbsent = errors.New("endpoint not in graph")
	ErrEdgeExists = errors.New("papers already connected")
)

// citation is the gonum edge type; it carries the influential flag.
type citation struct {
	from, to    gonumgraph.Node
	influential bool
}

func (c citation) From() gonumgraph.Node { return c.from }
func (c citation) To() gonumgraph.Node   { return c.to }
func (c citation) ReversedEdge() gonumgraph.Edge {
	return citation{from: c.to, to: c.from, influential: c.influential}
}

// Store is the directed citation graph keyed by paper id. At most one edge
// joins any two papers, whatever its direction, and self-loops are refused.
type Store struct {
	g      *simple.DirectedGraph
	ids    map[string]int64
	names  map[int64]string
	nextID int64
	edges  int
}

// NewStore returns an empty graph.
func NewStore() *Store {
	return &Store{
		g:     simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// Has reports whether id is a node.
func (s *Store) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.ids) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return s.edges }

// AddNode inserts id and reports whether it was new.
func (s *Store) AddNode(id string) bool {
	if s.Has(id) {
		return false
	}
	n := simple.Node(s.nextID)
	s.nextID++
	s.g.AddNode(n)
	s.ids[id] = n.ID()
	s.names[n.ID()] = id
	return true
}

// RemoveNode deletes id and its edges. Absence is not an error.
func (s *Store) RemoveNode(id string) {
	nid, ok := s.ids[id]
	if !ok {
		return
	}
	s.edges -= s.g.From(nid).Len() + s.g.To(nid).Len()
	s.g.RemoveNode(nid)
	delete(s.ids, id)
	delete(s.names, nid)
}

// Connected reports whether an edge joins a and b in either direction.
func (s *Store) Connected(a, b string) bool {
	ai, aok := s.ids[a]
	bi, bok := s.ids[b]
	return aok && bok && s.g.HasEdgeBetween(ai, bi)
}

// AddEdge inserts e between two present nodes.
func (s *Store) AddEdge(e edge.Edge) error {
	if err := e.ValidateForCreate(); err != nil {
		return err
	}
	from, fok := s.ids[e.SourceID]
	to, tok := s.ids[e.TargetID]
	if !fok || !tok {
		return ErrNodeAbsent
	}
	if s.g.HasEdgeBetween(from, to) {
		return ErrEdgeExists
	}
	s.g.SetEdge(citation{from: s.g.Node(from), to: s.g.Node(to), influential: e.Influential})
	s.edges++
	return nil
}

// ClearEdges removes every edge and keeps the nodes.
func (s *Store) ClearEdges() {
	for _, e := range s.Edges() {
		s.g.RemoveEdge(s.ids[e.SourceID], s.ids[e.TargetID])
	}
	s.edges = 0
}

// Nodes returns the node ids in insertion order.
func (s *Store) Nodes() []string {
	nids := make([]int64, 0, len(s.names))
	for nid := range s.names {
		nids = append(nids, nid)
	}
	sort.Slice(nids, func(i, j int) bool { return nids[i] < nids[j] })

	ids := make([]string, len(nids))
	for i, nid := range nids {
		ids[i] = s.names[nid]
	}
	return ids
}

// Edges returns every edge, ordered by source then target insertion order.
func (s *Store) Edges() []edge.Edge {
	var cs []citation
	it := s.g.Edges()
	for it.Next() {
		cs = append(cs, it.Edge().(citation))
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].from.ID() != cs[j].from.ID() {
			return cs[i].from.ID() < cs[j].from.ID()
		}
		return cs[i].to.ID() < cs[j].to.ID()
	})

	out := make([]edge.Edge, len(cs))
	for i, c := range cs {
		out[i] = edge.Edge{
			SourceID:    s.names[c.from.ID()],
			TargetID:    s.names[c.to.ID()],
			Influential: c.influential,
		}
	}
	return out
}
