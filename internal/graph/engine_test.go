package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/file-citas/zotgraph/internal/alias"
	"github.com/file-citas/zotgraph/internal/config"
	"github.com/file-citas/zotgraph/internal/nodecache"
	"github.com/file-citas/zotgraph/internal/paper"
	"github.com/file-citas/zotgraph/internal/refextract"
	"github.com/file-citas/zotgraph/internal/storage"
)

var errUnknownPaper = errors.New("unknown paper")

type fakeResolver struct {
	papers map[string]*paper.Metadata
	calls  map[string]int
}

func newFakeResolver(papers ...*paper.Metadata) *fakeResolver {
	r := &fakeResolver{papers: make(map[string]*paper.Metadata), calls: make(map[string]int)}
	for _, p := range papers {
		r.papers[p.PaperID] = p
	}
	return r
}

func (r *fakeResolver) Paper(_ context.Context, id string) (*paper.Metadata, error) {
	r.calls[id]++
	p, ok := r.papers[id]
	if !ok {
		return nil, errUnknownPaper
	}
	cp := *p
	cp.References = append([]paper.Link(nil), p.References...)
	cp.Citations = append([]paper.Link(nil), p.Citations...)
	return &cp, nil
}

type fakeLibrary struct {
	byTitle     map[string]*paper.LibraryRecord
	notes       map[string]string
	collections map[string][]string
	reloads     int
}

func (l *fakeLibrary) FindRecord(_ context.Context, _, _, title string) (*paper.LibraryRecord, error) {
	return l.byTitle[title], nil
}

func (l *fakeLibrary) Annotations(_ context.Context, key string) (string, error) {
	if n, ok := l.notes[key]; ok {
		return n, nil
	}
	return "", errors.New("no notes")
}

func (l *fakeLibrary) PDFPath(_ context.Context, key string) (string, error) {
	return "/pdfs/" + key + ".pdf", nil
}

func (l *fakeLibrary) CollectionPath(_ context.Context, id string) ([]string, error) {
	if names, ok := l.collections[id]; ok {
		return names, nil
	}
	return nil, errors.New("no collection")
}

func (l *fakeLibrary) Reload() error {
	l.reloads++
	return nil
}

type fakeRefs map[string]*refextract.Result

func (f fakeRefs) References(_ context.Context, paperID, _ string) (*refextract.Result, error) {
	if r, ok := f[paperID]; ok {
		return r, nil
	}
	return nil, refextract.ErrNoPDF
}

func year(y int) *int { return &y }

func link(id string, influential bool) paper.Link {
	return paper.Link{PaperID: id, Title: "Paper " + id, IsInfluential: influential}
}

func meta(id string, y int, refs, cits []paper.Link) *paper.Metadata {
	return &paper.Metadata{
		PaperID:    id,
		Title:      "Paper " + id,
		Year:       year(y),
		Authors:    []paper.Author{{Name: "Author " + id}},
		References: refs,
		Citations:  cits,
	}
}

func newEngine(t *testing.T, r Resolver, mutate func(*Options)) *Engine {
	t.Helper()
	cache, err := nodecache.New(filepath.Join(t.TempDir(), "nodes"), nil)
	require.NoError(t, err)
	opts := Options{Project: t.Name(), Resolver: r, Cache: cache}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

// threePapers is P1 (2015) referencing P2 (2010) and cited by P3 (2020).
func threePapers() *fakeResolver {
	return newFakeResolver(
		meta("P1", 2015, []paper.Link{link("P2", true)}, []paper.Link{link("P3", false)}),
		meta("P2", 2010, nil, []paper.Link{link("P1", true)}),
		meta("P3", 2020, []paper.Link{link("P1", false)}, nil),
	)
}

func nodeIDs(nodes []NodeView) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.NodeData.ID
	}
	sort.Strings(ids)
	return ids
}

func edgePairs(edges []EdgeView) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.From + "->" + e.To
	}
	sort.Strings(out)
	return out
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, threePapers(), nil)

	d := e.AddNode(ctx, "P1")
	require.Len(t, d.Nodes, 1)
	assert.Equal(t, "2015 - 1 - Paper P1", d.Nodes[0].NodeData.Label)
	assert.Equal(t, "box", d.Nodes[0].NodeData.Shape)
	assert.Len(t, d.Info, 1)
	assert.Empty(t, d.Edges)

	d = e.AddLinks(ctx, "P1", LinkOptions{})
	assert.Equal(t, []string{"P2", "P3"}, nodeIDs(d.Nodes))
	assert.Equal(t, []string{"P1->P2", "P3->P1"}, edgePairs(d.Edges))

	nodes, edges := e.Graph()
	assert.Equal(t, []string{"P1", "P2", "P3"}, nodeIDs(nodes))
	assert.Equal(t, []string{"P1->P2", "P3->P1"}, edgePairs(edges))

	for _, ev := range edges {
		if ev.From == "P1" {
			assert.Equal(t, 6, ev.Weight, "influential reference")
			assert.Equal(t, "#2e5361", ev.Color)
		} else {
			assert.Equal(t, 1, ev.Weight)
			assert.Equal(t, "#bdc9c4", ev.Color)
		}
	}

	levels := map[string]int{}
	for _, n := range nodes {
		levels[n.NodeData.ID] = n.Level
	}
	assert.Equal(t, map[string]int{"P2": 0, "P1": 1, "P3": 2}, levels)
}

func TestEngine_AddNodeIdempotent(t *testing.T) {
	ctx := context.Background()
	r := threePapers()
	e := newEngine(t, r, nil)

	first := e.AddNode(ctx, "P1")
	require.Len(t, first.Nodes, 1)
	rec, _ := e.Record("P1")
	snapshot := *rec

	second := e.AddNode(ctx, "P1")
	assert.True(t, second.Empty(), "second add produced %+v", second)
	assert.Equal(t, 1, r.calls["P1"])

	again, _ := e.Record("P1")
	assert.Same(t, rec, again)
	assert.Equal(t, snapshot, *again)
}

func TestEngine_AddLinksIdempotentPerDirection(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, threePapers(), nil)
	e.AddNode(ctx, "P1")

	d := e.AddLinks(ctx, "P1", LinkOptions{OnlyReferences: true})
	assert.Equal(t, []string{"P2"}, nodeIDs(d.Nodes))
	assert.True(t, e.AddLinks(ctx, "P1", LinkOptions{OnlyReferences: true}).Empty())

	d = e.AddLinks(ctx, "P1", LinkOptions{})
	assert.Equal(t, []string{"P3"}, nodeIDs(d.Nodes))
	assert.True(t, e.AddLinks(ctx, "P1", LinkOptions{}).Empty())
}

func TestEngine_InfluentialOnly(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, threePapers(), nil)
	e.AddNode(ctx, "P1")

	d := e.AddLinks(ctx, "P1", LinkOptions{InfluentialOnly: true})
	assert.Equal(t, []string{"P2"}, nodeIDs(d.Nodes))
	assert.False(t, e.Has("P3"))
}

func TestEngine_Canonicalization(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver(
		meta("P1", 2015, []paper.Link{link("P2", false)}, nil),
		meta("D1", 2015, []paper.Link{link("P2", true), link("P4", false)}, []paper.Link{link("D9", false)}),
		meta("P9", 2021, []paper.Link{link("P1", false)}, nil),
	)
	aliases := alias.New(map[string]string{"D1": "P1", "D9": "P9"})
	e := newEngine(t, r, func(o *Options) { o.Aliases = aliases })

	d := e.AddNode(ctx, "D1")
	require.Len(t, d.Nodes, 1)
	assert.Equal(t, "P1", d.Nodes[0].NodeData.ID)
	assert.Equal(t, 1, r.calls["P1"])
	assert.Equal(t, 1, r.calls["D1"], "duplicate fetched once for merging")

	assert.True(t, e.AddNode(ctx, "P1").Empty())
	assert.True(t, e.Has("D1"))

	rec, ok := e.Record("P1")
	require.True(t, ok)
	refIDs := []string{}
	for _, l := range rec.References() {
		refIDs = append(refIDs, l.PaperID)
	}
	assert.Equal(t, []string{"P2", "P4"}, refIDs)
	assert.True(t, rec.References()[0].IsInfluential, "influential flag merged from duplicate")
	assert.Equal(t, "P9", rec.Citations()[0].PaperID, "citation target canonicalized")

	nodes, _ := e.Graph()
	assert.Equal(t, []string{"P1"}, nodeIDs(nodes))
}

func TestEngine_EdgeUniqueness(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver(
		meta("A", 2010, []paper.Link{link("B", false), link("A", false)}, []paper.Link{link("B", true)}),
		meta("B", 2011, []paper.Link{link("A", false)}, []paper.Link{link("A", false)}),
	)
	e := newEngine(t, r, nil)

	e.AddNode(ctx, "A")
	d := e.AddNode(ctx, "B")
	assert.Len(t, d.Edges, 1)
	e.AddLinks(ctx, "A", LinkOptions{})
	e.AddLinks(ctx, "B", LinkOptions{})
	e.RefreshAllLinks()

	_, edges := e.Graph()
	assert.Len(t, edges, 1)
	for _, ev := range edges {
		assert.NotEqual(t, ev.From, ev.To)
	}
}

func TestEngine_FilterPermanence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := newEngine(t, threePapers(), func(o *Options) { o.Dir = dir })

	e.AddNode(ctx, "P1")
	e.AddLinks(ctx, "P1", LinkOptions{OnlyReferences: true})
	require.True(t, e.Has("P2"))

	d := e.RemoveNode("P2")
	assert.Equal(t, []string{"P2"}, d.Removed)
	assert.False(t, e.Has("P2"))
	assert.True(t, e.Excluded("P2"))

	assert.True(t, e.AddNode(ctx, "P2").Empty())
	e.AddLinks(ctx, "P1", LinkOptions{})
	e.AddLinks(ctx, "P3", LinkOptions{})
	assert.False(t, e.Has("P2"))

	_, edges := e.Graph()
	for _, ev := range edges {
		assert.NotEqual(t, "P2", ev.To)
		assert.NotEqual(t, "P2", ev.From)
	}

	set, err := storage.ReadIDSet(filepath.Join(dir, storage.FilterFile))
	require.NoError(t, err)
	assert.True(t, set.Has("P2"))

	// Removing an absent paper is tolerated.
	assert.Equal(t, []string{"P7"}, e.RemoveNode("P7").Removed)
}

func TestEngine_RangesRecompute(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver(
		meta("Y2001", 2001, nil, nil),
		meta("Y2015", 2015, nil, nil),
		meta("Y1998", 1998, nil, nil),
	)
	e := newEngine(t, r, nil)
	for _, id := range []string{"Y2001", "Y2015", "Y1998"} {
		require.Len(t, e.AddNode(ctx, id).Nodes, 1)
	}

	years, _ := e.Ranges()
	assert.Equal(t, 1998, years.Min)
	assert.Equal(t, 2015, years.Max)

	e.RemoveNode("Y1998")
	years, _ = e.Ranges()
	assert.Equal(t, 2001, years.Min)
	assert.Equal(t, 2015, years.Max)
}

func TestEngine_AdmissionFilter(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver(
		meta("OLD", 1990, nil, nil),
		meta("NEW", 2020, nil, []paper.Link{link("X", false), link("Y", false)}),
	)
	e := newEngine(t, r, func(o *Options) { o.Filter = config.Filter{Year: 2000, Cit: 1} })

	assert.True(t, e.AddNode(ctx, "OLD").Empty())
	assert.True(t, e.Excluded("OLD"))
	assert.True(t, e.AddNode(ctx, "NEW").Empty(), "too many citations")
	assert.True(t, e.Excluded("NEW"))
}

func TestEngine_ResolutionFailureLeavesNoNode(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver()
	e := newEngine(t, r, nil)

	d := e.AddNode(ctx, "MISSING")
	assert.True(t, d.Empty())
	assert.False(t, e.Has("MISSING"))
	assert.False(t, e.Excluded("MISSING"))
	assert.True(t, e.AddLinks(ctx, "MISSING", LinkOptions{}).Empty())
}

func TestEngine_Rescan(t *testing.T) {
	ctx := context.Background()
	r := threePapers()
	lib := &fakeLibrary{}
	e := newEngine(t, r, func(o *Options) { o.Library = lib })

	e.AddNode(ctx, "P1")
	e.AddLinks(ctx, "P1", LinkOptions{})
	_, before := e.Graph()

	r.papers["P1"].Title = "Renamed"
	// A cached node is reused until it is rescanned.
	assert.Equal(t, 1, r.calls["P1"])

	d := e.Rescan(ctx, "P1")
	require.Len(t, d.Nodes, 1)
	assert.Equal(t, "Renamed", d.Nodes[0].Title)
	assert.Len(t, d.Info, 1)
	assert.Empty(t, d.Edges)
	assert.Equal(t, 2, r.calls["P1"])
	assert.Equal(t, 1, lib.reloads)

	_, after := e.Graph()
	assert.Equal(t, edgePairs(before), edgePairs(after))

	rec, _ := e.Record("P1")
	assert.True(t, rec.ReferencesExpanded, "expansion state survives a rescan")

	all := e.RescanAll(ctx)
	assert.Len(t, all.Nodes, 3)
	assert.Equal(t, 2, lib.reloads)

	assert.True(t, e.Rescan(ctx, "ABSENT").Empty())
}

func TestEngine_RescanLoadedSkipsReload(t *testing.T) {
	ctx := context.Background()
	r := threePapers()
	lib := &fakeLibrary{}
	e := newEngine(t, r, func(o *Options) { o.Library = lib })

	e.AddNode(ctx, "P1")
	e.AddLinks(ctx, "P1", LinkOptions{})
	r.papers["P2"].Title = "Renamed"

	d := e.RescanLoaded(ctx)
	assert.Len(t, d.Nodes, 3)
	assert.Equal(t, 0, lib.reloads)
	rec, ok := e.Record("P2")
	require.True(t, ok)
	assert.Equal(t, "Renamed", rec.Meta.Title)

	e.RescanAll(ctx)
	assert.Equal(t, 1, lib.reloads)
}

func TestEngine_SetColoring(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, threePapers(), nil)
	e.AddNode(ctx, "P1")

	assert.False(t, e.SetColoring("RAINBOW"))
	assert.Equal(t, "COLLECTION", string(e.Coloring()))

	assert.True(t, e.SetColoring("year"))
	nodes, _ := e.Graph()
	require.Len(t, nodes, 1)
	assert.True(t, strings.HasSuffix(nodes[0].NodeData.Color, "66"), "continuous color %q", nodes[0].NodeData.Color)
}

func TestEngine_AnnotationsAndMentions(t *testing.T) {
	ctx := context.Background()
	r := newFakeResolver(
		&paper.Metadata{PaperID: "P1", Title: "Deep graphs for citation analysis", Year: year(2015),
			Citations: []paper.Link{{PaperID: "P3"}}},
		&paper.Metadata{PaperID: "P3", Title: "Citing work", Year: year(2020),
			References: []paper.Link{{PaperID: "P1", Title: "Deep graphs for citation analysis"}}},
	)
	lib := &fakeLibrary{
		byTitle: map[string]*paper.LibraryRecord{
			"Citing work": {Key: "K3", Collections: []string{"C1"}},
		},
		notes:       map[string]string{"K3": "<p>As shown in [1], graphs work.</p><p>Unrelated.</p>"},
		collections: map[string][]string{"C1": {"Leaf", "Root"}},
	}
	refs := fakeRefs{"P3": {
		ReferenceLinks: []refextract.ReferenceLink{
			{ID: "1", Entry: "A. Author. Deep graphs for citation analysis. In Proc. 2015."},
		},
		RIS: "TY  - CONF\nTI  - Deep graphs for citation analysis\nER  - \n",
	}}
	e := newEngine(t, r, func(o *Options) {
		o.Library = lib
		o.Refs = refs
	})

	e.AddNode(ctx, "P1")
	e.AddNode(ctx, "P3")

	rec, ok := e.Record("P3")
	require.True(t, ok)
	require.NotNil(t, rec.Library)
	assert.Equal(t, "P1", rec.Refs["1"].PaperID)

	panels := map[string]string{}
	for _, info := range e.PaperInfo(ctx) {
		panels[info.ID] = info.HTML
	}

	p3 := panels["P3"]
	assert.Contains(t, p3, `<a href="https://www.semanticscholar.org/paper/P3">https://www.semanticscholar.org/paper/P3</a>`)
	assert.Contains(t, p3, "<h2>Citing work</h2>")
	assert.Contains(t, p3, "Root / Leaf")
	assert.Contains(t, p3, "NO ABSTRACT")
	assert.Contains(t, p3, `[1<a href="https://www.semanticscholar.org/paper/P1" id="paperref">s</a>`+
		`<a href="javascript:highlight_edge('P3', 'P1');" id="paperref">g</a>]`)

	p1 := panels["P1"]
	assert.Contains(t, p1, "NO ANNOTS")
	assert.Contains(t, p1, "<p><strong>Citing work</strong> says: </p> <p>As shown in [<strong>1<a")
	assert.NotContains(t, p1, "Unrelated.")

	id, ok := e.PaperIDByTitle("deep graphs")
	assert.True(t, ok)
	assert.Equal(t, "P1", id)
	_, ok = e.PaperIDByTitle("")
	assert.False(t, ok)
}

func TestEngine_SaveOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache, err := nodecache.New(filepath.Join(t.TempDir(), "nodes"), nil)
	require.NoError(t, err)

	e := New(Options{Project: "save", Dir: dir, Resolver: threePapers(), Cache: cache})
	e.AddNode(ctx, "P1")
	e.AddLinks(ctx, "P1", LinkOptions{})
	e.RemoveNode("P2")
	require.NoError(t, e.Save())

	for _, name := range []string{config.NodesFile, storage.EdgesFile, storage.FilterFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	saved, err := storage.ReadAllEdges(filepath.Join(dir, storage.EdgesFile))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "#bdc9c4", saved[0].Color)

	// Everything reloads from the node cache; the resolver knows nothing.
	empty := newFakeResolver()
	reopened := New(Options{Project: "save", Dir: dir, Resolver: empty, Cache: cache})
	require.NoError(t, reopened.Open(ctx))

	nodes, edges := reopened.Graph()
	assert.Equal(t, []string{"P1", "P3"}, nodeIDs(nodes))
	assert.Equal(t, []string{"P3->P1"}, edgePairs(edges))
	assert.True(t, reopened.Excluded("P2"))
	assert.Empty(t, empty.calls)

	rec, _ := reopened.Record("P1")
	assert.False(t, rec.ReferencesExpanded, "expansion state is not persisted")
}
