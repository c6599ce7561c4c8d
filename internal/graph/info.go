package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/file-citas/zotgraph/internal/fuzzy"
	"github.com/file-citas/zotgraph/internal/linker"
)

// TitleMatchScore is the partial-ratio score PaperIDByTitle must exceed.
const TitleMatchScore = 70

var errNoAnnotations = errors.New("paper has no library record")

var infoTemplate = template.Must(template.New("info").Parse(`<p>
<a href="{{.Link}}">{{.Link}}</a>
</p>
<h2>{{.Title}}</h2>
{{if .Collections}}<p>{{range $i, $c := .Collections}}{{if $i}}; {{end}}{{$c}}{{end}}</p>
{{end}}<p>
{{.Abstract}}
</p>
<h2>Annotations</h2>
<p>
{{.Annotations}}
</p>
<h2>Mentions</h2>
{{.Mentions}}`))

type infoPanel struct {
	Link        string
	Title       string
	Collections []string
	Abstract    string
	Annotations template.HTML
	Mentions    template.HTML
}

// info renders the info panel of a present node. Every part degrades to a
// placeholder on failure.
func (e *Engine) info(ctx context.Context, id string) Info {
	rec := e.nodes[id]
	p := infoPanel{
		Link:        linker.PaperURL + id,
		Title:       rec.Title,
		Collections: e.collectionNames(ctx, id),
		Abstract:    "NO ABSTRACT",
		Annotations: "NO ANNOTS",
		Mentions:    template.HTML(e.mentions(ctx, id)),
	}
	if abs, ok := rec.Abstract(); ok {
		p.Abstract = abs
	}
	if annots, err := e.annotations(ctx, id); err == nil {
		p.Annotations = template.HTML(annots)
	} else {
		e.logger.Debug("no annotations", "paperId", id, "error", err)
	}

	var buf bytes.Buffer
	if err := infoTemplate.Execute(&buf, p); err != nil {
		e.logger.Error("rendering info panel", "paperId", id, "error", err)
		return Info{ID: id}
	}
	return Info{ID: id, HTML: buf.String()}
}

// annotations returns the library notes of a node with citation markers
// rewritten into links.
func (e *Engine) annotations(ctx context.Context, id string) (string, error) {
	rec, ok := e.nodes[id]
	if !ok || rec.Library == nil || e.lib == nil {
		return "", errNoAnnotations
	}
	text, err := e.lib.Annotations(ctx, rec.Library.Key)
	if err != nil {
		return "", err
	}
	return e.linker.Rewrite(text, id, rec.Refs, e.present), nil
}

// mentions collects what the present papers citing id say about it in
// their annotations.
func (e *Engine) mentions(ctx context.Context, id string) string {
	var b strings.Builder
	for _, cit := range e.nodes[id].Citations() {
		if !e.present(cit.PaperID) {
			continue
		}
		annots, err := e.annotations(ctx, cit.PaperID)
		if err != nil {
			continue
		}
		if paras := linker.Mentions(id, annots); paras != "" {
			fmt.Fprintf(&b, "<p><strong>%s</strong> says: </p> %s", html.EscapeString(e.nodes[cit.PaperID].Title), paras)
		}
	}
	return b.String()
}

// collectionNames renders each library collection of id as its path from
// the root. Collections whose path cannot be resolved are skipped.
func (e *Engine) collectionNames(ctx context.Context, id string) []string {
	rec := e.nodes[id]
	if e.lib == nil || rec.Library == nil {
		return nil
	}
	var out []string
	for _, cid := range rec.Library.Collections {
		names, err := e.lib.CollectionPath(ctx, cid)
		if err != nil || len(names) == 0 {
			e.logger.Debug("collection path", "collection", cid, "error", err)
			continue
		}
		parts := make([]string, len(names))
		for i, n := range names {
			parts[len(names)-1-i] = n
		}
		out = append(out, strings.Join(parts, " / "))
	}
	return out
}

// PaperIDByTitle returns the first present node whose title contains a
// close match of title, ignoring case.
func (e *Engine) PaperIDByTitle(title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	want := strings.ToLower(title)
	for _, id := range e.store.Nodes() {
		if fuzzy.PartialRatio(strings.ToLower(e.nodes[id].Title), want) > TitleMatchScore {
			return id, true
		}
	}
	return "", false
}
