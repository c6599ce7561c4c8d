package s2

import (
	"encoding/json"
	"strings"

	"github.com/file-citas/zotgraph/internal/paper"
)

// decodePaper decodes a paper response field by field. A field that is
// missing or has an unexpected shape is left absent instead of failing the
// whole record.
func decodePaper(body []byte) (*paper.Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, ErrInvalidResponse
	}
	if raw, ok := fields["error"]; ok && len(raw) > 0 && string(raw) != "null" {
		return nil, ErrNotFound
	}

	md := &paper.Metadata{}
	decodeField(fields, "paperId", &md.PaperID)
	if md.PaperID == "" {
		return nil, ErrNotFound
	}
	decodeField(fields, "title", &md.Title)
	decodeField(fields, "doi", &md.DOI)

	var year int
	if decodeField(fields, "year", &year) {
		md.Year = &year
	}
	var abstract string
	if decodeField(fields, "abstract", &abstract) {
		md.Abstract = &abstract
	}

	var authors []json.RawMessage
	decodeField(fields, "authors", &authors)
	for _, raw := range authors {
		var a paper.Author
		if json.Unmarshal(raw, &a) == nil && strings.TrimSpace(a.Name) != "" {
			md.Authors = append(md.Authors, a)
		}
	}

	md.Citations = decodeLinks(fields, "citations")
	md.References = decodeLinks(fields, "references")
	return md, nil
}

// decodeField unmarshals fields[name] into dst and reports success.
// JSON null counts as absent.
func decodeField(fields map[string]json.RawMessage, name string, dst any) bool {
	raw, ok := fields[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// wireLink is the upstream shape of a citation or reference entry.
type wireLink struct {
	PaperID       *string `json:"paperId"`
	Title         *string `json:"title"`
	DOI           *string `json:"doi"`
	Year          *int    `json:"year"`
	IsInfluential *bool   `json:"isInfluential"`
}

// decodeLinks keeps entries that carry a target id; the rest cannot become
// edges and are dropped.
func decodeLinks(fields map[string]json.RawMessage, name string) []paper.Link {
	var raws []json.RawMessage
	decodeField(fields, name, &raws)
	links := make([]paper.Link, 0, len(raws))
	for _, raw := range raws {
		var w wireLink
		if json.Unmarshal(raw, &w) != nil || w.PaperID == nil || *w.PaperID == "" {
			continue
		}
		l := paper.Link{PaperID: *w.PaperID, Year: w.Year}
		if w.Title != nil {
			l.Title = *w.Title
		}
		if w.DOI != nil {
			l.DOI = *w.DOI
		}
		if w.IsInfluential != nil {
			l.IsInfluential = *w.IsInfluential
		}
		links = append(links, l)
	}
	return links
}

// searchResponse is the body of the title search endpoint.
type searchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		PaperID string `json:"paperId"`
		Title   string `json:"title"`
	} `json:"data"`
}
