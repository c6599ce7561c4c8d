// Package paper defines the core domain types for resolved papers and their links.
package paper

import (
	"fmt"
	"sort"
	"strings"
)

// Author is a paper author as reported by the metadata service.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// Link describes one entry of a paper's citation or reference list.
// The target is always PaperID; the remaining fields are informational.
type Link struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	DOI           string `json:"doi,omitempty"`
	Year          *int   `json:"year,omitempty"`
	IsInfluential bool   `json:"isInfluential"`
}

// Metadata is a paper record resolved from the bibliographic metadata service.
// Optional upstream fields are pointers; nil means the field was absent or malformed.
type Metadata struct {
	PaperID    string   `json:"paperId"`
	Title      string   `json:"title"`
	DOI        string   `json:"doi,omitempty"`
	Year       *int     `json:"year,omitempty"`
	Authors    []Author `json:"authors,omitempty"`
	Abstract   *string  `json:"abstract,omitempty"`
	Citations  []Link   `json:"citations"`
	References []Link   `json:"references"`
}

// LibraryRecord is the reference-manager entry matched to a paper.
type LibraryRecord struct {
	Key         string   `json:"key"`
	Title       string   `json:"title,omitempty"`
	DOI         string   `json:"doi,omitempty"`
	Collections []string `json:"collections,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// UnknownTitle marks a reference-list entry whose title could not be derived.
const UnknownTitle = "?"

// ExtractedRef is one numbered entry of a paper's extracted reference list.
type ExtractedRef struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	PaperID string `json:"paperId,omitempty"`
}

// Record is the cached, merged state of a single paper node.
type Record struct {
	PaperID string                  `json:"paperId"`
	Title   string                  `json:"title"`
	DOI     string                  `json:"doi,omitempty"`
	Meta    *Metadata               `json:"meta"`
	Library *LibraryRecord          `json:"library,omitempty"`
	Refs    map[string]ExtractedRef `json:"extref,omitempty"`

	// Session-only expansion state; never trusted when read back from disk.
	ReferencesExpanded bool `json:"referencesExpanded"`
	CitationsExpanded  bool `json:"citationsExpanded"`
}

// FirstAuthor returns the name of the first author, if any.
func (r *Record) FirstAuthor() (string, bool) {
	if r == nil || r.Meta == nil || len(r.Meta.Authors) == 0 {
		return "", false
	}
	name := strings.TrimSpace(r.Meta.Authors[0].Name)
	return name, name != ""
}

// Year returns the publication year, if known.
func (r *Record) Year() (int, bool) {
	if r == nil || r.Meta == nil || r.Meta.Year == nil {
		return 0, false
	}
	return *r.Meta.Year, true
}

// CitationCount returns the number of citing papers, or -1 without metadata.
func (r *Record) CitationCount() int {
	if r == nil || r.Meta == nil {
		return -1
	}
	return len(r.Meta.Citations)
}

// Abstract returns the abstract text, if present.
func (r *Record) Abstract() (string, bool) {
	if r == nil || r.Meta == nil || r.Meta.Abstract == nil {
		return "", false
	}
	return *r.Meta.Abstract, true
}

// References returns the reference list, or nil without metadata.
func (r *Record) References() []Link {
	if r == nil || r.Meta == nil {
		return nil
	}
	return r.Meta.References
}

// Citations returns the citation list, or nil without metadata.
func (r *Record) Citations() []Link {
	if r == nil || r.Meta == nil {
		return nil
	}
	return r.Meta.Citations
}

// CollectionKey returns the underscore-joined sorted collection ids of the
// matched library record, or "" when the paper is not in the library.
func (r *Record) CollectionKey() string {
	if r == nil || r.Library == nil || len(r.Library.Collections) == 0 {
		return ""
	}
	ids := append([]string(nil), r.Library.Collections...)
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Label returns the display label "<year> - <ncit> - <title>", or the id
// when the record lacks metadata.
func (r *Record) Label() string {
	year, ok := r.Year()
	if !ok || r.Meta == nil {
		return r.PaperID
	}
	return fmt.Sprintf("%d - %d - %s", year, len(r.Meta.Citations), r.Meta.Title)
}

// ResetSession clears the per-session expansion flags.
func (r *Record) ResetSession() {
	r.ReferencesExpanded = false
	r.CitationsExpanded = false
}
