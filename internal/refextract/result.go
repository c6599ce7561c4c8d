// Package refextract obtains the numbered reference list of a paper's PDF
// and derives a title for every entry.
package refextract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/file-citas/zotgraph/internal/fuzzy"
	"github.com/file-citas/zotgraph/internal/paper"
)

// Result is the raw output of an extraction: the numbered reference list
// and a RIS export of the same references.
type Result struct {
	ReferenceLinks []ReferenceLink `json:"reference_links"`
	RIS            string          `json:"ris"`
}

// ReferenceLink is one numbered entry of the extracted reference list.
type ReferenceLink struct {
	ID         Marker `json:"id"`
	Entry      string `json:"entry"`
	ScholarURL string `json:"scholar_url,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Link returns the preferred external link of the entry.
func (l ReferenceLink) Link() string {
	if l.ScholarURL != "" {
		return l.ScholarURL
	}
	return l.URL
}

// Marker is a reference-list marker. The service sends it as a string or a
// number; both decode to the same text.
type Marker string

func (m *Marker) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Marker(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*m = Marker(strconv.FormatInt(i, 10))
			return nil
		}
		*m = Marker(n.String())
		return nil
	}
	// Unusable markers are dropped rather than failing the whole result.
	*m = ""
	return nil
}

// risTitleTag starts a title line in a RIS record.
const risTitleTag = "TI  - "

// RISTitles returns the distinct titles of a RIS export in first-seen order.
func RISTitles(ris string) []string {
	var titles []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(ris, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, risTitleTag) {
			continue
		}
		t := strings.TrimSpace(line[len(risTitleTag):])
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		titles = append(titles, t)
	}
	return titles
}

// DeriveTitles assigns each entry the RIS title that best matches its raw
// entry text by partial similarity. Ties go to the first-seen title. An
// entry whose best score is zero or below floor gets paper.UnknownTitle.
// Entries without a marker are skipped.
func DeriveTitles(res *Result, floor int) map[string]paper.ExtractedRef {
	refs := make(map[string]paper.ExtractedRef)
	if res == nil {
		return refs
	}
	titles := RISTitles(res.RIS)

	for _, rl := range res.ReferenceLinks {
		if rl.ID == "" {
			continue
		}
		ref := paper.ExtractedRef{Title: paper.UnknownTitle, Link: rl.Link()}
		idx, score := fuzzy.Best(rl.Entry, titles, func(entry, title string) int {
			return fuzzy.PartialRatio(title, entry)
		})
		if idx >= 0 && score > 0 && score >= floor {
			ref.Title = titles[idx]
		}
		refs[string(rl.ID)] = ref
	}
	return refs
}
