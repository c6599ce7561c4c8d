package refextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/file-citas/zotgraph/internal/pdf"
)

// Local extracts reference lists from the PDF text layer without a remote
// service. The RIS part of the result carries one guessed title per entry.
type Local struct{}

// Extract reads the PDF and parses its reference section.
func (Local) Extract(ctx context.Context, pdfPath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := pdf.ExtractText(pdfPath, 0)
	if err != nil {
		return nil, fmt.Errorf("reading PDF text: %w", err)
	}
	return FromText(text), nil
}

// FromText builds a result from plain text containing a reference section.
func FromText(text string) *Result {
	res := &Result{}
	var ris strings.Builder
	for _, e := range pdf.ReferenceEntries(text) {
		rl := ReferenceLink{ID: Marker(e.Marker), Entry: e.Text}
		if e.DOI != "" {
			rl.URL = "https://doi.org/" + e.DOI
		}
		res.ReferenceLinks = append(res.ReferenceLinks, rl)

		if title := pdf.GuessTitle(e.Text); title != "" {
			ris.WriteString("TY  - GEN\n")
			ris.WriteString(risTitleTag + title + "\n")
			ris.WriteString("ER  - \n")
		}
	}
	res.RIS = ris.String()
	return res
}
