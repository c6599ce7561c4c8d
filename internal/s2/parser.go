package s2

import (
	"regexp"
	"strings"
)

// PaperIdentifier is a parsed paper identifier with its namespace.
type PaperIdentifier struct {
	Type  string // DOI, ARXIV, PMID, PMCID, CorpusId, URL, MAG, ACL, S2 or TITLE
	Value string
}

// String renders the identifier in the form the paper endpoint accepts.
func (p PaperIdentifier) String() string {
	switch p.Type {
	case "S2", "TITLE":
		return p.Value
	default:
		return p.Type + ":" + p.Value
	}
}

// IsTitle reports whether the identifier is free text that needs a search.
func (p PaperIdentifier) IsTitle() bool {
	return p.Type == "TITLE"
}

// Identifier prefixes accepted by the paper endpoint.
var identifierPrefixes = []string{
	"DOI:",
	"ARXIV:",
	"PMID:",
	"PMCID:",
	"CorpusId:",
	"URL:",
	"MAG:",
	"ACL:",
}

// s2IDPattern matches a 40-character hex string (raw S2 paper ID).
var s2IDPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// doiPattern matches a bare DOI such as 10.1145/3133956.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// ParsePaperID classifies an identifier. Prefixed ids keep their namespace,
// 40-hex strings are raw S2 ids, bare DOIs are tagged DOI, and anything else
// is treated as a title.
func ParsePaperID(id string) PaperIdentifier {
	id = strings.TrimSpace(id)

	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(strings.ToUpper(id), strings.ToUpper(prefix)) {
			return PaperIdentifier{
				Type:  strings.TrimSuffix(prefix, ":"),
				Value: id[len(prefix):],
			}
		}
	}

	if s2IDPattern.MatchString(id) {
		return PaperIdentifier{Type: "S2", Value: id}
	}
	if IsValidDOI(id) {
		return PaperIdentifier{Type: "DOI", Value: NormalizeDOI(id)}
	}
	return PaperIdentifier{Type: "TITLE", Value: id}
}

// NormalizeDOI removes common URL prefixes (https://doi.org/, DOI:) and
// lowercases the result.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// IsValidDOI reports whether doi is syntactically a DOI (starts with "10.").
func IsValidDOI(doi string) bool {
	return doiPattern.MatchString(NormalizeDOI(doi))
}
