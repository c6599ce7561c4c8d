package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts all text from the first N pages of a PDF.
// maxPages <= 0 reads every page.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// Entry is one numbered entry of a reference list.
type Entry struct {
	Marker string // "3" for "[3]" or "3."
	Text   string
	DOI    string
}

var (
	headingPattern = regexp.MustCompile(`(?im)^\s*(references|bibliography|works cited)\s*$`)

	// "[12] Text" or "[Smi19] Text"
	bracketEntry = regexp.MustCompile(`^\s*\[([\w+]+)\]\s*(.*)$`)

	// "12. Text"
	numberEntry = regexp.MustCompile(`^\s*(\d{1,3})\.\s+(.*)$`)

	// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)
)

// ReferenceEntries splits the reference section at the end of text into
// numbered entries. Continuation lines are joined onto the current entry.
func ReferenceEntries(text string) []Entry {
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	section := text[locs[len(locs)-1][1]:]

	var entries []Entry
	var cur *Entry
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(strings.Fields(cur.Text), " ")
		cur.DOI = findDOI(cur.Text)
		entries = append(entries, *cur)
		cur = nil
	}

	for _, line := range strings.Split(section, "\n") {
		if m := bracketEntry.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Entry{Marker: m[1], Text: m[2]}
			continue
		}
		if m := numberEntry.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Entry{Marker: m[1], Text: m[2]}
			continue
		}
		if cur != nil && strings.TrimSpace(line) != "" {
			cur.Text += " " + strings.TrimSpace(line)
		}
	}
	flush()
	return entries
}

// GuessTitle picks the most title-like segment of a reference entry: the
// quoted span if there is one, otherwise the longest sentence after the
// author list.
func GuessTitle(entry string) string {
	if i := strings.IndexAny(entry, "\"“"); i >= 0 {
		rest := entry[i+len(string([]rune(entry[i:])[0])):]
		if j := strings.IndexAny(rest, "\"”"); j > 0 {
			return strings.Trim(strings.TrimSpace(rest[:j]), ",.")
		}
	}

	parts := strings.Split(entry, ". ")
	if len(parts) > 1 {
		parts = parts[1:] // leading segment is the author list
	}
	best := ""
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > len(best) {
			best = p
		}
	}
	return strings.TrimSuffix(best, ".")
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
