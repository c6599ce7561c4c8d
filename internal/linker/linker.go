// Package linker cross-references bracketed citation markers in annotation
// text with a paper's extracted reference list and resolved paper ids.
package linker

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/file-citas/zotgraph/internal/fuzzy"
	"github.com/file-citas/zotgraph/internal/paper"
)

const (
	// DefaultThreshold is the score a title match must exceed.
	DefaultThreshold = 65

	// DefaultMinTitleLen is the shortest extracted title that is matched.
	DefaultMinTitleLen = 4

	// maxRangeLen caps hyphen range expansion; longer ranges stay literal.
	maxRangeLen = 100

	// PaperURL is the canonical page of a resolved paper.
	PaperURL = "https://www.semanticscholar.org/paper/"
)

// markerPattern matches a bracketed marker group such as [3], [4,5], [4-6]
// or [Smi19].
var markerPattern = regexp.MustCompile(`\[(?:[,\-\s]*[\w+]+)+\]`)

// Linker resolves extracted references to paper ids and rewrites markers.
type Linker struct {
	// Threshold is the score a title match must strictly exceed.
	Threshold int
	// MinTitleLen skips extracted titles shorter than this.
	MinTitleLen int
	// HalfOpenRanges expands [a-b] to a..b-1 instead of a..b.
	HalfOpenRanges bool
	// Score compares a candidate title with an extracted title.
	Score fuzzy.Scorer

	Logger *slog.Logger
}

// New returns a linker with the default threshold and scorer.
func New(logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{
		Threshold:   DefaultThreshold,
		MinTitleLen: DefaultMinTitleLen,
		Score:       fuzzy.Ratio,
		Logger:      logger,
	}
}

func (l *Linker) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// ResolveRefs returns a copy of refs in which every entry with a usable
// title carries the id of the best-matching candidate, if that match scores
// above the threshold. Entries that do not qualify have no id.
func (l *Linker) ResolveRefs(refs map[string]paper.ExtractedRef, candidates []paper.Link) map[string]paper.ExtractedRef {
	score := l.Score
	if score == nil {
		score = fuzzy.Ratio
	}
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}

	out := make(map[string]paper.ExtractedRef, len(refs))
	for marker, ref := range refs {
		ref.PaperID = ""
		if ref.Title != paper.UnknownTitle && len([]rune(ref.Title)) >= l.MinTitleLen {
			idx, best := fuzzy.Best(ref.Title, titles, func(q, cand string) int {
				return score(cand, q)
			})
			if idx >= 0 && best > l.Threshold {
				ref.PaperID = candidates[idx].PaperID
				l.logger().Debug("reference matched", "marker", marker, "title", ref.Title, "paperId", ref.PaperID, "score", best)
			} else {
				l.logger().Debug("reference unmatched", "marker", marker, "title", ref.Title, "score", best)
			}
		}
		out[marker] = ref
	}
	return out
}

// ExpandGroup splits the inside of a marker group into marker parts: on
// commas if present, otherwise as a numeric range on a hyphen. Parts are
// stripped of whitespace.
func (l *Linker) ExpandGroup(group string) []string {
	clean := func(s string) string { return strings.Join(strings.Fields(s), "") }

	if strings.Contains(group, ",") {
		var parts []string
		for _, p := range strings.Split(group, ",") {
			if p = clean(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts
	}

	if lo, hi, ok := strings.Cut(group, "-"); ok {
		a, errA := strconv.Atoi(clean(lo))
		b, errB := strconv.Atoi(clean(hi))
		if errA == nil && errB == nil && a <= b && b-a < maxRangeLen {
			end := b
			if l.HalfOpenRanges {
				end = b - 1
			}
			var parts []string
			for i := a; i <= end; i++ {
				parts = append(parts, strconv.Itoa(i))
			}
			if len(parts) > 0 {
				return parts
			}
		}
	}
	return []string{clean(group)}
}

// Rewrite replaces every marker group in annots with inline links: the
// reference's source (u), the resolved paper's page (s) and a graph
// highlight action (g) when present(resolvedID) holds. Groups in which no
// part resolves are left untouched.
func (l *Linker) Rewrite(annots, citingID string, refs map[string]paper.ExtractedRef, present func(string) bool) string {
	if len(refs) == 0 {
		return annots
	}
	return markerPattern.ReplaceAllStringFunc(annots, func(group string) string {
		parts := l.ExpandGroup(group[1 : len(group)-1])
		out := make([]string, len(parts))
		linked := false
		for i, part := range parts {
			out[i] = part
			ref, ok := refs[part]
			if !ok {
				continue
			}
			if ref.Link != "" {
				out[i] += fmt.Sprintf(`<a href="%s" id="paperref">u</a>`, html.EscapeString(ref.Link))
				linked = true
			}
			if ref.PaperID != "" {
				out[i] += fmt.Sprintf(`<a href="%s%s" id="paperref">s</a>`, PaperURL, ref.PaperID)
				linked = true
				if present != nil && present(ref.PaperID) {
					out[i] += fmt.Sprintf(`<a href="javascript:highlight_edge('%s', '%s');" id="paperref">g</a>`, citingID, ref.PaperID)
				}
			}
		}
		if !linked {
			return group
		}
		return "[" + strings.Join(out, ", ") + "]"
	})
}

// mentionPattern matches a rewritten marker part: digits followed by one to
// three inline links.
var mentionPattern = regexp.MustCompile(`\d+(?:<a href=".*?">\w</a>){1,3}`)

// Mentions returns the paragraphs of rewritten annotation HTML that mention
// paperID, with the mentioning markers emphasized. It returns "" when
// nothing mentions paperID.
func Mentions(paperID, annots string) string {
	if paperID == "" || !strings.Contains(annots, paperID) {
		return ""
	}

	var marks []string
	seen := make(map[string]bool)
	for _, m := range mentionPattern.FindAllString(annots, -1) {
		if strings.Contains(m, paperID) && !seen[m] {
			seen[m] = true
			marks = append(marks, m)
		}
	}

	var b strings.Builder
	for _, para := range strings.Split(annots, "<p>") {
		if !strings.Contains(para, paperID) {
			continue
		}
		for _, m := range marks {
			para = strings.ReplaceAll(para, m, "<strong>"+m+"</strong>")
		}
		b.WriteString("<p>")
		b.WriteString(para)
	}
	return b.String()
}
