// Package fuzzy scores string similarity on a 0-100 scale.
package fuzzy

import (
	"math"

	"github.com/hbollon/go-edlib"
)

// Scorer compares two strings and returns a similarity in [0, 100].
type Scorer func(a, b string) int

// Ratio returns 2*LCS/(len(a)+len(b)) scaled to 0-100 and rounded.
// Two empty strings score 0.
func Ratio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la+lb == 0 {
		return 0
	}
	m := edlib.LCS(a, b)
	return int(math.Round(100 * 2 * float64(m) / float64(la+lb)))
}

// PartialRatio returns the best Ratio of the shorter string against every
// equal-length window of the longer one.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	short := string(ra)
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		score := Ratio(short, string(rb[i:i+len(ra)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Best returns the index and score of the candidate scoring highest against
// query. Ties keep the earliest candidate; a perfect score stops the scan.
// The index is -1 when candidates is empty.
func Best(query string, candidates []string, score Scorer) (int, int) {
	idx, best := -1, -1
	for i, c := range candidates {
		s := score(query, c)
		if s > best {
			idx, best = i, s
			if best == 100 {
				break
			}
		}
	}
	if idx < 0 {
		return -1, 0
	}
	return idx, best
}
