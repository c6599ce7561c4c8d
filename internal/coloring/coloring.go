// Package coloring assigns display colors to graph nodes by partition key.
package coloring

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/file-citas/zotgraph/internal/paper"
)

// Key selects the node attribute that drives coloring.
type Key string

const (
	Collection Key = "COLLECTION"
	Author     Key = "AUTHOR"
	Year       Key = "YEAR"
	NCit       Key = "NCIT"
)

// Keys lists the valid partition keys.
var Keys = []Key{Collection, Author, Year, NCit}

const (
	// DefaultColor is used when a categorical key cannot be computed.
	DefaultColor = "#B1D8F1"
	// MissingValueColor is used when a continuous key has no value.
	MissingValueColor = "#ffffff"
	// continuousAlpha is the fixed 0.4 opacity of continuous colors.
	continuousAlpha = "66"
)

// ParseKey validates a partition key name, case-insensitively.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToUpper(strings.TrimSpace(s)))
	for _, valid := range Keys {
		if k == valid {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid coloring %q (valid: %v)", s, Keys)
}

// Span is an observed value range. OK is false when no value was seen.
type Span struct {
	Min, Max int
	OK       bool
}

// Engine holds the active partition key and the per-key color memos.
// It is not safe for concurrent use; the graph engine serializes access.
type Engine struct {
	key      Key
	memo     map[Key]map[string]string
	palettes map[Key]*Palette
}

// New returns an engine coloring by collection.
func New() *Engine {
	e := &Engine{key: Collection}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.memo = map[Key]map[string]string{
		Collection: {},
		Author:     {},
	}
	e.palettes = map[Key]*Palette{
		Collection: NewPalette(),
		Author:     NewPalette(),
	}
}

// Key returns the active partition key.
func (e *Engine) Key() Key {
	return e.key
}

// SetKey switches the partition key and forgets every assigned color.
func (e *Engine) SetKey(k Key) {
	e.key = k
	e.reset()
}

// NodeColor returns the color of rec under the active key. years and cits
// are the current aggregate ranges used to normalize continuous keys.
func (e *Engine) NodeColor(rec *paper.Record, years, cits Span) string {
	switch e.key {
	case Collection:
		ck := rec.CollectionKey()
		if ck == "" {
			return DefaultColor
		}
		return e.categorical(Collection, ck)
	case Author:
		name, ok := rec.FirstAuthor()
		if !ok {
			return DefaultColor
		}
		return e.categorical(Author, name)
	case Year:
		y, ok := rec.Year()
		if !ok {
			return MissingValueColor
		}
		return Continuous(y, years)
	case NCit:
		n := rec.CitationCount()
		if n < 0 {
			return MissingValueColor
		}
		return Continuous(n, cits)
	}
	return DefaultColor
}

func (e *Engine) categorical(k Key, value string) string {
	memo := e.memo[k]
	if c, ok := memo[value]; ok {
		return c
	}
	c := e.palettes[k].Next()
	memo[value] = c
	return c
}

var (
	summerLow  = colorful.Color{R: 0, G: 0.5, B: 0.4}
	summerHigh = colorful.Color{R: 1, G: 1, B: 0.4}
)

// Continuous maps v onto the sequential colormap normalized over span. The
// result is an 8-digit hex color with partial opacity.
func Continuous(v int, span Span) string {
	t := 0.0
	if span.OK && span.Max > span.Min {
		t = float64(v-span.Min) / float64(span.Max-span.Min)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return summerLow.BlendRgb(summerHigh, t).Clamped().Hex() + continuousAlpha
}
