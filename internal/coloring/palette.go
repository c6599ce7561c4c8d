package coloring

// tab20c followed by tab20b.
var categorical = [...]string{
	"#3182bd", "#6baed6", "#9ecae1", "#c6dbef",
	"#e6550d", "#fd8d3c", "#fdae6b", "#fdd0a2",
	"#31a354", "#74c476", "#a1d99b", "#c7e9c0",
	"#756bb1", "#9e9ac8", "#bcbddc", "#dadaeb",
	"#636363", "#969696", "#bdbdbd", "#d9d9d9",

	"#393b79", "#5254a3", "#6b6ecf", "#9c9ede",
	"#637939", "#8ca252", "#b5cf6b", "#cedb9c",
	"#8c6d31", "#bd9e39", "#e7ba52", "#e7cb94",
	"#843c39", "#ad494a", "#d6616b", "#e7969c",
	"#7b4173", "#a55194", "#ce6dbd", "#de9ed6",
}

// PaletteSize is the length of the categorical cycle.
const PaletteSize = len(categorical)

// Palette hands out categorical colors in a fixed order, restarting from the
// first color once the cycle is exhausted.
type Palette struct {
	next int
}

// NewPalette returns a palette positioned at the first color.
func NewPalette() *Palette {
	return &Palette{}
}

// Next returns the next color of the cycle.
func (p *Palette) Next() string {
	if p.next >= PaletteSize {
		p.next = 0
	}
	c := categorical[p.next]
	p.next++
	return c
}
