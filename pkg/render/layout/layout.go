package layout

import (
	"math/rand/v2"
)

// Measurer reports the rendered width of a string in logical pixels.
type Measurer interface {
	Measure(s string) float64
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(s string) float64

// Measure calls f(s).
func (f MeasureFunc) Measure(s string) float64 { return f(s) }

// FixedAdvance returns a measurer that gives every rune the same width.
// It matches monospace fonts and keeps tests independent of font data.
func FixedAdvance(advance float64) Measurer {
	return MeasureFunc(func(s string) float64 {
		return float64(runeCount(s)) * advance
	})
}

// Token is one placed token. X is the cursor position of its left edge and
// Y the top of its row.
type Token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	Row    int     `json:"row"`
	Line   int     `json:"line"`
	Space  bool    `json:"space,omitempty"`
	Masked bool    `json:"masked,omitempty"`
}

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Box returns the mask rectangle for the token: one pixel of bleed on each
// side and two above the text top.
func (t Token) Box(maskHeight float64) Rect {
	return Rect{X: t.X - 1, Y: t.Y - 2, W: t.W + 2, H: maskHeight}
}

// Layout is the result of [Compute].
type Layout struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	MaskHeight float64 `json:"mask_height"`
	Intensity  int     `json:"intensity"`
	Tokens     []Token `json:"tokens"`

	// Rows counts output rows, including rows produced by wrapping.
	Rows int `json:"rows"`

	// Masked and Drawn count non-whitespace tokens painted as boxes and
	// as glyphs respectively.
	Masked int `json:"masked"`
	Drawn  int `json:"drawn"`
}

// Words returns the non-whitespace tokens in order.
func (l Layout) Words() []Token {
	words := make([]Token, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		if !t.Space {
			words = append(words, t)
		}
	}
	return words
}

// RowsOf returns the distinct rows occupied by the words of input line n.
func (l Layout) RowsOf(line int) []int {
	var rows []int
	for _, t := range l.Tokens {
		if t.Line != line || t.Space {
			continue
		}
		if len(rows) == 0 || rows[len(rows)-1] != t.Row {
			rows = append(rows, t.Row)
		}
	}
	return rows
}

// NewRand returns a PCG-backed random source. A zero seed is replaced by a
// random one; use [Seed] to pick one up front when it must be reported.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = Seed()
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Seed returns a fresh non-zero seed.
func Seed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// ShouldMask draws one masking decision: a uniform value in [0,100) below
// intensity masks. Intensity 0 never masks and 100 always does.
func ShouldMask(rng *rand.Rand, intensity int) bool {
	return rng.Float64()*100 < float64(intensity)
}

// Compute lays out text and decides masking. A nil rng draws a fresh seed.
// Zero fields in cfg take their defaults.
func Compute(text string, intensity int, m Measurer, rng *rand.Rand, cfg Config) Layout {
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = NewRand(0)
	}
	intensity = max(0, min(intensity, 100))

	l := Layout{
		Width:      cfg.Width,
		Height:     cfg.Height,
		MaskHeight: cfg.MaskHeight,
		Intensity:  intensity,
	}

	y := cfg.Top
	row := 0
	for lineNo, line := range splitLines(text) {
		x := cfg.Margin
		for _, tok := range Tokenize(line) {
			w := m.Measure(tok)
			space := IsSpace(tok)

			if !space && x > cfg.Margin && x+w > cfg.RightEdge() {
				x = cfg.Margin
				y += cfg.LineHeight
				row++
			}

			t := Token{Text: tok, X: x, Y: y, W: w, Row: row, Line: lineNo, Space: space}
			if !space {
				if ShouldMask(rng, intensity) {
					t.Masked = true
					l.Masked++
				} else {
					l.Drawn++
				}
			}
			l.Tokens = append(l.Tokens, t)
			x += w
		}
		y += cfg.LineHeight
		row++
	}
	l.Rows = row
	return l
}
