// Package layout places document text on a page and decides which tokens
// are masked.
//
// Layout is pure: it never touches pixels. Text widths come from a
// [Measurer] (the raster sink supplies a font-backed one) and masking
// decisions come from an explicit random source, so a seeded layout is
// fully reproducible.
//
// # Algorithm
//
// Input is split into lines on '\n'. Each line is tokenized into
// alternating runs of non-whitespace and whitespace (see [Tokenize]). A
// cursor starts at the left margin; every token advances it by its
// measured width. A non-whitespace token that would cross the right edge
// wraps to a new row first (greedy, no hyphenation, tokens are never
// split). Each non-whitespace token draws one uniform value in [0,100) and
// is masked when the value is below the intensity.
//
// Whitespace tokens are never masked or drawn, but they do advance the
// cursor so words stay visually separated.
//
//	rng := layout.NewRand(42)
//	l := layout.Compute(text, 40, measurer, rng, layout.DefaultConfig())
//	for _, tok := range l.Tokens {
//	    // tok.Box() is the mask rectangle for masked tokens
//	}
package layout
