package cellbuffer

import (
	runewidth "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Grapheme is one user-perceived character plus its display width under
// the buffer's WidthMethod.
type Grapheme struct {
	Runes []rune
	Width int
}

// graphemeState threads uniseg's boundary state across successive calls so
// that both width methods observe identical cluster boundaries, per §9:
// "Both modes must produce the same grapheme boundaries; only the numeric
// width may differ."
type graphemeState struct {
	method WidthMethod
	state  int
}

func newGraphemeState(m WidthMethod) *graphemeState {
	return &graphemeState{method: m, state: -1}
}

// next consumes one grapheme cluster from s, returning it, the width
// computed by the buffer's method, and the remainder of the string.
func (g *graphemeState) next(s string) (Grapheme, string, bool) {
	if s == "" {
		return Grapheme{}, "", false
	}
	cluster, rest, uniWidth, newState := uniseg.FirstGraphemeClusterInString(s, g.state)
	g.state = newState
	runes := []rune(cluster)

	width := uniWidth
	if g.method == WidthMethodWCWidth {
		width = 0
		for _, r := range runes {
			width += runewidth.RuneWidth(r)
		}
	}
	if width < 0 {
		width = 0
	}
	return Grapheme{Runes: runes, Width: width}, rest, true
}

// graphemes splits s into its full sequence of grapheme clusters using the
// given width method.
func graphemes(s string, m WidthMethod) []Grapheme {
	gs := newGraphemeState(m)
	var out []Grapheme
	rest := s
	for {
		g, r, ok := gs.next(rest)
		if !ok {
			break
		}
		out = append(out, g)
		rest = r
	}
	return out
}

// Graphemes splits s into its grapheme clusters under the given width
// method, exposed for callers (e.g. textbuffer's wrap algorithm) that need
// to reason about cluster boundaries without writing into a Buffer.
func Graphemes(s string, m WidthMethod) []Grapheme {
	return graphemes(s, m)
}

// StringWidth returns the total display width of s under the given method.
func StringWidth(s string, m WidthMethod) int {
	total := 0
	for _, g := range graphemes(s, m) {
		total += g.Width
	}
	return total
}
