// Package cellbuffer implements the fixed-size cell grid: the only legal
// primitives for placing cells, clipping via a scissor stack, and
// alpha-aware compositing. See spec §4.1.
package cellbuffer

import "github.com/otuigo/core/color"

// Attr is a bit set over the eight supported text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrHidden
	AttrStrikethrough
)

// Has reports whether every bit in mask is set in a.
func (a Attr) Has(mask Attr) bool { return a&mask == mask }

// Cell is one grid position: a codepoint plus foreground/background color
// and attribute flags.
type Cell struct {
	Char rune
	Fg   color.RGBA
	Bg   color.RGBA
	Attr Attr
}

// SpaceCell returns a blank cell (a space with no attributes) in the given
// colors.
func SpaceCell(fg, bg color.RGBA) Cell {
	return Cell{Char: ' ', Fg: fg, Bg: bg}
}

// WidthMethod selects the unicode-width algorithm used by DrawText and is
// fixed for the lifetime of a Buffer.
type WidthMethod uint8

const (
	// WidthMethodWCWidth uses the legacy wcwidth table (github.com/mattn/go-runewidth).
	WidthMethodWCWidth WidthMethod = iota
	// WidthMethodUnicode uses full grapheme segmentation + East Asian width
	// (github.com/rivo/uniseg), per UAX #29.
	WidthMethodUnicode
)

// Rect is an axis-aligned rectangle in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// Intersect returns the intersection of r and o. The result may have
// non-positive W/H, meaning empty.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether (x, y) is within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
