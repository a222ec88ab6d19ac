// Package textbuffer implements the logical/virtual line model described
// in spec §4.2: styled chunks, wrap, highlights, and selection, decoupled
// from the viewport that renders them into a cellbuffer.Buffer.
package textbuffer

import (
	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// WrapMode selects how virtual lines are derived from logical lines.
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapChar
	WrapWord
)

// Chunk is one styled run of text. Any unset field falls back to the
// buffer's default.
type Chunk struct {
	Text string
	Fg   *color.RGBA
	Bg   *color.RGBA
	Attr *cellbuffer.Attr
	Link string
}

type chunkSpan struct {
	chunk      Chunk
	start, end int // byte offsets into the buffer's plain text
}

// Highlight is a syntax/search-style overlay, resolved in ascending
// priority order with ties broken by later insertion (§4.2 rendering
// step 2).
type Highlight struct {
	ref        string
	line       int // -1 if this highlight was added by char range
	colStart   int
	colEnd     int
	byteStart  int
	byteEnd    int
	StyleID    string
	Priority   int
	Fg, Bg     *color.RGBA
	Attr       *cellbuffer.Attr
	insertSeq  int
}

// Selection is a [Start, End) code-point range with optional override
// colors.
type Selection struct {
	Start, End int
	Fg, Bg     *color.RGBA
}
