package cellbuffer

import (
	"fmt"

	"github.com/otuigo/core/color"
)

const maxScissorDepth = 32

// Buffer is a fixed-size width×height grid of cells, stored as four
// parallel row-major arrays (char, fg, bg, attr). The arrays are not
// exposed; callers read cells through Cell and WriteResolvedChars.
type Buffer struct {
	id          string
	width       int
	height      int
	chars       []rune
	fg          []color.RGBA
	bg          []color.RGBA
	attrs       []Attr
	respectAlpha bool
	widthMethod WidthMethod
	scissors    []Rect
	closed      bool
}

// New creates a buffer of the given dimensions. width and height must be
// positive.
func New(id string, width, height int, respectAlpha bool, widthMethod WidthMethod) *Buffer {
	n := width * height
	b := &Buffer{
		id:           id,
		width:        width,
		height:       height,
		chars:        make([]rune, n),
		fg:           make([]color.RGBA, n),
		bg:           make([]color.RGBA, n),
		attrs:        make([]Attr, n),
		respectAlpha: respectAlpha,
		widthMethod:  widthMethod,
	}
	b.Clear(color.Transparent)
	return b
}

// Close releases the buffer's arrays. Using the buffer afterwards is a
// programming error (contract violation); operations become no-ops.
func (b *Buffer) Close() {
	b.closed = true
	b.width, b.height = 0, 0
	b.chars = nil
	b.fg = nil
	b.bg = nil
	b.attrs = nil
}

// ID returns the buffer's stable identifier.
func (b *Buffer) ID() string { return b.id }

// Width returns the buffer's width in cells.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer's height in cells.
func (b *Buffer) Height() int { return b.height }

// RespectAlpha reports whether DrawFrameBuffer treats this buffer's cells
// as alpha-composited source data.
func (b *Buffer) RespectAlpha() bool { return b.respectAlpha }

// SetRespectAlpha sets the respect-alpha flag.
func (b *Buffer) SetRespectAlpha(v bool) { b.respectAlpha = v }

// WidthMethod returns the buffer's fixed width method.
func (b *Buffer) WidthMethod() WidthMethod { return b.widthMethod }

func (b *Buffer) index(x, y int) int { return y*b.width + x }

// Clip returns the active clip rectangle: the intersection of every
// pushed scissor with the buffer bounds. With no scissor pushed, the
// active clip is the full buffer.
func (b *Buffer) Clip() Rect {
	clip := Rect{X: 0, Y: 0, W: b.width, H: b.height}
	for _, s := range b.scissors {
		clip = clip.Intersect(s)
	}
	return clip
}

// PushScissor intersects a new clip rectangle onto the stack. Pushing past
// maxScissorDepth is a contract violation and is a no-op.
func (b *Buffer) PushScissor(x, y, w, h int) {
	if len(b.scissors) >= maxScissorDepth {
		return
	}
	b.scissors = append(b.scissors, Rect{X: x, Y: y, W: w, H: h})
}

// PopScissor removes the most recently pushed scissor. Popping an empty
// stack is a contract violation and is a no-op.
func (b *Buffer) PopScissor() {
	if len(b.scissors) == 0 {
		return
	}
	b.scissors = b.scissors[:len(b.scissors)-1]
}

// ClearScissors empties the scissor stack.
func (b *Buffer) ClearScissors() {
	b.scissors = b.scissors[:0]
}

// ScissorDepth returns the current stack depth.
func (b *Buffer) ScissorDepth() int { return len(b.scissors) }

// Clear sets every cell to (space, default fg, bg, no attrs).
func (b *Buffer) Clear(bg color.RGBA) {
	defaultFg := color.RGB8(255, 255, 255)
	for i := range b.chars {
		b.chars[i] = ' '
		b.fg[i] = defaultFg
		b.bg[i] = bg
		b.attrs[i] = 0
	}
}

// Resize reallocates the cell arrays, preserving overlapping content and
// clearing newly exposed regions to bg.
func (b *Buffer) Resize(width, height int, bg color.RGBA) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("cellbuffer: invalid size %dx%d", width, height)
	}
	n := width * height
	chars := make([]rune, n)
	fg := make([]color.RGBA, n)
	bgArr := make([]color.RGBA, n)
	attrs := make([]Attr, n)
	defaultFg := color.RGB8(255, 255, 255)
	for i := range chars {
		chars[i] = ' '
		fg[i] = defaultFg
		bgArr[i] = bg
	}

	minW := min(width, b.width)
	minH := min(height, b.height)
	for y := 0; y < minH; y++ {
		srcOff := y * b.width
		dstOff := y * width
		copy(chars[dstOff:dstOff+minW], b.chars[srcOff:srcOff+minW])
		copy(fg[dstOff:dstOff+minW], b.fg[srcOff:srcOff+minW])
		copy(bgArr[dstOff:dstOff+minW], b.bg[srcOff:srcOff+minW])
		copy(attrs[dstOff:dstOff+minW], b.attrs[srcOff:srcOff+minW])
	}

	b.width, b.height = width, height
	b.chars, b.fg, b.bg, b.attrs = chars, fg, bgArr, attrs
	b.scissors = b.scissors[:0]
	return nil
}

// Cell returns the cell at (x, y), or the zero Cell if out of bounds.
func (b *Buffer) Cell(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{}
	}
	i := b.index(x, y)
	return Cell{Char: b.chars[i], Fg: b.fg[i], Bg: b.bg[i], Attr: b.attrs[i]}
}

// SetCell overwrites the cell at (x, y) with no blending. A no-op if
// (x, y) is outside the active clip.
func (b *Buffer) SetCell(x, y int, ch rune, fg, bg color.RGBA, attr Attr) {
	if !b.Clip().Contains(x, y) {
		return
	}
	b.clearContinuationParent(x, y)
	i := b.index(x, y)
	b.chars[i] = ch
	b.fg[i] = fg
	b.bg[i] = bg
	b.attrs[i] = attr
}

// SetCellBlended composites (ch, fg, bg, attr) onto the existing cell
// following the spec's blend policy: bg and fg blend independently, a
// translucent space preserves the destination's non-space character so a
// tinted rectangle can sit over text, and attributes replace outright.
func (b *Buffer) SetCellBlended(x, y int, ch rune, fg, bg color.RGBA, attr Attr) {
	if !b.Clip().Contains(x, y) {
		return
	}
	b.clearContinuationParent(x, y)
	i := b.index(x, y)
	dst := Cell{Char: b.chars[i], Fg: b.fg[i], Bg: b.bg[i], Attr: b.attrs[i]}

	newBg := color.Blend(bg, dst.Bg)
	newFg := color.Blend(fg, dst.Fg)

	newChar := ch
	if ch == ' ' && dst.Char != ' ' && bg.A < 1 {
		newChar = dst.Char
	}

	b.chars[i] = newChar
	b.fg[i] = newFg
	b.bg[i] = newBg
	b.attrs[i] = attr
}

// FillRect fills an axis-aligned rectangle. With bg.A < 1 each cell is
// blended (preserving existing char and fg); otherwise the rectangle is
// overwritten outright with blank cells.
func (b *Buffer) FillRect(x, y, w, h int, bg color.RGBA) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if !b.Clip().Contains(col, row) {
				continue
			}
			if bg.A < 1 {
				i := b.index(col, row)
				dstBg := b.bg[i]
				b.bg[i] = color.Blend(bg, dstBg)
			} else {
				b.SetCell(col, row, ' ', color.RGB8(255, 255, 255), bg, 0)
			}
		}
	}
}

// WriteResolvedChars serialises the live grid as UTF-8 text, optionally
// inserting a line feed at the end of each row.
func (b *Buffer) WriteResolvedChars(addLineBreaks bool) string {
	var out []rune
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out = append(out, b.chars[b.index(x, y)])
		}
		if addLineBreaks {
			out = append(out, '\n')
		}
	}
	return string(out)
}
