package pipeline

import (
	"strconv"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// emitStyle is the SGR state last written, so consecutive cells that share
// style only pay for a cursor move, per the teacher's lastStyle caching in
// its render loop.
type emitStyle struct {
	active bool
	fg, bg color.RGBA
	attr   cellbuffer.Attr
}

func (a emitStyle) equal(b emitStyle) bool {
	return a.active == b.active && a.fg == b.fg && a.bg == b.bg && a.attr == b.attr
}

// diffSegment is a contiguous run of differing cells on one row.
type diffSegment struct {
	y, xStart, xEnd int // [xStart, xEnd)
}

// diff walks next and current row-by-row and returns the contiguous runs of
// cells that differ in char, fg, bg, or attr (colors compared by exact
// float equality, per §4.3 and invariant 4).
func diff(next, current *cellbuffer.Buffer) []diffSegment {
	w, h := next.Width(), next.Height()
	var segs []diffSegment
	for y := 0; y < h; y++ {
		runStart := -1
		for x := 0; x < w; x++ {
			if cellsDiffer(next.Cell(x, y), current.Cell(x, y)) {
				if runStart == -1 {
					runStart = x
				}
			} else if runStart != -1 {
				segs = append(segs, diffSegment{y: y, xStart: runStart, xEnd: x})
				runStart = -1
			}
		}
		if runStart != -1 {
			segs = append(segs, diffSegment{y: y, xStart: runStart, xEnd: w})
		}
	}
	return segs
}

func cellsDiffer(a, b cellbuffer.Cell) bool {
	return a.Char != b.Char || a.Fg != b.Fg || a.Bg != b.Bg || a.Attr != b.Attr
}

// encode appends the ANSI byte stream for segs read from buf to dst,
// emitting cursor moves and SGR state only when they change, per §4.3's
// Emit step and the §6 ANSI output dialect.
func encode(dst []byte, buf *cellbuffer.Buffer, segs []diffSegment, last emitStyle) ([]byte, emitStyle) {
	curX, curY := -1, -1
	style := last

	for _, seg := range segs {
		x := seg.xStart
		for x < seg.xEnd {
			cell := buf.Cell(x, seg.y)

			if curX != x || curY != seg.y {
				dst = appendCursorMove(dst, seg.y, x)
				curX, curY = x, seg.y
			}

			want := emitStyle{active: true, fg: cell.Fg, bg: cell.Bg, attr: cell.Attr}
			if !style.equal(want) {
				dst = append(dst, "\x1b[0m"...)
				dst = appendSGR(dst, cell.Fg, cell.Bg, cell.Attr)
				style = want
			}

			ch := cell.Char
			if ch == 0 {
				// Continuation column of a width-2 grapheme: no output,
				// already covered by the parent emission.
				x++
				curX++
				continue
			}
			dst = append(dst, string(ch)...)
			x++
			curX++
		}
	}
	return dst, style
}

func appendCursorMove(dst []byte, row, col int) []byte {
	dst = append(dst, "\x1b["...)
	dst = strconv.AppendInt(dst, int64(row+1), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col+1), 10)
	dst = append(dst, 'H')
	return dst
}

func appendSGR(dst []byte, fg, bg color.RGBA, attr cellbuffer.Attr) []byte {
	dst = appendTruecolor(dst, 38, fg)
	dst = appendTruecolor(dst, 48, bg)

	codes := []struct {
		bit  cellbuffer.Attr
		code string
	}{
		{cellbuffer.AttrBold, "1"},
		{cellbuffer.AttrDim, "2"},
		{cellbuffer.AttrItalic, "3"},
		{cellbuffer.AttrUnderline, "4"},
		{cellbuffer.AttrBlink, "5"},
		{cellbuffer.AttrInverse, "7"},
		{cellbuffer.AttrHidden, "8"},
		{cellbuffer.AttrStrikethrough, "9"},
	}
	for _, c := range codes {
		if attr.Has(c.bit) {
			dst = append(dst, "\x1b["...)
			dst = append(dst, c.code...)
			dst = append(dst, 'm')
		}
	}
	return dst
}

func appendTruecolor(dst []byte, kind int, c color.RGBA) []byte {
	r, g, b := c.RGB8()
	dst = append(dst, "\x1b["...)
	dst = strconv.AppendInt(dst, int64(kind), 10)
	dst = append(dst, ";2;"...)
	dst = strconv.AppendInt(dst, int64(r), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(g), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(b), 10)
	dst = append(dst, 'm')
	return dst
}
