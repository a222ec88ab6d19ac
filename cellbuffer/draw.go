package cellbuffer

import "github.com/otuigo/core/color"

// Selection overrides fg/bg for the portion of a DrawText call whose byte
// offset within text falls inside [Start, End).
type Selection struct {
	Start, End int
	Fg, Bg     *color.RGBA
}

func (s *Selection) contains(byteOff int) bool {
	return s != nil && byteOff >= s.Start && byteOff < s.End
}

// DrawText writes text starting at (x, y), one grapheme cluster at a time
// using the buffer's WidthMethod. bg == nil leaves existing background
// colors untouched (a transparent text overlay); attr is applied to every
// written cell. Clusters that would cross the active clip are skipped
// whole, never half-drawn.
func (b *Buffer) DrawText(text string, x, y int, fg color.RGBA, bg *color.RGBA, attr Attr, sel *Selection) {
	gs := newGraphemeState(b.widthMethod)
	col := x
	byteOff := 0
	rest := text
	for {
		g, r, ok := gs.next(rest)
		if !ok {
			break
		}
		consumed := len(rest) - len(r)
		clusterByteOff := byteOff
		byteOff += consumed
		rest = r

		if g.Width == 0 {
			// Combining mark: absorbed into the previous cell. Cell
			// storage holds one codepoint, so the mark itself is not
			// stored, but the boundary (and thus the previous cell) is
			// left untouched rather than starting a new cell.
			continue
		}

		cellFg, cellBg := fg, bg
		if sel.contains(clusterByteOff) {
			if sel.Fg != nil {
				cellFg = *sel.Fg
			}
			if sel.Bg != nil {
				cellBg = sel.Bg
			}
		}

		if g.Width == 2 {
			if !b.Clip().Contains(col, y) || !b.Clip().Contains(col+1, y) {
				// Second column would exceed the clip: skip the whole
				// cluster rather than drawing half of it.
				col += g.Width
				continue
			}
			b.writeTextCell(col, y, g.Runes[0], cellFg, cellBg, attr)
			b.writeTextCell(col+1, y, 0, cellFg, cellBg, attr)
		} else {
			b.writeTextCell(col, y, g.Runes[0], cellFg, cellBg, attr)
		}
		col += g.Width
	}
}

func (b *Buffer) writeTextCell(x, y int, ch rune, fg color.RGBA, bg *color.RGBA, attr Attr) {
	if !b.Clip().Contains(x, y) {
		return
	}
	b.clearContinuationParent(x, y)
	i := b.index(x, y)
	b.chars[i] = ch
	b.fg[i] = fg
	if bg != nil {
		b.bg[i] = *bg
	}
	b.attrs[i] = attr
}

// clearContinuationParent clears (x-1,y) to a space when (x,y) currently
// holds a continuation marker (char == 0) and is about to be overwritten
// directly, preserving the invariant that no cell references a vanished
// parent.
func (b *Buffer) clearContinuationParent(x, y int) {
	if x == 0 {
		return
	}
	i := b.index(x, y)
	if b.chars[i] != 0 {
		return
	}
	b.chars[b.index(x-1, y)] = ' '
}

// DrawBoxOptions configures DrawBox.
type DrawBoxOptions struct {
	Style         BorderStyle
	Custom        [11]rune // used when Style == BorderCustom: TL,TR,BL,BR,H,V,T,B,L,R,X
	Sides         Sides
	Fill          bool
	Background    color.RGBA
	BorderColor   color.RGBA
	Title         string
	TitleAlign    Align
}

// BorderStyle names a built-in border character set.
type BorderStyle int

const (
	BorderSingle BorderStyle = iota
	BorderDouble
	BorderRounded
	BorderHeavy
	BorderCustom
)

// Sides is a bit set over which edges of a box are drawn.
type Sides uint8

const (
	SideTop Sides = 1 << iota
	SideRight
	SideBottom
	SideLeft
	SideAll = SideTop | SideRight | SideBottom | SideLeft
)

// Align is horizontal alignment for a box title.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var borderSets = map[BorderStyle][11]rune{
	BorderSingle:  {'┌', '┐', '└', '┘', '─', '│', '┬', '┴', '├', '┤', '┼'},
	BorderDouble:  {'╔', '╗', '╚', '╝', '═', '║', '╦', '╩', '╠', '╣', '╬'},
	BorderRounded: {'╭', '╮', '╰', '╯', '─', '│', '┬', '┴', '├', '┤', '┼'},
	BorderHeavy:   {'┏', '┓', '┗', '┛', '━', '┃', '┳', '┻', '┣', '┫', '╋'},
}

// DrawBox draws an axis-aligned box, optionally filled and titled.
func (b *Buffer) DrawBox(x, y, w, h int, o DrawBoxOptions) {
	if w <= 0 || h <= 0 {
		return
	}
	set := o.Custom
	if o.Style != BorderCustom {
		set = borderSets[o.Style]
	}
	tl, tr, bl, br, horiz, vert := set[0], set[1], set[2], set[3], set[4], set[5]

	sides := o.Sides
	if sides == 0 {
		sides = SideAll
	}

	if o.Fill {
		b.FillRect(x, y, w, h, o.Background)
	}

	style := Attr(0)
	fg := o.BorderColor
	bg := o.Background

	if sides&SideTop != 0 {
		for i := x + 1; i < x+w-1; i++ {
			b.SetCell(i, y, horiz, fg, bg, style)
		}
	}
	if sides&SideBottom != 0 {
		for i := x + 1; i < x+w-1; i++ {
			b.SetCell(i, y+h-1, horiz, fg, bg, style)
		}
	}
	if sides&SideLeft != 0 {
		for i := y + 1; i < y+h-1; i++ {
			b.SetCell(x, i, vert, fg, bg, style)
		}
	}
	if sides&SideRight != 0 {
		for i := y + 1; i < y+h-1; i++ {
			b.SetCell(x+w-1, i, vert, fg, bg, style)
		}
	}
	if sides&SideTop != 0 && sides&SideLeft != 0 {
		b.SetCell(x, y, tl, fg, bg, style)
	}
	if sides&SideTop != 0 && sides&SideRight != 0 {
		b.SetCell(x+w-1, y, tr, fg, bg, style)
	}
	if sides&SideBottom != 0 && sides&SideLeft != 0 {
		b.SetCell(x, y+h-1, bl, fg, bg, style)
	}
	if sides&SideBottom != 0 && sides&SideRight != 0 {
		b.SetCell(x+w-1, y+h-1, br, fg, bg, style)
	}

	if o.Title != "" && sides&SideTop != 0 {
		b.drawBoxTitle(x, y, w, o)
	}
}

func (b *Buffer) drawBoxTitle(x, y, w int, o DrawBoxOptions) {
	padded := " " + o.Title + " "
	avail := w - 2 // leave >=1 border char each side
	if avail <= 0 {
		return
	}
	text := padded
	if StringWidth(text, b.widthMethod) > avail {
		if avail <= 1 {
			return
		}
		text = truncateToWidth(text, avail-1, b.widthMethod) + "…"
		if StringWidth(text, b.widthMethod) > avail {
			text = truncateToWidth(text, avail, b.widthMethod)
		}
	}
	tw := StringWidth(text, b.widthMethod)
	var start int
	switch o.TitleAlign {
	case AlignCenter:
		start = x + 1 + (avail-tw)/2
	case AlignRight:
		start = x + 1 + (avail - tw)
	default:
		start = x + 1
	}
	b.DrawText(text, start, y, o.BorderColor, &o.Background, 0, nil)
}

func truncateToWidth(s string, w int, m WidthMethod) string {
	gs := graphemes(s, m)
	var out []rune
	total := 0
	for _, g := range gs {
		if total+g.Width > w {
			break
		}
		out = append(out, g.Runes...)
		total += g.Width
	}
	return string(out)
}

// DrawFrameBuffer copies a sub-rectangle of src into b at (dstX, dstY). If
// src.RespectAlpha() is false this is a straight copy of all four arrays;
// otherwise cells are copied cell-by-cell with alpha respected: fully
// transparent source cells (combined bg+fg alpha == 0) are skipped, and
// partially transparent cells are blended via the same rule as
// SetCellBlended.
func (b *Buffer) DrawFrameBuffer(dstX, dstY int, src *Buffer, srcX, srcY, srcW, srcH int) {
	if srcW <= 0 {
		srcW = src.width - srcX
	}
	if srcH <= 0 {
		srcH = src.height - srcY
	}
	for row := 0; row < srcH; row++ {
		sy := srcY + row
		if sy < 0 || sy >= src.height {
			continue
		}
		dy := dstY + row
		for col := 0; col < srcW; col++ {
			sx := srcX + col
			if sx < 0 || sx >= src.width {
				continue
			}
			dx := dstX + col
			cell := src.Cell(sx, sy)

			if !src.respectAlpha {
				b.SetCell(dx, dy, cell.Char, cell.Fg, cell.Bg, cell.Attr)
				continue
			}
			if cell.Bg.A == 0 && cell.Fg.A == 0 {
				continue
			}
			if cell.Bg.A >= 1 && cell.Fg.A >= 1 {
				b.SetCell(dx, dy, cell.Char, cell.Fg, cell.Bg, cell.Attr)
				continue
			}
			b.SetCellBlended(dx, dy, cell.Char, cell.Fg, cell.Bg, cell.Attr)
		}
	}
}
