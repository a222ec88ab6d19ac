package textbuffer

import (
	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// View renders one viewport onto a Buffer: wrap, viewport size, and
// selection are independent per view, so multiple views can observe the
// same buffer with different layouts.
type View struct {
	buf *Buffer

	wrapWidth int
	wrapMode  WrapMode
	tabWidth  int
	widthMethod cellbuffer.WidthMethod

	viewportW, viewportH int
	scrollTop            int

	selection *Selection

	virtualLines []virtualSegment
	dirty        bool
}

// NewView creates a view over buf with no wrap (WrapNone) and a zero-size
// viewport.
func NewView(buf *Buffer) *View {
	return &View{buf: buf, tabWidth: defaultTabWidth, widthMethod: cellbuffer.WidthMethodUnicode, dirty: true}
}

// SetWrapWidth sets the wrap target column and marks virtual lines dirty.
func (v *View) SetWrapWidth(cols int) {
	v.wrapWidth = cols
	v.dirty = true
}

// SetWrapMode sets the wrap strategy and marks virtual lines dirty.
func (v *View) SetWrapMode(m WrapMode) {
	v.wrapMode = m
	v.dirty = true
}

// SetTabWidth sets the tab stop interval: a tab advances to the next
// multiple of n columns (default 4).
func (v *View) SetTabWidth(n int) {
	v.tabWidth = n
	v.dirty = true
}

// SetWidthMethod selects which unicode-width algorithm wrap uses.
func (v *View) SetWidthMethod(m cellbuffer.WidthMethod) {
	v.widthMethod = m
	v.dirty = true
}

// SetViewportSize sets the rendered viewport dimensions.
func (v *View) SetViewportSize(w, h int) {
	v.viewportW, v.viewportH = w, h
}

// SetScrollTop sets the first visible virtual line.
func (v *View) SetScrollTop(row int) {
	if row < 0 {
		row = 0
	}
	v.scrollTop = row
}

func (v *View) recompute() {
	if !v.dirty {
		return
	}
	v.virtualLines = v.virtualLines[:0]
	for i := 0; i < v.buf.LogicalLineCount(); i++ {
		text := v.buf.LogicalLineText(i)
		segs := wrapLine(i, text, v.wrapMode, v.wrapWidth, v.tabWidth, v.widthMethod)
		v.virtualLines = append(v.virtualLines, segs...)
	}
	v.dirty = false
}

// GetLineInfo returns, for every virtual line, its starting byte offset
// (within the owning logical line), its display width, and the maximum
// width across all virtual lines.
func (v *View) GetLineInfo() (lineStarts []int, lineWidths []int, maxWidth int) {
	v.recompute()
	for _, s := range v.virtualLines {
		lineStarts = append(lineStarts, s.byteStart)
		lineWidths = append(lineWidths, s.width)
		if s.width > maxWidth {
			maxWidth = s.width
		}
	}
	return
}

// GetLogicalLineInfo is GetLineInfo for logical (unwrapped) lines.
func (v *View) GetLogicalLineInfo() (lineStarts []int, lineWidths []int, maxWidth int) {
	for i := 0; i < v.buf.LogicalLineCount(); i++ {
		text := v.buf.LogicalLineText(i)
		w := cellWidthOf(text, v.widthMethod, v.tabWidth)
		lineStarts = append(lineStarts, v.buf.lines[i].byteStart)
		lineWidths = append(lineWidths, w)
		if w > maxWidth {
			maxWidth = w
		}
	}
	return
}

// VirtualLineCount returns the number of virtual lines after wrap.
func (v *View) VirtualLineCount() int {
	v.recompute()
	return len(v.virtualLines)
}

// SetSelection sets a code-point range [start, end) with optional override
// colors.
func (v *View) SetSelection(start, end int, fg, bg *color.RGBA) {
	v.selection = &Selection{Start: start, End: end, Fg: fg, Bg: bg}
}

// ResetSelection clears the active selection.
func (v *View) ResetSelection() { v.selection = nil }

// SetLocalSelection sets a selection from view-space anchor/focus
// coordinates (virtual line + column), clamped to the view's logical
// grid.
func (v *View) SetLocalSelection(anchorX, anchorY, focusX, focusY int, fg, bg *color.RGBA) {
	v.recompute()
	startLine, startCol := anchorY, anchorX
	endLine, endCol := focusY, focusX
	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startLine, startCol, endLine, endCol = endLine, endCol, startLine, startCol
	}
	startByte := v.virtualPosToPlainByte(startLine, startCol)
	endByte := v.virtualPosToPlainByte(endLine, endCol)
	v.SetSelection(byteOffsetToRune(v.buf.plainText, startByte), byteOffsetToRune(v.buf.plainText, endByte), fg, bg)
}

func (v *View) virtualPosToPlainByte(line, col int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(v.virtualLines) {
		line = len(v.virtualLines) - 1
	}
	if line < 0 {
		return 0
	}
	seg := v.virtualLines[line]
	logicalText := v.buf.LogicalLineText(seg.logicalLine)
	segText := logicalText[seg.byteStart:seg.byteEnd]
	gs := cellbuffer.Graphemes(segText, v.widthMethod)
	curCol := 0
	off := seg.byteStart
	for _, g := range gs {
		if curCol >= col {
			break
		}
		off += len(string(g.Runes))
		curCol += g.Width
	}
	return v.buf.lines[seg.logicalLine].byteStart + off
}

func byteOffsetToRune(s string, byteOff int) int {
	count := 0
	for i := range s {
		if i >= byteOff {
			return count
		}
		count++
	}
	return count
}

// GetSelectedText returns the plain text covered by the active selection.
func (v *View) GetSelectedText() string {
	if v.selection == nil {
		return ""
	}
	start := runeOffsetToByte(v.buf.plainText, v.selection.Start)
	end := runeOffsetToByte(v.buf.plainText, v.selection.End)
	if start > end {
		start, end = end, start
	}
	return v.buf.plainText[start:end]
}

// GetPlainText returns the owning buffer's full plain text.
func (v *View) GetPlainText() string { return v.buf.GetPlainText() }

// Draw renders the visible virtual lines into dst at (x, y), applying
// chunk styles, then highlights in ascending priority (later insertion
// wins ties), then the selection overlay last, per spec §4.2 step 1-4.
func (v *View) Draw(dst *cellbuffer.Buffer, x, y int) {
	v.recompute()
	selStartByte, selEndByte := -1, -1
	if v.selection != nil {
		selStartByte = runeOffsetToByte(v.buf.plainText, v.selection.Start)
		selEndByte = runeOffsetToByte(v.buf.plainText, v.selection.End)
	}

	last := v.scrollTop + v.viewportH
	if last > len(v.virtualLines) {
		last = len(v.virtualLines)
	}
	for row := v.scrollTop; row < last; row++ {
		seg := v.virtualLines[row]
		logicalText := v.buf.LogicalLineText(seg.logicalLine)
		segText := logicalText[seg.byteStart:seg.byteEnd]
		lineByteBase := v.buf.lines[seg.logicalLine].byteStart + seg.byteStart

		gs := cellbuffer.Graphemes(segText, v.widthMethod)
		col := 0
		localOff := 0
		screenY := y + (row - v.scrollTop)
		for _, g := range gs {
			if g.Width == 0 {
				localOff += len(string(g.Runes))
				continue
			}
			globalByte := lineByteBase + localOff
			chunk := v.buf.styleForByte(globalByte)
			fg := v.buf.resolveFg(chunk)
			bg := v.buf.resolveBg(chunk)
			attr := v.buf.resolveAttr(chunk)

			for _, h := range v.buf.highlightsAt(globalByte) {
				if h.Fg != nil {
					fg = *h.Fg
				}
				if h.Bg != nil {
					bg = *h.Bg
				}
				if h.Attr != nil {
					attr = *h.Attr
				}
			}

			if selStartByte >= 0 && globalByte >= selStartByte && globalByte < selEndByte {
				if v.selection.Fg != nil {
					fg = *v.selection.Fg
				}
				if v.selection.Bg != nil {
					bg = *v.selection.Bg
				}
			}

			dst.SetCell(x+col, screenY, g.Runes[0], fg, bg, attr)
			if g.Width == 2 {
				dst.SetCell(x+col+1, screenY, 0, fg, bg, attr)
			}
			col += g.Width
			localOff += len(string(g.Runes))
		}
	}
}
