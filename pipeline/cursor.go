package pipeline

import (
	"strconv"

	"github.com/otuigo/core/color"
)

// CursorStyle selects one of the seven DECSCUSR cursor shapes.
type CursorStyle int

const (
	CursorDefault CursorStyle = iota
	CursorBlinkBlock
	CursorSteadyBlock
	CursorBlinkUnderline
	CursorSteadyUnderline
	CursorBlinkBar
	CursorSteadyBar
)

// cursorState is the pipeline-owned cursor: position, visibility, shape,
// and an optional color (zero-alpha means "not set", matching
// color.Transparent's "skip" convention elsewhere). It is cached the same
// way emitStyle caches SGR state, so cursor control is only emitted when
// something actually changed since the last Present, per §4.3's "cursor
// control emitted last" rule without breaking the "identical frame emits
// zero bytes" invariant.
type cursorState struct {
	x, y    int
	visible bool
	style   CursorStyle
	color   color.RGBA
}

func (a cursorState) equal(b cursorState) bool {
	return a.x == b.x && a.y == b.y && a.visible == b.visible && a.style == b.style && a.color == b.color
}

// SetCursorPosition moves the pipeline-owned cursor to the given cell; the
// move is emitted as part of the next Present, after all cell writes.
func (p *Pipeline) SetCursorPosition(x, y int) { p.cursor.x, p.cursor.y = x, y }

// SetCursorVisible toggles cursor visibility, emitted with the next Present.
func (p *Pipeline) SetCursorVisible(v bool) { p.cursor.visible = v }

// SetCursorStyle selects one of the DECSCUSR cursor shapes, emitted with
// the next Present.
func (p *Pipeline) SetCursorStyle(s CursorStyle) { p.cursor.style = s }

// SetCursorColor sets the OSC 12 cursor color, emitted with the next
// Present. Passing color.Transparent clears it back to the terminal's
// default cursor color.
func (p *Pipeline) SetCursorColor(c color.RGBA) { p.cursor.color = c }

// appendCursorSeqs appends the ANSI/DECSCUSR/OSC sequences needed to bring
// the terminal's cursor state from last to cur, skipping any control whose
// value didn't change.
func appendCursorSeqs(dst []byte, cur, last cursorState) []byte {
	if cur.x != last.x || cur.y != last.y {
		dst = appendCursorMove(dst, cur.y, cur.x)
	}
	if cur.style != last.style {
		dst = append(dst, "\x1b["...)
		dst = strconv.AppendInt(dst, int64(cur.style), 10)
		dst = append(dst, " q"...)
	}
	if cur.color != last.color {
		if cur.color.A > 0 {
			r, g, b := cur.color.RGB8()
			dst = append(dst, "\x1b]12;#"...)
			dst = appendHex2(dst, r)
			dst = appendHex2(dst, g)
			dst = appendHex2(dst, b)
			dst = append(dst, '\x07')
		} else {
			// OSC 112 restores the terminal's default cursor color.
			dst = append(dst, "\x1b]112\x07"...)
		}
	}
	if cur.visible != last.visible {
		if cur.visible {
			dst = append(dst, "\x1b[?25h"...)
		} else {
			dst = append(dst, "\x1b[?25l"...)
		}
	}
	return dst
}

const hexDigits = "0123456789abcdef"

func appendHex2(dst []byte, v uint8) []byte {
	return append(dst, hexDigits[v>>4], hexDigits[v&0xf])
}
