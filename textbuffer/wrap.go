package textbuffer

import (
	"github.com/otuigo/core/cellbuffer"
)

const defaultTabWidth = 4

// breakCandidates is the set of runes after which a word-mode wrap may
// break, per spec §4.2: ASCII punctuation/space plus the listed Unicode
// space and hyphen characters. Escapes are used throughout (rather than
// literal glyphs) so the set is unambiguous in source.
var breakCandidates = map[rune]bool{
	' ':      true,
	'\t':     true,
	'-':      true,
	'/':      true,
	'\\':     true,
	'.':      true,
	',':      true,
	';':      true,
	':':      true,
	'!':      true,
	'?':      true,
	'(':      true,
	')':      true,
	'[':      true,
	']':      true,
	'{':      true,
	'}':      true,
	'\u00A0': true, // NBSP
	'\u200B': true, // ZWSP
	'\u00AD': true, // SOFT HYPHEN
	'\u2010': true, // HYPHEN
	'\u3000': true, // IDEOGRAPHIC SPACE
	'\u1680': true, // OGHAM SPACE MARK
	'\u202F': true, // NARROW NBSP
	'\u205F': true, // MEDIUM MATHEMATICAL SPACE
}

func init() {
	for r := rune(0x2000); r <= 0x200A; r++ {
		breakCandidates[r] = true
	}
}

// virtualSegment is one wrapped display line: a byte range of a single
// logical line's text, plus its display width.
type virtualSegment struct {
	logicalLine int
	byteStart   int
	byteEnd     int
	width       int
}

func isBreakCandidate(g cellbuffer.Grapheme) bool {
	return len(g.Runes) == 1 && breakCandidates[g.Runes[0]]
}

// wrapLine splits one logical line's text into virtual segments under the
// given mode/width. width <= 0 or mode == WrapNone returns the whole line
// as one segment. The algorithm never splits a grapheme cluster; in word
// mode it prefers breaking at the greatest column <= target holding a
// break candidate, consuming (dropping) a candidate that itself causes the
// overflow, and falls back to a char-mode break when no candidate is
// available within the line.
func wrapLine(logicalIdx int, text string, mode WrapMode, width int, tabWidth int, wm cellbuffer.WidthMethod) []virtualSegment {
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	if mode == WrapNone || width <= 0 {
		return []virtualSegment{{logicalLine: logicalIdx, byteStart: 0, byteEnd: len(text), width: cellWidthOf(text, wm, tabWidth)}}
	}

	graphemes := cellbuffer.Graphemes(text, wm)
	var segs []virtualSegment

	lineStartByte := 0
	col := 0
	byteOff := 0
	lastBreakByte := -1
	lastBreakCol := 0

	flush := func(endByte int, w int) {
		segs = append(segs, virtualSegment{logicalLine: logicalIdx, byteStart: lineStartByte, byteEnd: endByte, width: w})
	}

	for _, g := range graphemes {
		gw := g.Width
		if len(g.Runes) == 1 && g.Runes[0] == '\t' {
			gw = tabWidth - (col % tabWidth)
		}
		gBytes := len(string(g.Runes))
		breakable := isBreakCandidate(g)

		if col > 0 && col+gw > width {
			switch {
			case breakable:
				// The overflowing grapheme is itself a break point: end
				// the line before it and drop it (it is consumed, not
				// carried to either line).
				flush(byteOff, col)
				byteOff += gBytes
				lineStartByte = byteOff
				col = 0
				lastBreakByte, lastBreakCol = -1, 0
				continue
			case mode == WrapWord && lastBreakByte > lineStartByte:
				flush(lastBreakByte, lastBreakCol)
				lineStartByte = lastBreakByte
				col -= lastBreakCol
				lastBreakByte, lastBreakCol = -1, 0
			default:
				flush(byteOff, col)
				lineStartByte = byteOff
				col = 0
				lastBreakByte, lastBreakCol = -1, 0
			}
		}

		byteOff += gBytes
		col += gw
		if breakable {
			lastBreakByte, lastBreakCol = byteOff, col
		}
	}
	flush(len(text), col)
	return segs
}

func cellWidthOf(s string, wm cellbuffer.WidthMethod, tabWidth int) int {
	w := 0
	for _, g := range cellbuffer.Graphemes(s, wm) {
		if len(g.Runes) == 1 && g.Runes[0] == '\t' {
			w += tabWidth - (w % tabWidth)
			continue
		}
		w += g.Width
	}
	return w
}
