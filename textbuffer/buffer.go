package textbuffer

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// logicalLine is one line of the plain text, split on '\n'.
type logicalLine struct {
	byteStart, byteEnd int // exclusive of the trailing '\n'
	runeStart          int
}

// Buffer holds styled chunks and the highlight/selection overlays derived
// from them. It owns no viewport state; create a View to render it.
type Buffer struct {
	plainText string
	spans     []chunkSpan
	lines     []logicalLine

	defaultFg   *color.RGBA
	defaultBg   *color.RGBA
	defaultAttr cellbuffer.Attr

	highlights []*Highlight
	nextRef    int
	insertSeq  int
}

// New creates an empty text buffer.
func New() *Buffer {
	return &Buffer{}
}

// SetText replaces the buffer's content with a single unstyled chunk.
func (b *Buffer) SetText(s string) {
	b.SetChunks([]Chunk{{Text: s}})
}

// SetChunks replaces the buffer's content and resets derived indices and
// highlights.
func (b *Buffer) SetChunks(chunks []Chunk) {
	var sb strings.Builder
	spans := make([]chunkSpan, 0, len(chunks))
	off := 0
	for _, c := range chunks {
		sb.WriteString(c.Text)
		spans = append(spans, chunkSpan{chunk: c, start: off, end: off + len(c.Text)})
		off += len(c.Text)
	}
	b.plainText = sb.String()
	b.spans = spans
	b.highlights = nil
	b.rebuildLines()
}

// LoadFile reads path and calls SetText with its contents.
func (b *Buffer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("textbuffer: io: %w", err)
	}
	b.SetText(string(data))
	return nil
}

// SetDefaultFg sets the fallback foreground for chunks that leave Fg unset.
func (b *Buffer) SetDefaultFg(c color.RGBA) { b.defaultFg = &c }

// SetDefaultBg sets the fallback background for chunks that leave Bg unset.
func (b *Buffer) SetDefaultBg(c color.RGBA) { b.defaultBg = &c }

// SetDefaultAttr sets the fallback attribute set for chunks that leave
// Attr unset.
func (b *Buffer) SetDefaultAttr(a cellbuffer.Attr) { b.defaultAttr = a }

// GetPlainText returns the concatenated, byte-exact chunk text.
func (b *Buffer) GetPlainText() string { return b.plainText }

func (b *Buffer) rebuildLines() {
	b.lines = b.lines[:0]
	start := 0
	runeStart := 0
	for i, r := range b.plainText {
		if r == '\n' {
			b.lines = append(b.lines, logicalLine{byteStart: start, byteEnd: i, runeStart: runeStart})
			runeStart += utf8.RuneCountInString(b.plainText[start:i]) + 1
			start = i + 1
		}
	}
	b.lines = append(b.lines, logicalLine{byteStart: start, byteEnd: len(b.plainText), runeStart: runeStart})
}

// LogicalLineCount returns the number of logical lines.
func (b *Buffer) LogicalLineCount() int { return len(b.lines) }

// LogicalLineText returns the text of logical line i (no trailing newline).
func (b *Buffer) LogicalLineText(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	l := b.lines[i]
	return b.plainText[l.byteStart:l.byteEnd]
}

func (b *Buffer) styleForByte(off int) Chunk {
	// spans are contiguous and sorted by construction; linear scan is fine
	// for the text sizes this buffer targets (editor-scale, not files).
	for _, s := range b.spans {
		if off >= s.start && off < s.end {
			return s.chunk
		}
	}
	if len(b.spans) > 0 {
		return b.spans[len(b.spans)-1].chunk
	}
	return Chunk{}
}

func (b *Buffer) resolveFg(c Chunk) color.RGBA {
	if c.Fg != nil {
		return *c.Fg
	}
	if b.defaultFg != nil {
		return *b.defaultFg
	}
	return color.RGB8(255, 255, 255)
}

func (b *Buffer) resolveBg(c Chunk) color.RGBA {
	if c.Bg != nil {
		return *c.Bg
	}
	if b.defaultBg != nil {
		return *b.defaultBg
	}
	return color.Transparent
}

func (b *Buffer) resolveAttr(c Chunk) cellbuffer.Attr {
	if c.Attr != nil {
		return *c.Attr
	}
	return b.defaultAttr
}

// --- Highlights ---------------------------------------------------------

// AddHighlightByChars adds a highlight spanning [charStart, charEnd) of the
// plain text (code-point units) and returns its ref.
func (b *Buffer) AddHighlightByChars(charStart, charEnd int, styleID string, priority int, fg, bg *color.RGBA, attr *cellbuffer.Attr) string {
	byteStart := runeOffsetToByte(b.plainText, charStart)
	byteEnd := runeOffsetToByte(b.plainText, charEnd)
	return b.addHighlight(&Highlight{
		line: -1, byteStart: byteStart, byteEnd: byteEnd,
		StyleID: styleID, Priority: priority, Fg: fg, Bg: bg, Attr: attr,
	})
}

// AddHighlightByLineCol adds a highlight spanning [colStart, colEnd) of
// logical line `line`, in code-point units.
func (b *Buffer) AddHighlightByLineCol(line, colStart, colEnd int, styleID string, priority int, fg, bg *color.RGBA, attr *cellbuffer.Attr) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	l := b.lines[line]
	lineText := b.plainText[l.byteStart:l.byteEnd]
	byteStart := l.byteStart + runeOffsetToByte(lineText, colStart)
	byteEnd := l.byteStart + runeOffsetToByte(lineText, colEnd)
	return b.addHighlight(&Highlight{
		line: line, colStart: colStart, colEnd: colEnd,
		byteStart: byteStart, byteEnd: byteEnd,
		StyleID: styleID, Priority: priority, Fg: fg, Bg: bg, Attr: attr,
	})
}

func (b *Buffer) addHighlight(h *Highlight) string {
	b.nextRef++
	h.ref = fmt.Sprintf("hl-%d", b.nextRef)
	h.insertSeq = b.insertSeq
	b.insertSeq++
	b.highlights = append(b.highlights, h)
	return h.ref
}

// RemoveHighlight removes the highlight with the given ref.
func (b *Buffer) RemoveHighlight(ref string) {
	for i, h := range b.highlights {
		if h.ref == ref {
			b.highlights = append(b.highlights[:i], b.highlights[i+1:]...)
			return
		}
	}
}

// ClearHighlightsLine removes every highlight anchored to logical line.
func (b *Buffer) ClearHighlightsLine(line int) {
	out := b.highlights[:0]
	for _, h := range b.highlights {
		if h.line != line {
			out = append(out, h)
		}
	}
	b.highlights = out
}

// ClearHighlights removes every highlight.
func (b *Buffer) ClearHighlights() { b.highlights = nil }

// highlightsAt returns the highlights covering byte offset off, sorted
// ascending by priority (ties by insertion order), so the caller can apply
// them in that order and let later ones win.
func (b *Buffer) highlightsAt(off int) []*Highlight {
	var out []*Highlight
	for _, h := range b.highlights {
		if off >= h.byteStart && off < h.byteEnd {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].insertSeq < out[j].insertSeq
	})
	return out
}

// runeOffsetToByte converts a code-point offset within s to a byte offset,
// clamped to len(s).
func runeOffsetToByte(s string, runeOff int) int {
	if runeOff <= 0 {
		return 0
	}
	i := 0
	for b := 0; b < len(s); {
		if i == runeOff {
			return b
		}
		_, size := utf8.DecodeRuneInString(s[b:])
		b += size
		i++
	}
	return len(s)
}
