package textbuffer

import (
	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// HighlightSyntax tokenizes code with Chroma's lexer for lang (or Chroma's
// plain-text fallback lexer when lang is empty/unknown) and installs one
// highlight per token, styled from the named Chroma theme, at Priority 0
// so caller-added highlights (search matches, diagnostics) added afterward
// always win ties, per §4.2's ascending-priority/later-insertion rule.
// Returns the refs of the installed highlights.
func (b *Buffer) HighlightSyntax(lang, theme string) []string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, b.plainText)
	if err != nil {
		return nil
	}

	var refs []string
	off := 0
	for _, tok := range iterator.Tokens() {
		n := len(tok.Value)
		if n == 0 {
			continue
		}
		entry := style.Get(tok.Type)
		fg, bg, attr := chromaEntryStyle(entry)
		ref := b.addHighlight(&Highlight{
			line:      -1,
			byteStart: off,
			byteEnd:   off + n,
			StyleID:   tok.Type.String(),
			Priority:  0,
			Fg:        fg,
			Bg:        bg,
			Attr:      attr,
		})
		refs = append(refs, ref)
		off += n
	}
	return refs
}

func chromaEntryStyle(e chroma.StyleEntry) (fg, bg *color.RGBA, attr *cellbuffer.Attr) {
	if e.Colour.IsSet() {
		c := color.RGB8(e.Colour.Red(), e.Colour.Green(), e.Colour.Blue())
		fg = &c
	}
	if e.Background.IsSet() {
		c := color.RGB8(e.Background.Red(), e.Background.Green(), e.Background.Blue())
		bg = &c
	}
	var a cellbuffer.Attr
	if e.Bold == chroma.Yes {
		a |= cellbuffer.AttrBold
	}
	if e.Italic == chroma.Yes {
		a |= cellbuffer.AttrItalic
	}
	if e.Underline == chroma.Yes {
		a |= cellbuffer.AttrUnderline
	}
	if a != 0 {
		attr = &a
	}
	return
}
