package cellbuffer

import (
	"testing"

	"github.com/otuigo/core/color"
)

func TestSetCellClips(t *testing.T) {
	b := New("t", 3, 3, false, WidthMethodUnicode)
	b.PushScissor(1, 1, 1, 1)
	b.SetCell(0, 0, 'X', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	if b.Cell(0, 0).Char == 'X' {
		t.Fatalf("write outside clip should be a no-op")
	}
	b.SetCell(1, 1, 'X', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	if b.Cell(1, 1).Char != 'X' {
		t.Fatalf("write inside clip should succeed")
	}
}

func TestScissorStackDepthInvariant(t *testing.T) {
	b := New("t", 5, 5, false, WidthMethodUnicode)
	b.PushScissor(0, 0, 5, 5)
	b.PushScissor(1, 1, 2, 2)
	if b.ScissorDepth() != 2 {
		t.Fatalf("expected depth 2, got %d", b.ScissorDepth())
	}
	b.PopScissor()
	b.PopScissor()
	if b.ScissorDepth() != 0 {
		t.Fatalf("expected depth 0 after matching pops, got %d", b.ScissorDepth())
	}
}

// S2: translucent overlay blend.
func TestSetCellBlendedTranslucentOverlay(t *testing.T) {
	b := New("t", 3, 1, false, WidthMethodUnicode)
	white := color.RGB8(255, 255, 255)
	black := color.RGB8(0, 0, 0)
	red := color.RGBA{R: 1, G: 0, B: 0, A: 0.5}

	b.SetCell(0, 0, 'A', white, black, 0)
	b.SetCellBlended(0, 0, ' ', white, red, 0)

	got := b.Cell(0, 0)
	if got.Char != 'A' {
		t.Fatalf("expected char to remain 'A', got %q", got.Char)
	}
	wantBg := color.RGBA{R: 0.5, G: 0, B: 0, A: 1}
	if got.Bg != wantBg {
		t.Fatalf("expected bg %+v, got %+v", wantBg, got.Bg)
	}
	if got.Fg != white {
		t.Fatalf("expected fg unchanged white, got %+v", got.Fg)
	}
}

func TestDrawFrameBufferStraightCopyWhenNotRespectingAlpha(t *testing.T) {
	src := New("src", 2, 2, false, WidthMethodUnicode)
	src.SetCell(0, 0, 'Z', color.RGB8(1, 2, 3), color.RGB8(4, 5, 6), AttrBold)

	dst := New("dst", 2, 2, false, WidthMethodUnicode)
	dst.DrawFrameBuffer(0, 0, src, 0, 0, 2, 2)

	if dst.Cell(0, 0) != src.Cell(0, 0) {
		t.Fatalf("expected straight copy, got %+v want %+v", dst.Cell(0, 0), src.Cell(0, 0))
	}
}

func TestDrawFrameBufferFullyTransparentSourceIsNoop(t *testing.T) {
	src := New("src", 2, 2, true, WidthMethodUnicode)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetCell(x, y, 'Q', color.Transparent, color.Transparent, 0)
		}
	}
	dst := New("dst", 2, 2, false, WidthMethodUnicode)
	before := dst.WriteResolvedChars(false)
	dst.DrawFrameBuffer(0, 0, src, 0, 0, 2, 2)
	after := dst.WriteResolvedChars(false)
	if before != after {
		t.Fatalf("expected no-op copy, before=%q after=%q", before, after)
	}
}

func TestWriteResolvedCharsAddsLineBreaks(t *testing.T) {
	b := New("t", 2, 2, false, WidthMethodUnicode)
	b.SetCell(0, 0, 'A', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	b.SetCell(1, 0, 'B', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	got := b.WriteResolvedChars(true)
	want := "AB\n  \n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDrawTextWideGraphemeContinuation(t *testing.T) {
	b := New("t", 4, 1, false, WidthMethodUnicode)
	b.DrawText("我a", 0, 0, color.RGB8(255, 255, 255), nil, 0, nil)
	if b.Cell(0, 0).Char != '我' {
		t.Fatalf("expected wide char at col 0, got %q", b.Cell(0, 0).Char)
	}
	if b.Cell(1, 0).Char != 0 {
		t.Fatalf("expected continuation marker at col 1, got %q", b.Cell(1, 0).Char)
	}
	if b.Cell(2, 0).Char != 'a' {
		t.Fatalf("expected 'a' at col 2, got %q", b.Cell(2, 0).Char)
	}
}

func TestSetCellOnContinuationClearsParent(t *testing.T) {
	b := New("t", 4, 1, false, WidthMethodUnicode)
	b.DrawText("我", 0, 0, color.RGB8(255, 255, 255), nil, 0, nil)
	b.SetCell(1, 0, 'X', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	if b.Cell(0, 0).Char != ' ' {
		t.Fatalf("expected parent cell cleared to space, got %q", b.Cell(0, 0).Char)
	}
	if b.Cell(1, 0).Char != 'X' {
		t.Fatalf("expected new char at continuation column, got %q", b.Cell(1, 0).Char)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	b := New("t", 2, 2, false, WidthMethodUnicode)
	b.SetCell(0, 0, 'A', color.RGB8(255, 255, 255), color.RGB8(0, 0, 0), 0)
	if err := b.Resize(3, 3, color.RGB8(0, 0, 0)); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if b.Cell(0, 0).Char != 'A' {
		t.Fatalf("expected preserved cell after resize")
	}
	if b.Cell(2, 2).Char != ' ' {
		t.Fatalf("expected newly exposed cell to be blank")
	}
}

func TestDrawBoxTitleFitsBetweenCorners(t *testing.T) {
	b := New("t", 10, 3, false, WidthMethodUnicode)
	b.DrawBox(0, 0, 10, 3, DrawBoxOptions{
		Style: BorderSingle,
		Title: "Hi",
	})
	if b.Cell(0, 0).Char != '┌' || b.Cell(9, 0).Char != '┐' {
		t.Fatalf("expected corners intact, got %q %q", b.Cell(0, 0).Char, b.Cell(9, 0).Char)
	}
}
