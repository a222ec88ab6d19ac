package textbuffer

import (
	"testing"

	"github.com/otuigo/core/cellbuffer"
)

func segTexts(text string, segs []virtualSegment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = text[s.byteStart:s.byteEnd]
	}
	return out
}

func TestWrapWordWidth7KeepsTrailingSpace(t *testing.T) {
	text := "hello world"
	segs := wrapLine(0, text, WrapWord, 7, defaultTabWidth, cellbuffer.WidthMethodUnicode)
	got := segTexts(text, segs)
	want := []string{"hello ", "world"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrapWordWidth5DropsBreakCandidate(t *testing.T) {
	text := "hello world"
	segs := wrapLine(0, text, WrapWord, 5, defaultTabWidth, cellbuffer.WidthMethodUnicode)
	got := segTexts(text, segs)
	want := []string{"hello", "world"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrapCharDoesNotSplitCombiningMark(t *testing.T) {
	text := "éxy" // "é" formed from e + combining acute, then x, y
	segs := wrapLine(0, text, WrapChar, 1, defaultTabWidth, cellbuffer.WidthMethodUnicode)
	got := segTexts(text, segs)
	want := []string{"é", "x", "y"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWrapNoneReturnsWholeLine(t *testing.T) {
	text := "no wrapping applied here"
	segs := wrapLine(0, text, WrapNone, 5, defaultTabWidth, cellbuffer.WidthMethodUnicode)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segTexts(text, segs)[0] != text {
		t.Errorf("expected the unwrapped line back unchanged")
	}
}

func TestWrapWordFallsBackToCharModeWithNoCandidate(t *testing.T) {
	text := "abcdefgh"
	segs := wrapLine(0, text, WrapWord, 3, defaultTabWidth, cellbuffer.WidthMethodUnicode)
	got := segTexts(text, segs)
	want := []string{"abc", "def", "gh"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCellWidthOfExpandsTabs(t *testing.T) {
	if w := cellWidthOf("a\tb", cellbuffer.WidthMethodUnicode, 4); w != 5 {
		t.Errorf("cellWidthOf(\"a\\tb\") = %d, want 5", w)
	}
}
