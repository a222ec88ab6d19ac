package textbuffer

import "testing"

func TestSetTextRoundTrip(t *testing.T) {
	b := New()
	b.SetText("hello\nworld")
	if got := b.GetPlainText(); got != "hello\nworld" {
		t.Errorf("GetPlainText = %q, want %q", got, "hello\nworld")
	}
	if b.LogicalLineCount() != 2 {
		t.Fatalf("LogicalLineCount = %d, want 2", b.LogicalLineCount())
	}
	if b.LogicalLineText(0) != "hello" || b.LogicalLineText(1) != "world" {
		t.Errorf("unexpected logical lines: %q / %q", b.LogicalLineText(0), b.LogicalLineText(1))
	}
}

func TestSetChunksPreservesConcatenation(t *testing.T) {
	b := New()
	b.SetChunks([]Chunk{{Text: "foo"}, {Text: "bar"}, {Text: "baz"}})
	if got := b.GetPlainText(); got != "foobarbaz" {
		t.Errorf("GetPlainText = %q, want %q", got, "foobarbaz")
	}
}

func TestHighlightPriorityOrdering(t *testing.T) {
	b := New()
	b.SetText("abcdef")
	b.AddHighlightByChars(0, 6, "low", 0, nil, nil, nil)
	b.AddHighlightByChars(0, 6, "high", 10, nil, nil, nil)

	hs := b.highlightsAt(2)
	if len(hs) != 2 {
		t.Fatalf("expected 2 highlights at offset 2, got %d", len(hs))
	}
	if hs[0].StyleID != "low" || hs[1].StyleID != "high" {
		t.Errorf("expected ascending priority order [low, high], got [%s, %s]", hs[0].StyleID, hs[1].StyleID)
	}
}

func TestHighlightTieBreakByInsertionOrder(t *testing.T) {
	b := New()
	b.SetText("abcdef")
	b.AddHighlightByChars(0, 6, "first", 5, nil, nil, nil)
	b.AddHighlightByChars(0, 6, "second", 5, nil, nil, nil)

	hs := b.highlightsAt(0)
	if len(hs) != 2 {
		t.Fatalf("expected 2 highlights, got %d", len(hs))
	}
	if hs[0].StyleID != "first" || hs[1].StyleID != "second" {
		t.Errorf("expected insertion order to break the priority tie, got [%s, %s]", hs[0].StyleID, hs[1].StyleID)
	}
}

func TestRemoveHighlight(t *testing.T) {
	b := New()
	b.SetText("abcdef")
	ref := b.AddHighlightByChars(0, 6, "temp", 0, nil, nil, nil)
	b.RemoveHighlight(ref)
	if len(b.highlightsAt(0)) != 0 {
		t.Errorf("expected no highlights after RemoveHighlight")
	}
}

func TestClearHighlightsLine(t *testing.T) {
	b := New()
	b.SetText("one\ntwo\nthree")
	b.AddHighlightByLineCol(0, 0, 3, "a", 0, nil, nil, nil)
	b.AddHighlightByLineCol(1, 0, 3, "b", 0, nil, nil, nil)
	b.ClearHighlightsLine(0)

	lineZeroStart := b.lines[0].byteStart
	lineOneStart := b.lines[1].byteStart
	if len(b.highlightsAt(lineZeroStart)) != 0 {
		t.Errorf("expected line 0 highlights cleared")
	}
	if len(b.highlightsAt(lineOneStart)) != 1 {
		t.Errorf("expected line 1 highlight to survive")
	}
}

func TestRuneOffsetToByteMultibyte(t *testing.T) {
	s := "aéb" // a, e-acute (2 bytes), b
	if got := runeOffsetToByte(s, 0); got != 0 {
		t.Errorf("offset 0 = %d, want 0", got)
	}
	if got := runeOffsetToByte(s, 1); got != 1 {
		t.Errorf("offset 1 = %d, want 1", got)
	}
	if got := runeOffsetToByte(s, 2); got != 3 {
		t.Errorf("offset 2 = %d, want 3", got)
	}
	if got := runeOffsetToByte(s, 3); got != 4 {
		t.Errorf("offset 3 = %d, want 4", got)
	}
}
