package pipeline

import (
	"testing"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/scene"
)

type fakeSink struct {
	accept  bool
	writes  [][]byte
}

func (s *fakeSink) Write(p []byte) bool {
	if !s.accept {
		return false
	}
	cp := append([]byte(nil), p...)
	s.writes = append(s.writes, cp)
	return true
}

func paintText(text string, fg color.RGBA) scene.PaintFunc {
	return func(buf *cellbuffer.Buffer, rect cellbuffer.Rect) {
		buf.DrawText(text, rect.X, rect.Y, fg, nil, 0, nil)
	}
}

func TestPresentSecondIdenticalFrameEmitsNoBytes(t *testing.T) {
	arena := scene.NewArena()
	sink := &fakeSink{accept: true}
	p := New(arena, 5, 1, cellbuffer.WidthMethodUnicode, sink)

	white := color.RGB8(255, 255, 255)
	arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 0, Y: 0, W: 5, H: 1}, Visible: true,
		Paint: paintText("HELLO", white),
	})

	if err := p.Present(false); err != nil {
		t.Fatalf("first Present: %v", err)
	}
	if len(sink.writes) != 1 || len(sink.writes[0]) == 0 {
		t.Fatalf("expected first present to emit bytes")
	}

	if err := p.Present(false); err != nil {
		t.Fatalf("second Present: %v", err)
	}
	if len(sink.writes) != 2 {
		t.Fatalf("expected second present to write once more (possibly empty), got %d writes", len(sink.writes))
	}
	if len(sink.writes[1]) != 0 {
		t.Errorf("second identical frame should emit zero bytes, got %d", len(sink.writes[1]))
	}
}

func TestPresentBackpressureStallsAndDrains(t *testing.T) {
	arena := scene.NewArena()
	sink := &fakeSink{accept: false}
	p := New(arena, 3, 1, cellbuffer.WidthMethodUnicode, sink)

	white := color.RGB8(255, 255, 255)
	arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 0, Y: 0, W: 3, H: 1}, Visible: true,
		Paint: paintText("abc", white),
	})

	if err := p.Present(false); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if p.State() != Stalled {
		t.Fatalf("State() = %v, want Stalled", p.State())
	}
	if p.CanRender() {
		t.Errorf("CanRender() should be false while stalled")
	}
	if len(sink.writes) != 0 {
		t.Errorf("expected no accepted writes while stalled, got %d", len(sink.writes))
	}

	sink.accept = true
	p.Drain()
	if p.State() != Idle {
		t.Fatalf("State() after Drain = %v, want Idle", p.State())
	}
	if !p.CanRender() {
		t.Errorf("CanRender() should be true after drain")
	}
	if len(sink.writes) != 1 {
		t.Fatalf("expected drain to flush exactly once, got %d writes", len(sink.writes))
	}
}

func TestCheckHitReflectsPaintOrder(t *testing.T) {
	arena := scene.NewArena()
	sink := &fakeSink{accept: true}
	p := New(arena, 10, 10, cellbuffer.WidthMethodUnicode, sink)

	first := arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 2, Y: 2, W: 3, H: 2}, Visible: true, Z: 0,
		Paint: func(buf *cellbuffer.Buffer, rect cellbuffer.Rect) {},
	})
	second := arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 3, Y: 2, W: 3, H: 2}, Visible: true, Z: 1,
		Paint: func(buf *cellbuffer.Buffer, rect cellbuffer.Rect) {},
	})

	if err := p.Present(true); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if id, ok := p.CheckHit(2, 2); !ok || id != first {
		t.Errorf("CheckHit(2,2) = (%d,%v), want (%d,true)", id, ok, first)
	}
	if id, ok := p.CheckHit(3, 2); !ok || id != second {
		t.Errorf("CheckHit(3,2) = (%d,%v), want (%d,true)", id, ok, second)
	}
	if id, ok := p.CheckHit(5, 2); !ok || id != second {
		t.Errorf("CheckHit(5,2) = (%d,%v), want (%d,true)", id, ok, second)
	}
	if _, ok := p.CheckHit(0, 0); ok {
		t.Errorf("CheckHit(0,0) should report no renderable")
	}
}

func TestForceRenderEmitsFullGridOnFirstPresent(t *testing.T) {
	arena := scene.NewArena()
	sink := &fakeSink{accept: true}
	p := New(arena, 5, 1, cellbuffer.WidthMethodUnicode, sink)

	arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 0, Y: 0, W: 5, H: 1}, Visible: true,
		Paint: paintText("", color.RGB8(255, 255, 255)),
	})

	if err := p.Present(true); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(sink.writes) != 1 || len(sink.writes[0]) == 0 {
		t.Fatalf("expected a forced first present to emit the full grid")
	}
}

func TestResizeForcesNextPresent(t *testing.T) {
	arena := scene.NewArena()
	sink := &fakeSink{accept: true}
	p := New(arena, 5, 1, cellbuffer.WidthMethodUnicode, sink)

	arena.Add(scene.Root, scene.Renderable{
		Rect: cellbuffer.Rect{X: 0, Y: 0, W: 5, H: 1}, Visible: true,
		Paint: paintText("HELLO", color.RGB8(255, 255, 255)),
	})
	if err := p.Present(false); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if err := p.Present(false); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(sink.writes[1]) != 0 {
		t.Fatalf("expected no-op second present before resize")
	}

	if err := p.Resize(5, 1); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := p.Present(false); err != nil {
		t.Fatalf("Present after resize: %v", err)
	}
	if len(sink.writes[2]) == 0 {
		t.Errorf("expected resize to force a full re-emit even though content is unchanged")
	}
}
