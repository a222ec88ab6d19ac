package core

import (
	"testing"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/renderer"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New(Options{Width: 0, Height: 10, Sink: NewMockSink()})
	if err == nil {
		t.Fatal("expected an error for a zero width")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != Contract {
		t.Errorf("got %#v, want a Contract error", err)
	}
}

func TestNewAndRenderOnceEmitsAFrame(t *testing.T) {
	sink := NewMockSink()
	c, err := New(Options{Width: 10, Height: 4, WidthMethod: cellbuffer.WidthMethodWCWidth, Sink: sink, Mode: renderer.Cooperative})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.Renderer().SetBackground(color.RGB8(20, 20, 20))
	if err := c.Renderer().RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	if len(sink.Writes()) == 0 {
		t.Error("expected the first render to emit at least one write")
	}
}

func TestResizeRejectsNonPositiveDimensions(t *testing.T) {
	c, err := New(Options{Width: 10, Height: 4, Sink: NewMockSink()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Resize(0, 5)
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != Contract {
		t.Errorf("got %#v, want a Contract error", err)
	}
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	e := newError(Io, "write failed", nil)
	if got := e.Error(); got != "core: io: write failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMockSinkSimulatesBackpressure(t *testing.T) {
	sink := NewMockSink()
	if !sink.Write([]byte("a")) {
		t.Fatal("expected first write to be accepted")
	}
	sink.SetAccept(false)
	if sink.Write([]byte("b")) {
		t.Fatal("expected write to be refused once backpressured")
	}
	if len(sink.Writes()) != 1 {
		t.Errorf("Writes() = %v, want 1 recorded write", sink.Writes())
	}
}
