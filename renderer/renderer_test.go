package renderer

import (
	"testing"
	"time"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/input"
	"github.com/otuigo/core/pipeline"
	"github.com/otuigo/core/scene"
)

func newTestRenderer() (*Renderer, *SinkSink, *[][]byte) {
	var writes [][]byte
	sink := NewSinkSink(func(p []byte) bool {
		cp := append([]byte(nil), p...)
		writes = append(writes, cp)
		return true
	})
	scn := scene.NewArena()
	r := NewWithSink(scn, 10, 4, cellbuffer.WidthMethodWCWidth, sink, Cooperative)
	return r, sink, &writes
}

func TestRenderOnceSkipsWhenNotDirtyAndNotLive(t *testing.T) {
	r, _, writes := newTestRenderer()

	if err := r.RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	if len(*writes) == 0 {
		t.Fatalf("expected the first tick (starts dirty) to emit a frame")
	}
	before := len(*writes)

	if err := r.RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	if len(*writes) != before {
		t.Errorf("expected no further writes once clean and not live, got %d new writes", len(*writes)-before)
	}
}

func TestRequestLiveForcesEveryTickToRender(t *testing.T) {
	r, _, writes := newTestRenderer()
	r.RenderOnce()
	before := len(*writes)

	r.RequestLive()
	for i := 0; i < 3; i++ {
		if err := r.RenderOnce(); err != nil {
			t.Fatalf("RenderOnce: %v", err)
		}
	}
	if len(*writes) <= before {
		t.Errorf("expected live mode to keep emitting frames, got %d new writes", len(*writes)-before)
	}

	r.DropLive()
	r.RenderOnce()
	afterDrop := len(*writes)
	r.RenderOnce()
	if len(*writes) != afterDrop {
		t.Errorf("expected dropping the only live ref to stop unconditional rendering")
	}
}

func TestWithSceneMarksDirty(t *testing.T) {
	r, _, writes := newTestRenderer()
	r.RenderOnce()
	before := len(*writes)

	r.WithScene(func(a *scene.Arena) {
		a.Add(scene.Root, scene.Renderable{
			Rect:    cellbuffer.Rect{X: 0, Y: 0, W: 1, H: 1},
			Visible: true,
			Paint:   func(buf *cellbuffer.Buffer, rect cellbuffer.Rect) {},
		})
	})

	if err := r.RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	if len(*writes) <= before {
		t.Errorf("expected WithScene to mark the renderer dirty, triggering a render")
	}
}

func TestFeedInputRoutesToFocusedHandler(t *testing.T) {
	r, _, _ := newTestRenderer()
	r.Dispatcher().Focus(1)

	var gotKey string
	r.Dispatcher().SetHandler(1, func(ev input.Event) bool {
		gotKey = ev.Key.Name
		return true
	})

	r.FeedInput([]byte("\x1b[A"))

	if gotKey != "up" {
		t.Errorf("gotKey = %q, want %q", gotKey, "up")
	}
	select {
	case ev := <-r.Events():
		t.Errorf("expected no event on the inbox since the handler consumed it, got %+v", ev)
	default:
	}
}

func TestFeedInputUnhandledGoesToInbox(t *testing.T) {
	r, _, _ := newTestRenderer()
	r.FeedInput([]byte("a"))

	select {
	case ev := <-r.Events():
		if ev.Key.CodePoint != 'a' {
			t.Errorf("got %+v, want codepoint 'a'", ev)
		}
	default:
		t.Error("expected the unhandled key event to land on the inbox")
	}
}

func TestThreadedStartStopDoesNotHang(t *testing.T) {
	scn := scene.NewArena()
	sink := NewSinkSink(func(p []byte) bool { return true })
	r := NewWithSink(scn, 10, 4, cellbuffer.WidthMethodWCWidth, sink, Threaded)
	r.SetTargetFPS(200)

	r.Start()
	time.Sleep(20 * time.Millisecond)
	r.Stop()
}

func TestSetBackgroundAndDebugOverlayDoNotPanic(t *testing.T) {
	r, _, _ := newTestRenderer()
	r.SetBackground(color.RGB8(255, 0, 0))
	r.ToggleDebugOverlay()
	r.ConfigureDebugOverlay(pipeline.CornerBottomRight)
	if err := r.RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
}
