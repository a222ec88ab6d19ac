// Package renderer owns the frame pipeline, the input decoder, and the
// lifecycle of the terminal: setup/teardown escape sequences, the render
// loop (threaded or cooperative), and the live/dirty scheduling policy.
// See spec §4.5 and §5.
package renderer

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/input"
	"github.com/otuigo/core/pipeline"
	"github.com/otuigo/core/reactive"
	"github.com/otuigo/core/scene"
)

// Mode selects the scheduling model, fixed at construction per §5.
type Mode int

const (
	// Threaded runs a dedicated render goroutine that ticks at
	// TargetFPS; user code mutates the scene from its own goroutines
	// through WithScene.
	Threaded Mode = iota
	// Cooperative is advanced only by explicit RenderOnce calls (tests,
	// or a caller-owned timer loop).
	Cooperative
)

// stdoutSink is the native output strategy: it writes emitted bytes
// straight through to an OS stream with no backpressure, so Write reports
// accepted unless the underlying write or flush fails.
type stdoutSink struct {
	w *bufio.Writer
}

func (s *stdoutSink) Write(p []byte) bool {
	_, err := s.w.Write(p)
	if err != nil {
		return false
	}
	return s.w.Flush() == nil
}

// SinkSink is the javascript-like output strategy: bytes are handed to a
// user-provided writable sink that reports its own drain state, giving
// pipeline.Pipeline's backpressure contract a concrete transport.
type SinkSink struct {
	mu      sync.Mutex
	drained bool
	writes  [][]byte
	onWrite func(p []byte) bool
}

// NewSinkSink wraps onWrite, which should return false when the
// downstream consumer is not ready to accept more bytes.
func NewSinkSink(onWrite func(p []byte) bool) *SinkSink {
	return &SinkSink{drained: true, onWrite: onWrite}
}

func (s *SinkSink) Write(p []byte) bool {
	return s.onWrite(p)
}

// Renderer wires the scene arena, the frame pipeline, the input decoder
// and dispatcher, and the reactive live/dirty tracker into the single
// object applications construct.
type Renderer struct {
	// mu guards scene mutations and the pending-frame flag. The render
	// goroutine holds it for the whole of each Present (painting, diffing,
	// emitting and flushing), not only while painting.
	mu sync.Mutex

	scn      *scene.Arena
	pipe     *pipeline.Pipeline
	decoder  *input.Decoder
	dispatch *input.Dispatcher
	live     *reactive.LiveTracker
	after    *reactive.Publisher

	mode      Mode
	targetFPS int

	out          *os.File
	term         *termState
	useAltScreen bool
	caps         input.Capabilities

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	inbox chan input.Event
}

// New constructs a Renderer over an already-built scene arena, sized to
// width x height, writing ANSI output to out (os.Stdout in production, any
// *os.File in tests).
func New(scn *scene.Arena, width, height int, wm cellbuffer.WidthMethod, out *os.File, mode Mode) *Renderer {
	sink := &stdoutSink{w: bufio.NewWriterSize(out, 64*1024)}
	pipe := pipeline.New(scn, width, height, wm, sink)
	return &Renderer{
		scn:       scn,
		pipe:      pipe,
		decoder:   input.NewDecoder(),
		dispatch:  input.NewDispatcher(pipe),
		live:      reactive.NewLiveTracker(),
		after:     reactive.NewPublisher(),
		mode:      mode,
		targetFPS: 60,
		out:       out,
		caps:      input.DefaultCapabilities(),
		inbox:     make(chan input.Event, 256),
	}
}

// NewWithSink constructs a Renderer using the javascript-like output
// strategy (a user-supplied sink with explicit backpressure) instead of
// writing directly to an OS file descriptor.
func NewWithSink(scn *scene.Arena, width, height int, wm cellbuffer.WidthMethod, sink pipeline.Sink, mode Mode) *Renderer {
	pipe := pipeline.New(scn, width, height, wm, sink)
	return &Renderer{
		scn:       scn,
		pipe:      pipe,
		decoder:   input.NewDecoder(),
		dispatch:  input.NewDispatcher(pipe),
		live:      reactive.NewLiveTracker(),
		after:     reactive.NewPublisher(),
		mode:      mode,
		targetFPS: 60,
		caps:      input.DefaultCapabilities(),
		inbox:     make(chan input.Event, 256),
	}
}

// SetupTerminal emits the setup sequence and switches the terminal into
// raw-like input mode, per §4.5. When useAlternateScreen is true the
// screen is swapped first so the caller's shell scrollback is preserved.
func (r *Renderer) SetupTerminal(useAlternateScreen bool) error {
	r.useAltScreen = useAlternateScreen

	var seq string
	if useAlternateScreen {
		seq += seqEnterAltScreen
	}
	seq += seqHideCursor
	seq += seqMouseSGR + seqMouseDrag + seqMouseSGREnc
	seq += seqKittyKeyboardOn
	seq += seqFocusTrackingOn + seqBracketedPasteOn
	seq += input.ProbeSequence

	if r.out != nil {
		if _, err := io.WriteString(r.out, seq); err != nil {
			return err
		}
		st, err := enableRawMode(r.out)
		if err != nil {
			return err
		}
		r.term = st
	}
	return nil
}

// Teardown reverses SetupTerminal unconditionally, restoring the cursor,
// disabling every protocol extension, and leaving the alternate screen.
func (r *Renderer) Teardown() error {
	seq := seqSGRReset + seqShowCursor
	seq += seqMouseSGROff + seqMouseDragOff + seqMouseMoveOff + seqMouseSGREncOff
	seq += seqKittyKeyboardOff
	seq += seqFocusTrackingOff + seqBracketedPasteOff
	if r.useAltScreen {
		seq += seqLeaveAltScreen
	}

	var err error
	if r.out != nil {
		_, err = io.WriteString(r.out, seq)
		if disableErr := disableRawMode(r.out, r.term); disableErr != nil && err == nil {
			err = disableErr
		}
	}
	return err
}

// ApplyCapabilityReply folds one terminal reply (read from stdin during
// setup) into the renderer's capability snapshot.
func (r *Renderer) ApplyCapabilityReply(reply string) {
	input.ApplyReply(reply, &r.caps)
}

// Capabilities returns the capability snapshot gathered so far.
func (r *Renderer) Capabilities() input.Capabilities { return r.caps }

// WithScene runs fn with the scene mutex held and marks the scene dirty
// afterward, matching §5's "single mutex guards the scene's dirty set"
// rule for the threaded scheduling model.
func (r *Renderer) WithScene(fn func(*scene.Arena)) {
	r.mu.Lock()
	fn(r.scn)
	r.mu.Unlock()
	r.live.MarkDirty()
}

// MarkDirty flags the scene as changed without going through WithScene,
// for callers that already hold external synchronization.
func (r *Renderer) MarkDirty() { r.live.MarkDirty() }

// SetTargetFPS sets the render loop's scheduler tick rate.
func (r *Renderer) SetTargetFPS(n int) {
	if n <= 0 {
		n = 1
	}
	r.targetFPS = n
}

// RequestLive increments the live ref count: while any caller holds a live
// reference the loop renders every tick regardless of dirtiness.
func (r *Renderer) RequestLive() { r.live.RequestLive() }

// DropLive releases a live reference acquired by RequestLive.
func (r *Renderer) DropLive() { r.live.DropLive() }

// SetBackground sets the color the next buffer is cleared to after swap.
func (r *Renderer) SetBackground(c color.RGBA) { r.pipe.SetBackground(c) }

// SetCursorPosition moves the cursor to the given cell. The move is
// pipeline-owned state, emitted as part of the next Present alongside the
// frame's cell writes instead of racing them on r.out directly.
func (r *Renderer) SetCursorPosition(x, y int) { r.pipe.SetCursorPosition(x, y) }

// SetCursorVisible toggles cursor visibility, emitted with the next frame.
func (r *Renderer) SetCursorVisible(v bool) { r.pipe.SetCursorVisible(v) }

// SetCursorStyle selects one of the DECSCUSR cursor shapes, emitted with
// the next frame.
func (r *Renderer) SetCursorStyle(style pipeline.CursorStyle) { r.pipe.SetCursorStyle(style) }

// SetCursorColor sets the OSC 12 cursor color, emitted with the next frame.
func (r *Renderer) SetCursorColor(c color.RGBA) { r.pipe.SetCursorColor(c) }

// SetTitle sets the terminal window/tab title.
func (r *Renderer) SetTitle(title string) error {
	if r.out == nil {
		return nil
	}
	_, err := io.WriteString(r.out, titleSeq(title))
	return err
}

// ToggleDebugOverlay flips the FPS/frame-count overlay on or off.
func (r *Renderer) ToggleDebugOverlay() { r.pipe.ToggleDebugOverlay() }

// ConfigureDebugOverlay selects which corner the overlay renders in.
func (r *Renderer) ConfigureDebugOverlay(corner pipeline.DebugCorner) {
	r.pipe.ConfigureDebugOverlay(corner)
}

// AddPostProcess appends fn to the ordered post-process chain, returning a
// token for a later RemovePostProcess.
func (r *Renderer) AddPostProcess(fn pipeline.PostProcessFunc) int { return r.pipe.AddPostProcess(fn) }

// RemovePostProcess removes the single post-process hook registered under
// id, leaving the rest of the chain installed.
func (r *Renderer) RemovePostProcess(id int) { r.pipe.RemovePostProcess(id) }

// ClearPostProcess removes every installed post-process function.
func (r *Renderer) ClearPostProcess() { r.pipe.ClearPostProcess() }

// SetFrameCallback installs the hook run before compositing each tick.
func (r *Renderer) SetFrameCallback(fn pipeline.FrameCallbackFunc) { r.pipe.SetFrameCallback(fn) }

// RemoveFrameCallback clears the frame callback.
func (r *Renderer) RemoveFrameCallback() { r.pipe.RemoveFrameCallback() }

// GetStats returns the pipeline's frame-timing statistics.
func (r *Renderer) GetStats() pipeline.Stats { return r.pipe.GetStats() }

// DumpHitGrid returns a textual dump of the current hit grid.
func (r *Renderer) DumpHitGrid() string { return r.pipe.DumpHitGrid() }

// DumpBuffers writes the resolved contents of both cell buffers to
// otui-buffers-<ts>.txt for offline inspection.
func (r *Renderer) DumpBuffers(ts string) error { return r.pipe.DumpBuffers(ts) }

// DumpStdoutBuffer writes the last emitted ANSI segment to
// otui-stdout-<ts>.txt, for diagnosing what was actually sent to the
// terminal.
func (r *Renderer) DumpStdoutBuffer(ts string, lastEmitted []byte) error {
	return os.WriteFile("otui-stdout-"+ts+".txt", lastEmitted, 0o644)
}

// Dispatcher returns the input event dispatcher so callers can register
// handlers and manage focus.
func (r *Renderer) Dispatcher() *input.Dispatcher { return r.dispatch }

// OnAfterRender subscribes fn to run once immediately and again after every
// frame RenderOnce/ForceRenderOnce actually completes, receiving that
// frame's render-cycle identity (buffer, delta time, frame id). The
// returned Effect is the handle for RemoveAfterRender.
func (r *Renderer) OnAfterRender(fn func(reactive.FrameEvent)) *reactive.Effect {
	return r.after.Subscribe(fn)
}

// RemoveAfterRender unsubscribes an Effect returned by OnAfterRender.
func (r *Renderer) RemoveAfterRender(e *reactive.Effect) { r.after.Unsubscribe(e) }

// Resize propagates a terminal resize to the pipeline and forces the next
// frame to be a full repaint.
func (r *Renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipe.Resize(width, height)
}

// FeedInput decodes raw bytes read from stdin into events, dispatching
// each through the Dispatcher's hit-test/focus routing and queueing any
// unhandled ones on the inbox for the caller to drain.
func (r *Renderer) FeedInput(data []byte) {
	for _, ev := range r.decoder.Feed(data) {
		r.routeEvent(ev)
	}
}

// FlushInput resolves any input buffered waiting to disambiguate a bare
// ESC from the start of an escape sequence. Call this after a read
// timeout with no further bytes available.
func (r *Renderer) FlushInput() {
	for _, ev := range r.decoder.Flush() {
		r.routeEvent(ev)
	}
}

func (r *Renderer) routeEvent(ev input.Event) {
	if !r.dispatch.Dispatch(ev) {
		select {
		case r.inbox <- ev:
		default:
		}
	}
}

// Events returns the channel of events that no installed handler
// consumed, the MPSC queue §5 describes as carrying input from the
// decoder to user code in threaded mode.
func (r *Renderer) Events() <-chan input.Event { return r.inbox }

// RenderOnce runs a single tick: if the live tracker says this tick should
// paint, one Present, which runs the frame callback before compositing; on
// a tick that does not paint the frame callback is not run. Used directly by
// Cooperative-mode callers and internally by the Threaded render loop.
func (r *Renderer) RenderOnce() error {
	if !r.live.ShouldRender() {
		return nil
	}
	r.mu.Lock()
	err := r.pipe.Present(false)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.live.ClearDirty()
	r.publishAfterRender()
	return nil
}

// ForceRenderOnce runs a tick that always repaints the full frame,
// regardless of dirtiness.
func (r *Renderer) ForceRenderOnce() error {
	r.mu.Lock()
	err := r.pipe.Present(true)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.live.ClearDirty()
	r.publishAfterRender()
	return nil
}

// publishAfterRender notifies after-render subscribers with the frame that
// was just presented, skipping the notification when Present left the
// pipeline Stalled instead of completing (no frame actually finished).
func (r *Renderer) publishAfterRender() {
	if r.pipe.State() != pipeline.Idle {
		return
	}
	buf, dt, frameID := r.pipe.LastFrame()
	r.after.Publish(reactive.FrameEvent{FrameID: frameID, DeltaTime: dt, NextBuffer: buf})
}

// Start begins the render loop. In Threaded mode this spawns the render
// goroutine; in Cooperative mode it only marks the renderer running, since
// ticks are driven by explicit RenderOnce calls.
func (r *Renderer) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	if r.mode == Threaded {
		go r.loop()
	}
}

// Pause stops the threaded loop from ticking without tearing down the
// terminal or discarding renderer state; Start resumes it.
func (r *Renderer) Pause() {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return
	}
	r.Stop()
}

// Stop cooperatively shuts the render loop down: it sets the shutdown
// flag, waits for any in-flight frame to finish, and drains the pending
// output slot via Drain before returning, per §5's cancellation contract.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stopCh := r.stopCh
	doneCh := r.doneCh
	r.mu.Unlock()

	if r.mode == Threaded && stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	r.mu.Lock()
	r.pipe.Drain()
	r.mu.Unlock()
}

func (r *Renderer) loop() {
	defer close(r.doneCh)
	ticker := time.NewTicker(time.Second / time.Duration(r.targetFPS))
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if r.pipe.State() == pipeline.Stalled {
				r.mu.Lock()
				r.pipe.Drain()
				r.mu.Unlock()
				continue
			}
			if err := r.RenderOnce(); err != nil {
				return
			}
		}
	}
}
