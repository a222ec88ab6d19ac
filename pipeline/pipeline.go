package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
	"github.com/otuigo/core/scene"
)

// Sink is the output destination for emitted ANSI bytes. Write reports
// whether the bytes were accepted immediately; false puts the pipeline into
// Stalled until a subsequent Drain, implementing the §4.3 backpressure
// contract without committing to a concrete transport (native fd vs a
// user-provided writable sink, per §4.5's two output strategies).
type Sink interface {
	Write(p []byte) (accepted bool)
}

// DebugCorner selects where the debug overlay is drawn.
type DebugCorner int

const (
	CornerTopLeft DebugCorner = iota
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

// Stats is the snapshot returned by Renderer.GetStats (§4.5).
type Stats struct {
	FPS        float64
	FrameCount int64
	FrameTimes []time.Duration
	Avg, Min, Max time.Duration
}

const maxFrameTimeSamples = 120

// Pipeline owns the next/current cell buffers, the hit grid, and the
// composite/diff/emit/backpressure state machine described in spec §4.3.
type Pipeline struct {
	next, current *cellbuffer.Buffer
	width, height int
	widthMethod   cellbuffer.WidthMethod

	scn *scene.Arena
	hit *hitGrid

	state       State
	pendingForce bool
	hasPending   bool

	sink       Sink
	lastStyle  emitStyle
	pendingOut []byte // bytes computed but not yet accepted by sink (Stalled)

	background color.RGBA

	debugOverlay bool
	debugCorner  DebugCorner

	cursor            cursorState
	lastCursorEmitted cursorState

	postProcess       []postProcessEntry
	nextPostProcessID int
	frameCallback     FrameCallbackFunc

	frameTimes        []time.Duration
	frameCount        int64
	lastFrameDuration time.Duration
}

// PostProcessFunc receives the final next buffer and the time elapsed
// between compositing and diffing.
type PostProcessFunc func(next *cellbuffer.Buffer, dt time.Duration)

type postProcessEntry struct {
	id int
	fn PostProcessFunc
}

// FrameCallbackFunc runs before composition each tick; it may block.
type FrameCallbackFunc func()

// New creates a pipeline of the given size, writing to sink.
func New(scn *scene.Arena, width, height int, wm cellbuffer.WidthMethod, sink Sink) *Pipeline {
	p := &Pipeline{
		scn:         scn,
		width:       width,
		height:      height,
		widthMethod: wm,
		sink:        sink,
		state:       Idle,
		background:  color.Transparent,
	}
	p.next = cellbuffer.New("next", width, height, true, wm)
	p.current = cellbuffer.New("current", width, height, true, wm)
	p.hit = newHitGrid(width, height)
	return p
}

// State returns the pipeline's current state machine position.
func (p *Pipeline) State() State { return p.state }

// CanRender reports whether Present would be accepted right now.
func (p *Pipeline) CanRender() bool { return p.state != Stalled }

// SetBackground sets the color next is cleared to after a successful swap.
func (p *Pipeline) SetBackground(c color.RGBA) { p.background = c }

// Next exposes the paint target for the scene to draw into.
func (p *Pipeline) Next() *cellbuffer.Buffer { return p.next }

// AddPostProcess appends fn to the ordered post-process list and returns a
// token identifying it, for a later RemovePostProcess.
func (p *Pipeline) AddPostProcess(fn PostProcessFunc) int {
	id := p.nextPostProcessID
	p.nextPostProcessID++
	p.postProcess = append(p.postProcess, postProcessEntry{id: id, fn: fn})
	return id
}

// RemovePostProcess removes the single hook registered under id, leaving
// the rest of the chain untouched. It is a no-op if id is unknown.
func (p *Pipeline) RemovePostProcess(id int) {
	for i, e := range p.postProcess {
		if e.id == id {
			p.postProcess = append(p.postProcess[:i], p.postProcess[i+1:]...)
			return
		}
	}
}

// ClearPostProcess removes every registered post-process hook.
func (p *Pipeline) ClearPostProcess() { p.postProcess = nil }

// SetFrameCallback installs the hook invoked before each composite.
func (p *Pipeline) SetFrameCallback(fn FrameCallbackFunc) { p.frameCallback = fn }

// RemoveFrameCallback clears the frame callback.
func (p *Pipeline) RemoveFrameCallback() { p.frameCallback = nil }

// ToggleDebugOverlay flips the debug overlay on/off.
func (p *Pipeline) ToggleDebugOverlay() { p.debugOverlay = !p.debugOverlay }

// ConfigureDebugOverlay sets which corner the overlay renders in.
func (p *Pipeline) ConfigureDebugOverlay(c DebugCorner) { p.debugCorner = c }

// Resize reallocates both buffers and the hit grid, and forces the next
// Present to skip diffing, per §4.3's resize rule.
func (p *Pipeline) Resize(width, height int) error {
	if err := p.next.Resize(width, height, p.background); err != nil {
		return err
	}
	if err := p.current.Resize(width, height, p.background); err != nil {
		return err
	}
	p.width, p.height = width, height
	p.hit.resize(width, height)
	p.pendingForce = true
	return nil
}

// RequestFrame marks a frame pending. If the pipeline is not Idle, the
// request is coalesced: at most one pending frame is remembered, per §4.3.
func (p *Pipeline) RequestFrame() { p.hasPending = true }

// Present runs the pipeline state machine once: composite, diff (unless
// force), emit, and flush to the sink. If the sink refuses the write, the
// pipeline enters Stalled and Present returns without swapping buffers
// (invariant 9); a later Drain resumes the flush.
func (p *Pipeline) Present(force bool) error {
	if p.state == Stalled {
		return nil
	}

	if p.frameCallback != nil {
		p.frameCallback()
	}

	p.state = Painting
	t0 := time.Now()
	p.composite()

	if p.debugOverlay {
		p.drawDebugOverlay()
	}

	for _, pp := range p.postProcess {
		pp.fn(p.next, time.Since(t0))
	}

	p.state = Diffing
	force = force || p.pendingForce
	p.pendingForce = false
	p.hasPending = false

	var segs []diffSegment
	if force {
		segs = fullFrameSegments(p.next)
	} else {
		segs = diff(p.next, p.current)
	}

	p.state = Emitting
	var out []byte
	out, p.lastStyle = encode(out, p.next, segs, emitStyle{})
	if len(out) > 0 {
		out = append(out, "\x1b[0m"...)
	}
	out = appendCursorSeqs(out, p.cursor, p.lastCursorEmitted)
	p.lastCursorEmitted = p.cursor

	p.state = Flushing
	if !p.sink.Write(out) {
		p.pendingOut = out
		p.state = Stalled
		return nil
	}

	d := time.Since(t0)
	p.lastFrameDuration = d
	p.recordFrameTime(d)
	p.swap()
	p.state = Idle
	return nil
}

// Drain retries a stalled write. Once accepted, the pipeline swaps buffers
// and returns to Idle, per §4.3's backpressure contract.
func (p *Pipeline) Drain() {
	if p.state != Stalled {
		return
	}
	if !p.sink.Write(p.pendingOut) {
		return
	}
	p.pendingOut = nil
	p.swap()
	p.state = Idle
}

func (p *Pipeline) swap() {
	p.next, p.current = p.current, p.next
	p.next.Clear(p.background)
	p.frameCount++
}

func fullFrameSegments(buf *cellbuffer.Buffer) []diffSegment {
	w, h := buf.Width(), buf.Height()
	segs := make([]diffSegment, h)
	for y := 0; y < h; y++ {
		segs[y] = diffSegment{y: y, xStart: 0, xEnd: w}
	}
	return segs
}

// composite walks the scene in pre-order (z asc, insertion asc), paints
// every visible node into next with its rect pushed as a scissor, and
// stamps the hit grid, per §4.3's composite step.
func (p *Pipeline) composite() {
	p.hit.clear()
	p.scn.Walk(func(id scene.ID, n *scene.Renderable) {
		if !n.Visible || n.Rect.Empty() {
			return
		}
		clip := n.Rect.Intersect(cellbuffer.Rect{X: 0, Y: 0, W: p.width, H: p.height})
		if clip.Empty() {
			return
		}

		p.next.PushScissor(n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H)
		p.paintNode(n)
		p.next.PopScissor()

		p.hit.stamp(clip.X, clip.Y, clip.W, clip.H, id)
	})
}

func (p *Pipeline) paintNode(n *scene.Renderable) {
	defer func() {
		// A renderable's paint must never tear down the frame (§7): log
		// and move on, leaving whatever it managed to write.
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "pipeline: paint panic recovered: %v\n", r)
		}
	}()

	if n.Buffered && n.SubBuf != nil {
		p.next.DrawFrameBuffer(n.Rect.X, n.Rect.Y, n.SubBuf, 0, 0, n.SubBuf.Width(), n.SubBuf.Height())
		return
	}
	if n.Paint != nil {
		n.Paint(p.next, n.Rect)
	}
}

// CheckHit returns the renderable id painted at (x, y), or ok=false if no
// renderable claims that cell (S5).
func (p *Pipeline) CheckHit(x, y int) (scene.ID, bool) {
	return p.hit.check(x, y)
}

func (p *Pipeline) recordFrameTime(d time.Duration) {
	p.frameTimes = append(p.frameTimes, d)
	if len(p.frameTimes) > maxFrameTimeSamples {
		p.frameTimes = p.frameTimes[len(p.frameTimes)-maxFrameTimeSamples:]
	}
}

// LastFrame returns the buffer most recently presented, the wall time its
// Present call took, and the frame count after that swap, the render-cycle
// identity delivered to after-render subscribers.
func (p *Pipeline) LastFrame() (*cellbuffer.Buffer, time.Duration, int64) {
	return p.current, p.lastFrameDuration, p.frameCount
}

// GetStats returns frame-time statistics over the most recent samples.
func (p *Pipeline) GetStats() Stats {
	s := Stats{FrameCount: p.frameCount, FrameTimes: append([]time.Duration(nil), p.frameTimes...)}
	if len(p.frameTimes) == 0 {
		return s
	}
	var total, min, max time.Duration
	min = p.frameTimes[0]
	for _, d := range p.frameTimes {
		total += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	s.Avg = total / time.Duration(len(p.frameTimes))
	s.Min, s.Max = min, max
	if s.Avg > 0 {
		s.FPS = float64(time.Second) / float64(s.Avg)
	}
	return s
}

// DumpHitGrid renders the hit grid as a row-major grid of ids for
// diagnostics.
func (p *Pipeline) DumpHitGrid() string {
	out := make([]byte, 0, p.width*p.height)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			id, ok := p.hit.check(x, y)
			if !ok {
				out = append(out, '.')
			} else {
				out = append(out, []byte(fmt.Sprintf("%d", id))...)
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

// DumpBuffers writes a diagnostic text projection of both cell buffers to
// otui-buffers-<ts>.txt, per §6's persisted-state rule.
func (p *Pipeline) DumpBuffers(ts string) error {
	path := fmt.Sprintf("otui-buffers-%s.txt", ts)
	body := "next:\n" + p.next.WriteResolvedChars(true) + "\ncurrent:\n" + p.current.WriteResolvedChars(true)
	return os.WriteFile(path, []byte(body), 0o644)
}
