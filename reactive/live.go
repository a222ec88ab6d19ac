package reactive

import (
	"sync"
	"time"

	"github.com/otuigo/core/cellbuffer"
)

// LiveTracker decides whether the render loop needs to paint on the
// current tick. While the live count is above zero the loop renders every
// tick regardless of dirtiness; once it drops back to zero the loop goes
// back to rendering only when something marked itself dirty, per the
// renderer's request_live/drop_live contract.
type LiveTracker struct {
	mu    sync.Mutex
	live  int
	dirty bool
}

// NewLiveTracker returns a tracker starting dirty, so the very first tick
// always renders.
func NewLiveTracker() *LiveTracker {
	return &LiveTracker{dirty: true}
}

// RequestLive increments the live ref count. Each call must be balanced by
// a DropLive once the caller no longer needs continuous rendering.
func (t *LiveTracker) RequestLive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live++
}

// DropLive decrements the live ref count. It is a no-op once the count
// reaches zero, so a stray extra DropLive cannot go negative.
func (t *LiveTracker) DropLive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live > 0 {
		t.live--
	}
}

// LiveCount reports the current live ref count.
func (t *LiveTracker) LiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// MarkDirty flags that something changed since the last render.
func (t *LiveTracker) MarkDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dirty = true
}

// ShouldRender reports whether the current tick should paint: either the
// live count is positive, or the scene has been marked dirty since the
// last render.
func (t *LiveTracker) ShouldRender() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live > 0 || t.dirty
}

// ClearDirty resets the dirty flag after a render has completed. Call this
// once per render, after the frame has been presented.
func (t *LiveTracker) ClearDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dirty = false
}

// FrameEvent is the render-cycle identity delivered to after-render
// subscribers once per completed Present: which frame it was, how long the
// frame took to produce, and the buffer that was just presented.
//
// FrameID is declared first so Signal.Set's reflect.DeepEqual dedup check
// fails fast on it before ever touching NextBuffer's cell arrays: every
// completed frame carries a distinct, monotonically increasing FrameID, so
// the struct comparison never needs to walk the buffer to know the value
// changed, and a real frame is never suppressed as a "duplicate" the way an
// all-zero DeltaTime or an unchanged buffer could otherwise make it look.
type FrameEvent struct {
	FrameID    int64
	DeltaTime  time.Duration
	NextBuffer *cellbuffer.Buffer
}

// FrameSubscriber is notified once a frame finishes presenting, receiving
// the render-cycle identity for that frame.
type FrameSubscriber func(FrameEvent)

// Publisher is the after-render publish/subscribe hub: the renderer calls
// Publish once per completed frame, with the completed frame's identity,
// and every subscriber's Effect re-runs against that value. It is built on
// top of Signal/Effect rather than a bare callback list so that a
// subscriber registered mid-frame still observes the latest FrameEvent
// immediately (CreateEffect runs fn once up front) and so cascades of
// publishes during the same tick coalesce the same way any other Signal
// write does.
type Publisher struct {
	frame *Signal[FrameEvent]
}

// NewPublisher creates a publisher with no frame presented yet.
func NewPublisher() *Publisher {
	return &Publisher{frame: NewSignal(FrameEvent{})}
}

// Subscribe registers fn to run once immediately and again after every
// subsequent Publish, returning the Effect handle for Unsubscribe.
func (p *Publisher) Subscribe(fn FrameSubscriber) *Effect {
	return CreateEffect(func() {
		fn(p.frame.Get())
	})
}

// Unsubscribe disposes the Effect returned by Subscribe, stopping fn from
// re-running on future frames.
func (p *Publisher) Unsubscribe(e *Effect) {
	e.Dispose()
}

// Publish records ev as the latest completed frame and re-runs every
// subscriber still attached.
func (p *Publisher) Publish(ev FrameEvent) {
	p.frame.Set(ev)
}
