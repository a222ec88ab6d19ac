package input

import "github.com/otuigo/core/scene"

// HitTester resolves a screen coordinate to the renderable painted there,
// matching pipeline.Pipeline.CheckHit's signature without importing the
// pipeline package (input must not depend on it; the renderer wires them
// together).
type HitTester interface {
	CheckHit(x, y int) (scene.ID, bool)
}

// Handler reacts to one decoded event for a specific renderable. It
// returns true if it handled the event, stopping propagation.
type Handler func(Event) bool

// Dispatcher routes keyboard events to the focused renderable (falling
// back to the root if unhandled) and mouse events through a hit test
// followed by the same parent-chain walk, per spec §4.4.
type Dispatcher struct {
	hit      HitTester
	handlers map[scene.ID]Handler
	parent   map[scene.ID]scene.ID
	focused  scene.ID
	hasFocus bool
}

// NewDispatcher creates a dispatcher over the given hit tester.
func NewDispatcher(hit HitTester) *Dispatcher {
	return &Dispatcher{hit: hit, handlers: map[scene.ID]Handler{}, parent: map[scene.ID]scene.ID{}}
}

// SetParent records id's parent for upward propagation. Call this whenever
// the scene arena's structure changes.
func (d *Dispatcher) SetParent(id, parent scene.ID) { d.parent[id] = parent }

// SetHandler installs (or replaces) the handler for id.
func (d *Dispatcher) SetHandler(id scene.ID, h Handler) { d.handlers[id] = h }

// Focus sets the renderable that keyboard events are routed to first.
func (d *Dispatcher) Focus(id scene.ID) {
	d.focused = id
	d.hasFocus = true
}

// Blur clears the focused renderable.
func (d *Dispatcher) Blur() { d.hasFocus = false }

// Dispatch routes ev to the appropriate renderable chain and reports
// whether any handler consumed it.
func (d *Dispatcher) Dispatch(ev Event) bool {
	switch ev.Kind {
	case EventMouse:
		id, ok := d.hit.CheckHit(ev.Mouse.X, ev.Mouse.Y)
		if !ok {
			return false
		}
		return d.propagate(id, ev)
	case EventKey:
		if !d.hasFocus {
			return false
		}
		return d.propagate(d.focused, ev)
	default:
		if d.hasFocus {
			return d.propagate(d.focused, ev)
		}
		return false
	}
}

// propagate walks id, then its parent chain up to the root, calling each
// installed handler until one returns true.
func (d *Dispatcher) propagate(id scene.ID, ev Event) bool {
	for {
		if h, ok := d.handlers[id]; ok {
			if h(ev) {
				return true
			}
		}
		parent, ok := d.parent[id]
		if !ok || parent == scene.Root {
			return false
		}
		id = parent
	}
}
