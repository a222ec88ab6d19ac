// Package scene holds the renderable tree that the frame pipeline composites
// each frame. A renderable is reduced to a capability tag (its paint
// function), a bounding rect, a z-order key and a visibility flag, held in a
// flat arena and referenced by stable index — never by pointer — so parents
// own children via ids and the pipeline can walk the tree without chasing
// heterogeneous interface values.
package scene

import "github.com/otuigo/core/cellbuffer"

// ID is a stable index into an Arena, assigned from 0 in insertion order.
// Root (-1) is reserved as the implicit top-level parent.
type ID int

// Root is the implicit parent of every top-level renderable.
const Root ID = -1

// PaintFunc writes cells for a renderable into buf, clipped to rect.
type PaintFunc func(buf *cellbuffer.Buffer, rect cellbuffer.Rect)

// Renderable is one entry in the arena: a rect, a z-order key, visibility,
// and either a paint function or a cached sub-buffer (buffered nodes blit
// their buffer instead of calling Paint, per §4.3 composite step).
type Renderable struct {
	Rect     cellbuffer.Rect
	Z        int
	Visible  bool
	Buffered bool
	SubBuf   *cellbuffer.Buffer
	Paint    PaintFunc

	parent   ID
	children []ID
	order    int // insertion order, for (z asc, insertion asc) sort stability
}

// Arena owns every Renderable in a scene tree, indexed by ID.
type Arena struct {
	nodes    []Renderable
	alive    []bool
	roots    []ID
	nextSeq  int
}

// NewArena creates an empty scene.
func NewArena() *Arena {
	return &Arena{}
}

// Add inserts r as a new child of parent (or a root if parent == Root) and
// returns its id.
func (a *Arena) Add(parent ID, r Renderable) ID {
	r.parent = parent
	r.order = a.nextSeq
	a.nextSeq++
	id := ID(len(a.nodes))
	a.nodes = append(a.nodes, r)
	a.alive = append(a.alive, true)
	if parent == Root {
		a.roots = append(a.roots, id)
	} else if int(parent) >= 0 && int(parent) < len(a.nodes) {
		a.nodes[parent].children = append(a.nodes[parent].children, id)
	}
	return id
}

// Get returns a pointer to the renderable at id, or nil if id is out of
// range or has been removed.
func (a *Arena) Get(id ID) *Renderable {
	if int(id) < 0 || int(id) >= len(a.nodes) || !a.alive[id] {
		return nil
	}
	return &a.nodes[id]
}

// Remove deletes id and its entire subtree. Indices are never reused within
// an Arena's lifetime, so stale ids held elsewhere (the hit grid, a dirty
// set) simply miss on Get rather than aliasing a different node.
func (a *Arena) Remove(id ID) {
	n := a.Get(id)
	if n == nil {
		return
	}
	for _, c := range append([]ID(nil), n.children...) {
		a.Remove(c)
	}
	a.alive[id] = false
	if n.parent == Root {
		a.removeFromSlice(&a.roots, id)
	} else if p := a.Get(n.parent); p != nil {
		a.removeFromSlice(&p.children, id)
	}
}

func (a *Arena) removeFromSlice(s *[]ID, id ID) {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return
		}
	}
}

// SetRect updates a node's bounding rect.
func (a *Arena) SetRect(id ID, r cellbuffer.Rect) {
	if n := a.Get(id); n != nil {
		n.Rect = r
	}
}

// SetZ updates a node's z-order key.
func (a *Arena) SetZ(id ID, z int) {
	if n := a.Get(id); n != nil {
		n.Z = z
	}
}

// SetVisible updates a node's visibility flag.
func (a *Arena) SetVisible(id ID, visible bool) {
	if n := a.Get(id); n != nil {
		n.Visible = visible
	}
}

// SetPaint replaces a node's paint function.
func (a *Arena) SetPaint(id ID, fn PaintFunc) {
	if n := a.Get(id); n != nil {
		n.Paint = fn
	}
}

// Children returns id's direct children, sorted by (z asc, insertion asc).
func (a *Arena) Children(id ID) []ID {
	var kids []ID
	if id == Root {
		kids = a.roots
	} else if n := a.Get(id); n != nil {
		kids = n.children
	}
	sorted := append([]ID(nil), kids...)
	a.sortByZAndOrder(sorted)
	return sorted
}

func (a *Arena) sortByZAndOrder(ids []ID) {
	// Small fan-out per level in practice; insertion sort keeps this
	// allocation-free and stable without pulling in sort.Slice's closure.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && a.less(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func (a *Arena) less(x, y ID) bool {
	nx, ny := &a.nodes[x], &a.nodes[y]
	if nx.Z != ny.Z {
		return nx.Z < ny.Z
	}
	return nx.order < ny.order
}

// Walk visits every node reachable from Root in pre-order, sorted within
// each parent by (z asc, insertion asc), per the composite step in §4.3.
func (a *Arena) Walk(visit func(id ID, n *Renderable)) {
	var rec func(id ID)
	rec = func(id ID) {
		n := a.Get(id)
		if n == nil {
			return
		}
		visit(id, n)
		for _, c := range a.Children(id) {
			rec(c)
		}
	}
	for _, r := range a.Children(Root) {
		rec(r)
	}
}
