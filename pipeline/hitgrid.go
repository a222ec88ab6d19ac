package pipeline

import "github.com/otuigo/core/scene"

// hitGrid maps terminal cells to the renderable id last painted there. 0
// means no renderable claims the cell, per S5.
type hitGrid struct {
	width, height int
	ids           []int32
}

func newHitGrid(w, h int) *hitGrid {
	return &hitGrid{width: w, height: h, ids: make([]int32, w*h)}
}

func (g *hitGrid) resize(w, h int) {
	g.width, g.height = w, h
	g.ids = make([]int32, w*h)
}

func (g *hitGrid) clear() {
	for i := range g.ids {
		g.ids[i] = 0
	}
}

// stamp writes id (1-based: scene.ID + 1) over [x, x+w) x [y, y+h), clipped
// to the grid bounds. Later stamps overwrite earlier ones at the same cell,
// matching the "paint order wins" rule from S5.
func (g *hitGrid) stamp(x, y, w, h int, id scene.ID) {
	x0 := max0(x)
	y0 := max0(y)
	x1 := min0(x+w, g.width)
	y1 := min0(y+h, g.height)
	for yy := y0; yy < y1; yy++ {
		row := yy * g.width
		for xx := x0; xx < x1; xx++ {
			g.ids[row+xx] = int32(id) + 1
		}
	}
}

// check returns the renderable id painted at (x, y). ok is false when no
// renderable claims the cell or (x, y) is outside the grid.
func (g *hitGrid) check(x, y int) (scene.ID, bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, false
	}
	v := g.ids[y*g.width+x]
	if v == 0 {
		return 0, false
	}
	return scene.ID(v - 1), true
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func min0(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}
