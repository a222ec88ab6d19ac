package pipeline

import (
	"fmt"

	"github.com/otuigo/core/cellbuffer"
	"github.com/otuigo/core/color"
)

// drawDebugOverlay writes a one-line stats readout into next at the
// configured corner, after composite and before diffing.
func (p *Pipeline) drawDebugOverlay() {
	stats := p.GetStats()
	text := fmt.Sprintf(" fps:%.1f frame:%d avg:%s ", stats.FPS, stats.FrameCount, stats.Avg)
	w := cellbuffer.StringWidth(text, p.widthMethod)

	x, y := 0, 0
	switch p.debugCorner {
	case CornerTopLeft:
		x, y = 0, 0
	case CornerTopRight:
		x, y = p.width-w, 0
	case CornerBottomLeft:
		x, y = 0, p.height-1
	case CornerBottomRight:
		x, y = p.width-w, p.height-1
	}
	if x < 0 {
		x = 0
	}

	fg := color.RGB8(0, 0, 0)
	bg := color.RGB8(255, 255, 0)
	p.next.DrawText(text, x, y, fg, &bg, 0, nil)
}
