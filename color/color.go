// Package color implements the RGBA color model shared by every drawing
// primitive in cellbuffer and textbuffer: four normalised floats, exact
// equality, and the perceptual-linear alpha blend the spec calls for.
package color

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA is a color with components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// Transparent has alpha 0: "fully transparent", skipped in respect-alpha mode.
var Transparent = RGBA{0, 0, 0, 0}

// Opaque named colors, resolved the same way draw_box/draw_text accept them.
var named = map[string]RGBA{
	"black":   RGB8(0, 0, 0),
	"red":     RGB8(255, 0, 0),
	"green":   RGB8(0, 255, 0),
	"yellow":  RGB8(255, 255, 0),
	"blue":    RGB8(0, 0, 255),
	"magenta": RGB8(255, 0, 255),
	"cyan":    RGB8(0, 255, 255),
	"white":   RGB8(255, 255, 255),
	"grey":    RGB8(128, 128, 128),
	"gray":    RGB8(128, 128, 128),
}

// RGB8 constructs an opaque color from 0-255 integer components.
func RGB8(r, g, b uint8) RGBA {
	return RGBA{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

// RGBA8 constructs a color from 0-255 integer components including alpha.
func RGBA8(r, g, b, a uint8) RGBA {
	return RGBA{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// Parse resolves a hex string ("#rrggbb", "#rgb"), a named color, or
// returns an error for anything else. Hex parsing is delegated to
// go-colorful, whose Color fields are already float64 in [0,1].
func Parse(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGBA{}, fmt.Errorf("color: empty string")
	}
	if c, ok := named[strings.ToLower(s)]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		cc, err := colorful.Hex(s)
		if err != nil {
			return RGBA{}, fmt.Errorf("color: %w", err)
		}
		return RGBA{float32(cc.R), float32(cc.G), float32(cc.B), 1}, nil
	}
	return RGBA{}, fmt.Errorf("color: unrecognised color %q", s)
}

// Equal is exact component equality, matching the spec's "compared as
// 4-tuples of floats" diff rule.
func (c RGBA) Equal(o RGBA) bool {
	return c == o
}

// WithAlpha returns a copy with the alpha channel replaced.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// Blend performs the component-wise perceptual-linear blend
// C = src*alpha + dst*(1-alpha) using src's own alpha channel. The result's
// alpha is src.A + dst.A*(1-src.A), so it is opaque whenever dst is opaque;
// a fully transparent dst (A == 0) yields src unchanged.
func Blend(src, dst RGBA) RGBA {
	if dst.A == 0 {
		return src
	}
	a := src.A
	inv := 1 - a
	return RGBA{
		R: src.R*a + dst.R*inv,
		G: src.G*a + dst.G*inv,
		B: src.B*a + dst.B*inv,
		A: a + dst.A*inv,
	}
}

// RGB8 returns 0-255 integer components, rounding to nearest.
func (c RGBA) RGB8() (r, g, b uint8) {
	clamp := func(f float32) uint8 {
		if f <= 0 {
			return 0
		}
		if f >= 1 {
			return 255
		}
		return uint8(f*255 + 0.5)
	}
	return clamp(c.R), clamp(c.G), clamp(c.B)
}
