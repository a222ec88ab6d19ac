package cellbuffer

import "github.com/otuigo/core/color"

// PixelFormat selects the channel order of a DrawSuperSampleBuffer payload.
type PixelFormat int

const (
	PixelFormatRGBA PixelFormat = iota
	PixelFormatBGRA
)

// quarterBlocks maps which of the 4 quadrants (TL, TR, BL, BR) are
// "filled" to the matching Unicode block character. Brightness is
// monotonic in the number of filled quadrants, per §9's open question on
// the super-sample encoding: this implementation documents its choice as
// quarter-block, 2x2 sub-pixels per cell.
var quarterBlocks = map[[4]bool]rune{
	{false, false, false, false}: ' ',
	{true, false, false, false}:  '▘',
	{false, true, false, false}:  '▝',
	{false, false, true, false}:  '▖',
	{false, false, false, true}:  '▗',
	{true, true, false, false}:   '▀',
	{true, false, true, false}:   '▌',
	{false, true, false, true}:   '▐',
	{false, false, true, true}:   '▄',
	{true, false, false, true}:   '▚',
	{false, true, true, false}:   '▞',
	{true, true, true, false}:    '▛',
	{true, true, false, true}:    '▜',
	{true, false, true, true}:    '▙',
	{false, true, true, true}:    '▟',
	{true, true, true, true}:     '█',
}

// DrawSuperSampleBuffer reduces a 2x2-subsampled RGBA/BGRA pixel buffer to
// terminal cells: each cell consumes a 2x2 block of source pixels, one
// pixel per quadrant, a quadrant is "filled" when its pixel's luminance
// exceeds 0.5, and the cell's fg/bg are the average color of the filled and
// unfilled quadrants respectively.
func (b *Buffer) DrawSuperSampleBuffer(x, y int, pixels []byte, format PixelFormat, stride int) {
	cellW := stride / 4 / 2
	cellH := (len(pixels) / stride) / 2
	for cy := 0; cy < cellH; cy++ {
		for cx := 0; cx < cellW; cx++ {
			var quad [4]color.RGBA
			var filled [4]bool
			for qy := 0; qy < 2; qy++ {
				for qx := 0; qx < 2; qx++ {
					px := cx*2 + qx
					py := cy*2 + qy
					off := py*stride + px*4
					if off+3 >= len(pixels) {
						continue
					}
					c := readPixel(pixels[off:off+4], format)
					idx := qy*2 + qx
					quad[idx] = c
					filled[idx] = luminance(c) > 0.5
				}
			}
			ch, ok := quarterBlocks[filled]
			if !ok {
				ch = ' '
			}
			fg, bg := averageBy(quad, filled, true), averageBy(quad, filled, false)
			b.SetCell(x+cx, y+cy, ch, fg, bg, 0)
		}
	}
}

func readPixel(p []byte, format PixelFormat) color.RGBA {
	if format == PixelFormatBGRA {
		return color.RGBA8(p[2], p[1], p[0], p[3])
	}
	return color.RGBA8(p[0], p[1], p[2], p[3])
}

func luminance(c color.RGBA) float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

func averageBy(quad [4]color.RGBA, filled [4]bool, wantFilled bool) color.RGBA {
	var r, g, bl, a float32
	n := 0
	for i, c := range quad {
		if filled[i] == wantFilled {
			r += c.R
			g += c.G
			bl += c.B
			a += c.A
			n++
		}
	}
	if n == 0 {
		return color.Transparent
	}
	return color.RGBA{R: r / float32(n), G: g / float32(n), B: bl / float32(n), A: a / float32(n)}
}
