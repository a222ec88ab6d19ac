package cellbuffer

import (
	"encoding/binary"

	"github.com/otuigo/core/color"
)

// PackedRecordSize is the stride of one packed cell record: codepoint(4) +
// fg rgba8(4) + bg rgba8(4) + attr(1) + padding(3).
const PackedRecordSize = 16

// DrawPackedBuffer decodes a dense external encoding (one PackedRecordSize
// record per cell, row-major) into the buffer at (x, y), widening each
// record's 8-bit color channels to floats on copy. term_w/term_h bound the
// source rectangle being decoded.
func (b *Buffer) DrawPackedBuffer(data []byte, x, y, termW, termH int) {
	n := len(data) / PackedRecordSize
	if n > termW*termH {
		n = termW * termH
	}
	for i := 0; i < n; i++ {
		row := i / termW
		col := i % termW
		off := i * PackedRecordSize
		rec := data[off : off+PackedRecordSize]

		cp := binary.LittleEndian.Uint32(rec[0:4])
		fg := color.RGBA8(rec[4], rec[5], rec[6], rec[7])
		bg := color.RGBA8(rec[8], rec[9], rec[10], rec[11])
		attr := Attr(rec[12])

		b.SetCell(x+col, y+row, rune(cp), fg, bg, attr)
	}
}
