package console

import (
	"io"

	"github.com/bdwalton/sim6502/mos6502"
	"github.com/fogleman/gg"
)

const SNAPSHOT_SIZE = 256

// Snapshot draws the 64KiB address space one pixel per byte, page n on
// row n. Bytes are grey levels, addresses the bus can't read are red
// and the byte at pc is green.
func Snapshot(b mos6502.Bus, pc uint16) *gg.Context {
	dc := gg.NewContext(SNAPSHOT_SIZE, SNAPSHOT_SIZE)
	for addr := 0; addr <= 0xFFFF; addr++ {
		x, y := addr%SNAPSHOT_SIZE, addr/SNAPSHOT_SIZE
		switch v, err := b.Read(uint16(addr)); {
		case uint16(addr) == pc:
			dc.SetRGB255(0, 255, 0)
		case err != nil:
			dc.SetRGB255(255, 0, 0)
		default:
			dc.SetRGB255(int(v), int(v), int(v))
		}
		dc.SetPixel(x, y)
	}
	return dc
}

// WriteSnapshot encodes Snapshot(b, pc) to w as a PNG.
func WriteSnapshot(w io.Writer, b mos6502.Bus, pc uint16) error {
	return Snapshot(b, pc).EncodePNG(w)
}
