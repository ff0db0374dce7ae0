package nesrom

import (
	"errors"
	"fmt"
)

const (
	HEADER_SIZE = 16
	MAGIC       = "NES\x1A"
)

var ErrBadMagic = errors.New("not an iNES image")

// header is the 16 byte iNES header.
// https://www.nesdev.org/wiki/INES
type header struct {
	constant string   // Bytes 0-3: "NES" followed by MS-DOS end-of-file
	prgSize  uint8    // Byte 4: PRG ROM size in 16 KB units
	chrSize  uint8    // Byte 5: CHR ROM size in 8 KB units (0 means CHR RAM)
	flags6   uint8    // Byte 6: mapper low nibble, mirroring, battery, trainer
	flags7   uint8    // Byte 7: mapper high nibble, VS/Playchoice, NES 2.0
	flags8   uint8    // Byte 8: PRG RAM size
	flags9   uint8    // Byte 9: TV system
	flags10  uint8    // Byte 10: TV system, PRG RAM presence (unofficial)
	unused   [5]uint8 // Bytes 11-15: padding, sometimes filled with a ripper's name
}

// flags6 bits. The top 4 bits are the lower nibble of the mapper number.
const (
	// 0: horizontal, 1: vertical
	MIRRORING = 1 << 0
	// Cartridge contains battery-backed PRG RAM ($6000-7FFF)
	BATTERY_BACKED_SRAM = 1 << 1
	// 512-byte trainer at $7000-$71FF (stored before PRG data)
	TRAINER = 1 << 2
	// Provide four-screen VRAM instead of using the mirroring bit
	IGNORE_MIRRORING = 1 << 3
)

// flags7 bits. The top 4 bits are the upper nibble of the mapper number.
const (
	VS_UNISYSTEM  = 0x01
	PLAYCHOICE_10 = 0x02 // 8 KB of Hint Screen data stored after CHR data
)

// flags9 bits
const (
	TV_SYSTEM = 0x01
)

const (
	MIRROR_HORIZONTAL = iota
	MIRROR_VERTICAL
	MIRROR_FOUR_SCREEN
)

const (
	NTSC = iota
	PAL
)

func parseHeader(hbytes []byte) (*header, error) {
	if len(hbytes) < HEADER_SIZE {
		return nil, fmt.Errorf("short header: %d bytes", len(hbytes))
	}

	h := &header{
		constant: string(hbytes[0:4]),
		prgSize:  hbytes[4],
		chrSize:  hbytes[5],
		flags6:   hbytes[6],
		flags7:   hbytes[7],
		flags8:   hbytes[8],
		flags9:   hbytes[9],
		flags10:  hbytes[10],
	}
	copy(h.unused[:], hbytes[11:HEADER_SIZE])

	if !h.isINesFormat() {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, h.constant)
	}
	return h, nil
}

func (h *header) String() string {
	return fmt.Sprintf("mapper(%d), prg(%d), chr(%d), flags(%02x, %02x, %02x, %02x, %02x)", h.mapperNum(), h.prgSize, h.chrSize, h.flags6, h.flags7, h.flags8, h.flags9, h.flags10)
}

// mirroringMode reports how the cartridge wires nametable mirroring.
// https://www.nesdev.org/wiki/INES#Nametable_Mirroring
func (h *header) mirroringMode() uint8 {
	if h.flags6&IGNORE_MIRRORING > 0 {
		return MIRROR_FOUR_SCREEN
	}

	return h.flags6 & MIRRORING
}

func (h *header) hasTrainer() bool {
	return h.flags6&TRAINER == TRAINER
}

func (h *header) hasPlayChoice() bool {
	return h.flags7&PLAYCHOICE_10 == PLAYCHOICE_10
}

func (h *header) hasPrgRAM() bool {
	return h.flags6&BATTERY_BACKED_SRAM > 0
}

// prgRAMSize returns the size of PRG RAM in 8KB units; flags8 == 0
// means a single unit.
func (h *header) prgRAMSize() uint8 {
	if !h.hasPrgRAM() {
		return 0
	}
	if h.flags8 == 0 {
		return 1
	}
	return h.flags8
}

func (h *header) tvSystem() uint8 {
	return h.flags9 & TV_SYSTEM
}

func (h *header) isINesFormat() bool {
	return h.constant == MAGIC
}

func (h *header) isNES2Format() bool {
	return h.isINesFormat() && ((h.flags7 & 0x0C) == 0x08)
}

// ignoreHighNibble reports whether flags7's mapper nibble is junk. Old
// tools wrote text such as "DiskDude!" over bytes 7-15; if the last 4
// bytes aren't zero and the image isn't NES 2.0 the high nibble is
// dropped.
func (h *header) ignoreHighNibble() bool {
	for _, x := range h.unused[1:] {
		if x != 0x00 {
			return !h.isNES2Format()
		}
	}
	return false
}

// mapperNum assembles the mapper number from the upper nibbles of
// flags7 and flags6.
func (h *header) mapperNum() uint8 {
	mn := (h.flags6 & 0xF0) >> 4
	if h.ignoreHighNibble() {
		return mn
	}
	return (h.flags7 & 0xF0) | mn
}
