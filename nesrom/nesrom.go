// Package nesrom loads program images for the simulator: iNES
// cartridge dumps using the NROM board, and raw binaries placed at a
// fixed origin.
// https://www.nesdev.org/wiki/INES, https://www.nesdev.org/wiki/NROM
package nesrom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bdwalton/sim6502/memory"
)

var ErrUnsupportedMapper = errors.New("unsupported mapper")

const (
	TRAINER_SIZE   = 512
	PRG_BLOCK_SIZE = 16384
	CHR_BLOCK_SIZE = 8192
	PC_INST_SIZE   = 8192
	PC_PROM_SIZE   = 32
)

// Addresses on the NROM CPU bus.
const (
	RAM_START      = 0x0000
	RAM_END        = 0x1FFF
	RAM_SIZE       = 0x0800 // mirrored four times up to RAM_END
	PRG_RAM_START  = 0x6000
	PRG_RAM_END    = 0x7FFF
	PRG_RAM_SIZE   = 0x2000
	TRAINER_ADDR   = 0x7000
	PRG_ROM_START  = 0x8000
	PRG_ROM_END    = 0xFFFF
	NROM_MAPPER_ID = 0
)

type ROM struct {
	h       *header
	trainer []byte // if present
	prg     []byte // 16384 * x bytes; x from header
	chr     []byte // 8192 * y bytes; y from header
}

// New reads an iNES image from r.
func New(r io.Reader) (*ROM, error) {
	hbytes := make([]byte, HEADER_SIZE)
	if _, err := io.ReadFull(r, hbytes); err != nil {
		return nil, fmt.Errorf("couldn't read header: %w", err)
	}

	h, err := parseHeader(hbytes)
	if err != nil {
		return nil, err
	}

	rom := &ROM{h: h}
	if h.hasTrainer() {
		rom.trainer = make([]byte, TRAINER_SIZE)
		if _, err := io.ReadFull(r, rom.trainer); err != nil {
			return nil, fmt.Errorf("error reading trainer data: %w", err)
		}
	}

	rom.prg = make([]byte, PRG_BLOCK_SIZE*int(h.prgSize))
	if n, err := io.ReadFull(r, rom.prg); err != nil {
		return nil, fmt.Errorf("error reading PRG ROM (read %d, wanted %d): %w", n, len(rom.prg), err)
	}

	rom.chr = make([]byte, CHR_BLOCK_SIZE*int(h.chrSize))
	if n, err := io.ReadFull(r, rom.chr); err != nil {
		return nil, fmt.Errorf("error reading CHR ROM (read %d, wanted %d): %w", n, len(rom.chr), err)
	}

	// PlayChoice data follows; nothing on the CPU bus uses it.
	return rom, nil
}

// Open reads the iNES image at path.
func Open(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open ROM file %q: %w", path, err)
	}
	defer f.Close()

	rom, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

func (r *ROM) NumPrgBlocks() uint8 {
	return r.h.prgSize
}

func (r *ROM) MapperNum() uint8 {
	return r.h.mapperNum()
}

func (r *ROM) MirroringMode() uint8 {
	return r.h.mirroringMode()
}

func (r *ROM) HasSaveRAM() bool {
	return r.h.hasPrgRAM()
}

func (r *ROM) String() string {
	return fmt.Sprintf("%s, trainer(%t), prg bytes(%d), chr bytes(%d)", r.h, r.trainer != nil, len(r.prg), len(r.chr))
}

// PrgBank returns the n'th 16KB PRG ROM block.
func (r *ROM) PrgBank(n int) ([]byte, error) {
	if n < 0 || n >= int(r.h.prgSize) {
		return nil, fmt.Errorf("PRG bank %d out of range (have %d)", n, r.h.prgSize)
	}
	return r.prg[n*PRG_BLOCK_SIZE : (n+1)*PRG_BLOCK_SIZE], nil
}

// Bus builds the CPU address space of an NROM cartridge: 2KB of RAM
// mirrored across 0x0000-0x1FFF, 8KB of PRG RAM at 0x6000 holding the
// trainer if there is one, and PRG ROM at 0x8000. A single 16KB bank
// is mirrored at 0xC000. Everything else, including the PPU and APU
// registers, is unmapped.
func (r *ROM) Bus() (*memory.Mapped, error) {
	if mn := r.MapperNum(); mn != NROM_MAPPER_ID {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, mn)
	}
	if r.h.prgSize != 1 && r.h.prgSize != 2 {
		return nil, fmt.Errorf("%w: NROM with %d PRG banks", ErrUnsupportedMapper, r.h.prgSize)
	}

	prgRAM := memory.NewMirror(PRG_RAM_SIZE)
	if r.trainer != nil {
		for i, v := range r.trainer {
			prgRAM.Write(uint16(TRAINER_ADDR-PRG_RAM_START+i), v)
		}
	}

	m := memory.NewMapped()
	for _, d := range []struct {
		lo, hi uint16
		name   string
		dev    memory.Device
	}{
		{RAM_START, RAM_END, "ram", memory.NewMirror(RAM_SIZE)},
		{PRG_RAM_START, PRG_RAM_END, "prg ram", prgRAM},
		{PRG_ROM_START, PRG_ROM_END, "prg rom", memory.NewROM(r.prg)},
	} {
		if err := m.Map(d.lo, d.hi, d.name, d.dev); err != nil {
			return nil, err
		}
	}

	return m, nil
}
