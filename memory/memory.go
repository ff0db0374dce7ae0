// Package memory provides the buses a mos6502.CPU runs against: a flat
// 64KiB RAM and a bus that routes address ranges to devices.
package memory

import (
	"errors"
	"fmt"
	"math"
)

const (
	MAX_ADDRESS = math.MaxUint16
)

var (
	ErrUnmapped = errors.New("unmapped address")
	ErrReadOnly = errors.New("read only memory")
	ErrOverlap  = errors.New("overlapping region")
	ErrTooLarge = errors.New("data doesn't fit in the address space")
)

type byteReader interface {
	Read(addr uint16) (uint8, error)
}

type byteWriter interface {
	Write(addr uint16, val uint8) error
}

// readN returns n bytes starting at addr. Addresses wrap at the top of
// memory.
func readN(r byteReader, addr, n uint16) ([]uint8, error) {
	out := make([]uint8, n)
	for i := range out {
		v, err := r.Read(addr + uint16(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// readU16 returns the two bytes from memory at addr (lower byte is
// first).
func readU16(r byteReader, addr uint16) (uint16, error) {
	lsb, err := r.Read(addr)
	if err != nil {
		return 0, err
	}
	msb, err := r.Read(addr + 1)
	if err != nil {
		return 0, err
	}

	return (uint16(msb) << 8) | uint16(lsb), nil
}

// readZeroPageU16 is readU16 for pointers stored in page zero; the
// high byte comes from zp+1 wrapped within the page.
func readZeroPageU16(r byteReader, zp uint8) (uint16, error) {
	lsb, err := r.Read(uint16(zp))
	if err != nil {
		return 0, err
	}
	msb, err := r.Read(uint16(zp + 1))
	if err != nil {
		return 0, err
	}

	return (uint16(msb) << 8) | uint16(lsb), nil
}

// WriteU16 stores val at addr (lower byte is first).
func WriteU16(w byteWriter, addr, val uint16) error {
	if err := w.Write(addr, uint8(val&0x00FF)); err != nil {
		return err
	}
	return w.Write(addr+1, uint8(val>>8))
}

// Load copies data into w starting at addr. It fails without writing
// anything when data would run past MAX_ADDRESS.
func Load(w byteWriter, addr uint16, data []uint8) error {
	if int(addr)+len(data) > MAX_ADDRESS+1 {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrTooLarge, len(data), addr)
	}
	for i, v := range data {
		if err := w.Write(addr+uint16(i), v); err != nil {
			return err
		}
	}
	return nil
}

// RAM is a flat, fully writable 64KiB address space.
type RAM struct {
	mem [MAX_ADDRESS + 1]uint8
}

func NewRAM() *RAM {
	return &RAM{}
}

func (m *RAM) Read(addr uint16) (uint8, error) {
	return m.mem[addr], nil
}

func (m *RAM) Write(addr uint16, val uint8) error {
	m.mem[addr] = val
	return nil
}

func (m *RAM) ReadN(addr, n uint16) ([]uint8, error) {
	return readN(m, addr, n)
}

func (m *RAM) ReadU16(addr uint16) (uint16, error) {
	return readU16(m, addr)
}

func (m *RAM) ReadZeroPageU16(zp uint8) (uint16, error) {
	return readZeroPageU16(m, zp)
}

// Load copies data into memory starting at addr.
func (m *RAM) Load(addr uint16, data []uint8) error {
	return Load(m, addr, data)
}
