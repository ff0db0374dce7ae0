package mos6502

import (
	"fmt"
)

type LocationKind uint8

const (
	LOC_NONE        LocationKind = iota // the mode carries no location
	LOC_ACCUMULATOR                     // the accumulator register itself
	LOC_ADDRESS                         // a concrete memory address
)

// Location is where an instruction's operand lives once its addressing
// mode has been resolved. It only lives for a single instruction.
type Location struct {
	Kind LocationKind
	Addr uint16 // Only meaningful for LOC_ADDRESS
}

func (l Location) String() string {
	switch l.Kind {
	case LOC_ACCUMULATOR:
		return "A"
	case LOC_ADDRESS:
		return fmt.Sprintf("$%04X", l.Addr)
	}
	return "none"
}

func addressLoc(addr uint16) Location {
	return Location{Kind: LOC_ADDRESS, Addr: addr}
}

func checkOperands(mode Mode, operands []uint8) error {
	if want := mode.operandBytes(); len(operands) < want {
		return fmt.Errorf("%w: %s needs %d operand bytes, got %d", ErrInvalidAddressing, mode, want, len(operands))
	}
	return nil
}

// Resolve computes the location the operand bytes refer to under mode.
// Zero page sums wrap within page zero; absolute sums wrap at 0xFFFF.
// Relative operands are branch displacements, not locations, and are
// rejected.
func Resolve(mode Mode, operands []uint8, r *Registers, b Bus) (Location, error) {
	if err := checkOperands(mode, operands); err != nil {
		return Location{}, err
	}

	switch mode {
	case IMPLICIT, IMMEDIATE:
		return Location{Kind: LOC_NONE}, nil
	case ACCUMULATOR:
		return Location{Kind: LOC_ACCUMULATOR}, nil
	case RELATIVE:
		return Location{}, fmt.Errorf("%w: %s has no memory location", ErrInvalidAddressing, mode)
	case ZERO_PAGE:
		return addressLoc(uint16(operands[0])), nil
	case ZERO_PAGE_X:
		return addressLoc(uint16(operands[0] + r.X)), nil
	case ZERO_PAGE_Y:
		return addressLoc(uint16(operands[0] + r.Y)), nil
	case ABSOLUTE:
		return addressLoc(le16(operands)), nil
	case ABSOLUTE_X:
		return addressLoc(le16(operands) + uint16(r.X)), nil
	case ABSOLUTE_Y:
		return addressLoc(le16(operands) + uint16(r.Y)), nil
	case INDIRECT:
		addr, err := b.ReadU16(le16(operands))
		if err != nil {
			return Location{}, fmt.Errorf("couldn't read indirect pointer $%04X: %w", le16(operands), err)
		}
		return addressLoc(addr), nil
	case INDIRECT_X:
		zp := operands[0] + r.X
		addr, err := b.ReadZeroPageU16(zp)
		if err != nil {
			return Location{}, fmt.Errorf("couldn't read zero page pointer $%02X: %w", zp, err)
		}
		return addressLoc(addr), nil
	case INDIRECT_Y:
		addr, err := b.ReadZeroPageU16(operands[0])
		if err != nil {
			return Location{}, fmt.Errorf("couldn't read zero page pointer $%02X: %w", operands[0], err)
		}
		return addressLoc(addr + uint16(r.Y)), nil
	}

	return Location{}, fmt.Errorf("%w: unknown mode %s", ErrInvalidAddressing, mode)
}

// resolveAddress is Resolve for callers that can only work with a
// memory address.
func resolveAddress(mode Mode, operands []uint8, r *Registers, b Bus) (uint16, error) {
	loc, err := Resolve(mode, operands, r, b)
	if err != nil {
		return 0, err
	}
	if loc.Kind != LOC_ADDRESS {
		return 0, fmt.Errorf("%w: %s doesn't resolve to an address", ErrInvalidAddressing, mode)
	}
	return loc.Addr, nil
}

// InputByte returns the plain byte value an instruction operates on.
// Immediate mode yields the operand itself and memory modes read the
// bus. Implicit, Accumulator and Relative can't supply a byte.
func InputByte(mode Mode, operands []uint8, r *Registers, b Bus) (uint8, error) {
	switch mode {
	case IMPLICIT, ACCUMULATOR, RELATIVE:
		return 0, fmt.Errorf("%w: %s can't supply an input byte", ErrInvalidAddressing, mode)
	case IMMEDIATE:
		if err := checkOperands(mode, operands); err != nil {
			return 0, err
		}
		return operands[0], nil
	}

	addr, err := resolveAddress(mode, operands, r, b)
	if err != nil {
		return 0, err
	}

	v, err := b.Read(addr)
	if err != nil {
		return 0, fmt.Errorf("couldn't read operand at $%04X: %w", addr, err)
	}
	return v, nil
}

// le16 returns the little endian word in the first two bytes of b.
func le16(b []uint8) uint16 {
	return uint16(b[1])<<8 | uint16(b[0])
}
