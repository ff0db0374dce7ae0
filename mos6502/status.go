package mos6502

import (
	"strings"
)

// Status is the processor status register (P). Bit positions are
// fixed so the byte can be pushed or compared as-is.
//
// 7  bit  0
// ---- ----
// NVbb DIZC
// |||| ||||
// |||| |||+- Carry
// |||| ||+-- Zero
// |||| |+--- Interrupt Disable
// |||| +---- Decimal
// ||++------ Break (left, right)
// |+-------- Overflow
// +--------- Negative
type Status uint8

const (
	CARRY Status = 1 << iota
	ZERO
	INTERRUPT_DISABLE
	DECIMAL
	BREAK_RIGHT
	BREAK_LEFT
	OVERFLOW
	NEGATIVE
)

// BreakSource says what caused entry into a break, which determines
// the break bits that get recorded.
type BreakSource uint8

const (
	BREAK_INTERNAL    BreakSource = iota // sets both break bits
	BREAK_INSTRUCTION                    // sets the left bit, clears the right
)

// Has reports whether every flag in f is set.
func (s Status) Has(f Status) bool {
	return s&f == f
}

func (s *Status) Set(f Status, on bool) {
	if on {
		*s |= f
	} else {
		*s &^= f
	}
}

func (s *Status) SetBreak(src BreakSource) {
	switch src {
	case BREAK_INTERNAL:
		*s |= BREAK_LEFT | BREAK_RIGHT
	case BREAK_INSTRUCTION:
		*s |= BREAK_LEFT
		*s &^= BREAK_RIGHT
	}
}

func (s *Status) ClearBreak() {
	*s &^= BREAK_LEFT | BREAK_RIGHT
}

// setZN sets ZERO and NEGATIVE from val.
func (s *Status) setZN(val uint8) {
	s.Set(ZERO, val == 0)
	s.Set(NEGATIVE, val&0x80 != 0)
}

func (s Status) carry() uint8 {
	return uint8(s & CARRY)
}

// String renders the flags as NVBBDIZC with '-' for clear bits.
func (s Status) String() string {
	var sb strings.Builder
	for i, c := range "NVBBDIZC" {
		if s&(NEGATIVE>>i) != 0 {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
