package mos6502

import (
	"fmt"
)

// Registers holds all of the machine state the execution engine
// mutates.
type Registers struct {
	A  uint8  // main register
	X  uint8  // index register
	Y  uint8  // index register
	S  uint8  // stack pointer - stack is 0x0100-0x01FF so only 8 bits needed
	P  Status // processor status flags
	PC uint16 // the program counter
}

// Power-on stack pointer; the stack grows down from the top of page 1.
const STACK_EMPTY = 0xFF

func newRegisters(pc uint16) Registers {
	return Registers{S: STACK_EMPTY, PC: pc}
}

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X S:%02X P:%02X [%s] PC:%04X", r.A, r.X, r.Y, r.S, uint8(r.P), r.P, r.PC)
}
