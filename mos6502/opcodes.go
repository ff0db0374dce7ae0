package mos6502

import (
	"fmt"
)

// Mode identifies how an instruction's operand bytes map to its input.
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
type Mode uint8

const (
	IMPLICIT Mode = iota
	ACCUMULATOR
	IMMEDIATE
	RELATIVE
	ZERO_PAGE
	ZERO_PAGE_X
	ZERO_PAGE_Y
	ABSOLUTE
	ABSOLUTE_X
	ABSOLUTE_Y
	INDIRECT
	INDIRECT_X // Indexed Indirect
	INDIRECT_Y // Indirect Indexed
)

var modenames = [...]string{
	IMPLICIT:    "IMPLICIT",
	ACCUMULATOR: "ACCUMULATOR",
	IMMEDIATE:   "IMMEDIATE",
	RELATIVE:    "RELATIVE",
	ZERO_PAGE:   "ZERO_PAGE",
	ZERO_PAGE_X: "ZERO_PAGE_X",
	ZERO_PAGE_Y: "ZERO_PAGE_Y",
	ABSOLUTE:    "ABSOLUTE",
	ABSOLUTE_X:  "ABSOLUTE_X",
	ABSOLUTE_Y:  "ABSOLUTE_Y",
	INDIRECT:    "INDIRECT",
	INDIRECT_X:  "INDIRECT_X",
	INDIRECT_Y:  "INDIRECT_Y",
}

func (m Mode) String() string {
	if int(m) < len(modenames) {
		return modenames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// operandBytes is the number of bytes following the opcode that the
// mode consumes.
func (m Mode) operandBytes() int {
	switch m {
	case IMPLICIT, ACCUMULATOR:
		return 0
	case ABSOLUTE, ABSOLUTE_X, ABSOLUTE_Y, INDIRECT:
		return 2
	}
	return 1
}

// Operation is the instruction being executed, independent of the
// addressing mode it is encoded with.
// https://www.nesdev.org/obelisk-6502-guide/instructions.html
// https://www.nesdev.org/obelisk-6502-guide/reference.html
type Operation uint8

const (
	ADC Operation = iota // ADD with Carry
	AND                  // Logical AND
	ASL                  // Arithmetic Shift Left
	BCC                  // Branch if Carry Clear
	BCS                  // Branch if Carry Set
	BEQ                  // Branch if Equal
	BIT                  // Bit Test
	BMI                  // Branch if Minus
	BNE                  // Branch if Not Equal
	BPL                  // Branch if Positive
	BRK                  // Force Interrupt
	BVC                  // Branch if Overflow Clear
	BVS                  // Branch if Overflow Set
	CLC                  // Clear Carry Flag
	CLD                  // Clear Decimal Mode
	CLI                  // Clear Interrupt Disable
	CLV                  // Clear Overflow Flag
	CMP                  // Compare
	CPX                  // Compare X Register
	CPY                  // Compare Y Register
	DEC                  // Decrement Memory
	DEX                  // Decrement X Register
	DEY                  // Decrement Y Register
	EOR                  // Exclusive OR
	INC                  // Increment Memory
	INX                  // Increment X Register
	INY                  // Increment Y Register
	JMP                  // Jump
	JSR                  // Jump to Subroutine
	LDA                  // Load Accumulator
	LDX                  // Load X Register
	LDY                  // Load Y Register
	LSR                  // Logical Shift Right
	NOP                  // No Operation
	ORA                  // Logical Inclusive OR
	PHA                  // Push Accumulator
	PHP                  // Push Processor Status
	PLA                  // Pull Accumulator
	PLP                  // Pull Processor Status
	ROL                  // Rotate Left
	ROR                  // Rotate Right
	RTI                  // Return from Interrupt
	RTS                  // Return from Subroutine
	SBC                  // Subtract With Carry
	SEC                  // Set Carry Flag
	SED                  // Set Decimal Flag
	SEI                  // Set Interrupt Disable
	STA                  // Store Accumulator
	STX                  // Store X Register
	STY                  // Store Y Register
	TAX                  // Transfer Accumulator to X
	TAY                  // Transfer Accumulator to Y
	TSX                  // Transfer Stack Pointer to X
	TXA                  // Transfer X to Accumulator
	TXS                  // Transfer X to Stack Pointer
	TYA                  // Transfer Y to Accumulator
)

var opnames = [...]string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

func (o Operation) String() string {
	if int(o) < len(opnames) {
		return opnames[o]
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

// Instruction is the decoded form of a single opcode. It is immutable
// once returned from Decode.
type Instruction struct {
	opcode uint8
	op     Operation
	mode   Mode
	length uint8 // Total encoded length, including the opcode byte
	cycles uint8 // Base cycle count, without page crossing penalties
}

func (i Instruction) Opcode() uint8 { return i.opcode }
func (i Instruction) Op() Operation { return i.op }
func (i Instruction) Mode() Mode { return i.mode }
func (i Instruction) Len() uint8 { return i.length }
func (i Instruction) Cycles() uint8 { return i.cycles }
func (i Instruction) String() string { return fmt.Sprintf("{%s, %s}", i.op, i.mode) }

// Disassemble renders the instruction in assembler syntax using the
// supplied operand bytes.
func (i Instruction) Disassemble(operands []uint8) string {
	if len(operands) < i.mode.operandBytes() {
		return fmt.Sprintf("%s ???", i.op)
	}

	var abs uint16
	if i.mode.operandBytes() == 2 {
		abs = uint16(operands[1])<<8 | uint16(operands[0])
	}

	switch i.mode {
	case IMPLICIT:
		return i.op.String()
	case ACCUMULATOR:
		return fmt.Sprintf("%s A", i.op)
	case IMMEDIATE:
		return fmt.Sprintf("%s #$%02X", i.op, operands[0])
	case RELATIVE, ZERO_PAGE:
		return fmt.Sprintf("%s $%02X", i.op, operands[0])
	case ZERO_PAGE_X:
		return fmt.Sprintf("%s $%02X,X", i.op, operands[0])
	case ZERO_PAGE_Y:
		return fmt.Sprintf("%s $%02X,Y", i.op, operands[0])
	case ABSOLUTE:
		return fmt.Sprintf("%s $%04X", i.op, abs)
	case ABSOLUTE_X:
		return fmt.Sprintf("%s $%04X,X", i.op, abs)
	case ABSOLUTE_Y:
		return fmt.Sprintf("%s $%04X,Y", i.op, abs)
	case INDIRECT:
		return fmt.Sprintf("%s ($%04X)", i.op, abs)
	case INDIRECT_X:
		return fmt.Sprintf("%s ($%02X,X)", i.op, operands[0])
	case INDIRECT_Y:
		return fmt.Sprintf("%s ($%02X),Y", i.op, operands[0])
	}

	return i.String()
}

// Decode returns the Instruction for opcode, or an error wrapping
// ErrUnknownOpcode if the opcode isn't part of the documented
// instruction set.
func Decode(opcode uint8) (Instruction, error) {
	o, ok := opcodes[opcode]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, opcode)
	}

	return Instruction{opcode: opcode, op: o.inst, mode: o.mode, length: o.bytes, cycles: o.cycles}, nil
}

type opcode struct {
	inst   Operation // The instruction id
	mode   Mode      // The memory addressing mode to use
	bytes  uint8     // The number of bytes the encoded instruction occupies
	cycles uint8     // The number of cycles consumed by the instruction
}

var opcodes = map[uint8]opcode{
	0x69: {ADC, IMMEDIATE, 2, 2},
	0x65: {ADC, ZERO_PAGE, 2, 3},
	0x75: {ADC, ZERO_PAGE_X, 2, 4},
	0x6D: {ADC, ABSOLUTE, 3, 4},
	0x7D: {ADC, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0x79: {ADC, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0x61: {ADC, INDIRECT_X, 2, 6},
	0x71: {ADC, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0x29: {AND, IMMEDIATE, 2, 2},
	0x25: {AND, ZERO_PAGE, 2, 3},
	0x35: {AND, ZERO_PAGE_X, 2, 4},
	0x2D: {AND, ABSOLUTE, 3, 4},
	0x3D: {AND, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0x39: {AND, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0x21: {AND, INDIRECT_X, 2, 6},
	0x31: {AND, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0x0A: {ASL, ACCUMULATOR, 1, 2},
	0x06: {ASL, ZERO_PAGE, 2, 5},
	0x16: {ASL, ZERO_PAGE_X, 2, 6},
	0x0E: {ASL, ABSOLUTE, 3, 6},
	0x1E: {ASL, ABSOLUTE_X, 3, 7},
	0x90: {BCC, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0xB0: {BCS, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0xF0: {BEQ, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0x24: {BIT, ZERO_PAGE, 2, 3},
	0x2C: {BIT, ABSOLUTE, 3, 4},
	0x30: {BMI, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0xD0: {BNE, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0x10: {BPL, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0x00: {BRK, IMPLICIT, 1, 7},
	0x50: {BVC, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0x70: {BVS, RELATIVE, 2, 2 /* +1 if branch succeeds +2 if to a new page */},
	0x18: {CLC, IMPLICIT, 1, 2},
	0xD8: {CLD, IMPLICIT, 1, 2},
	0x58: {CLI, IMPLICIT, 1, 2},
	0xB8: {CLV, IMPLICIT, 1, 2},
	0xC9: {CMP, IMMEDIATE, 2, 2},
	0xC5: {CMP, ZERO_PAGE, 2, 3},
	0xD5: {CMP, ZERO_PAGE_X, 2, 4},
	0xCD: {CMP, ABSOLUTE, 3, 4},
	0xDD: {CMP, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0xD9: {CMP, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0xC1: {CMP, INDIRECT_X, 2, 6},
	0xD1: {CMP, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0xE0: {CPX, IMMEDIATE, 2, 2},
	0xE4: {CPX, ZERO_PAGE, 2, 3},
	0xEC: {CPX, ABSOLUTE, 3, 4},
	0xC0: {CPY, IMMEDIATE, 2, 2},
	0xC4: {CPY, ZERO_PAGE, 2, 3},
	0xCC: {CPY, ABSOLUTE, 3, 4},
	0xC6: {DEC, ZERO_PAGE, 2, 5},
	0xD6: {DEC, ZERO_PAGE_X, 2, 6},
	0xCE: {DEC, ABSOLUTE, 3, 6},
	0xDE: {DEC, ABSOLUTE_X, 3, 7},
	0xCA: {DEX, IMPLICIT, 1, 2},
	0x88: {DEY, IMPLICIT, 1, 2},
	0x49: {EOR, IMMEDIATE, 2, 2},
	0x45: {EOR, ZERO_PAGE, 2, 3},
	0x55: {EOR, ZERO_PAGE_X, 2, 4},
	0x4D: {EOR, ABSOLUTE, 3, 4},
	0x5D: {EOR, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0x59: {EOR, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0x41: {EOR, INDIRECT_X, 2, 6},
	0x51: {EOR, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0xE6: {INC, ZERO_PAGE, 2, 5},
	0xF6: {INC, ZERO_PAGE_X, 2, 6},
	0xEE: {INC, ABSOLUTE, 3, 6},
	0xFE: {INC, ABSOLUTE_X, 3, 7},
	0xE8: {INX, IMPLICIT, 1, 2},
	0xC8: {INY, IMPLICIT, 1, 2},
	0x4C: {JMP, ABSOLUTE, 3, 3},
	0x6C: {JMP, INDIRECT, 3, 5},
	0x20: {JSR, ABSOLUTE, 3, 6},
	0xA9: {LDA, IMMEDIATE, 2, 2},
	0xA5: {LDA, ZERO_PAGE, 2, 3},
	0xB5: {LDA, ZERO_PAGE_X, 2, 4},
	0xAD: {LDA, ABSOLUTE, 3, 4},
	0xBD: {LDA, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0xB9: {LDA, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0xA1: {LDA, INDIRECT_X, 2, 6},
	0xB1: {LDA, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0xA2: {LDX, IMMEDIATE, 2, 2},
	0xA6: {LDX, ZERO_PAGE, 2, 3},
	0xB6: {LDX, ZERO_PAGE_Y, 2, 4},
	0xAE: {LDX, ABSOLUTE, 3, 4},
	0xBE: {LDX, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0xA0: {LDY, IMMEDIATE, 2, 2},
	0xA4: {LDY, ZERO_PAGE, 2, 3},
	0xB4: {LDY, ZERO_PAGE_X, 2, 4},
	0xAC: {LDY, ABSOLUTE, 3, 4},
	0xBC: {LDY, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0x4A: {LSR, ACCUMULATOR, 1, 2},
	0x46: {LSR, ZERO_PAGE, 2, 5},
	0x56: {LSR, ZERO_PAGE_X, 2, 6},
	0x4E: {LSR, ABSOLUTE, 3, 6},
	0x5E: {LSR, ABSOLUTE_X, 3, 7},
	0xEA: {NOP, IMPLICIT, 1, 2},
	0x09: {ORA, IMMEDIATE, 2, 2},
	0x05: {ORA, ZERO_PAGE, 2, 3},
	0x15: {ORA, ZERO_PAGE_X, 2, 4},
	0x0D: {ORA, ABSOLUTE, 3, 4},
	0x1D: {ORA, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0x19: {ORA, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0x01: {ORA, INDIRECT_X, 2, 6},
	0x11: {ORA, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0x48: {PHA, IMPLICIT, 1, 3},
	0x08: {PHP, IMPLICIT, 1, 3},
	0x68: {PLA, IMPLICIT, 1, 4},
	0x28: {PLP, IMPLICIT, 1, 4},
	0x2A: {ROL, ACCUMULATOR, 1, 2},
	0x26: {ROL, ZERO_PAGE, 2, 5},
	0x36: {ROL, ZERO_PAGE_X, 2, 6},
	0x2E: {ROL, ABSOLUTE, 3, 6},
	0x3E: {ROL, ABSOLUTE_X, 3, 7},
	0x6A: {ROR, ACCUMULATOR, 1, 2},
	0x66: {ROR, ZERO_PAGE, 2, 5},
	0x76: {ROR, ZERO_PAGE_X, 2, 6},
	0x6E: {ROR, ABSOLUTE, 3, 6},
	0x7E: {ROR, ABSOLUTE_X, 3, 7},
	0x40: {RTI, IMPLICIT, 1, 6},
	0x60: {RTS, IMPLICIT, 1, 6},
	0xE9: {SBC, IMMEDIATE, 2, 2},
	0xE5: {SBC, ZERO_PAGE, 2, 3},
	0xF5: {SBC, ZERO_PAGE_X, 2, 4},
	0xED: {SBC, ABSOLUTE, 3, 4},
	0xFD: {SBC, ABSOLUTE_X, 3, 4 /* +1 if page crossed */},
	0xF9: {SBC, ABSOLUTE_Y, 3, 4 /* +1 if page crossed */},
	0xE1: {SBC, INDIRECT_X, 2, 6},
	0xF1: {SBC, INDIRECT_Y, 2, 5 /* +1 if page crossed */},
	0x38: {SEC, IMPLICIT, 1, 2},
	0xF8: {SED, IMPLICIT, 1, 2},
	0x78: {SEI, IMPLICIT, 1, 2},
	0x85: {STA, ZERO_PAGE, 2, 3},
	0x95: {STA, ZERO_PAGE_X, 2, 4},
	0x8D: {STA, ABSOLUTE, 3, 4},
	0x9D: {STA, ABSOLUTE_X, 3, 5},
	0x99: {STA, ABSOLUTE_Y, 3, 5},
	0x81: {STA, INDIRECT_X, 2, 6},
	0x91: {STA, INDIRECT_Y, 2, 6},
	0x86: {STX, ZERO_PAGE, 2, 3},
	0x96: {STX, ZERO_PAGE_Y, 2, 4},
	0x8E: {STX, ABSOLUTE, 3, 4},
	0x84: {STY, ZERO_PAGE, 2, 3},
	0x94: {STY, ZERO_PAGE_X, 2, 4},
	0x8C: {STY, ABSOLUTE, 3, 4},
	0xAA: {TAX, IMPLICIT, 1, 2},
	0xA8: {TAY, IMPLICIT, 1, 2},
	0xBA: {TSX, IMPLICIT, 1, 2},
	0x8A: {TXA, IMPLICIT, 1, 2},
	0x9A: {TXS, IMPLICIT, 1, 2},
	0x98: {TYA, IMPLICIT, 1, 2},
}
