package mos6502

import (
	"fmt"
)

// engine binds the register file and bus for the duration of a single
// instruction.
type engine struct {
	r *Registers
	b Bus
}

type opFunc func(e *engine, mode Mode, operands []uint8) error

// handlers maps each operation with modeled semantics to its
// implementation. Stack and interrupt operations (BRK, JSR, RTS, RTI,
// PHA, PHP, PLA, PLP) are deliberately absent.
var handlers = map[Operation]opFunc{
	ADC: (*engine).opADC,
	AND: (*engine).opAND,
	ASL: (*engine).opASL,
	BCC: branchIf(CARRY, false),
	BCS: branchIf(CARRY, true),
	BEQ: branchIf(ZERO, true),
	BIT: (*engine).opBIT,
	BMI: branchIf(NEGATIVE, true),
	BNE: branchIf(ZERO, false),
	BPL: branchIf(NEGATIVE, false),
	BVC: branchIf(OVERFLOW, false),
	BVS: branchIf(OVERFLOW, true),
	CLC: setFlag(CARRY, false),
	CLD: setFlag(DECIMAL, false),
	CLI: setFlag(INTERRUPT_DISABLE, false),
	CLV: setFlag(OVERFLOW, false),
	CMP: (*engine).opCMP,
	CPX: (*engine).opCPX,
	CPY: (*engine).opCPY,
	DEC: (*engine).opDEC,
	DEX: (*engine).opDEX,
	DEY: (*engine).opDEY,
	EOR: (*engine).opEOR,
	INC: (*engine).opINC,
	INX: (*engine).opINX,
	INY: (*engine).opINY,
	JMP: (*engine).opJMP,
	LDA: (*engine).opLDA,
	LDX: (*engine).opLDX,
	LDY: (*engine).opLDY,
	LSR: (*engine).opLSR,
	NOP: (*engine).opNOP,
	ORA: (*engine).opORA,
	ROL: (*engine).opROL,
	ROR: (*engine).opROR,
	SBC: (*engine).opSBC,
	SEC: setFlag(CARRY, true),
	SED: setFlag(DECIMAL, true),
	SEI: setFlag(INTERRUPT_DISABLE, true),
	STA: (*engine).opSTA,
	STX: (*engine).opSTX,
	STY: (*engine).opSTY,
	TAX: (*engine).opTAX,
	TAY: (*engine).opTAY,
	TSX: (*engine).opTSX,
	TXA: (*engine).opTXA,
	TXS: (*engine).opTXS,
	TYA: (*engine).opTYA,
}

// Execute applies inst to r, reading and writing b as the operation
// requires. PC is expected to point just past the opcode byte; it is
// advanced past the operand bytes before the operation runs so jumps
// and branches can overwrite it.
//
// A failure part way through leaves r as it was at the point of
// failure.
func Execute(inst Instruction, operands []uint8, r *Registers, b Bus) error {
	h, ok := handlers[inst.op]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotImplemented, inst.op)
	}

	if inst.length > 1 {
		r.PC += uint16(inst.length - 1)
	}

	e := &engine{r: r, b: b}
	return h(e, inst.mode, operands)
}

func (e *engine) input(mode Mode, operands []uint8) (uint8, error) {
	return InputByte(mode, operands, e.r, e.b)
}

func (e *engine) write(addr uint16, val uint8) error {
	if err := e.b.Write(addr, val); err != nil {
		return fmt.Errorf("couldn't write $%04X: %w", addr, err)
	}
	return nil
}

// load reads the current value at loc.
func (e *engine) load(loc Location) (uint8, error) {
	switch loc.Kind {
	case LOC_ACCUMULATOR:
		return e.r.A, nil
	case LOC_ADDRESS:
		v, err := e.b.Read(loc.Addr)
		if err != nil {
			return 0, fmt.Errorf("couldn't read $%04X: %w", loc.Addr, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: can't read from location %s", ErrInvalidAddressing, loc)
}

// store writes val back to loc.
func (e *engine) store(loc Location, val uint8) error {
	switch loc.Kind {
	case LOC_ACCUMULATOR:
		e.r.A = val
		return nil
	case LOC_ADDRESS:
		return e.write(loc.Addr, val)
	}
	return fmt.Errorf("%w: can't write to location %s", ErrInvalidAddressing, loc)
}

// modify runs a read-modify-write cycle on the operand location.
func (e *engine) modify(mode Mode, operands []uint8, f func(uint8) uint8) error {
	loc, err := Resolve(mode, operands, e.r, e.b)
	if err != nil {
		return err
	}

	v, err := e.load(loc)
	if err != nil {
		return err
	}

	v = f(v)
	e.r.P.setZN(v)
	return e.store(loc, v)
}

// opADC adds the input and carry to the accumulator. Carry is set when
// the wrapped result is below the input, and overflow when bit 7 of
// the accumulator changed. The overflow rule is narrower than the two
// operand sign comparison real silicon uses.
func (e *engine) opADC(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}

	old := e.r.A
	res := old + in + e.r.P.carry()
	e.r.A = res

	e.r.P.Set(CARRY, res < in)
	e.r.P.Set(ZERO, res == 0)
	e.r.P.Set(OVERFLOW, (old^res)&0x80 != 0)
	e.r.P.Set(NEGATIVE, res&0x80 != 0)
	return nil
}

// opSBC subtracts the input and the borrow (inverted carry) from the
// accumulator. Decimal mode is not honoured.
func (e *engine) opSBC(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}

	old := e.r.A
	diff := int(old) - int(in) - int(1-e.r.P.carry())
	res := uint8(diff)
	e.r.A = res

	e.r.P.Set(CARRY, diff >= 0)
	e.r.P.Set(OVERFLOW, (old^in)&(old^res)&0x80 != 0)
	e.r.P.setZN(res)
	return nil
}

func (e *engine) opAND(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	e.r.A &= in
	e.r.P.setZN(e.r.A)
	return nil
}

func (e *engine) opORA(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	e.r.A |= in
	e.r.P.setZN(e.r.A)
	return nil
}

func (e *engine) opEOR(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	e.r.A ^= in
	e.r.P.setZN(e.r.A)
	return nil
}

func (e *engine) opBIT(mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	e.r.P.Set(ZERO, e.r.A&in == 0)
	e.r.P.Set(OVERFLOW, in&0x40 != 0)
	e.r.P.Set(NEGATIVE, in&0x80 != 0)
	return nil
}

func (e *engine) compare(reg uint8, mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	e.r.P.Set(CARRY, reg >= in)
	e.r.P.setZN(reg - in)
	return nil
}

func (e *engine) opCMP(mode Mode, operands []uint8) error { return e.compare(e.r.A, mode, operands) }
func (e *engine) opCPX(mode Mode, operands []uint8) error { return e.compare(e.r.X, mode, operands) }
func (e *engine) opCPY(mode Mode, operands []uint8) error { return e.compare(e.r.Y, mode, operands) }

func (e *engine) opASL(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 {
		e.r.P.Set(CARRY, v&0x80 != 0)
		return v << 1
	})
}

func (e *engine) opLSR(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 {
		e.r.P.Set(CARRY, v&0x01 != 0)
		return v >> 1
	})
}

func (e *engine) opROL(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 {
		c := e.r.P.carry()
		e.r.P.Set(CARRY, v&0x80 != 0)
		return v<<1 | c
	})
}

func (e *engine) opROR(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 {
		c := e.r.P.carry()
		e.r.P.Set(CARRY, v&0x01 != 0)
		return v>>1 | c<<7
	})
}

func (e *engine) opINC(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 { return v + 1 })
}

func (e *engine) opDEC(mode Mode, operands []uint8) error {
	return e.modify(mode, operands, func(v uint8) uint8 { return v - 1 })
}

func (e *engine) opINX(mode Mode, operands []uint8) error {
	e.r.X++
	e.r.P.setZN(e.r.X)
	return nil
}

func (e *engine) opINY(mode Mode, operands []uint8) error {
	e.r.Y++
	e.r.P.setZN(e.r.Y)
	return nil
}

func (e *engine) opDEX(mode Mode, operands []uint8) error {
	e.r.X--
	e.r.P.setZN(e.r.X)
	return nil
}

func (e *engine) opDEY(mode Mode, operands []uint8) error {
	e.r.Y--
	e.r.P.setZN(e.r.Y)
	return nil
}

func (e *engine) load8(dst *uint8, mode Mode, operands []uint8) error {
	in, err := e.input(mode, operands)
	if err != nil {
		return err
	}
	*dst = in
	e.r.P.setZN(in)
	return nil
}

func (e *engine) opLDA(mode Mode, operands []uint8) error { return e.load8(&e.r.A, mode, operands) }
func (e *engine) opLDX(mode Mode, operands []uint8) error { return e.load8(&e.r.X, mode, operands) }
func (e *engine) opLDY(mode Mode, operands []uint8) error { return e.load8(&e.r.Y, mode, operands) }

func (e *engine) store8(val uint8, mode Mode, operands []uint8) error {
	addr, err := resolveAddress(mode, operands, e.r, e.b)
	if err != nil {
		return err
	}
	return e.write(addr, val)
}

func (e *engine) opSTA(mode Mode, operands []uint8) error { return e.store8(e.r.A, mode, operands) }
func (e *engine) opSTX(mode Mode, operands []uint8) error { return e.store8(e.r.X, mode, operands) }
func (e *engine) opSTY(mode Mode, operands []uint8) error { return e.store8(e.r.Y, mode, operands) }

func (e *engine) transfer(dst *uint8, val uint8) error {
	*dst = val
	e.r.P.setZN(val)
	return nil
}

func (e *engine) opTAX(mode Mode, operands []uint8) error { return e.transfer(&e.r.X, e.r.A) }
func (e *engine) opTAY(mode Mode, operands []uint8) error { return e.transfer(&e.r.Y, e.r.A) }
func (e *engine) opTXA(mode Mode, operands []uint8) error { return e.transfer(&e.r.A, e.r.X) }
func (e *engine) opTYA(mode Mode, operands []uint8) error { return e.transfer(&e.r.A, e.r.Y) }
func (e *engine) opTSX(mode Mode, operands []uint8) error { return e.transfer(&e.r.X, e.r.S) }

// opTXS is the one transfer that leaves the flags alone.
func (e *engine) opTXS(mode Mode, operands []uint8) error {
	e.r.S = e.r.X
	return nil
}

func (e *engine) opJMP(mode Mode, operands []uint8) error {
	addr, err := resolveAddress(mode, operands, e.r, e.b)
	if err != nil {
		return err
	}
	e.r.PC = addr
	return nil
}

func (e *engine) opNOP(mode Mode, operands []uint8) error {
	return nil
}

func setFlag(f Status, on bool) opFunc {
	return func(e *engine, mode Mode, operands []uint8) error {
		e.r.P.Set(f, on)
		return nil
	}
}

// branchIf returns a branch that is taken when flag f is in state
// on. The displacement is relative to the following instruction.
func branchIf(f Status, on bool) opFunc {
	return func(e *engine, mode Mode, operands []uint8) error {
		if mode != RELATIVE {
			return fmt.Errorf("%w: branch with %s", ErrInvalidAddressing, mode)
		}
		if err := checkOperands(mode, operands); err != nil {
			return err
		}
		if e.r.P.Has(f) == on {
			e.r.PC += uint16(int8(operands[0]))
		}
		return nil
	}
}
