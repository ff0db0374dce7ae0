// Package mos6502 implements the MOS Technologies 6502 instruction set:
// decoding, operand addressing and execution against a Bus.
package mos6502

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Interrupt vector locations. Each holds a little endian address.
const (
	NMI_VECTOR   = 0xFFFA
	RESET_VECTOR = 0xFFFC
	IRQ_VECTOR   = 0xFFFE
)

// DEFAULT_HALT_BOUNDARY stops the fetch loop before it would run into
// the vector table. Real hardware has no such limit; it exists so a
// simulation of straight-line code terminates.
const DEFAULT_HALT_BOUNDARY = NMI_VECTOR

var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrInvalidAddressing = errors.New("invalid addressing")
	ErrNotImplemented    = errors.New("operation not implemented")
)

// Bus is the memory the processor is attached to. Every access may
// fail; failures are returned to the caller untouched.
type Bus interface {
	Read(addr uint16) (uint8, error)
	// ReadN reads n consecutive bytes starting at addr.
	ReadN(addr uint16, n uint16) ([]uint8, error)
	// ReadU16 reads the little endian word at addr.
	ReadU16(addr uint16) (uint16, error)
	// ReadZeroPageU16 reads the little endian word at zp, taking the
	// high byte from zp+1 wrapped within page zero.
	ReadZeroPageU16(zp uint8) (uint16, error)
	Write(addr uint16, val uint8) error
}

type Vectors struct {
	NMI, Reset, IRQ uint16
}

type State uint8

const (
	RUNNING State = iota
	HALTED
)

func (s State) String() string {
	if s == HALTED {
		return "HALTED"
	}
	return "RUNNING"
}

// CPU drives the fetch, decode, execute loop. It isn't safe for
// concurrent use.
type CPU struct {
	bus     Bus
	regs    Registers
	vectors Vectors // read once in New
	state   State
	haltAt  uint16
	cycles  uint64 // sum of base cycles executed
	log     logrus.FieldLogger
}

type Option func(*CPU)

// WithHaltBoundary moves the address at which the fetch loop halts.
func WithHaltBoundary(addr uint16) Option {
	return func(c *CPU) {
		c.haltAt = addr
	}
}

// WithLogger enables step tracing (Debug) and halt reporting (Info).
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *CPU) {
		c.log = l
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New returns a CPU attached to b, with the vectors read from b and the
// program counter at the reset vector.
func New(b Bus, opts ...Option) (*CPU, error) {
	c := &CPU{bus: b, haltAt: DEFAULT_HALT_BOUNDARY, log: discardLogger()}
	for _, o := range opts {
		o(c)
	}

	var err error
	for _, v := range []struct {
		addr uint16
		dst  *uint16
	}{
		{NMI_VECTOR, &c.vectors.NMI},
		{RESET_VECTOR, &c.vectors.Reset},
		{IRQ_VECTOR, &c.vectors.IRQ},
	} {
		if *v.dst, err = b.ReadU16(v.addr); err != nil {
			return nil, fmt.Errorf("couldn't read vector at 0x%04x: %w", v.addr, err)
		}
	}

	c.Reset()
	return c, nil
}

// Reset returns the registers to their power-on state with PC at the
// reset vector read during New, and resumes running.
func (c *CPU) Reset() {
	c.regs = newRegisters(c.vectors.Reset)
	c.state = RUNNING
}

func (c *CPU) Registers() Registers {
	return c.regs
}

func (c *CPU) SetRegisters(r Registers) {
	c.regs = r
}

func (c *CPU) Vectors() Vectors {
	return c.vectors
}

func (c *CPU) State() State {
	return c.state
}

func (c *CPU) Halted() bool {
	return c.state == HALTED
}

func (c *CPU) Cycles() uint64 {
	return c.cycles
}

func (c *CPU) HaltBoundary() uint16 {
	return c.haltAt
}

func (c *CPU) String() string {
	return fmt.Sprintf("%s %s cycles:%d", c.regs, c.state, c.cycles)
}

// Step executes the instruction at PC. Once the next instruction would
// extend to the halt boundary the CPU moves to HALTED instead, and
// every later Step returns nil without touching the bus.
func (c *CPU) Step() error {
	if c.state == HALTED {
		return nil
	}

	pc := c.regs.PC
	op, err := c.bus.Read(pc)
	if err != nil {
		return fmt.Errorf("couldn't fetch opcode at 0x%04x: %w", pc, err)
	}

	inst, err := Decode(op)
	if err != nil {
		return fmt.Errorf("pc 0x%04x: %w", pc, err)
	}

	if uint32(pc)+uint32(inst.Len()) >= uint32(c.haltAt) {
		c.state = HALTED
		c.log.WithFields(logrus.Fields{"pc": fmt.Sprintf("%04x", pc), "boundary": fmt.Sprintf("%04x", c.haltAt)}).Info("halted")
		return nil
	}

	// account for the opcode
	c.regs.PC++
	operands, err := c.bus.ReadN(c.regs.PC, uint16(inst.Len()-1))
	if err != nil {
		return fmt.Errorf("couldn't fetch operands at 0x%04x: %w", c.regs.PC, err)
	}

	c.log.WithFields(logrus.Fields{
		"pc":     fmt.Sprintf("%04x", pc),
		"opcode": fmt.Sprintf("%02x", op),
		"inst":   inst.Disassemble(operands),
		"a":      fmt.Sprintf("%02x", c.regs.A),
		"x":      fmt.Sprintf("%02x", c.regs.X),
		"y":      fmt.Sprintf("%02x", c.regs.Y),
		"p":      c.regs.P.String(),
		"s":      fmt.Sprintf("%02x", c.regs.S),
	}).Debug("step")

	if err := Execute(inst, operands, &c.regs, c.bus); err != nil {
		return fmt.Errorf("pc 0x%04x (%s): %w", pc, inst.Disassemble(operands), err)
	}

	c.cycles += uint64(inst.Cycles())
	return nil
}

// Run steps until the CPU halts or an instruction fails. Programs that
// never reach the halt boundary never return.
func (c *CPU) Run() error {
	for c.state == RUNNING {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
