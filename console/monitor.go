// Package console is an interactive machine monitor for a mos6502.CPU:
// breakpoints, single stepping, interruptible runs and memory
// inspection.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/bdwalton/sim6502/mos6502"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const PROMPT = "> "

// STACK_PAGE is where the 6502 keeps its stack.
const STACK_PAGE = 0x0100

type lineReader interface {
	ReadLine() (string, error)
}

// promptReader is the lineReader used when input isn't a terminal.
type promptReader struct {
	s *bufio.Scanner
	w io.Writer
}

func (r *promptReader) ReadLine() (string, error) {
	fmt.Fprint(r.w, PROMPT)
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type Monitor struct {
	cpu      *mos6502.CPU
	bus      mos6502.Bus
	breaks   map[uint16]struct{}
	maxSteps uint64
	log      logrus.FieldLogger
	out      io.Writer
	// suspend hands the terminal back to cooked mode for the length of
	// a run so SIGINT reaches us; it returns the function undoing that.
	suspend func() func()
}

// New returns a monitor driving cpu, which must be attached to b.
// maxSteps bounds each r command; 0 means unbounded.
func New(cpu *mos6502.CPU, b mos6502.Bus, maxSteps uint64, l logrus.FieldLogger) *Monitor {
	return &Monitor{
		cpu:      cpu,
		bus:      b,
		breaks:   make(map[uint16]struct{}),
		maxSteps: maxSteps,
		log:      l,
	}
}

// BIOS runs the monitor on in and out until q or end of input. When in
// is a terminal it is put in raw mode for line editing and history.
func (m *Monitor) BIOS(ctx context.Context, in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return m.Serve(ctx, in, out)
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("couldn't set raw mode: %w", err)
	}
	defer term.Restore(fd, old)

	m.suspend = func() func() {
		if err := term.Restore(fd, old); err != nil {
			m.log.WithError(err).Warn("couldn't restore terminal")
		}
		return func() {
			if _, err := term.MakeRaw(fd); err != nil {
				m.log.WithError(err).Warn("couldn't set raw mode")
			}
		}
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, PROMPT)
	return m.loop(ctx, t, t)
}

// Serve runs the monitor reading commands line by line from r.
func (m *Monitor) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	return m.loop(ctx, &promptReader{s: bufio.NewScanner(r), w: w}, w)
}

func (m *Monitor) loop(ctx context.Context, lr lineReader, w io.Writer) error {
	m.out = w
	m.printf("%s\n", m.cpu)

	for {
		line, err := lr.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("couldn't read command: %w", err)
		}

		cmd := parseCommand(line)
		if cmd.name == "" {
			continue
		}
		if cmd.name == "q" {
			return nil
		}
		if err := m.exec(ctx, cmd); err != nil {
			m.printf("error: %v\n", err)
		}
	}
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Monitor) exec(ctx context.Context, cmd command) error {
	switch cmd.name {
	case "h", "?":
		m.printf("%s", help)
	case "b":
		if len(cmd.args) == 0 {
			m.listBreaks()
			return nil
		}
		addr, err := ParseAddress(cmd.args[0])
		if err != nil {
			return err
		}
		m.breaks[addr] = struct{}{}
		m.log.WithField("addr", fmt.Sprintf("%04x", addr)).Debug("breakpoint set")
	case "c":
		m.breaks = make(map[uint16]struct{})
	case "r":
		return m.run(ctx)
	case "s":
		n := 1
		if len(cmd.args) > 0 {
			var err error
			if n, err = parseCount(cmd.args[0]); err != nil {
				return err
			}
		}
		return m.step(n)
	case "e":
		m.cpu.Reset()
		m.printf("%s\n", m.cpu)
	case "m":
		return m.memory(cmd.args)
	case "i":
		m.instruction()
	case "p":
		if len(cmd.args) != 1 {
			return fmt.Errorf("usage: p addr")
		}
		addr, err := ParseAddress(cmd.args[0])
		if err != nil {
			return err
		}
		r := m.cpu.Registers()
		r.PC = addr
		m.cpu.SetRegisters(r)
		m.printf("%s\n", m.cpu)
	case "t":
		m.stack()
	case "x":
		m.printf("%s\n", m.cpu)
	case "d":
		if len(cmd.args) != 1 {
			return fmt.Errorf("usage: d file")
		}
		return m.snapshot(cmd.args[0])
	default:
		return fmt.Errorf("unknown command %q, h for help", cmd.name)
	}

	return nil
}

func (m *Monitor) listBreaks() {
	addrs := make([]int, 0, len(m.breaks))
	for a := range m.breaks {
		addrs = append(addrs, int(a))
	}
	sort.Ints(addrs)
	for _, a := range addrs {
		m.printf("0x%04x\n", a)
	}
}

func (m *Monitor) run(ctx context.Context) error {
	if m.suspend != nil {
		resume := m.suspend()
		defer resume()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reason, steps, err := Run(ctx, m.cpu, m.breaks, m.maxSteps)
	m.log.WithFields(logrus.Fields{"reason": reason.String(), "steps": steps}).Info("run stopped")
	m.printf("%s after %d instructions\n%s\n", reason, steps, m.cpu)
	return err
}

func (m *Monitor) step(n int) error {
	for i := 0; i < n && !m.cpu.Halted(); i++ {
		m.instruction()
		if err := m.cpu.Step(); err != nil {
			return err
		}
	}
	m.printf("%s\n", m.cpu)
	return nil
}

// instruction prints the bytes of the instruction at PC and its
// disassembly.
func (m *Monitor) instruction() {
	pc := m.cpu.Registers().PC
	op, err := m.bus.Read(pc)
	if err != nil {
		m.printf("0x%04x: %v\n", pc, err)
		return
	}
	inst, err := mos6502.Decode(op)
	if err != nil {
		m.printf("0x%04x: 0x%02x ???\n", pc, op)
		return
	}

	operands, err := m.bus.ReadN(pc+1, uint16(inst.Len()-1))
	if err != nil {
		m.printf("0x%04x: 0x%02x %v\n", pc, op, err)
		return
	}

	m.printf("0x%04x: 0x%02x ", pc, op)
	for i, v := range operands {
		m.printf("0x%04x: 0x%02x ", pc+uint16(i)+1, v)
	}
	m.printf(" %s\n", inst.Disassemble(operands))
}

// memory dumps lo through hi, five bytes to a line.
func (m *Monitor) memory(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: m lo [hi]")
	}
	low, err := ParseAddress(args[0])
	if err != nil {
		return err
	}
	high := low
	if len(args) == 2 {
		if high, err = ParseAddress(args[1]); err != nil {
			return err
		}
	}
	if high < low {
		return fmt.Errorf("high address 0x%04x is below low address 0x%04x", high, low)
	}

	x := 1
	for i := int(low); i <= int(high); i++ {
		if v, err := m.bus.Read(uint16(i)); err != nil {
			m.printf("0x%04x: ---- ", i)
		} else {
			m.printf("0x%04x: 0x%02x ", i, v)
		}
		if x%5 == 0 {
			m.printf("\n")
		}
		x++
	}
	if (x-1)%5 != 0 {
		m.printf("\n")
	}
	return nil
}

// stack shows up to the last 3 items pushed.
func (m *Monitor) stack() {
	s := m.cpu.Registers().S
	if s == mos6502.STACK_EMPTY {
		m.printf("stack empty\n")
		return
	}
	for i := 1; i <= 3 && int(s)+i <= 0xFF; i++ {
		addr := uint16(STACK_PAGE + int(s) + i)
		if v, err := m.bus.Read(addr); err != nil {
			m.printf("0x%04x: ---- ", addr)
		} else {
			m.printf("0x%04x: 0x%02x ", addr, v)
		}
	}
	m.printf("\n")
}

func (m *Monitor) snapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't create snapshot: %w", err)
	}
	if err := WriteSnapshot(f, m.bus, m.cpu.Registers().PC); err != nil {
		f.Close()
		return fmt.Errorf("couldn't write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	m.printf("wrote %s\n", path)
	return nil
}
