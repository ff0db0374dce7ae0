// Package viewer shows a running mos6502.CPU in a window: registers,
// flags and the next instruction, stepped or run from the keyboard.
package viewer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bdwalton/sim6502/mos6502"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

const (
	SCREEN_WIDTH  = 320
	SCREEN_HEIGHT = 240
	SCALE         = 2
)

type binding struct {
	key    ebiten.Key
	label  string
	action func(v *Viewer) error
}

var bindings = []binding{
	{ebiten.KeyS, "S step", func(v *Viewer) error { v.step(1); return nil }},
	{ebiten.KeyR, "R run/pause", func(v *Viewer) error { v.running = !v.running; return nil }},
	{ebiten.KeyE, "E reset", func(v *Viewer) error { v.reset(); return nil }},
	{ebiten.KeyEscape, "Esc quit", func(v *Viewer) error { return ebiten.Termination }},
}

// Viewer implements ebiten.Game.
type Viewer struct {
	cpu           *mos6502.CPU
	bus           mos6502.Bus
	running       bool
	stepsPerFrame int
	err           error // last step failure; cleared by reset
	log           logrus.FieldLogger
}

// New returns a paused viewer for cpu, attached to b. While running it
// executes stepsPerFrame instructions per tick.
func New(cpu *mos6502.CPU, b mos6502.Bus, stepsPerFrame int, l logrus.FieldLogger) *Viewer {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	return &Viewer{cpu: cpu, bus: b, stepsPerFrame: stepsPerFrame, log: l}
}

func (v *Viewer) handle(k ebiten.Key) error {
	for _, b := range bindings {
		if b.key == k {
			return b.action(v)
		}
	}
	return nil
}

func (v *Viewer) Update() error {
	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			if err := b.action(v); err != nil {
				return err
			}
		}
	}

	if v.running {
		v.step(v.stepsPerFrame)
	}
	return nil
}

func (v *Viewer) step(n int) {
	for i := 0; i < n && !v.cpu.Halted() && v.err == nil; i++ {
		if err := v.cpu.Step(); err != nil {
			v.err = err
			v.log.WithError(err).Error("step failed")
		}
	}
	if v.cpu.Halted() || v.err != nil {
		v.running = false
	}
}

func (v *Viewer) reset() {
	v.cpu.Reset()
	v.err = nil
	v.running = false
}

// next disassembles the instruction at PC.
func (v *Viewer) next() string {
	pc := v.cpu.Registers().PC
	op, err := v.bus.Read(pc)
	if err != nil {
		return "????"
	}
	inst, err := mos6502.Decode(op)
	if err != nil {
		return fmt.Sprintf(".byte $%02X", op)
	}
	operands, err := v.bus.ReadN(pc+1, uint16(inst.Len()-1))
	if err != nil {
		return inst.Op().String() + " ???"
	}
	return inst.Disassemble(operands)
}

// Text is everything drawn on screen.
func (v *Viewer) Text() string {
	r := v.cpu.Registers()

	var sb strings.Builder
	fmt.Fprintf(&sb, "A:%02X X:%02X Y:%02X S:%02X\n", r.A, r.X, r.Y, r.S)
	fmt.Fprintf(&sb, "PC:%04X  P:%02X\n", r.PC, uint8(r.P))
	fmt.Fprintf(&sb, "NVBBDIZC\n%s\n\n", r.P)
	fmt.Fprintf(&sb, "next:   %s\n", v.next())
	state := v.cpu.State().String()
	if v.running {
		state += " (free running)"
	}
	fmt.Fprintf(&sb, "state:  %s\n", state)
	fmt.Fprintf(&sb, "cycles: %d\n", v.cpu.Cycles())
	if v.err != nil {
		fmt.Fprintf(&sb, "\nerror: %v\n", v.err)
	}

	labels := make([]string, len(bindings))
	for i, b := range bindings {
		labels[i] = b.label
	}
	fmt.Fprintf(&sb, "\n%s\n", strings.Join(labels, "  "))
	return sb.String()
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, v.Text())
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return SCREEN_WIDTH, SCREEN_HEIGHT
}

// Run opens the window and blocks until it is closed or Esc is
// pressed.
func Run(v *Viewer, title string) error {
	ebiten.SetWindowSize(SCREEN_WIDTH*SCALE, SCREEN_HEIGHT*SCALE)
	ebiten.SetWindowTitle(title)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
