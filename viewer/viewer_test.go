package viewer

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bdwalton/sim6502/memory"
	"github.com/bdwalton/sim6502/mos6502"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func newTestViewer(t *testing.T, stepsPerFrame int, code ...uint8) *Viewer {
	t.Helper()
	ram := memory.NewRAM()
	ram.Load(0x0600, code)
	ram.Load(0xFFF8, []uint8{0xEA, 0xEA})
	memory.WriteU16(ram, mos6502.RESET_VECTOR, 0x0600)

	cpu, err := mos6502.New(ram)
	if err != nil {
		t.Fatalf("mos6502.New() = %v", err)
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(cpu, ram, stepsPerFrame, l)
}

func TestKeys(t *testing.T) {
	prog := []uint8{0xA9, 0x81, 0x4C, 0xF8, 0xFF} // LDA #$81; JMP $FFF8

	cases := []struct {
		keys        []ebiten.Key
		wantPC      uint16
		wantRunning bool
		wantText    []string
	}{
		{nil, 0x0600, false, []string{"PC:0600", "next:   LDA #$81", "state:  RUNNING\n"}},
		{[]ebiten.Key{ebiten.KeyS}, 0x0602, false, []string{"A:81", "P:80", "N-------", "next:   JMP $FFF8", "cycles: 2"}},
		{[]ebiten.Key{ebiten.KeyS, ebiten.KeyS, ebiten.KeyS, ebiten.KeyS}, 0xFFF9, false, []string{"state:  HALTED"}},
		{[]ebiten.Key{ebiten.KeyS, ebiten.KeyE}, 0x0600, false, []string{"A:00", "cycles: 2"}},
		{[]ebiten.Key{ebiten.KeyR}, 0x0600, true, []string{"(free running)"}},
		{[]ebiten.Key{ebiten.KeyR, ebiten.KeyR}, 0x0600, false, nil},
		{[]ebiten.Key{ebiten.KeyA}, 0x0600, false, []string{"S step  R run/pause  E reset  Esc quit"}},
	}

	for i, tc := range cases {
		v := newTestViewer(t, 1, prog...)
		for _, k := range tc.keys {
			if err := v.handle(k); err != nil {
				t.Fatalf("%d: handle(%v) = %v", i, k, err)
			}
		}
		if pc := v.cpu.Registers().PC; pc != tc.wantPC || v.running != tc.wantRunning {
			t.Errorf("%d: Got PC 0x%04x running %t, want 0x%04x %t", i, pc, v.running, tc.wantPC, tc.wantRunning)
		}
		text := v.Text()
		for _, w := range tc.wantText {
			if !strings.Contains(text, w) {
				t.Errorf("%d: text missing %q:\n%s", i, w, text)
			}
		}
	}
}

func TestEscape(t *testing.T) {
	v := newTestViewer(t, 1, 0xEA)
	if err := v.handle(ebiten.KeyEscape); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Got err %v, want %v", err, ebiten.Termination)
	}
}

func TestRunningSteps(t *testing.T) {
	v := newTestViewer(t, 3, 0xEA, 0xEA, 0xEA, 0xEA, 0xEA, 0xEA, 0xEA)
	v.running = true

	v.step(v.stepsPerFrame)
	if pc := v.cpu.Registers().PC; pc != 0x0603 || !v.running {
		t.Errorf("Got PC 0x%04x running %t, want 0x0603 true", pc, v.running)
	}

	// Runs into the BRK at 0x0607 in zeroed memory.
	v.step(10)
	if !errors.Is(v.err, mos6502.ErrNotImplemented) {
		t.Errorf("Got err %v, want %v", v.err, mos6502.ErrNotImplemented)
	}
	if v.running {
		t.Errorf("still running after an error")
	}
	if text := v.Text(); !strings.Contains(text, "error: pc 0x0607 (BRK)") || !strings.Contains(text, "next:   BRK") {
		t.Errorf("Got text:\n%s", text)
	}

	v.handle(ebiten.KeyE)
	if v.err != nil {
		t.Errorf("reset didn't clear err %v", v.err)
	}
}

func TestLayout(t *testing.T) {
	v := newTestViewer(t, 1, 0xEA)
	if w, h := v.Layout(1024, 768); w != SCREEN_WIDTH || h != SCREEN_HEIGHT {
		t.Errorf("Got %dx%d, want %dx%d", w, h, SCREEN_WIDTH, SCREEN_HEIGHT)
	}
}

func TestNext(t *testing.T) {
	m := memory.NewMapped()
	ram := memory.NewMirror(0x0800)
	if err := m.Map(0x0000, 0x07FF, "ram", ram); err != nil {
		t.Fatalf("Map(ram) = %v", err)
	}
	if err := m.Map(0xFFF0, 0xFFFF, "vectors", memory.NewROM(make([]uint8, 16))); err != nil {
		t.Fatalf("Map(vectors) = %v", err)
	}
	ram.Write(0x0010, 0x02)
	ram.Write(0x0020, 0x69)
	ram.Write(0x0021, 0x05)
	ram.Write(0x07FE, 0xAD)

	cpu, err := mos6502.New(m)
	if err != nil {
		t.Fatalf("mos6502.New() = %v", err)
	}
	v := New(cpu, m, 0, logrus.New())
	if v.stepsPerFrame != 1 {
		t.Errorf("Got %d steps per frame, want 1", v.stepsPerFrame)
	}

	cases := []struct {
		pc   uint16
		want string
	}{
		{0x0020, "ADC #$05"},
		{0x0010, ".byte $02"},
		{0x07FE, "LDA ???"},
		{0x0900, "????"},
	}

	for i, tc := range cases {
		r := cpu.Registers()
		r.PC = tc.pc
		cpu.SetRegisters(r)
		if got := v.next(); got != tc.want {
			t.Errorf("%d: Got %q, want %q", i, got, tc.want)
		}
	}
}
