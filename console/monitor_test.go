package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdwalton/sim6502/memory"
	"github.com/bdwalton/sim6502/mos6502"
)

func TestMonitorCommands(t *testing.T) {
	cases := []struct {
		input   string
		want    []string
		notWant []string
	}{
		{"s\n", []string{"0x0600: 0xa9 0x0601: 0x01  LDA #$01\n", "A:01", "PC:0602"}, nil},
		{"s 3\n", []string{"ADC #$02", "STA $0200", "A:03", "PC:0607"}, nil},
		{"s 10\n", []string{"JMP $FFF8", "PC:FFF9 HALTED"}, nil},
		{"b 0604\nr\n", []string{"breakpoint after 2 instructions", "PC:0604"}, nil},
		{"r\nm 0200\n", []string{"halted after 5 instructions", "0x0200: 0x03 \n"}, nil},
		{"p $0604\ni\n", []string{"PC:0604", "0x0604: 0x8d 0x0605: 0x00 0x0606: 0x02  STA $0200"}, nil},
		{"b 0700\nb $0604\nb\n", []string{"> 0x0604\n0x0700\n"}, nil},
		{"b 0604\nc\nb\nr\n", []string{"halted after 5"}, []string{"0x0604\n"}},
		{"m 0600 0609\n", []string{"0x0600: 0xa9 0x0601: 0x01 0x0602: 0x69 0x0603: 0x02 0x0604: 0x8d \n0x0605: 0x00 0x0606: 0x02 0x0607: 0x4c 0x0608: 0xf8 0x0609: 0xff \n"}, nil},
		{"m fffe ffff\n", []string{"0xfffe: 0x00 0xffff: 0x00 \n"}, nil},
		{"s 2\ne\n", []string{"A:03", "A:00 X:00 Y:00 S:FF P:00 [--------] PC:0600 RUNNING"}, nil},
		{"x\n", []string{"PC:0600 RUNNING cycles:0"}, nil},
		{"t\n", []string{"stack empty"}, nil},
		{"h\n", []string{"q          quit"}, nil},
		{"q\ns\n", nil, []string{"LDA"}},
		{"zz\n", []string{`error: unknown command "zz", h for help`}, nil},
		{"m 0010 000f\n", []string{"error: high address 0x000f is below low address 0x0010"}, nil},
		{"m\n", []string{"error: usage: m lo [hi]"}, nil},
		{"p\n", []string{"error: usage: p addr"}, nil},
		{"b nope\n", []string{"error: bad address"}, nil},
		{"s 0\n", []string{`error: bad count "0"`}, nil},
		{"d\n", []string{"error: usage: d file"}, nil},
	}

	for i, tc := range cases {
		cpu, ram := newTestMachine(t, program...)
		m := New(cpu, ram, 0, quietLogger())

		var out bytes.Buffer
		if err := m.Serve(context.Background(), strings.NewReader(tc.input), &out); err != nil {
			t.Fatalf("%d: Serve() = %v", i, err)
		}

		got := out.String()
		for _, w := range tc.want {
			if !strings.Contains(got, w) {
				t.Errorf("%d: output missing %q:\n%s", i, w, got)
			}
		}
		for _, w := range tc.notWant {
			if strings.Contains(got, w) {
				t.Errorf("%d: output unexpectedly has %q:\n%s", i, w, got)
			}
		}
	}
}

func TestMonitorStack(t *testing.T) {
	cpu, ram := newTestMachine(t, program...)
	ram.Load(0x01FD, []uint8{0x11, 0x22, 0x33})
	r := cpu.Registers()
	r.S = 0xFC
	cpu.SetRegisters(r)

	var out bytes.Buffer
	if err := New(cpu, ram, 0, quietLogger()).Serve(context.Background(), strings.NewReader("t\n"), &out); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if want := "0x01fd: 0x11 0x01fe: 0x22 0x01ff: 0x33 \n"; !strings.Contains(out.String(), want) {
		t.Errorf("output missing %q:\n%s", want, out.String())
	}
}

func TestMonitorMaxSteps(t *testing.T) {
	cpu, ram := newTestMachine(t, program...)

	var out bytes.Buffer
	if err := New(cpu, ram, 2, quietLogger()).Serve(context.Background(), strings.NewReader("r\nr\n"), &out); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if got := strings.Count(out.String(), "step limit after 2 instructions"); got != 2 {
		t.Errorf("Got %d step limited runs, want 2:\n%s", got, out.String())
	}
	if pc := cpu.Registers().PC; pc != 0xFFF8 {
		t.Errorf("Got PC 0x%04x, want 0xfff8", pc)
	}
}

func TestMonitorRunError(t *testing.T) {
	cpu, ram := newTestMachine(t, 0xEA, 0x02)

	var out bytes.Buffer
	if err := New(cpu, ram, 0, quietLogger()).Serve(context.Background(), strings.NewReader("r\n"), &out); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	for _, want := range []string{"error after 1 instructions", "error: pc 0x0601: unknown opcode: 0x02"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestMonitorUnmapped(t *testing.T) {
	b := memory.NewMapped()
	b.Map(0x0000, 0x07FF, "ram", memory.NewMirror(0x800))
	b.Map(0x8000, 0xFFFF, "rom", memory.NewROM([]uint8{0xEA, 0x00, 0x80}))
	cpu, err := mos6502.New(b)
	if err != nil {
		t.Fatalf("mos6502.New() = %v", err)
	}

	var out bytes.Buffer
	if err := New(cpu, b, 0, quietLogger()).Serve(context.Background(), strings.NewReader("m 07ff 0801\n"), &out); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if want := "0x07ff: 0x00 0x0800: ---- 0x0801: ---- \n"; !strings.Contains(out.String(), want) {
		t.Errorf("output missing %q:\n%s", want, out.String())
	}
}

func TestMonitorSnapshot(t *testing.T) {
	cpu, ram := newTestMachine(t, program...)
	path := filepath.Join(t.TempDir(), "mem.png")

	var out bytes.Buffer
	if err := New(cpu, ram, 0, quietLogger()).Serve(context.Background(), strings.NewReader("d "+path+"\n"), &out); err != nil {
		t.Fatalf("Serve() = %v", err)
	}
	if !strings.Contains(out.String(), "wrote "+path) {
		t.Errorf("output missing write confirmation:\n%s", out.String())
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("Stat(%q) = %v, %v", path, fi, err)
	}
}
