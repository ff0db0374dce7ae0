package memory

import (
	"errors"
	"reflect"
	"testing"
)

func TestRAMReadWrite(t *testing.T) {
	m := NewRAM()

	cases := []struct {
		addr uint16
		val  uint8
	}{
		{0x0000, 0x01},
		{0x00FF, 0xFF},
		{0x8000, 0x42},
		{0xFFFF, 0x80},
	}

	for i, tc := range cases {
		if err := m.Write(tc.addr, tc.val); err != nil {
			t.Fatalf("%d: Write(0x%04x) = %v", i, tc.addr, err)
		}
		if got, err := m.Read(tc.addr); err != nil || got != tc.val {
			t.Errorf("%d: Got 0x%02x, %v, want 0x%02x", i, got, err, tc.val)
		}
	}
}

func TestReadU16(t *testing.T) {
	m := NewRAM()
	m.Load(0x0000, []uint8{0x34})
	m.Load(0x00FF, []uint8{0x12, 0x99})
	m.Load(0x1234, []uint8{0xCD, 0xAB})
	m.Load(0xFFFF, []uint8{0x77})

	cases := []struct {
		addr uint16
		want uint16
	}{
		{0x1234, 0xABCD},
		{0x00FF, 0x9912}, // no page wrap outside ReadZeroPageU16
		{0xFFFF, 0x3477}, // high byte wraps to 0x0000
	}

	for i, tc := range cases {
		if got, err := m.ReadU16(tc.addr); err != nil || got != tc.want {
			t.Errorf("%d: Got 0x%04x, %v, want 0x%04x", i, got, err, tc.want)
		}
	}
}

func TestReadZeroPageU16(t *testing.T) {
	m := NewRAM()
	m.Load(0x0000, []uint8{0x34, 0x56})
	m.Load(0x0010, []uint8{0xEF, 0xBE})
	m.Load(0x00FF, []uint8{0x12, 0x99})

	cases := []struct {
		zp   uint8
		want uint16
	}{
		{0x10, 0xBEEF},
		{0x00, 0x5634},
		{0xFF, 0x3412}, // high byte from 0x00, not 0x100
	}

	for i, tc := range cases {
		if got, err := m.ReadZeroPageU16(tc.zp); err != nil || got != tc.want {
			t.Errorf("%d: Got 0x%04x, %v, want 0x%04x", i, got, err, tc.want)
		}
	}
}

func TestReadN(t *testing.T) {
	m := NewRAM()
	m.Load(0xFFFE, []uint8{0x01, 0x02})
	m.Load(0x0000, []uint8{0x03})

	cases := []struct {
		addr uint16
		n    uint16
		want []uint8
	}{
		{0xFFFE, 0, []uint8{}},
		{0xFFFE, 1, []uint8{0x01}},
		{0xFFFE, 3, []uint8{0x01, 0x02, 0x03}},
	}

	for i, tc := range cases {
		got, err := m.ReadN(tc.addr, tc.n)
		if err != nil || !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%d: Got %v, %v, want %v", i, got, err, tc.want)
		}
	}
}

func TestWriteU16(t *testing.T) {
	m := NewRAM()
	if err := WriteU16(m, 0xFFFC, 0x8000); err != nil {
		t.Fatalf("WriteU16() = %v", err)
	}
	if m.mem[0xFFFC] != 0x00 || m.mem[0xFFFD] != 0x80 {
		t.Errorf("Got %02x %02x, want 00 80", m.mem[0xFFFC], m.mem[0xFFFD])
	}
	if got, _ := m.ReadU16(0xFFFC); got != 0x8000 {
		t.Errorf("Got 0x%04x, want 0x8000", got)
	}
}

func TestLoad(t *testing.T) {
	cases := []struct {
		addr    uint16
		size    int
		wantErr error
	}{
		{0x0000, 0x10000, nil},
		{0xFFFF, 1, nil},
		{0xFFFF, 2, ErrTooLarge},
		{0x8000, 0x8001, ErrTooLarge},
		{0x1234, 0, nil},
	}

	for i, tc := range cases {
		m := NewRAM()
		data := make([]uint8, tc.size)
		for j := range data {
			data[j] = 0xA5
		}
		err := m.Load(tc.addr, data)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%d: Got err %v, want %v", i, err, tc.wantErr)
		}
		if tc.wantErr != nil && m.mem[tc.addr] != 0 {
			t.Errorf("%d: failed Load wrote 0x%02x at 0x%04x", i, m.mem[tc.addr], tc.addr)
		}
		if tc.wantErr == nil && tc.size > 0 && m.mem[tc.addr] != 0xA5 {
			t.Errorf("%d: Got 0x%02x at 0x%04x, want 0xa5", i, m.mem[tc.addr], tc.addr)
		}
	}
}
