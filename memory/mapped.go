package memory

import (
	"fmt"
	"sort"
	"strings"
)

// Device is something that can sit on a Mapped bus. Offsets are
// relative to the start of the region the device is mapped at.
type Device interface {
	Read(off uint16) (uint8, error)
	Write(off uint16, val uint8) error
}

type region struct {
	lo, hi uint16 // inclusive
	name   string
	dev    Device
}

func (r region) String() string {
	return fmt.Sprintf("$%04X-$%04X %s", r.lo, r.hi, r.name)
}

// Mapped is a bus made of devices mapped at fixed address ranges.
// Accesses outside every range fail with ErrUnmapped.
type Mapped struct {
	regions []region // sorted by lo
}

func NewMapped() *Mapped {
	return &Mapped{}
}

// Map attaches d to the inclusive range [lo, hi].
func (m *Mapped) Map(lo, hi uint16, name string, d Device) error {
	if hi < lo {
		return fmt.Errorf("bad range $%04X-$%04X for %s", lo, hi, name)
	}
	for _, r := range m.regions {
		if lo <= r.hi && r.lo <= hi {
			return fmt.Errorf("%w: %s at $%04X-$%04X collides with %s", ErrOverlap, name, lo, hi, r)
		}
	}

	m.regions = append(m.regions, region{lo: lo, hi: hi, name: name, dev: d})
	sort.Slice(m.regions, func(i, j int) bool { return m.regions[i].lo < m.regions[j].lo })
	return nil
}

func (m *Mapped) find(addr uint16) (region, bool) {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].hi >= addr })
	if i < len(m.regions) && m.regions[i].lo <= addr {
		return m.regions[i], true
	}
	return region{}, false
}

func (m *Mapped) Read(addr uint16) (uint8, error) {
	r, ok := m.find(addr)
	if !ok {
		return 0, fmt.Errorf("%w: read $%04X", ErrUnmapped, addr)
	}
	v, err := r.dev.Read(addr - r.lo)
	if err != nil {
		return 0, fmt.Errorf("%s: read $%04X: %w", r.name, addr, err)
	}
	return v, nil
}

func (m *Mapped) Write(addr uint16, val uint8) error {
	r, ok := m.find(addr)
	if !ok {
		return fmt.Errorf("%w: write $%04X", ErrUnmapped, addr)
	}
	if err := r.dev.Write(addr-r.lo, val); err != nil {
		return fmt.Errorf("%s: write $%04X: %w", r.name, addr, err)
	}
	return nil
}

func (m *Mapped) ReadN(addr, n uint16) ([]uint8, error) {
	return readN(m, addr, n)
}

func (m *Mapped) ReadU16(addr uint16) (uint16, error) {
	return readU16(m, addr)
}

func (m *Mapped) ReadZeroPageU16(zp uint8) (uint16, error) {
	return readZeroPageU16(m, zp)
}

// String lists the mapped regions in address order, one per line.
func (m *Mapped) String() string {
	var sb strings.Builder
	for _, r := range m.regions {
		fmt.Fprintln(&sb, r)
	}
	return sb.String()
}

// Mirror is RAM of a fixed size repeated across however large a
// region it is mapped into. The NES maps 2KiB this way over
// 0x0000-0x1FFF.
type Mirror struct {
	ram []uint8
}

func NewMirror(size int) *Mirror {
	return &Mirror{ram: make([]uint8, size)}
}

func (m *Mirror) Read(off uint16) (uint8, error) {
	if len(m.ram) == 0 {
		return 0, ErrUnmapped
	}
	return m.ram[int(off)%len(m.ram)], nil
}

func (m *Mirror) Write(off uint16, val uint8) error {
	if len(m.ram) == 0 {
		return ErrUnmapped
	}
	m.ram[int(off)%len(m.ram)] = val
	return nil
}

// ROM is read only data, repeated if the region it's mapped into is
// larger than the image.
type ROM struct {
	data []uint8
}

func NewROM(data []uint8) *ROM {
	return &ROM{data: data}
}

func (r *ROM) Read(off uint16) (uint8, error) {
	if len(r.data) == 0 {
		return 0, ErrUnmapped
	}
	return r.data[int(off)%len(r.data)], nil
}

func (r *ROM) Write(off uint16, val uint8) error {
	return ErrReadOnly
}
