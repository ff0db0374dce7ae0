package nesrom

import (
	"fmt"

	"github.com/bdwalton/sim6502/memory"
	"github.com/bdwalton/sim6502/mos6502"
)

// LoadRaw copies a headerless binary into b at origin. When patchReset
// is set the reset vector is pointed at origin so a CPU built on b
// starts there.
func LoadRaw(b mos6502.Bus, origin uint16, data []byte, patchReset bool) error {
	if err := memory.Load(b, origin, data); err != nil {
		return fmt.Errorf("couldn't load %d bytes at $%04X: %w", len(data), origin, err)
	}
	if !patchReset {
		return nil
	}
	if err := memory.WriteU16(b, mos6502.RESET_VECTOR, origin); err != nil {
		return fmt.Errorf("couldn't set reset vector: %w", err)
	}
	return nil
}
