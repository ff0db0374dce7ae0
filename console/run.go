package console

import (
	"context"

	"github.com/bdwalton/sim6502/mos6502"
)

type StopReason uint8

const (
	STOP_HALTED StopReason = iota
	STOP_BREAKPOINT
	STOP_INTERRUPTED
	STOP_STEP_LIMIT
	STOP_ERROR
)

var stopnames = [...]string{
	STOP_HALTED:      "halted",
	STOP_BREAKPOINT:  "breakpoint",
	STOP_INTERRUPTED: "interrupted",
	STOP_STEP_LIMIT:  "step limit",
	STOP_ERROR:       "error",
}

func (s StopReason) String() string {
	if int(s) < len(stopnames) {
		return stopnames[s]
	}
	return "unknown"
}

// Run steps cpu until it halts, an instruction fails, ctx is done, PC
// lands on one of breaks or maxSteps instructions have run. A
// breakpoint at the starting PC doesn't stop the run. maxSteps of 0
// means no limit. The returned count excludes the Step that halted.
func Run(ctx context.Context, cpu *mos6502.CPU, breaks map[uint16]struct{}, maxSteps uint64) (StopReason, uint64, error) {
	var steps uint64
	for {
		select {
		case <-ctx.Done():
			return STOP_INTERRUPTED, steps, nil
		default:
		}

		if cpu.Halted() {
			return STOP_HALTED, steps, nil
		}
		if _, ok := breaks[cpu.Registers().PC]; ok && steps > 0 {
			return STOP_BREAKPOINT, steps, nil
		}
		if maxSteps > 0 && steps >= maxSteps {
			return STOP_STEP_LIMIT, steps, nil
		}

		if err := cpu.Step(); err != nil {
			return STOP_ERROR, steps, err
		}
		if !cpu.Halted() {
			steps++
		}
	}
}
