package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdwalton/sim6502/console"
	"github.com/bdwalton/sim6502/memory"
	"github.com/bdwalton/sim6502/mos6502"
	"github.com/bdwalton/sim6502/nesrom"
	"github.com/bdwalton/sim6502/viewer"
	"github.com/sirupsen/logrus"
)

const STEPS_PER_FRAME = 100

var (
	romFile  = flag.String("nes_rom", "", "Path to an iNES (NROM) image to run.")
	binFile  = flag.String("bin", "", "Path to a raw binary to load at -origin.")
	origin   = flag.String("origin", "$0600", "Load address for -bin.")
	setReset = flag.Bool("reset", true, "Point the reset vector at -origin when loading -bin.")
	haltAt   = flag.String("halt_at", "$FFFA", "Address at which the fetch loop halts.")
	mode     = flag.String("mode", "batch", "What to do with the program: batch, monitor or view.")
	logLevel = flag.String("log_level", "info", "Log level (trace, debug, info, warn, error). debug traces every instruction.")
	maxSteps = flag.Uint64("max_steps", 0, "Stop a run after this many instructions; 0 means no limit.")
)

func loadBus(log logrus.FieldLogger) (mos6502.Bus, error) {
	switch {
	case *romFile != "" && *binFile != "":
		return nil, errors.New("-nes_rom and -bin are mutually exclusive")
	case *romFile != "":
		rom, err := nesrom.Open(*romFile)
		if err != nil {
			return nil, err
		}
		log.WithField("rom", rom.String()).Info("loaded ROM")
		b, err := rom.Bus()
		if err != nil {
			return nil, err
		}
		return b, nil
	case *binFile != "":
		data, err := os.ReadFile(*binFile)
		if err != nil {
			return nil, fmt.Errorf("couldn't read %q: %w", *binFile, err)
		}
		org, err := console.ParseAddress(*origin)
		if err != nil {
			return nil, fmt.Errorf("-origin: %w", err)
		}
		ram := memory.NewRAM()
		if err := nesrom.LoadRaw(ram, org, data, *setReset); err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"bytes": len(data), "origin": fmt.Sprintf("%04x", org)}).Info("loaded binary")
		return ram, nil
	}

	return nil, errors.New("one of -nes_rom or -bin is required")
}

func main() {
	flag.Parse()

	log := logrus.New()
	lvl, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid -log_level: %v", err)
	}
	log.SetLevel(lvl)

	bus, err := loadBus(log)
	if err != nil {
		log.Fatalf("Couldn't load program: %v", err)
	}

	halt, err := console.ParseAddress(*haltAt)
	if err != nil {
		log.Fatalf("Invalid -halt_at: %v", err)
	}

	cpu, err := mos6502.New(bus, mos6502.WithHaltBoundary(halt), mos6502.WithLogger(log))
	if err != nil {
		log.Fatalf("Couldn't start cpu: %v", err)
	}

	ctx := context.Background()
	switch *mode {
	case "batch":
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		reason, steps, err := console.Run(ctx, cpu, nil, *maxSteps)
		fmt.Println(cpu)
		if err != nil {
			log.Fatalf("Stopped after %d instructions: %v", steps, err)
		}
		log.WithFields(logrus.Fields{"reason": reason.String(), "steps": steps}).Info("stopped")
	case "monitor":
		if err := console.New(cpu, bus, *maxSteps, log).BIOS(ctx, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Monitor failed: %v", err)
		}
	case "view":
		if err := viewer.Run(viewer.New(cpu, bus, STEPS_PER_FRAME, log), "sim6502"); err != nil {
			log.Fatalf("Viewer failed: %v", err)
		}
	default:
		log.Fatalf("Unknown -mode %q; want batch, monitor or view", *mode)
	}
}
