// cpurunner is a headless CPU/PPU debug tool: it runs a ROM for a fixed
// step or frame budget, optionally tracing every instruction, and
// reports (or asserts) the resulting framebuffer CRC32. It exists for
// quick opcode-level debugging without bringing up a window.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dmgcore/gbemu/internal/bus"
	"github.com/dmgcore/gbemu/internal/cpu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	bootPath := flag.String("bootrom", "", "optional DMG boot ROM to run from 0x0000 until FF50 disables it")
	steps := flag.Int("steps", 5_000_000, "max CPU instructions to run (ignored if -frames > 0)")
	frames := flag.Int("frames", 0, "if > 0, run this many PPU frames instead of a fixed step count")
	startPC := flag.Int("pc", 0x0100, "initial PC value when no boot ROM is given")
	trace := flag.Bool("trace", false, "print PC/opcode/register state for every step")
	expectCRC := flag.String("expect", "", "assert final framebuffer CRC32 (hex); mismatch exits 1")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	var boot []byte
	if *bootPath != "" {
		boot, err = os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("read bootrom: %v", err)
		}
	}

	b := bus.New(rom)
	c := cpu.New(b)
	if len(boot) >= 0x100 {
		b.SetBootROM(boot)
		c.SP = 0xFFFE
		c.PC = 0x0000
	} else {
		c.ResetNoBoot()
		c.SetPC(uint16(*startPC))
		// Minimal DMG post-boot IO defaults (LCD on, palettes, timers off).
		b.Write(0xFF00, 0xCF)
		b.Write(0xFF40, 0x91) // LCDC on with BG and sprites
		b.Write(0xFF47, 0xFC) // BGP
		b.Write(0xFF48, 0xFF) // OBP0
		b.Write(0xFF49, 0xFF) // OBP1
		b.Write(0xFFFF, 0x00) // IE
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}

	var cycles, stepsRun int
	runStep := func() {
		stepsRun++
		pc := c.PC
		var op byte
		if *trace {
			op = b.Read(pc)
		}
		cyc := c.Step()
		cycles += cyc
		if *trace {
			fmt.Printf("PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t IF=%02X IE=%02X\n",
				pc, op, cyc, c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.IME(), b.Read(0xFF0F), b.Read(0xFFFF))
		}
	}

	if *frames > 0 {
		for i := 0; i < *frames; i++ {
			for !b.PPU().FrameReady() {
				runStep()
				if timedOut(deadline) {
					fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
					os.Exit(2)
				}
			}
			b.PPU().ConsumeFrame()
		}
	} else {
		for i := 0; i < *steps; i++ {
			runStep()
			if timedOut(deadline) {
				fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
				os.Exit(2)
			}
		}
	}

	dur := time.Since(start)
	crc := framebufferCRC(b)
	fmt.Printf("\nDone: steps=%d cycles~=%d elapsed=%s fb_crc32=%08x\n", stepsRun, cycles, dur.Truncate(time.Millisecond), crc)

	if *expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(*expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			fmt.Printf("checksum mismatch: got %s, want %s\n", got, want)
			os.Exit(1)
		}
	}
}

func timedOut(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// framebufferCRC computes the CRC32 of the current framebuffer, reading
// directly off the PPU's last-composited buffer without
// consuming the frame-ready latch (so it's safe to call after either
// step-count or frame-count runs).
func framebufferCRC(b *bus.Bus) uint32 {
	px := b.PPU().Framebuffer()
	buf := make([]byte, len(px)*4)
	for i, v := range px {
		o := i * 4
		buf[o+0] = byte(v >> 16)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v)
		buf[o+3] = byte(v >> 24)
	}
	return crc32.ChecksumIEEE(buf)
}
