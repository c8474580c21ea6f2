// Package emu wires the CPU, Bus (which itself owns the PPU, timer, and
// interrupt controller), and cartridge into a runnable Machine: the
// composition root the host (cmd/gbemu, cmd/cpurunner, or a test) drives
// one instruction or one frame at a time.
package emu

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/dmgcore/gbemu/internal/bus"
	"github.com/dmgcore/gbemu/internal/cart"
	"github.com/dmgcore/gbemu/internal/cpu"
)

// Buttons mirrors the eight DMG joypad inputs.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.A {
		m |= bus.JoypA
	}
	if b.B {
		m |= bus.JoypB
	}
	if b.Start {
		m |= bus.JoypStart
	}
	if b.Select {
		m |= bus.JoypSelectBtn
	}
	if b.Up {
		m |= bus.JoypUp
	}
	if b.Down {
		m |= bus.JoypDown
	}
	if b.Left {
		m |= bus.JoypLeft
	}
	if b.Right {
		m |= bus.JoypRight
	}
	return m
}

// Machine is the top-level emulated system: CPU plus the Bus it talks to.
// The Bus in turn owns the PPU, timer, and interrupt controller, so
// Machine only needs to drive the CPU and present the PPU's framebuffer.
type Machine struct {
	cfg Config

	cpu *cpu.CPU
	bus *bus.Bus

	fb []byte // RGBA 160x144*4, refreshed on each completed frame

	romPath   string
	romBytes  []byte
	bootBytes []byte
	trace     bool
}

const (
	screenW = 160
	screenH = 144
)

// New creates a Machine with no cartridge loaded yet. Call LoadCartridge
// before stepping; stepping with no ROM loaded will read open-bus 0xFF
// everywhere and likely spin on garbage opcodes, which is harmless but
// useless.
func New(cfg Config) *Machine {
	b := bus.New(nil)
	c := cpu.New(b)
	c.ResetNoBoot()
	c.SetPC(0x0100)
	return &Machine{
		cfg:   cfg,
		cpu:   c,
		bus:   b,
		fb:    make([]byte, screenW*screenH*4),
		trace: cfg.Trace,
	}
}

// SetBootROM installs a DMG boot ROM to run from 0x0000 instead of the
// post-boot register state. Call before StepFrame. LoadCartridge builds a
// new bus, so a boot ROM installed before it takes effect only if it is
// also passed to LoadCartridge.
func (m *Machine) SetBootROM(data []byte) {
	m.bus.SetBootROM(data)
	if len(data) >= 0x100 {
		m.bootBytes = data
		m.cpu.SetPC(0x0000)
	}
}

// LoadCartridge replaces the current cartridge and resets the CPU. boot,
// if non-nil, is passed to SetBootROM first so PC starts at 0x0000
// instead of the canned post-boot values.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	if len(rom) < 0x150 {
		return fmt.Errorf("emu: rom too small (%d bytes)", len(rom))
	}
	if _, err := cart.ParseHeader(rom); err != nil {
		return fmt.Errorf("emu: parse header: %w", err)
	}
	if !cart.HeaderChecksumOK(rom) {
		return fmt.Errorf("emu: header checksum mismatch, refusing to load")
	}
	m.bus = bus.New(rom)
	m.cpu = cpu.New(m.bus)
	m.cpu.ResetNoBoot()
	m.cpu.SetPC(0x0100)
	m.romBytes = rom
	m.bootBytes = boot
	if len(boot) >= 0x100 {
		m.SetBootROM(boot)
	}
	return nil
}

// ROMTitle returns the loaded cartridge's header title, or "" if no
// cartridge is loaded.
func (m *Machine) ROMTitle() string {
	if len(m.romBytes) < 0x150 {
		return ""
	}
	h, err := cart.ParseHeader(m.romBytes)
	if err != nil {
		return ""
	}
	return h.Title
}

// ResetPostBoot reloads the currently loaded cartridge from scratch and
// restarts the CPU in the fixed post-boot register state, discarding any
// boot ROM previously installed. It is a no-op if no cartridge is loaded.
func (m *Machine) ResetPostBoot() {
	if len(m.romBytes) == 0 {
		return
	}
	_ = m.LoadCartridge(m.romBytes, nil)
}

// ResetWithBoot reloads the currently loaded cartridge and restarts from
// the boot ROM previously supplied via SetBootROM/LoadCartridge, if any;
// otherwise it behaves like ResetPostBoot.
func (m *Machine) ResetWithBoot() {
	if len(m.romBytes) == 0 {
		return
	}
	_ = m.LoadCartridge(m.romBytes, m.bootBytes)
}

// LoadROMFromFile records path (made absolute when possible) as the
// location of the loaded ROM so a matching .sav can be located later. It
// does not read the file or load a cartridge; LoadCartridge does that.
func (m *Machine) LoadROMFromFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m.romPath = abs
	return nil
}

// ROMPath returns the path last recorded by LoadROMFromFile, or "".
func (m *Machine) ROMPath() string { return m.romPath }

// LoadBattery restores cartridge external RAM from a previously saved
// .sav image. Returns false if the current cartridge does not implement
// cart.BatteryBacked (ROM-only); an MBC1 cartridge with no RAM returns true
// and loads nothing.
func (m *Machine) LoadBattery(data []byte) bool {
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}

// SaveBattery returns a copy of the cartridge's external RAM for
// persisting to a .sav file. ok is false if the cartridge has no
// battery-backed RAM.
func (m *Machine) SaveBattery() (data []byte, ok bool) {
	bb, isBattery := m.bus.Cart().(cart.BatteryBacked)
	if !isBattery {
		return nil, false
	}
	ram := bb.SaveRAM()
	if len(ram) == 0 {
		return nil, false
	}
	return ram, true
}

// Step executes exactly one CPU instruction (including any interrupt
// dispatch that preempts it) and returns the number of T-cycles it took.
// The Bus is advanced by the same amount as part of cpu.Step, so PPU,
// timer, and OAM DMA stay in lockstep with instruction execution.
func (m *Machine) Step() int {
	pc := m.cpu.PC
	cycles := m.cpu.Step()
	if m.trace {
		log.Printf("PC=%04X cyc=%d AF=%02X%02X SP=%04X", pc, cycles, m.cpu.A, m.cpu.F, m.cpu.SP)
	}
	return cycles
}

// StepFrame runs instructions until the PPU reports a completed frame,
// then copies it into the RGBA framebuffer and returns.
func (m *Machine) StepFrame() {
	for {
		m.cpu.Step()
		if m.bus.PPU().FrameReady() {
			m.drawFrame()
			return
		}
	}
}

// drawFrame converts the PPU's packed ARGB8888 framebuffer into the
// RGBA byte buffer hosts expect (image.RGBA, PNG encoders, etc.).
func (m *Machine) drawFrame() {
	px := m.bus.PPU().ConsumeFrame()
	for i, v := range px {
		o := i * 4
		m.fb[o+0] = byte(v >> 16) // R
		m.fb[o+1] = byte(v >> 8)  // G
		m.fb[o+2] = byte(v)       // B
		m.fb[o+3] = byte(v >> 24) // A
	}
}

// Framebuffer returns the most recently completed frame as RGBA8888,
// 160x144, row-major.
func (m *Machine) Framebuffer() []byte { return m.fb }

// SetButtons updates joypad state for the next Step/StepFrame.
func (m *Machine) SetButtons(b Buttons) {
	m.bus.SetJoypadState(b.mask())
}

// Bus exposes the underlying bus for debug tools (cmd/cpurunner).
func (m *Machine) Bus() *bus.Bus { return m.bus }

// CPU exposes the underlying CPU for debug tools (cmd/cpurunner).
func (m *Machine) CPU() *cpu.CPU { return m.cpu }
