// Package bus implements the DMG 64KiB address space: cartridge ROM/RAM
// banking dispatch, WRAM/echo RAM, HRAM, OAM DMA, the joypad register,
// and wiring between the PPU, timer, and interrupt controller.
package bus

import (
	"os"

	"github.com/dmgcore/gbemu/internal/cart"
	"github.com/dmgcore/gbemu/internal/interrupt"
	"github.com/dmgcore/gbemu/internal/ppu"
	"github.com/dmgcore/gbemu/internal/timer"
)

// Bus wires the CPU-visible address space to cartridge, WRAM, HRAM, and
// the PPU/timer/interrupt subsystems.
type Bus struct {
	cart cart.Cartridge

	// Work RAM (WRAM) 8 KiB at 0xC000–0xDFFF; Echo 0xE000–0xFDFF mirrors
	// 0xC000–0xDDFF for both reads and writes.
	wram [0x2000]byte

	// High RAM (HRAM) 0xFF80–0xFFFE (127 bytes)
	hram [0x7F]byte

	ppu *ppu.PPU
	ic  *interrupt.Controller
	tm  *timer.Timer

	joypSelect byte // bits 5-4 as last written
	joypad     byte // bitmask of pressed buttons (1=pressed), see constants below
	joypLower4 byte // last computed lower 4 bits (active-low) for interrupt edge detection

	// Serial (0xFF01/0xFF02): memory-mapped storage only, no transfer or
	// interrupt behavior (serial link is out of scope).
	sb byte
	sc byte

	// OAM DMA
	dma          byte // FF46
	dmaActive    bool
	dmaRemaining int // T-cycles remaining in the 640-cycle (160 M-cycle) transfer window

	// Boot ROM support
	bootROM     []byte
	bootEnabled bool

	debugTimer bool
}

// New constructs a Bus with a ROM-only/MBC cartridge chosen by header.
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.NewCartridge(rom))
}

// NewWithCartridge wires a provided cartridge implementation.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.ic = interrupt.New()
	b.ppu = ppu.New(func(bit int) { b.ic.Request(interrupt.Kind(bit)) })
	b.tm = timer.New(func() { b.ic.Request(interrupt.Timer) })
	if os.Getenv("GB_DEBUG_TIMER") != "" {
		b.debugTimer = true
	}
	return b
}

// PPU returns the internal PPU for read-only rendering helpers.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart returns the underlying cartridge for optional battery operations.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Interrupts returns the interrupt controller shared with the CPU.
func (b *Bus) Interrupts() *interrupt.Controller { return b.ic }

func (b *Bus) Read(addr uint16) byte {
	// OAM DMA gates all non-HRAM accesses while active.
	if b.dmaActive && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return 0xFF
	}
	switch {
	// Cartridge ROM and External RAM (banked) are handled by the cartridge
	case addr < 0x8000:
		// When boot ROM is enabled, it overlays 0x0000-0x00FF
		if b.bootEnabled && addr < 0x0100 && len(b.bootROM) >= 0x100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	// VRAM (via PPU)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)

	// Work RAM 0xC000–0xDFFF (8 KiB)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]

	// Echo RAM 0xE000–0xFDFF mirrors 0xC000–0xDDFF (write-only mirroring;
	// reads here return WRAM contents same as a direct WRAM read would).
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		return b.wram[mirror-0xC000]

	// High RAM 0xFF80–0xFFFE
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	// OAM via PPU
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	// IO: JOYP at 0xFF00
	case addr == 0xFF00:
		res := byte(0xC0 | (b.joypSelect & 0x30) | 0x0F)
		if (b.joypSelect & 0x10) == 0 { // P14 low selects D-Pad
			if b.joypad&JoypRight != 0 {
				res &^= 0x01
			}
			if b.joypad&JoypLeft != 0 {
				res &^= 0x02
			}
			if b.joypad&JoypUp != 0 {
				res &^= 0x04
			}
			if b.joypad&JoypDown != 0 {
				res &^= 0x08
			}
		}
		if (b.joypSelect & 0x20) == 0 { // P15 low selects Buttons
			if b.joypad&JoypA != 0 {
				res &^= 0x01
			}
			if b.joypad&JoypB != 0 {
				res &^= 0x02
			}
			if b.joypad&JoypSelectBtn != 0 {
				res &^= 0x04
			}
			if b.joypad&JoypStart != 0 {
				res &^= 0x08
			}
		}
		return res
	// IO: Timers
	case addr == 0xFF04:
		return b.tm.ReadDIV()
	case addr == 0xFF05:
		return b.tm.ReadTIMA()
	case addr == 0xFF06:
		return b.tm.ReadTMA()
	case addr == 0xFF07:
		return b.tm.ReadTAC()
	// Serial
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	// LCDC/STAT/LY/LYC and scroll/window via PPU
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	// Boot ROM disable register (read returns 0xFF on DMG)
	case addr == 0xFF50:
		return 0xFF
	// IF at 0xFF0F
	case addr == 0xFF0F:
		return b.ic.ReadIF()
	// IE at 0xFFFF
	case addr == 0xFFFF:
		return b.ic.ReadIE()
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, value byte) {
	if b.dmaActive && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return
	}
	switch {
	// Cartridge control and external RAM writes
	case addr < 0x8000:
		b.cart.Write(addr, value)
		return
	// VRAM via PPU
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
		return
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
		return

	// Work RAM
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
		return

	// Echo RAM mirrors C000–DDFF (write-only mirroring)
	case addr >= 0xE000 && addr <= 0xFDFF:
		mirror := addr - 0x2000
		if mirror >= 0xC000 && mirror <= 0xDDFF {
			b.wram[mirror-0xC000] = value
		}
		return

	// High RAM — unconditional, even during DMA (checked above as an exception).
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
		return
	// OAM via PPU
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
		return
	// IO: JOYP at 0xFF00
	case addr == 0xFF00:
		b.joypSelect = value & 0x30
		b.updateJoypadIRQ()
		return
	// IO: Timers
	case addr == 0xFF04:
		b.tm.WriteDIV(value)
		return
	case addr == 0xFF05:
		b.tm.WriteTIMA(value)
		return
	case addr == 0xFF06:
		b.tm.WriteTMA(value)
		return
	case addr == 0xFF07:
		b.tm.WriteTAC(value)
		return
	// Serial — storage only, no transfer/interrupt behavior.
	case addr == 0xFF01:
		b.sb = value
		return
	case addr == 0xFF02:
		b.sc = value & 0x81
		return
	// LCDC/STAT/LY/LYC and scroll/window via PPU
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
		return
	case addr == 0xFF46:
		b.startOAMDMA(value)
		return
	case addr == 0xFF50:
		// Any non-zero write disables the boot ROM overlay
		if value != 0x00 {
			b.bootEnabled = false
		}
		return
	// IF at 0xFF0F
	case addr == 0xFF0F:
		b.ic.WriteIF(value)
		return
	// IE at 0xFFFF
	case addr == 0xFFFF:
		b.ic.WriteIE(value)
		return
	}
}

// startOAMDMA performs the 160-byte copy immediately (source reads run
// with the DMA gate briefly lifted) and then gates the bus for the
// remaining 640 T-cycles (160 M-cycles) real hardware spends on the
// transfer, matching the timing contract without needing a per-byte
// scheduler.
func (b *Bus) startOAMDMA(value byte) {
	b.dma = value
	src := uint16(value) << 8
	wasActive := b.dmaActive
	b.dmaActive = false
	for i := 0; i < 0xA0; i++ {
		v := b.Read(src + uint16(i))
		b.ppu.DMAWriteOAM(i, v)
	}
	_ = wasActive
	b.dmaActive = true
	b.dmaRemaining = 640
}

// Joypad button bitmasks for SetJoypadState. Bits set mean "pressed".
const (
	JoypRight     = 1 << 0
	JoypLeft      = 1 << 1
	JoypUp        = 1 << 2
	JoypDown      = 1 << 3
	JoypA         = 1 << 4
	JoypB         = 1 << 5
	JoypSelectBtn = 1 << 6
	JoypStart     = 1 << 7
)

// SetJoypadState sets which buttons are currently pressed.
// Pass a mask using the Joyp* constants above; set bits mean pressed.
func (b *Bus) SetJoypadState(mask byte) {
	b.joypad = mask
	b.updateJoypadIRQ()
}

// SetBootROM loads a DMG boot ROM to be mapped at 0x0000-0x00FF until disabled via 0xFF50 write.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

// Tick advances the timer, PPU, and any in-flight OAM DMA by cycles
// T-cycles.
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	b.tm.Tick(cycles)
	b.ppu.Tick(cycles)
	if b.dmaActive {
		b.dmaRemaining -= cycles
		if b.dmaRemaining <= 0 {
			b.dmaActive = false
		}
	}
}

// updateJoypadIRQ recomputes JOYP lower 4 bits (active-low) and raises the
// joypad interrupt on any 1->0 transition.
func (b *Bus) updateJoypadIRQ() {
	newLower := byte(0x0F)
	if (b.joypSelect & 0x10) == 0 { // P14 low selects D-Pad
		if b.joypad&JoypRight != 0 {
			newLower &^= 0x01
		}
		if b.joypad&JoypLeft != 0 {
			newLower &^= 0x02
		}
		if b.joypad&JoypUp != 0 {
			newLower &^= 0x04
		}
		if b.joypad&JoypDown != 0 {
			newLower &^= 0x08
		}
	}
	if (b.joypSelect & 0x20) == 0 { // P15 low selects Buttons
		if b.joypad&JoypA != 0 {
			newLower &^= 0x01
		}
		if b.joypad&JoypB != 0 {
			newLower &^= 0x02
		}
		if b.joypad&JoypSelectBtn != 0 {
			newLower &^= 0x04
		}
		if b.joypad&JoypStart != 0 {
			newLower &^= 0x08
		}
	}
	falling := b.joypLower4 &^ newLower
	if falling != 0 {
		b.ic.Request(interrupt.Joypad)
	}
	b.joypLower4 = newLower
}
