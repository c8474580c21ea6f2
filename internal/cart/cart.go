// Package cart implements cartridge header parsing and the ROM/RAM
// banking logic (ROM-only and MBC1) exposed to the bus as CPU reads and
// writes.
package cart

import "log"

// Cartridge defines the minimal interface the Bus needs for ROM/RAM banking.
// Implementations can be ROM-only or MBC variants. Addresses are CPU addresses.
type Cartridge interface {
	// Read returns a byte for ROM (0x0000–0x7FFF) and external RAM (0xA000–0xBFFF).
	Read(addr uint16) byte
	// Write handles MBC control writes (0x0000–0x7FFF) and external RAM writes (0xA000–0xBFFF).
	Write(addr uint16, value byte)
}

// BatteryBacked is an optional interface for cartridges with external RAM
// that should survive across runs. Implementations return a copy of RAM
// bytes (possibly empty if no RAM) and accept data to load at startup.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// NewCartridge picks an implementation based on the ROM header. Cartridge
// types this module doesn't implement a dedicated MBC for (anything
// outside ROM-only/MBC1) fall back to MBC1 behavior with a logged
// warning, since MBC1's banking registers are a reasonable approximation
// and a flat crash on an unrecognized header serves nobody.
func NewCartridge(rom []byte) Cartridge {
	h, err := ParseHeader(rom)
	if err != nil {
		log.Printf("cart: header parse failed (%v), treating as ROM-only", err)
		return NewROMOnly(rom)
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom)
	case 0x01, 0x02, 0x03: // MBC1, MBC1+RAM, MBC1+RAM+BATTERY
		return NewMBC1(rom, h.RAMSizeBytes)
	default:
		log.Printf("cart: unsupported cartridge type %02X (%q), falling back to MBC1", h.CartType, h.Title)
		ramSize := h.RAMSizeBytes
		if ramSize == 0 {
			ramSize = 0x2000
		}
		return NewMBC1(rom, ramSize)
	}
}
