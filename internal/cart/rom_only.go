package cart

// ROMOnly is cartridge type 0x00: a flat, unbanked 32KiB (or smaller)
// image with no external RAM and no control registers at all.
type ROMOnly struct {
	rom []byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	if addr < 0x8000 {
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
	}
	return 0xFF
}

// Write is a no-op: there's no MBC register to latch and no RAM to
// store into.
func (c *ROMOnly) Write(addr uint16, value byte) {}
