package cart

import "testing"

func TestNewCartridge_ROMOnly(t *testing.T) {
	rom := buildROM("NOMBC", 0x00, 0x00, 0x00, 32*1024)
	c := NewCartridge(rom)
	if _, ok := c.(*ROMOnly); !ok {
		t.Fatalf("expected *ROMOnly, got %T", c)
	}
}

func TestNewCartridge_MBC1Variants(t *testing.T) {
	for _, cartType := range []byte{0x01, 0x02, 0x03} {
		rom := buildROM("MBC1GAME", cartType, 0x01, 0x02, 64*1024)
		c := NewCartridge(rom)
		if _, ok := c.(*MBC1); !ok {
			t.Fatalf("cart type %02X: expected *MBC1, got %T", cartType, c)
		}
	}
}

func TestNewCartridge_UnsupportedTypeFallsBackToMBC1(t *testing.T) {
	// 0x1B = MBC5+RAM+BATTERY, not implemented by this module.
	rom := buildROM("MBC5GAME", 0x1B, 0x01, 0x02, 64*1024)
	c := NewCartridge(rom)
	m, ok := c.(*MBC1)
	if !ok {
		t.Fatalf("expected fallback to *MBC1, got %T", c)
	}
	// Fallback should still behave like a normal MBC1: RAM enable + write/read round trip.
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("fallback MBC1 RAM RW failed: got %02X", got)
	}
}

func TestNewCartridge_TruncatedHeaderFallsBackToROMOnly(t *testing.T) {
	c := NewCartridge(make([]byte, 16))
	if _, ok := c.(*ROMOnly); !ok {
		t.Fatalf("expected *ROMOnly for undersized ROM, got %T", c)
	}
}
