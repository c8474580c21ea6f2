package ppu

import "testing"

// TestRenderLineDrawsWindowOverBackground exercises the PPU end-to-end
// through CPUWrite/Tick rather than the bare fetcher helpers, confirming
// the window layer replaces background pixels at and right of WX-7 once
// LY reaches WY.
func TestRenderLineDrawsWindowOverBackground(t *testing.T) {
	p := New(func(bit int) {})

	// BG tilemap at 0x9800 all pointing at tile 0 (all color index 1).
	p.CPUWrite(0xFF40, 0) // LCD off while we seed VRAM
	for i := uint16(0); i < 32*32; i++ {
		p.vram[0x9800-0x8000+i] = 0
	}
	// Tile 0 row bytes: lo=0xFF hi=0x00 -> every pixel color index 1.
	for row := uint16(0); row < 8; row++ {
		p.vram[row*2] = 0xFF
		p.vram[row*2+1] = 0x00
	}

	// Window tilemap at 0x9C00 all pointing at tile 1 (all color index 2).
	for i := uint16(0); i < 32*32; i++ {
		p.vram[0x9C00-0x8000+i] = 1
	}
	p.vram[0x8010-0x8000] = 0x00
	p.vram[0x8011-0x8000] = 0xFF

	// BGP identity: color index n -> shade n.
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF4A, 10) // WY=10
	p.CPUWrite(0xFF4B, 27) // WX=27 -> screen column 20
	// LCDC: on, BG+window enable, window tilemap 0x9C00, tile data 0x8000, window enable
	p.CPUWrite(0xFF40, 0x91|0x20|0x40)

	// Advance to LY=10's HBlank so renderLine has fired for that row.
	p.Tick(10*456 + 80 + 172 + 1)

	fb := p.Framebuffer()
	row := fb[10*160 : 10*160+160]
	if row[0] != dmgColors[1] {
		t.Fatalf("expected background shade left of window, got %08X", row[0])
	}
	if row[20] != dmgColors[2] {
		t.Fatalf("expected window shade at screen x=20, got %08X", row[20])
	}
}

// TestRenderLineWindowHiddenBeforeWY confirms the window does not draw on
// scanlines above WY.
func TestRenderLineWindowHiddenBeforeWY(t *testing.T) {
	p := New(func(bit int) {})
	p.CPUWrite(0xFF40, 0)
	for i := uint16(0); i < 32*32; i++ {
		p.vram[0x9800-0x8000+i] = 0
		p.vram[0x9C00-0x8000+i] = 1
	}
	p.vram[0x8000-0x8000] = 0xFF
	p.vram[0x8001-0x8000] = 0x00
	p.vram[0x8010-0x8000] = 0x00
	p.vram[0x8011-0x8000] = 0xFF

	// BGP identity: color index n -> shade n.
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF4A, 50) // WY below line 0
	p.CPUWrite(0xFF4B, 7)
	p.CPUWrite(0xFF40, 0x91|0x20|0x40)

	p.Tick(80 + 172 + 1) // line 0 HBlank
	fb := p.Framebuffer()
	if fb[0] != dmgColors[1] {
		t.Fatalf("expected pure background shade on line 0 above WY, got %08X", fb[0])
	}
}
