package ppu

// dmgColors is the canonical four-shade DMG palette, darkest last, as
// opaque ARGB (0xAARRGGBB) words.
var dmgColors = [4]uint32{0xFFE0F8D0, 0xFF88C070, 0xFF345856, 0xFF081820}

// RenderBGScanlineUsingFetcher renders one 160-pixel background row using
// the tile-row fetcher, handling SCX sub-tile discard and the 32-tile
// tilemap wraparound.
func RenderBGScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte
	var q fifo
	fch := newBGFetcher(mem, &q)

	bgY := scy + ly
	mapRow := uint16(bgY/8) % 32
	fineY := bgY % 8
	col := uint16(scx / 8) % 32
	discard := int(scx % 8)

	x := 0
	first := true
	for x < 160 {
		tileAddr := mapBase + mapRow*32 + col
		fch.Configure(mapBase, tileData8000, tileAddr, fineY)
		q.Clear()
		fch.Fetch()
		start := 0
		if first {
			start = discard
			first = false
		}
		for i := start; i < 8 && x < 160; i++ {
			ci, _ := q.Pop()
			out[x] = ci
			x++
		}
		col = (col + 1) % 32
	}
	return out
}

// RenderWindowScanlineUsingFetcher renders the window layer for one
// scanline, leaving pixels left of wxStart at 0. wxStart may be negative
// (WX < 7); pixels it would place off-screen to the left are discarded.
func RenderWindowScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	var q fifo
	fch := newBGFetcher(mem, &q)

	mapRow := uint16(winLine/8) % 32
	fineY := winLine % 8

	x := wxStart
	col := uint16(0)
	for x < 160 {
		tileAddr := mapBase + mapRow*32 + col
		fch.Configure(mapBase, tileData8000, tileAddr, fineY)
		q.Clear()
		fch.Fetch()
		for i := 0; i < 8 && x < 160; i++ {
			ci, _ := q.Pop()
			if x >= 0 {
				out[x] = ci
			}
			x++
		}
		col++
	}
	return out
}

// Sprite is one OAM entry selected for a scanline.
type Sprite struct {
	Y, X, Tile, Attr byte
	OAMIndex         int
}

// ScanOAM walks all 40 OAM entries in index order and returns up to 10
// whose vertical extent covers ly, preserving OAM order for priority.
func ScanOAM(oam []byte, ly byte, size16 bool) []Sprite {
	size := 8
	if size16 {
		size = 16
	}
	var out []Sprite
	for i := 0; i < 40 && len(out) < 10; i++ {
		base := i * 4
		y := oam[base]
		x := oam[base+1]
		tile := oam[base+2]
		attr := oam[base+3]
		py := int(y) - 16
		if int(ly) >= py && int(ly) < py+size {
			out = append(out, Sprite{Y: y, X: x, Tile: tile, Attr: attr, OAMIndex: i})
		}
	}
	return out
}

// ComposeSpriteLine overlays up to 10 scanline sprites onto a background
// color-index row. Sprites are drawn in reverse OAM order so that a lower
// OAM index wins ties on overlapping X, matching the spec's tie-break
// rule. It returns the resulting color index per pixel (only meaningful
// where hit[x] is true) plus which OBP register produced it.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly byte, bgIdx [160]byte, size16 bool) (out [160]byte, pal [160]byte, hit [160]bool) {
	size := 8
	if size16 {
		size = 16
	}
	for i := len(sprites) - 1; i >= 0; i-- {
		s := sprites[i]
		flipY := s.Attr&0x40 != 0
		flipX := s.Attr&0x20 != 0
		palSel := byte(0)
		if s.Attr&0x10 != 0 {
			palSel = 1
		}
		behindBG := s.Attr&0x80 != 0

		py := int(s.Y) - 16
		row := int(ly) - py
		if row < 0 || row >= size {
			continue
		}
		if flipY {
			row = size - 1 - row
		}
		tile := s.Tile
		if size16 {
			if row < 8 {
				tile = s.Tile &^ 0x01
			} else {
				tile = s.Tile | 0x01
				row -= 8
			}
		}
		base := uint16(0x8000) + uint16(tile)*16 + uint16(row)*2
		lo := mem.Read(base)
		hi := mem.Read(base + 1)

		sx := int(s.X) - 8
		for col := 0; col < 8; col++ {
			px := sx + col
			if px < 0 || px >= 160 {
				continue
			}
			bit := 7 - col
			if flipX {
				bit = col
			}
			ci := ((hi>>uint(bit))&1)<<1 | ((lo >> uint(bit)) & 1)
			if ci == 0 {
				continue // transparent
			}
			if behindBG && bgIdx[px] != 0 {
				continue // hidden behind a non-zero BG/window pixel
			}
			out[px] = ci
			pal[px] = palSel
			hit[px] = true
		}
	}
	return
}

func paletteShade(reg byte, idx byte) uint32 {
	entry := (reg >> (idx * 2)) & 0x03
	return dmgColors[entry]
}

// renderLine composites BG, window, and sprites for scanline ly into the
// framebuffer. It runs once per line at the mode-3-to-0 (pixel-transfer to
// HBlank) transition.
func (p *PPU) renderLine(ly byte) {
	if ly >= ScreenHeight {
		return
	}

	bgWinEnable := p.lcdc&0x01 != 0
	var bgIdx [160]byte
	if bgWinEnable {
		mapBase := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		bgIdx = RenderBGScanlineUsingFetcher(p, mapBase, tileData8000, p.scx, p.scy, ly)
	}

	winEnable := bgWinEnable && p.lcdc&0x20 != 0 && ly >= p.wy
	if winEnable {
		winMapBase := uint16(0x9800)
		if p.lcdc&0x40 != 0 {
			winMapBase = 0x9C00
		}
		tileData8000 := p.lcdc&0x10 != 0
		wxStart := int(p.wx) - 7
		winLine := ly - p.wy
		winRow := RenderWindowScanlineUsingFetcher(p, winMapBase, tileData8000, wxStart, winLine)
		for x := wxStart; x < 160; x++ {
			if x < 0 {
				continue
			}
			bgIdx[x] = winRow[x]
		}
	}

	row := make([]uint32, 160)
	for x := 0; x < 160; x++ {
		row[x] = paletteShade(p.bgp, bgIdx[x])
	}

	if p.lcdc&0x02 != 0 {
		size16 := p.lcdc&0x04 != 0
		sprites := ScanOAM(p.oam[:], ly, size16)
		if len(sprites) > 0 {
			idx, pal, hit := ComposeSpriteLine(p, sprites, ly, bgIdx, size16)
			for x := 0; x < 160; x++ {
				if !hit[x] {
					continue
				}
				obp := p.obp0
				if pal[x] == 1 {
					obp = p.obp1
				}
				row[x] = paletteShade(obp, idx[x])
			}
		}
	}

	copy(p.fb[int(ly)*160:int(ly)*160+160], row)
}
