package ppu

// bgFetcher and fifo implement one tile row worth of background/window
// pixel fetching, driven by RenderBGScanlineUsingFetcher and
// RenderWindowScanlineUsingFetcher in render.go — one Configure+Fetch
// per 8-pixel tile column crossed on a scanline.

// VRAMReader provides read-only access for the fetcher or scanline helpers.
// It abstracts how VRAM bytes are fetched (tests vs. live PPU).
type VRAMReader interface {
	Read(addr uint16) byte
}

// fifo is a ring buffer of 2-bit color indices (0..3), sized for four
// 8-pixel tile rows so a fetch can land before the previous row fully drains.
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// bgFetcher decodes one 8x1 tile-row slice of tile data into 2-bit
// color indices and pushes them into its fifo.
type bgFetcher struct {
	mem  VRAMReader
	fifo *fifo

	mapBase       uint16 // tilemap base, 0x9800 or 0x9C00
	tileData8000  bool   // true selects 0x8000-indexed addressing, false the signed 0x8800 mode
	tileIndexAddr uint16 // address of this column's tile index byte within the map
	fineY         byte   // row within the 8x8 tile, 0-7
}

func newBGFetcher(mem VRAMReader, f *fifo) *bgFetcher { return &bgFetcher{mem: mem, fifo: f} }

// Configure points the fetcher at the tile column the next Fetch should
// decode.
func (fch *bgFetcher) Configure(mapBase uint16, tileData8000 bool, tileIndexAddr uint16, fineY byte) {
	fch.mapBase = mapBase
	fch.tileData8000 = tileData8000
	fch.tileIndexAddr = tileIndexAddr
	fch.fineY = fineY & 7
}

// Fetch reads the configured tile's row bitplanes and pushes its 8
// color indices, most significant pixel (leftmost) first.
func (fch *bgFetcher) Fetch() {
	tileNum := fch.mem.Read(fch.tileIndexAddr)

	var rowAddr uint16
	if fch.tileData8000 {
		rowAddr = 0x8000 + uint16(tileNum)*16 + uint16(fch.fineY)*2
	} else {
		rowAddr = 0x9000 + uint16(int8(tileNum))*16 + uint16(fch.fineY)*2
	}

	lo := fch.mem.Read(rowAddr)
	hi := fch.mem.Read(rowAddr + 1)
	for px := byte(0); px < 8; px++ {
		bit := 7 - px
		ci := (hi>>bit)&1<<1 | (lo>>bit)&1
		fch.fifo.Push(ci)
	}
}
