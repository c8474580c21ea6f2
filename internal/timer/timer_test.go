package timer

import "testing"

func TestDIVIncrementsEvery256TCycles(t *testing.T) {
	tm := New(nil)
	tm.Tick(256)
	if tm.ReadDIV() != 1 {
		t.Fatalf("expected DIV=1 after 256 T-cycles, got %d", tm.ReadDIV())
	}
}

func TestWriteDIVResetsCounter(t *testing.T) {
	tm := New(nil)
	tm.Tick(512)
	tm.WriteDIV(0xFF)
	if tm.ReadDIV() != 0 {
		t.Fatalf("expected DIV reset to 0 on write, got %d", tm.ReadDIV())
	}
}

func TestTIMAIncrementsAtSelectedClock(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x05) // enabled, clock select 1 -> bit 3, every 16 T-cycles
	tm.Tick(16)
	if tm.ReadTIMA() != 1 {
		t.Fatalf("expected TIMA=1 after one falling edge, got %d", tm.ReadTIMA())
	}
	tm.Tick(16)
	if tm.ReadTIMA() != 2 {
		t.Fatalf("expected TIMA=2 after second falling edge, got %d", tm.ReadTIMA())
	}
}

func TestTIMAOverflowDelaysReloadByFourCycles(t *testing.T) {
	var fired bool
	tm := New(func() { fired = true })
	tm.WriteTMA(0x42)
	tm.WriteTAC(0x05) // bit 3, period 16
	tm.WriteTIMA(0xFF)
	tm.Tick(16) // falling edge -> overflow, reload scheduled but not yet landed
	if tm.ReadTIMA() != 0 {
		t.Fatalf("expected TIMA=0 immediately on overflow, got %d", tm.ReadTIMA())
	}
	if fired {
		t.Fatalf("IRQ should not fire before the 4-cycle reload delay elapses")
	}
	tm.Tick(3)
	if fired {
		t.Fatalf("IRQ should not fire one cycle early")
	}
	tm.Tick(1)
	if !fired {
		t.Fatalf("expected IRQ to fire once the reload delay elapses")
	}
	if tm.ReadTIMA() != 0x42 {
		t.Fatalf("expected TIMA reloaded from TMA, got %02X", tm.ReadTIMA())
	}
}

func TestWriteTIMADuringReloadDelayCancelsReload(t *testing.T) {
	tm := New(func() {})
	tm.WriteTMA(0x99)
	tm.WriteTAC(0x05)
	tm.WriteTIMA(0xFF)
	tm.Tick(16) // triggers overflow, delay=4
	tm.WriteTIMA(0x10)
	tm.Tick(4)
	if tm.ReadTIMA() != 0x10 {
		t.Fatalf("expected written TIMA value to stick, got %02X", tm.ReadTIMA())
	}
}

func TestDisablingTACStopsIncrement(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x00) // disabled
	tm.Tick(1000)
	if tm.ReadTIMA() != 0 {
		t.Fatalf("expected TIMA to stay 0 while disabled, got %d", tm.ReadTIMA())
	}
}

func TestWriteTACFallingEdgeTriggersImmediateIncrement(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x04) // clock select 0 -> bit 9, enabled
	tm.Tick(256)      // div=256: bit 9 still clear
	tm.Tick(256)      // div=512 -> bit9 set (512>>9=1)
	before := tm.ReadTIMA()
	tm.WriteTAC(0x00) // disable: if bit9 was set, this is a falling edge
	if tm.ReadTIMA() == before {
		t.Fatalf("expected disabling TAC on a set input bit to increment TIMA once")
	}
}
