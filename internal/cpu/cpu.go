package cpu

import (
	"github.com/dmgcore/gbemu/internal/bus"
)

// CPU is a cycle-counting (not cycle-accurate) interpreter for the Sharp
// SM83 instruction set used by the DMG. Step decodes and executes exactly
// one instruction — including any interrupt that preempts the fetch —
// and reports how many T-cycles it took so the caller can keep the bus's
// timer/PPU/DMA state in lockstep.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	halted bool

	bus *bus.Bus
}

// New returns a CPU wired to b. Registers start zeroed; call ResetNoBoot
// (or run a boot ROM via SetPC(0)) before Step.
func New(b *bus.Bus) *CPU {
	return &CPU{bus: b}
}

// SetPC overrides the program counter directly — used by a boot stub or
// by tests that want to start execution at a specific address.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Bus exposes the CPU's bus for tooling and tests that want to read/write
// memory without stepping.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// IME reports the interrupt master enable flag, delegated to the bus's
// interrupt controller. Exposed for trace/debug tooling.
func (c *CPU) IME() bool { return c.bus.Interrupts().IME() }

// ResetNoBoot loads the registers DMG hardware leaves behind once the
// boot ROM has handed off to cartridge code at 0x0100. Used when running
// without a boot ROM image.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.halted = false
	c.bus.Interrupts().Disable()
}

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// applyFlags writes Z/N/H/C into F, clearing the unused low nibble.
func (c *CPU) applyFlags(z, n, h, cy bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if cy {
		f |= flagC
	}
	c.F = f
}

// The aluXxx helpers compute an 8-bit ALU result and the flags it would
// set, without touching CPU state — callers decide whether to store the
// result (CP discards it) and always pass it through applyFlags.

func (c *CPU) aluAdd(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	h = (a&0x0F)+(b&0x0F) > 0x0F
	return res, res == 0, false, h, r > 0xFF
}

func (c *CPU) aluAdc(a, b byte) (res byte, z, n, h, cy bool) {
	carry := carryIn(c.F)
	r := uint16(a) + uint16(b) + uint16(carry)
	res = byte(r)
	h = uint16(a&0x0F)+uint16(b&0x0F)+carry > 0x0F
	return res, res == 0, false, h, r > 0xFF
}

func (c *CPU) aluSub(a, b byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	h = a&0x0F < b&0x0F
	return res, res == 0, true, h, a < b
}

func (c *CPU) aluSbc(a, b byte) (res byte, z, n, h, cy bool) {
	carry := carryIn(c.F)
	r := int16(a) - int16(b) - int16(carry)
	res = byte(r)
	h = int16(a&0x0F) < int16(b&0x0F)+int16(carry)
	return res, res == 0, true, h, int16(a) < int16(b)+int16(carry)
}

func (c *CPU) aluAnd(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	return res, res == 0, false, true, false
}

func (c *CPU) aluXor(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	return res, res == 0, false, false, false
}

func (c *CPU) aluOr(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	return res, res == 0, false, false, false
}

func carryIn(f byte) uint16 {
	if f&flagC != 0 {
		return 1
	}
	return 0
}

// execALU applies one of the eight accumulator ALU ops (the same
// ordering the opcode map uses: ADD, ADC, SUB, SBC, AND, XOR, OR, CP)
// against operand, storing into A unless it's a CP (flags only).
func (c *CPU) execALU(op byte, operand byte) {
	var res byte
	var z, n, h, cy bool
	switch (op >> 3) & 7 {
	case 0:
		res, z, n, h, cy = c.aluAdd(c.A, operand)
	case 1:
		res, z, n, h, cy = c.aluAdc(c.A, operand)
	case 2:
		res, z, n, h, cy = c.aluSub(c.A, operand)
	case 3:
		res, z, n, h, cy = c.aluSbc(c.A, operand)
	case 4:
		res, z, n, h, cy = c.aluAnd(c.A, operand)
	case 5:
		res, z, n, h, cy = c.aluXor(c.A, operand)
	case 6:
		res, z, n, h, cy = c.aluOr(c.A, operand)
	case 7:
		res, z, n, h, cy = c.aluSub(c.A, operand)
		c.applyFlags(z, n, h, cy)
		return
	}
	c.A = res
	c.applyFlags(z, n, h, cy)
}

func (c *CPU) busRead8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) busWrite8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	v := c.busRead8(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) busRead16(addr uint16) uint16 {
	lo := uint16(c.busRead8(addr))
	hi := uint16(c.busRead8(addr + 1))
	return lo | hi<<8
}

func (c *CPU) busWrite16(addr uint16, v uint16) {
	c.busWrite8(addr, byte(v))
	c.busWrite8(addr+1, byte(v>>8))
}

func (c *CPU) af() uint16     { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A, c.F = byte(v>>8), byte(v)&0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B, c.C = byte(v>>8), byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D, c.E = byte(v>>8), byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H, c.L = byte(v>>8), byte(v) }

// regByIndex/setRegByIndex implement the SM83's standard 3-bit register
// encoding (B,C,D,E,H,L,(HL),A) shared by the LD r,r' block, the 8-bit
// ALU block, and every CB-prefixed opcode — one place to get it right
// instead of three copies of the same switch.
func (c *CPU) regByIndex(idx byte) byte {
	switch idx & 7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.busRead8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setRegByIndex(idx byte, v byte) {
	switch idx & 7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.busWrite8(c.getHL(), v)
	default:
		c.A = v
	}
}

// rp16/setRP16 decode the 2-bit register-pair field used by 16-bit
// LD/INC/DEC/ADD HL opcodes: BC, DE, HL, SP in that order.
func (c *CPU) rp16(idx byte) uint16 {
	switch idx & 3 {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.SP
	}
}

func (c *CPU) setRP16(idx byte, v uint16) {
	switch idx & 3 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// stackPair/setStackPair decode the register-pair field used by
// PUSH/POP, which substitutes AF for SP as the fourth slot.
func (c *CPU) stackPair(idx byte) uint16 {
	if idx&3 == 3 {
		return c.af()
	}
	return c.rp16(idx)
}

func (c *CPU) setStackPair(idx byte, v uint16) {
	if idx&3 == 3 {
		c.setAF(v)
		return
	}
	c.setRP16(idx, v)
}

// condMet decodes the 2-bit condition field used by JR/JP/CALL/RET cc:
// NZ, Z, NC, C in that order.
func (c *CPU) condMet(cc byte) bool {
	switch cc & 3 {
	case 0:
		return c.F&flagZ == 0
	case 1:
		return c.F&flagZ != 0
	case 2:
		return c.F&flagC == 0
	default:
		return c.F&flagC != 0
	}
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.busWrite16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.busRead16(c.SP)
	c.SP += 2
	return v
}

// serviceInterrupt asks the bus's interrupt controller for the
// highest-priority pending, IME-gated interrupt and, if one exists,
// pushes PC and jumps to its vector. Returns 0 if nothing was serviced.
func (c *CPU) serviceInterrupt() int {
	vector, ok := c.bus.Interrupts().Dispatch()
	if !ok {
		return 0
	}
	c.halted = false
	c.push16(c.PC)
	c.PC = vector
	return 20
}

// Step decodes and runs one instruction, servicing a pending interrupt
// first if IME and something is flagged. It returns the T-cycle count
// the instruction (or interrupt dispatch) took.
func (c *CPU) Step() (cycles int) {
	isEI := false
	defer func() {
		if cycles > 0 {
			c.bus.Tick(cycles)
		}
		// Apply EI's one-instruction enable delay. EI itself is skipped so
		// IME is set only once the instruction after EI has completed.
		if !isEI {
			c.bus.Interrupts().Step()
		}
	}()

	ic := c.bus.Interrupts()

	if c.halted {
		if !ic.Pending() {
			return 4
		}
		// Wake on any pending, enabled interrupt: the simplified HALT
		// behavior this core implements (no HALT-bug double-fetch quirk).
		// With IME set, the interrupt is serviced just below.
		c.halted = false
	}

	if ic.IME() {
		if cyc := c.serviceInterrupt(); cyc != 0 {
			return cyc
		}
	}

	op := c.fetch8()
	switch op {
	case 0x00: // NOP
		return 4

	case 0x76: // HALT
		c.halted = true
		return 4

	case 0x10: // STOP (2-byte opcode; second byte conventionally 0x00)
		c.fetch8()
		return 4

	// LD r,d8
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		dst := (op >> 3) & 7
		c.setRegByIndex(dst, c.fetch8())
		return 8

	// LD (HL),d8
	case 0x36:
		c.busWrite8(c.getHL(), c.fetch8())
		return 12

	// LD r,r' / LD (HL),r / LD r,(HL) — the 64-opcode block at 0x40-0x7F
	// minus HALT (0x76), handled above.
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		dst, src := (op>>3)&7, op&7
		c.setRegByIndex(dst, c.regByIndex(src))
		if dst == 6 || src == 6 {
			return 8
		}
		return 4

	// LD rr,d16
	case 0x01, 0x11, 0x21, 0x31:
		c.setRP16((op>>4)&3, c.fetch16())
		return 12

	case 0x08: // LD (a16),SP
		c.busWrite16(c.fetch16(), c.SP)
		return 20

	// LD (BC),A / LD (DE),A
	case 0x02:
		c.busWrite8(c.getBC(), c.A)
		return 8
	case 0x12:
		c.busWrite8(c.getDE(), c.A)
		return 8

	// LD A,(BC) / LD A,(DE)
	case 0x0A:
		c.A = c.busRead8(c.getBC())
		return 8
	case 0x1A:
		c.A = c.busRead8(c.getDE())
		return 8

	// LD (HL+),A / LD A,(HL+) / LD (HL-),A / LD A,(HL-)
	case 0x22:
		hl := c.getHL()
		c.busWrite8(hl, c.A)
		c.setHL(hl + 1)
		return 8
	case 0x2A:
		hl := c.getHL()
		c.A = c.busRead8(hl)
		c.setHL(hl + 1)
		return 8
	case 0x32:
		hl := c.getHL()
		c.busWrite8(hl, c.A)
		c.setHL(hl - 1)
		return 8
	case 0x3A:
		hl := c.getHL()
		c.A = c.busRead8(hl)
		c.setHL(hl - 1)
		return 8

	// LDH (FF00+n),A / LDH A,(FF00+n)
	case 0xE0:
		c.busWrite8(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0:
		c.A = c.busRead8(0xFF00 + uint16(c.fetch8()))
		return 12

	// LD (FF00+C),A / LD A,(FF00+C)
	case 0xE2:
		c.busWrite8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2:
		c.A = c.busRead8(0xFF00 + uint16(c.C))
		return 8

	// LD (a16),A / LD A,(a16)
	case 0xEA:
		c.busWrite8(c.fetch16(), c.A)
		return 16
	case 0xFA:
		c.A = c.busRead8(c.fetch16())
		return 16

	// Accumulator rotates and flag ops
	case 0x07: // RLCA
		cy := c.A >> 7
		c.A = c.A<<1 | cy
		c.applyFlags(false, false, false, cy == 1)
		return 4
	case 0x0F: // RRCA
		cy := c.A & 1
		c.A = c.A>>1 | cy<<7
		c.applyFlags(false, false, false, cy == 1)
		return 4
	case 0x17: // RLA
		cy := c.A >> 7
		c.A = c.A<<1 | carryInByte(c.F)
		c.applyFlags(false, false, false, cy == 1)
		return 4
	case 0x1F: // RRA
		cy := c.A & 1
		c.A = c.A>>1 | carryInByte(c.F)<<7
		c.applyFlags(false, false, false, cy == 1)
		return 4
	case 0x27: // DAA
		c.execDAA()
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = c.F&(flagZ|flagC) | flagN | flagH
		return 4
	case 0x37: // SCF
		c.F = c.F&flagZ | flagC
		return 4
	case 0x3F: // CCF
		cy := c.F&flagC == 0
		c.applyFlags(c.F&flagZ != 0, false, false, cy)
		return 4

	// INC/DEC on 8-bit registers and (HL)
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		idx := (op >> 3) & 7
		old := c.regByIndex(idx)
		c.setRegByIndex(idx, old+1)
		c.applyFlags(old+1 == 0, false, old&0x0F == 0x0F, c.F&flagC != 0)
		return 4
	case 0x34:
		addr := c.getHL()
		old := c.busRead8(addr)
		c.busWrite8(addr, old+1)
		c.applyFlags(old+1 == 0, false, old&0x0F == 0x0F, c.F&flagC != 0)
		return 12
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		idx := (op >> 3) & 7
		old := c.regByIndex(idx)
		c.setRegByIndex(idx, old-1)
		c.applyFlags(old-1 == 0, true, old&0x0F == 0x00, c.F&flagC != 0)
		return 4
	case 0x35:
		addr := c.getHL()
		old := c.busRead8(addr)
		c.busWrite8(addr, old-1)
		c.applyFlags(old-1 == 0, true, old&0x0F == 0x00, c.F&flagC != 0)
		return 12

	// 8-bit ALU, register/(HL) operand: ADD, ADC, SUB, SBC, AND, XOR, OR, CP
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
		0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F,
		0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97,
		0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F,
		0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7,
		0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF,
		0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7,
		0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		src := op & 7
		c.execALU(op, c.regByIndex(src))
		if src == 6 {
			return 8
		}
		return 4

	// 8-bit ALU, immediate operand
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		c.execALU(op, c.fetch8())
		return 8

	// Unconditional jumps/calls/returns
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xE9: // JP (HL)
		c.PC = c.getHL()
		return 4
	case 0x18: // JR r8
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	case 0xCD: // CALL a16
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.bus.Interrupts().EnableNow()
		return 16

	// Conditional jumps/calls/returns
	case 0x20, 0x28, 0x30, 0x38: // JR cc,r8
		cc := (op >> 3) & 3
		off := int8(c.fetch8())
		if c.condMet(cc) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12
		}
		return 8
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		cc := (op >> 3) & 3
		addr := c.fetch16()
		if c.condMet(cc) {
			c.PC = addr
			return 16
		}
		return 12
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,a16
		cc := (op >> 3) & 3
		addr := c.fetch16()
		if c.condMet(cc) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		cc := (op >> 3) & 3
		if c.condMet(cc) {
			c.PC = c.pop16()
			return 20
		}
		return 8

	// RST t: t = opcode's middle 3 bits as a multiple of 8
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 16

	// 16-bit INC/DEC/ADD HL,rr
	case 0x03, 0x13, 0x23, 0x33:
		idx := (op >> 4) & 3
		c.setRP16(idx, c.rp16(idx)+1)
		return 8
	case 0x0B, 0x1B, 0x2B, 0x3B:
		idx := (op >> 4) & 3
		c.setRP16(idx, c.rp16(idx)-1)
		return 8
	case 0x09, 0x19, 0x29, 0x39:
		idx := (op >> 4) & 3
		operand := c.rp16(idx)
		hl := c.getHL()
		r := uint32(hl) + uint32(operand)
		h := (hl&0x0FFF)+(operand&0x0FFF) > 0x0FFF
		c.setHL(uint16(r))
		c.applyFlags(c.F&flagZ != 0, false, h, r > 0xFFFF)
		return 8

	// Stack-pointer ops
	case 0xF8: // LD HL,SP+r8
		off := int8(c.fetch8())
		_, _, _, h, cy := c.aluAdd(byte(c.SP), byte(off))
		c.setHL(uint16(int32(int16(c.SP)) + int32(off)))
		c.applyFlags(false, false, h, cy)
		return 12
	case 0xF9: // LD SP,HL
		c.SP = c.getHL()
		return 8
	case 0xE8: // ADD SP,r8
		off := int8(c.fetch8())
		_, _, _, h, cy := c.aluAdd(byte(c.SP), byte(off))
		c.SP = uint16(int32(int16(c.SP)) + int32(off))
		c.applyFlags(false, false, h, cy)
		return 16

	// PUSH/POP
	case 0xC5, 0xD5, 0xE5, 0xF5:
		c.push16(c.stackPair((op >> 4) & 3))
		return 16
	case 0xC1, 0xD1, 0xE1, 0xF1:
		c.setStackPair((op>>4)&3, c.pop16())
		return 12

	// EI/DI
	case 0xF3: // DI
		c.bus.Interrupts().Disable()
		return 4
	case 0xFB: // EI — takes effect after the instruction that follows it
		c.bus.Interrupts().RequestEnable()
		isEI = true
		return 4

	case 0xCB:
		return c.stepCB()

	default:
		// Undocumented/illegal opcodes never occur in real cartridge code
		// this core targets; treat as a 4-cycle NOP rather than faulting.
		return 4
	}
}

func carryInByte(f byte) byte {
	if f&flagC != 0 {
		return 1
	}
	return 0
}

// execDAA adjusts A into packed BCD after an 8-bit add or subtract,
// using N/H/C from the preceding instruction's flags.
func (c *CPU) execDAA() {
	a := c.A
	cy := c.F&flagC != 0
	if c.F&flagN == 0 {
		if cy || a > 0x99 {
			a += 0x60
			cy = true
		}
		if c.F&flagH != 0 || a&0x0F > 9 {
			a += 0x06
		}
	} else {
		if cy {
			a -= 0x60
		}
		if c.F&flagH != 0 {
			a -= 0x06
		}
	}
	c.A = a
	c.applyFlags(a == 0, c.F&flagN != 0, false, cy)
}

// stepCB decodes a CB-prefixed opcode: rotate/shift/swap, BIT, RES, or
// SET, each against one of the eight regByIndex operands.
func (c *CPU) stepCB() int {
	cb := c.fetch8()
	reg := cb & 7
	group := (cb >> 6) & 3
	bit := (cb >> 3) & 7

	cycles := 8
	if reg == 6 {
		if group == 1 { // BIT b,(HL) reads but never writes back
			cycles = 12
		} else {
			cycles = 16
		}
	}

	switch group {
	case 0: // rotate/shift/swap, selected by bit
		v := c.regByIndex(reg)
		var cy byte
		switch bit {
		case 0: // RLC
			cy = v >> 7
			v = v<<1 | cy
		case 1: // RRC
			cy = v & 1
			v = v>>1 | cy<<7
		case 2: // RL
			cy = v >> 7
			v = v<<1 | carryInByte(c.F)
		case 3: // RR
			cy = v & 1
			v = v>>1 | carryInByte(c.F)<<7
		case 4: // SLA
			cy = v >> 7
			v <<= 1
		case 5: // SRA
			cy = v & 1
			v = v>>1 | v&0x80
		case 6: // SWAP
			v = v<<4 | v>>4
		case 7: // SRL
			cy = v & 1
			v >>= 1
		}
		c.setRegByIndex(reg, v)
		if bit == 6 { // SWAP clears carry regardless of the shifted-out bit
			c.applyFlags(v == 0, false, false, false)
		} else {
			c.applyFlags(v == 0, false, false, cy == 1)
		}
	case 1: // BIT bit,r — Z reflects the tested bit, C untouched
		set := c.regByIndex(reg)>>bit&1 != 0
		c.F = c.F&flagC | flagH
		if !set {
			c.F |= flagZ
		}
	case 2: // RES bit,r
		c.setRegByIndex(reg, c.regByIndex(reg)&^(1<<bit))
	case 3: // SET bit,r
		c.setRegByIndex(reg, c.regByIndex(reg)|1<<bit)
	}
	return cycles
}
