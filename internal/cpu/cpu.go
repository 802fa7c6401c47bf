// Package cpu implements the 6502 CPU interpreter. It holds no state of
// its own beyond the CPU's registers, flags and a running cycle count;
// every memory access and
// every interrupt signal flows through the *bus.Bus passed into Step,
// per the bus-owns-the-data architecture described in the bus package.
package cpu

import "github.com/rng999/nescore/internal/bus"

// addressingMode enumerates the 6502's addressing modes.
type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeroPage
	zeroPageX
	zeroPageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indexedIndirect // (zp,X)
	indirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// CPU holds the 6502's registers and status flags. All bus traffic -
// reads, writes, interrupt signaling, DMA stalls - goes through the
// *bus.Bus given to Step and Reset.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C, Z, I, D, B, V, N bool

	cycles uint64
}

// New returns a CPU in an unreset state; call Reset before Step.
func New() *CPU {
	return &CPU{SP: 0xFD}
}

// Reset runs the 6502 power-up/reset sequence: registers to their
// known state, five dummy bus cycles, then PC loaded from the reset
// vector.
func (cpu *CPU) Reset(b *bus.Bus) {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true

	for i := 0; i < 5; i++ {
		b.Read(cpu.PC)
		cpu.cycles++
	}
	low := uint16(b.Read(resetVector))
	high := uint16(b.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 2
}

// Step executes one instruction (or services a pending interrupt, or
// consumes one cycle of a DMA stall) and returns the cycle count it
// took.
func (cpu *CPU) Step(b *bus.Bus) int {
	if b.CPU.Stall > 0 {
		b.CPU.Stall--
		return 1
	}

	switch b.CPU.Pending {
	case bus.NMI:
		b.CPU.Pending = bus.NoInterrupt
		cpu.interrupt(b, nmiVector)
		cpu.cycles += 7
		return 7
	case bus.IRQ:
		if !cpu.I {
			b.CPU.Pending = bus.NoInterrupt
			cpu.interrupt(b, irqVector)
			cpu.cycles += 7
			return 7
		}
	}

	opcode := b.Read(cpu.PC)
	info := opcodeTable[opcode]

	address, pageCrossed := cpu.operandAddress(b, info.mode)
	extra := cpu.execute(b, opcode, address, pageCrossed)

	if pageCrossed && info.pageCrossPenalty {
		extra++
	}

	total := int(info.cycles) + extra
	cpu.cycles += uint64(total)
	return total
}

// operandAddress resolves the effective address for mode, advancing PC
// past the instruction's operand bytes. The boolean result reports
// whether an indexed access crossed a page boundary.
func (cpu *CPU) operandAddress(b *bus.Bus, mode addressingMode) (uint16, bool) {
	switch mode {
	case implied, accumulator:
		cpu.PC++
		return 0, false

	case immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case zeroPage:
		address := uint16(b.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case zeroPageX:
		base := b.Read(cpu.PC + 1)
		address := uint16((base + cpu.X) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case zeroPageY:
		base := b.Read(cpu.PC + 1)
		address := uint16((base + cpu.Y) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case relative:
		offset := int8(b.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		return newPC, (oldPC & pageMask) != (newPC & pageMask)

	case absolute:
		low := uint16(b.Read(cpu.PC + 1))
		high := uint16(b.Read(cpu.PC + 2))
		cpu.PC += 3
		return (high << 8) | low, false

	case absoluteX:
		low := uint16(b.Read(cpu.PC + 1))
		high := uint16(b.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case absoluteY:
		low := uint16(b.Read(cpu.PC + 1))
		high := uint16(b.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case indirect: // JMP only - reproduces the page-wrap bug
		lowPtr := uint16(b.Read(cpu.PC + 1))
		highPtr := uint16(b.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr
		cpu.PC += 3

		var low, high uint16
		low = uint16(b.Read(ptr))
		if ptr&zeroPageMask == zeroPageMask {
			high = uint16(b.Read(ptr & pageMask))
		} else {
			high = uint16(b.Read(ptr + 1))
		}
		return (high << 8) | low, false

	case indexedIndirect:
		base := b.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(b.Read(uint16(ptr)))
		high := uint16(b.Read(uint16((ptr + 1) & zeroPageMask)))
		cpu.PC += 2
		return (high << 8) | low, false

	case indirectIndexed:
		ptr := uint16(b.Read(cpu.PC + 1))
		low := uint16(b.Read(ptr))
		high := uint16(b.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		return address, (base & pageMask) != (address & pageMask)

	default:
		return 0, false
	}
}

func (cpu *CPU) push(b *bus.Bus, value uint8) {
	b.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop(b *bus.Bus) uint8 {
	cpu.SP++
	return b.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(b *bus.Bus, value uint16) {
	cpu.push(b, uint8(value>>8))
	cpu.push(b, uint8(value&0xFF))
}

func (cpu *CPU) popWord(b *bus.Bus) uint16 {
	low := uint16(cpu.pop(b))
	high := uint16(cpu.pop(b))
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

// statusByte packs the flags into the format pushed by PHP/BRK: bit 5
// always set, bit 4 (B) set only for PHP/BRK, never for a hardware
// interrupt push.
func (cpu *CPU) statusByte(brk bool) uint8 {
	var s uint8
	if cpu.N {
		s |= nFlagMask
	}
	if cpu.V {
		s |= vFlagMask
	}
	s |= unusedMask
	if brk {
		s |= bFlagMask
	}
	if cpu.D {
		s |= dFlagMask
	}
	if cpu.I {
		s |= iFlagMask
	}
	if cpu.Z {
		s |= zFlagMask
	}
	if cpu.C {
		s |= cFlagMask
	}
	return s
}

func (cpu *CPU) setStatusByte(s uint8) {
	cpu.N = s&nFlagMask != 0
	cpu.V = s&vFlagMask != 0
	cpu.D = s&dFlagMask != 0
	cpu.I = s&iFlagMask != 0
	cpu.Z = s&zFlagMask != 0
	cpu.C = s&cFlagMask != 0
}

// interrupt pushes PC and status (with B clear, as hardware does for
// NMI/IRQ/reset) and jumps through vector.
func (cpu *CPU) interrupt(b *bus.Bus, vector uint16) {
	cpu.pushWord(b, cpu.PC)
	cpu.push(b, cpu.statusByte(false))
	cpu.I = true
	low := uint16(b.Read(vector))
	high := uint16(b.Read(vector + 1))
	cpu.PC = (high << 8) | low
}
