package cpu

import "github.com/rng999/nescore/internal/bus"

// execute runs the instruction at opcode against address (already
// resolved by operandAddress) and returns any extra cycles beyond the
// opcode's base cost - branches taken/crossing a page, most notably.
// Unassigned opcode slots (including the twelve KIL/JAM opcodes real
// silicon locks up on) fall through to the default case and behave as
// a NOP costing their tabulated cycles rather than halting emulation.
func (cpu *CPU) execute(b *bus.Bus, opcode uint8, address uint16, pageCrossed bool) int {
	switch opcode {
	// Load/store
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.A = b.Read(address)
		cpu.setZN(cpu.A)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.X = b.Read(address)
		cpu.setZN(cpu.X)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.Y = b.Read(address)
		cpu.setZN(cpu.Y)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		b.Write(address, cpu.A)
	case 0x86, 0x96, 0x8E:
		b.Write(address, cpu.X)
	case 0x84, 0x94, 0x8C:
		b.Write(address, cpu.Y)

	// Transfers
	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0x9A:
		cpu.SP = cpu.X
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)

	// Stack
	case 0x48:
		cpu.push(b, cpu.A)
	case 0x68:
		cpu.A = cpu.pop(b)
		cpu.setZN(cpu.A)
	case 0x08:
		cpu.push(b, cpu.statusByte(true))
	case 0x28:
		cpu.setStatusByte(cpu.pop(b))

	// Arithmetic
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(b.Read(address))
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, 0xEB:
		cpu.sbc(b.Read(address))
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.compare(cpu.A, b.Read(address))
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, b.Read(address))
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, b.Read(address))

	// Increments/decrements
	case 0xE6, 0xF6, 0xEE, 0xFE:
		v := b.Read(address) + 1
		b.Write(address, v)
		cpu.setZN(v)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		v := b.Read(address) - 1
		b.Write(address, v)
		cpu.setZN(v)
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// Logic
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.A &= b.Read(address)
		cpu.setZN(cpu.A)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.A |= b.Read(address)
		cpu.setZN(cpu.A)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.A ^= b.Read(address)
		cpu.setZN(cpu.A)
	case 0x24, 0x2C:
		v := b.Read(address)
		cpu.Z = cpu.A&v == 0
		cpu.V = v&vFlagMask != 0
		cpu.N = v&nFlagMask != 0

	// Shifts/rotates
	case 0x0A:
		cpu.A = cpu.asl(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E:
		b.Write(address, cpu.asl(b.Read(address)))
	case 0x4A:
		cpu.A = cpu.lsr(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E:
		b.Write(address, cpu.lsr(b.Read(address)))
	case 0x2A:
		cpu.A = cpu.rol(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E:
		b.Write(address, cpu.rol(b.Read(address)))
	case 0x6A:
		cpu.A = cpu.ror(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E:
		b.Write(address, cpu.ror(b.Read(address)))

	// Jumps/calls
	case 0x4C, 0x6C:
		cpu.PC = address
	case 0x20:
		cpu.pushWord(b, cpu.PC-1)
		cpu.PC = address
	case 0x60:
		cpu.PC = cpu.popWord(b) + 1
	case 0x40:
		cpu.setStatusByte(cpu.pop(b))
		cpu.PC = cpu.popWord(b)
	case 0x00:
		cpu.pushWord(b, cpu.PC+1)
		cpu.push(b, cpu.statusByte(true))
		cpu.I = true
		low := uint16(b.Read(irqVector))
		high := uint16(b.Read(irqVector + 1))
		cpu.PC = (high << 8) | low

	// Branches
	case 0x90:
		return cpu.branch(!cpu.C, address, pageCrossed)
	case 0xB0:
		return cpu.branch(cpu.C, address, pageCrossed)
	case 0xF0:
		return cpu.branch(cpu.Z, address, pageCrossed)
	case 0xD0:
		return cpu.branch(!cpu.Z, address, pageCrossed)
	case 0x30:
		return cpu.branch(cpu.N, address, pageCrossed)
	case 0x10:
		return cpu.branch(!cpu.N, address, pageCrossed)
	case 0x50:
		return cpu.branch(!cpu.V, address, pageCrossed)
	case 0x70:
		return cpu.branch(cpu.V, address, pageCrossed)

	// Flags
	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xB8:
		cpu.V = false
	case 0xD8:
		cpu.D = false
	case 0xF8:
		cpu.D = true

	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA,
		0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		b.Read(address) // unofficial multi-byte NOPs still perform their bus read

	// Unofficial read-modify-write combos
	case 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13: // SLO
		v := cpu.asl(b.Read(address))
		b.Write(address, v)
		cpu.A |= v
		cpu.setZN(cpu.A)
	case 0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33: // RLA
		v := cpu.rol(b.Read(address))
		b.Write(address, v)
		cpu.A &= v
		cpu.setZN(cpu.A)
	case 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53: // SRE
		v := cpu.lsr(b.Read(address))
		b.Write(address, v)
		cpu.A ^= v
		cpu.setZN(cpu.A)
	case 0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73: // RRA
		v := cpu.ror(b.Read(address))
		b.Write(address, v)
		cpu.adc(v)
	case 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3: // DCP
		v := b.Read(address) - 1
		b.Write(address, v)
		cpu.compare(cpu.A, v)
	case 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3: // ISC/ISB
		v := b.Read(address) + 1
		b.Write(address, v)
		cpu.sbc(v)
	case 0x87, 0x97, 0x8F, 0x83: // SAX
		b.Write(address, cpu.A&cpu.X)
	case 0xA7, 0xB7, 0xAF, 0xBF, 0xA3, 0xB3: // LAX
		v := b.Read(address)
		cpu.A, cpu.X = v, v
		cpu.setZN(v)
	case 0x0B, 0x2B: // ANC
		cpu.A &= b.Read(address)
		cpu.setZN(cpu.A)
		cpu.C = cpu.N
	case 0x4B: // ALR
		cpu.A &= b.Read(address)
		cpu.A = cpu.lsr(cpu.A)
	case 0x6B: // ARR
		cpu.A &= b.Read(address)
		cpu.A = cpu.ror(cpu.A)
		cpu.C = cpu.A&0x40 != 0
		cpu.V = (cpu.A&0x40 != 0) != (cpu.A&0x20 != 0)
	case 0xCB: // AXS/SBX
		v := cpu.A & cpu.X
		m := b.Read(address)
		cpu.C = v >= m
		cpu.X = v - m
		cpu.setZN(cpu.X)

	// Highly unstable unofficial opcodes, included for opcode-table
	// completeness. Real hardware's behavior here depends on DRAM decay
	// and bus capacitance that no two dies agree on; these implement
	// the approximation most emulators converge on.
	case 0x9C: // SHY
		b.Write(address, cpu.Y&(uint8(address>>8)+1))
	case 0x9E: // SHX
		b.Write(address, cpu.X&(uint8(address>>8)+1))
	case 0x9B: // TAS
		cpu.SP = cpu.A & cpu.X
		b.Write(address, cpu.SP&(uint8(address>>8)+1))
	case 0x9F, 0x93: // AHX
		b.Write(address, cpu.A&cpu.X&(uint8(address>>8)+1))
	case 0xBB: // LAS
		v := b.Read(address) & cpu.SP
		cpu.A, cpu.X, cpu.SP = v, v, v
		cpu.setZN(v)
	case 0x8B: // XAA
		cpu.A = cpu.X & b.Read(address)
		cpu.setZN(cpu.A)

	default:
		// Undocumented opcode slot, including the KIL/JAM family:
		// treated as a NOP rather than a CPU hang.
	}
	return 0
}

func (cpu *CPU) adc(value uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)
	cpu.V = (cpu.A^value)&0x80 == 0 && (cpu.A^result)&0x80 != 0
	cpu.C = sum > 0xFF
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(value uint8) {
	cpu.adc(value ^ 0xFF)
}

func (cpu *CPU) compare(reg, value uint8) {
	cpu.C = reg >= value
	cpu.setZN(reg - value)
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.C = value&0x80 != 0
	result := value << 1
	cpu.setZN(result)
	return result
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.C = value&0x01 != 0
	result := value >> 1
	cpu.setZN(result)
	return result
}

func (cpu *CPU) rol(value uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 1
	}
	cpu.C = value&0x80 != 0
	result := (value << 1) | carryIn
	cpu.setZN(result)
	return result
}

func (cpu *CPU) ror(value uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 0x80
	}
	cpu.C = value&0x01 != 0
	result := (value >> 1) | carryIn
	cpu.setZN(result)
	return result
}

// branch applies a conditional branch: not taken costs nothing extra,
// taken costs one cycle, taken across a page boundary costs two.
func (cpu *CPU) branch(taken bool, target uint16, pageCrossed bool) int {
	if !taken {
		return 0
	}
	cpu.PC = target
	if pageCrossed {
		return 2
	}
	return 1
}
