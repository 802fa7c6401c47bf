package cpu

// opcodeInfo describes one of the 256 possible opcode bytes: its
// addressing mode, base cycle cost, and whether a page-crossing indexed
// access adds one cycle (stores and a few read-modify-write unofficial
// opcodes never take the penalty even in indexed modes).
type opcodeInfo struct {
	mode             addressingMode
	cycles           uint8
	pageCrossPenalty bool
}

// opcodeModes lists the addressing mode of every opcode, byte-indexed.
// Unassigned/undocumented slots default to implied and are treated as a
// two-cycle NOP by execute's default case, standing in for the small
// set of 6502 opcodes real hardware jams on (KIL/JAM) rather than
// modeling a CPU hang.
var opcodeModes = [256]addressingMode{
	0x00: implied, 0x01: indexedIndirect, 0x03: indexedIndirect, 0x04: zeroPage,
	0x05: zeroPage, 0x06: zeroPage, 0x07: zeroPage, 0x08: implied,
	0x09: immediate, 0x0A: accumulator, 0x0B: immediate, 0x0C: absolute,
	0x0D: absolute, 0x0E: absolute, 0x0F: absolute,
	0x10: relative, 0x11: indirectIndexed, 0x13: indirectIndexed, 0x14: zeroPageX,
	0x15: zeroPageX, 0x16: zeroPageX, 0x17: zeroPageX, 0x18: implied,
	0x19: absoluteY, 0x1A: implied, 0x1B: absoluteY, 0x1C: absoluteX,
	0x1D: absoluteX, 0x1E: absoluteX, 0x1F: absoluteX,
	0x20: absolute, 0x21: indexedIndirect, 0x23: indexedIndirect, 0x24: zeroPage,
	0x25: zeroPage, 0x26: zeroPage, 0x27: zeroPage, 0x28: implied,
	0x29: immediate, 0x2A: accumulator, 0x2B: immediate, 0x2C: absolute,
	0x2D: absolute, 0x2E: absolute, 0x2F: absolute,
	0x30: relative, 0x31: indirectIndexed, 0x33: indirectIndexed, 0x34: zeroPageX,
	0x35: zeroPageX, 0x36: zeroPageX, 0x37: zeroPageX, 0x38: implied,
	0x39: absoluteY, 0x3A: implied, 0x3B: absoluteY, 0x3C: absoluteX,
	0x3D: absoluteX, 0x3E: absoluteX, 0x3F: absoluteX,
	0x40: implied, 0x41: indexedIndirect, 0x43: indexedIndirect, 0x44: zeroPage,
	0x45: zeroPage, 0x46: zeroPage, 0x47: zeroPage, 0x48: implied,
	0x49: immediate, 0x4A: accumulator, 0x4B: immediate, 0x4C: absolute,
	0x4D: absolute, 0x4E: absolute, 0x4F: absolute,
	0x50: relative, 0x51: indirectIndexed, 0x53: indirectIndexed, 0x54: zeroPageX,
	0x55: zeroPageX, 0x56: zeroPageX, 0x57: zeroPageX, 0x58: implied,
	0x59: absoluteY, 0x5A: implied, 0x5B: absoluteY, 0x5C: absoluteX,
	0x5D: absoluteX, 0x5E: absoluteX, 0x5F: absoluteX,
	0x60: implied, 0x61: indexedIndirect, 0x63: indexedIndirect, 0x64: zeroPage,
	0x65: zeroPage, 0x66: zeroPage, 0x67: zeroPage, 0x68: implied,
	0x69: immediate, 0x6A: accumulator, 0x6B: immediate, 0x6C: indirect,
	0x6D: absolute, 0x6E: absolute, 0x6F: absolute,
	0x70: relative, 0x71: indirectIndexed, 0x73: indirectIndexed, 0x74: zeroPageX,
	0x75: zeroPageX, 0x76: zeroPageX, 0x77: zeroPageX, 0x78: implied,
	0x79: absoluteY, 0x7A: implied, 0x7B: absoluteY, 0x7C: absoluteX,
	0x7D: absoluteX, 0x7E: absoluteX, 0x7F: absoluteX,
	0x80: immediate, 0x81: indexedIndirect, 0x82: immediate, 0x83: indexedIndirect,
	0x84: zeroPage, 0x85: zeroPage, 0x86: zeroPage, 0x87: zeroPage,
	0x88: implied, 0x89: immediate, 0x8A: implied, 0x8B: immediate,
	0x8C: absolute, 0x8D: absolute, 0x8E: absolute, 0x8F: absolute,
	0x90: relative, 0x91: indirectIndexed, 0x93: indirectIndexed, 0x94: zeroPageX,
	0x95: zeroPageX, 0x96: zeroPageY, 0x97: zeroPageY, 0x98: implied,
	0x99: absoluteY, 0x9A: implied, 0x9B: absoluteY, 0x9C: absoluteX,
	0x9D: absoluteX, 0x9E: absoluteY, 0x9F: absoluteY,
	0xA0: immediate, 0xA1: indexedIndirect, 0xA2: immediate, 0xA3: indexedIndirect,
	0xA4: zeroPage, 0xA5: zeroPage, 0xA6: zeroPage, 0xA7: zeroPage,
	0xA8: implied, 0xA9: immediate, 0xAA: implied, 0xAB: immediate,
	0xAC: absolute, 0xAD: absolute, 0xAE: absolute, 0xAF: absolute,
	0xB0: relative, 0xB1: indirectIndexed, 0xB3: indirectIndexed, 0xB4: zeroPageX,
	0xB5: zeroPageX, 0xB6: zeroPageY, 0xB7: zeroPageY, 0xB8: implied,
	0xB9: absoluteY, 0xBA: implied, 0xBB: absoluteY, 0xBC: absoluteX,
	0xBD: absoluteX, 0xBE: absoluteY, 0xBF: absoluteY,
	0xC0: immediate, 0xC1: indexedIndirect, 0xC2: immediate, 0xC3: indexedIndirect,
	0xC4: zeroPage, 0xC5: zeroPage, 0xC6: zeroPage, 0xC7: zeroPage,
	0xC8: implied, 0xC9: immediate, 0xCA: implied, 0xCB: immediate,
	0xCC: absolute, 0xCD: absolute, 0xCE: absolute, 0xCF: absolute,
	0xD0: relative, 0xD1: indirectIndexed, 0xD3: indirectIndexed, 0xD4: zeroPageX,
	0xD5: zeroPageX, 0xD6: zeroPageX, 0xD7: zeroPageX, 0xD8: implied,
	0xD9: absoluteY, 0xDA: implied, 0xDB: absoluteY, 0xDC: absoluteX,
	0xDD: absoluteX, 0xDE: absoluteX, 0xDF: absoluteX,
	0xE0: immediate, 0xE1: indexedIndirect, 0xE2: immediate, 0xE3: indexedIndirect,
	0xE4: zeroPage, 0xE5: zeroPage, 0xE6: zeroPage, 0xE7: zeroPage,
	0xE8: implied, 0xE9: immediate, 0xEA: implied, 0xEB: immediate,
	0xEC: absolute, 0xED: absolute, 0xEE: absolute, 0xEF: absolute,
	0xF0: relative, 0xF1: indirectIndexed, 0xF3: indirectIndexed, 0xF4: zeroPageX,
	0xF5: zeroPageX, 0xF6: zeroPageX, 0xF7: zeroPageX, 0xF8: implied,
	0xF9: absoluteY, 0xFA: implied, 0xFB: absoluteY, 0xFC: absoluteX,
	0xFD: absoluteX, 0xFE: absoluteX, 0xFF: absoluteX,
}

var opcodeCycles = [256]uint8{
	// KIL/JAM slots are costed like a two-cycle NOP; execute treats
	// them as NOPs instead of modeling a locked-up CPU.
	0x02: 2, 0x12: 2, 0x22: 2, 0x32: 2, 0x42: 2, 0x52: 2,
	0x62: 2, 0x72: 2, 0x92: 2, 0xB2: 2, 0xD2: 2, 0xF2: 2,

	0x00: 7, 0x01: 6, 0x03: 8, 0x04: 3, 0x05: 3, 0x06: 5, 0x07: 5, 0x08: 3,
	0x09: 2, 0x0A: 2, 0x0B: 2, 0x0C: 4, 0x0D: 4, 0x0E: 6, 0x0F: 6,
	0x10: 2, 0x11: 5, 0x13: 8, 0x14: 4, 0x15: 4, 0x16: 6, 0x17: 6, 0x18: 2,
	0x19: 4, 0x1A: 2, 0x1B: 7, 0x1C: 4, 0x1D: 4, 0x1E: 7, 0x1F: 7,
	0x20: 6, 0x21: 6, 0x23: 8, 0x24: 3, 0x25: 3, 0x26: 5, 0x27: 5, 0x28: 4,
	0x29: 2, 0x2A: 2, 0x2B: 2, 0x2C: 4, 0x2D: 4, 0x2E: 6, 0x2F: 6,
	0x30: 2, 0x31: 5, 0x33: 8, 0x34: 4, 0x35: 4, 0x36: 6, 0x37: 6, 0x38: 2,
	0x39: 4, 0x3A: 2, 0x3B: 7, 0x3C: 4, 0x3D: 4, 0x3E: 7, 0x3F: 7,
	0x40: 6, 0x41: 6, 0x43: 8, 0x44: 3, 0x45: 3, 0x46: 5, 0x47: 5, 0x48: 3,
	0x49: 2, 0x4A: 2, 0x4B: 2, 0x4C: 3, 0x4D: 4, 0x4E: 6, 0x4F: 6,
	0x50: 2, 0x51: 5, 0x53: 8, 0x54: 4, 0x55: 4, 0x56: 6, 0x57: 6, 0x58: 2,
	0x59: 4, 0x5A: 2, 0x5B: 7, 0x5C: 4, 0x5D: 4, 0x5E: 7, 0x5F: 7,
	0x60: 6, 0x61: 6, 0x63: 8, 0x64: 3, 0x65: 3, 0x66: 5, 0x67: 5, 0x68: 4,
	0x69: 2, 0x6A: 2, 0x6B: 2, 0x6C: 5, 0x6D: 4, 0x6E: 6, 0x6F: 6,
	0x70: 2, 0x71: 5, 0x73: 8, 0x74: 4, 0x75: 4, 0x76: 6, 0x77: 6, 0x78: 2,
	0x79: 4, 0x7A: 2, 0x7B: 7, 0x7C: 4, 0x7D: 4, 0x7E: 7, 0x7F: 7,
	0x80: 2, 0x81: 6, 0x82: 2, 0x83: 6, 0x84: 3, 0x85: 3, 0x86: 3, 0x87: 3,
	0x88: 2, 0x89: 2, 0x8A: 2, 0x8B: 2, 0x8C: 4, 0x8D: 4, 0x8E: 4, 0x8F: 4,
	0x90: 2, 0x91: 6, 0x93: 6, 0x94: 4, 0x95: 4, 0x96: 4, 0x97: 4, 0x98: 2,
	0x99: 5, 0x9A: 2, 0x9B: 5, 0x9C: 5, 0x9D: 5, 0x9E: 5, 0x9F: 5,
	0xA0: 2, 0xA1: 6, 0xA2: 2, 0xA3: 6, 0xA4: 3, 0xA5: 3, 0xA6: 3, 0xA7: 3,
	0xA8: 2, 0xA9: 2, 0xAA: 2, 0xAB: 2, 0xAC: 4, 0xAD: 4, 0xAE: 4, 0xAF: 4,
	0xB0: 2, 0xB1: 5, 0xB3: 5, 0xB4: 4, 0xB5: 4, 0xB6: 4, 0xB7: 4, 0xB8: 2,
	0xB9: 4, 0xBA: 2, 0xBB: 4, 0xBC: 4, 0xBD: 4, 0xBE: 4, 0xBF: 4,
	0xC0: 2, 0xC1: 6, 0xC2: 2, 0xC3: 8, 0xC4: 3, 0xC5: 3, 0xC6: 5, 0xC7: 5,
	0xC8: 2, 0xC9: 2, 0xCA: 2, 0xCB: 2, 0xCC: 4, 0xCD: 4, 0xCE: 6, 0xCF: 6,
	0xD0: 2, 0xD1: 5, 0xD3: 8, 0xD4: 4, 0xD5: 4, 0xD6: 6, 0xD7: 6, 0xD8: 2,
	0xD9: 4, 0xDA: 2, 0xDB: 7, 0xDC: 4, 0xDD: 4, 0xDE: 7, 0xDF: 7,
	0xE0: 2, 0xE1: 6, 0xE2: 2, 0xE3: 8, 0xE4: 3, 0xE5: 3, 0xE6: 5, 0xE7: 5,
	0xE8: 2, 0xE9: 2, 0xEA: 2, 0xEB: 2, 0xEC: 4, 0xED: 4, 0xEE: 6, 0xEF: 6,
	0xF0: 2, 0xF1: 5, 0xF3: 8, 0xF4: 4, 0xF5: 4, 0xF6: 6, 0xF7: 6, 0xF8: 2,
	0xF9: 4, 0xFA: 2, 0xFB: 7, 0xFC: 4, 0xFD: 4, 0xFE: 7, 0xFF: 7,
}

// readOpcodes take the extra page-cross cycle when the indexed address
// they read from crosses a page; stores and RMW opcodes never do.
var readOpcodes = map[uint8]bool{
	0xBD: true, 0xB9: true, 0xB1: true, 0xBE: true, 0xBC: true,
	0x7D: true, 0x79: true, 0x71: true, 0x3D: true, 0x39: true, 0x31: true,
	0x1D: true, 0x19: true, 0x11: true, 0x5D: true, 0x59: true, 0x51: true,
	0xDD: true, 0xD9: true, 0xD1: true,
	0xFD: true, 0xF9: true, 0xF1: true,
	0x1C: true, 0x3C: true, 0x5C: true, 0x7C: true, 0xDC: true, 0xFC: true,
	0xBF: true, 0xB3: true, 0xBB: true,
}

var opcodeTable [256]opcodeInfo

func init() {
	for i := 0; i < 256; i++ {
		opcodeTable[i] = opcodeInfo{
			mode:             opcodeModes[i],
			cycles:           opcodeCycles[i],
			pageCrossPenalty: readOpcodes[uint8(i)],
		}
	}
}
