// Package bus implements the Memory Bus: the substrate through which the
// CPU addresses RAM, PPU/APU registers, controllers and cartridge memory,
// and through which DMA and bank switching occur. It is the only
// component legitimately traversed during register reads and DMA, so it
// holds the other processors' public state *by data*, never by calling
// back into their interpreters - see the cpu/ppu/apu packages, which take
// a *Bus by mutable loan for the duration of one Step.
package bus

import (
	"github.com/rng999/nescore/internal/cartridge"
	"github.com/rng999/nescore/internal/input"
)

// Bus owns everything a CPU bus access can reach: the mapper, CPU work
// RAM, the two controllers, and the register-backed public state of the
// CPU, PPU and APU.
type Bus struct {
	Mapper cartridge.Mapper

	RAM [0x0800]byte

	Controllers [2]input.Controller

	CPU CPUState
	PPU PPUState
	APU APUState

	openBus uint8
}

// New constructs a Bus wired to mapper.
func New(mapper cartridge.Mapper) *Bus {
	return &Bus{Mapper: mapper}
}

// Read performs a CPU-space read, routing by address range per the
// memory map in spec §4.1. Reads of $4014 and $4018-$401F return the
// last value driven onto the bus; every other address not listed here
// (including the write-only APU registers and $4020-$5FFF) falls through
// to the mapper, which returns 0 for addresses it does not decode.
func (b *Bus) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = b.RAM[address%0x0800]
	case address < 0x4000:
		value = b.readPPURegister(0x2000 + address%8)
	case address == 0x4014:
		value = b.openBus
	case address == 0x4015:
		value = b.APU.readStatus()
	case address == 0x4016:
		value = b.Controllers[0].Read() | (b.openBus & 0xE0)
	case address == 0x4017:
		value = b.Controllers[1].Read() | (b.openBus & 0xE0)
	case address >= 0x4018 && address < 0x4020:
		value = b.openBus
	default:
		value = b.Mapper.Read(address)
	}
	b.openBus = value
	return value
}

// Write performs a CPU-space write, routing by address range. A write to
// $4014 triggers page-0 OAM DMA.
func (b *Bus) Write(address uint16, value uint8) {
	b.openBus = value
	switch {
	case address < 0x2000:
		b.RAM[address%0x0800] = value
	case address < 0x4000:
		b.writePPURegister(0x2000+address%8, value)
	case address == 0x4014:
		b.oamDMA(value)
	case address == 0x4015:
		b.APU.writeControl(value)
	case address == 0x4016:
		b.Controllers[0].Write(value)
		b.Controllers[1].Write(value)
	case address == 0x4017:
		b.APU.writeFrameCounter(value)
	case address >= 0x4000 && address <= 0x4013:
		b.APU.writeRegister(address, value)
	default:
		b.Mapper.Write(address, value)
	}
}

// oamDMA copies 256 bytes from CPU page (page<<8) into OAM, starting at
// the current OAM address and wrapping on overflow, then stalls the CPU
// 513 cycles.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	addr := b.PPU.OAMAddress
	for i := 0; i < 256; i++ {
		b.PPU.OAM[addr] = b.Read(base + uint16(i))
		addr++
	}
	b.CPU.Stall += 513
}

// PPURead performs a read in the PPU's own 14-bit address space
// ($0000-$3FFF): pattern tables through the mapper, nametables through
// mirroring, and palette RAM directly. It is exported for use by the ppu
// package's background/sprite pattern fetches.
func (b *Bus) PPURead(address uint16) uint8 {
	address %= 0x4000
	switch {
	case address < 0x2000:
		return b.Mapper.Read(address)
	case address < 0x3F00:
		// Mirroring is asked of the mapper on every access: MMC1
		// rewrites it at runtime through its control register.
		folded := b.Mapper.MirroringMode().MirrorNametable(address)
		return b.PPU.Nametable[(folded-0x2000)%0x0800]
	default:
		return b.readPalette(address % 32)
	}
}

// PPUWrite performs a write in the PPU's own address space.
func (b *Bus) PPUWrite(address uint16, value uint8) {
	address %= 0x4000
	switch {
	case address < 0x2000:
		b.Mapper.Write(address, value)
	case address < 0x3F00:
		folded := b.Mapper.MirroringMode().MirrorNametable(address)
		b.PPU.Nametable[(folded-0x2000)%0x0800] = value
	default:
		b.writePalette(address%32, value)
	}
}

// readPalette and writePalette fold addresses $3F10/$3F14/$3F18/$3F1C
// onto their base colors $3F00/$3F04/$3F08/$3F0C, matching the hardware
// mirror that keeps sprite palette 0 tied to background palette 0.
func (b *Bus) readPalette(address uint16) uint8 {
	return b.PPU.Palette[paletteIndex(address)]
}

func (b *Bus) writePalette(address uint16, value uint8) {
	b.PPU.Palette[paletteIndex(address)] = value
}

func paletteIndex(address uint16) uint16 {
	if address >= 16 && address%4 == 0 {
		return address - 16
	}
	return address
}

// readPPURegister and writePPURegister implement the seven memory-mapped
// PPU registers visible to the CPU at $2000-$2007. They live on Bus
// rather than PPUState because $2007 access needs the mapper/nametable
// path PPURead/PPUWrite provide.
func (b *Bus) readPPURegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		return b.readStatus()
	case 0x2004:
		return b.PPU.OAM[b.PPU.OAMAddress]
	case 0x2007:
		return b.readData()
	default:
		return b.PPU.lastRegisterWrite
	}
}

func (b *Bus) writePPURegister(address uint16, value uint8) {
	b.PPU.lastRegisterWrite = value
	switch address {
	case 0x2000:
		b.writeControl(value)
	case 0x2001:
		b.writeMask(value)
	case 0x2003:
		b.PPU.OAMAddress = value
	case 0x2004:
		b.PPU.OAM[b.PPU.OAMAddress] = value
		b.PPU.OAMAddress++
	case 0x2005:
		b.writeScroll(value)
	case 0x2006:
		b.writeAddress(value)
	case 0x2007:
		b.writeData(value)
	}
}

func (b *Bus) readStatus() uint8 {
	var v uint8
	if b.PPU.SpriteOverflow {
		v |= 1 << 5
	}
	if b.PPU.Sprite0Hit {
		v |= 1 << 6
	}
	if b.PPU.NMIOccurred {
		v |= 1 << 7
	}
	b.PPU.NMIOccurred = false
	b.PPU.NMIChange()
	b.PPU.W = false
	return v | (b.PPU.lastRegisterWrite & 0x1F)
}

func (b *Bus) readData() uint8 {
	v := b.PPU.V
	value := b.PPURead(v)
	if v%0x4000 < 0x3F00 {
		buffered := b.PPU.ReadBuffer
		b.PPU.ReadBuffer = value
		value = buffered
	} else {
		b.PPU.ReadBuffer = b.PPURead(v - 0x1000)
	}
	b.advanceV()
	return value
}

func (b *Bus) writeData(value uint8) {
	b.PPUWrite(b.PPU.V, value)
	b.advanceV()
}

func (b *Bus) advanceV() {
	if b.PPU.Increment32 {
		b.PPU.V += 32
	} else {
		b.PPU.V++
	}
	b.PPU.V &= 0x7FFF
}

func (b *Bus) writeControl(value uint8) {
	b.PPU.NametableSelect = value & 3
	b.PPU.Increment32 = value&0x04 != 0
	b.PPU.SpriteTable = (value >> 3) & 1
	b.PPU.BackgroundTable = (value >> 4) & 1
	b.PPU.SpriteSize16 = value&0x20 != 0
	b.PPU.NMIOutput = value&0x80 != 0
	b.PPU.NMIChange()
	b.PPU.T = (b.PPU.T & 0xF3FF) | (uint16(value)&0x03)<<10
}

func (b *Bus) writeMask(value uint8) {
	b.PPU.Grayscale = value&0x01 != 0
	b.PPU.ShowLeftBG = value&0x02 != 0
	b.PPU.ShowLeftSprites = value&0x04 != 0
	b.PPU.ShowBackground = value&0x08 != 0
	b.PPU.ShowSprites = value&0x10 != 0
	b.PPU.EmphasizeRed = value&0x20 != 0
	b.PPU.EmphasizeGreen = value&0x40 != 0
	b.PPU.EmphasizeBlue = value&0x80 != 0
}

func (b *Bus) writeScroll(value uint8) {
	if !b.PPU.W {
		b.PPU.T = (b.PPU.T & 0x7FE0) | uint16(value>>3)
		b.PPU.X = value & 0x7
		b.PPU.W = true
	} else {
		b.PPU.T = (b.PPU.T & 0x0C1F) | (uint16(value&0xF8) << 2) | (uint16(value&0x07) << 12)
		b.PPU.W = false
	}
}

func (b *Bus) writeAddress(value uint8) {
	if !b.PPU.W {
		b.PPU.T = (b.PPU.T & 0x80FF) | (uint16(value&0x3F) << 8)
		b.PPU.W = true
	} else {
		b.PPU.T = (b.PPU.T & 0xFF00) | uint16(value)
		b.PPU.V = b.PPU.T
		b.PPU.W = false
	}
}

// Reset restores power-up state across the bus-owned data: RAM keeps
// whatever it held (real hardware RAM is not zeroed by reset), the CPU,
// PPU and APU public state blocks are zeroed, and both controllers are
// cleared.
func (b *Bus) Reset() {
	b.PPU = PPUState{}
	b.APU = APUState{}
	b.CPU = CPUState{}
	b.Controllers[0].Reset()
	b.Controllers[1].Reset()
}
