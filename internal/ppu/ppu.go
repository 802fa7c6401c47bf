// Package ppu implements the picture processing unit's per-dot pixel
// pipeline. Like the cpu package, it holds only the interpreter's
// private working state; the register-backed state a CPU access can
// see lives in bus.PPUState and is reached through the *bus.Bus handed
// to Step.
package ppu

import "github.com/rng999/nescore/internal/bus"

// palette is the canonical 64-entry NES color table, ARGB8888.
var palette = [64]uint32{
	0xFF757575, 0xFF271B8F, 0xFF0000AB, 0xFF47009F,
	0xFF8F0077, 0xFFAB0013, 0xFFA70000, 0xFF7F0B00,
	0xFF432F00, 0xFF004700, 0xFF005100, 0xFF003F17,
	0xFF1B3F5F, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFBCBCBC, 0xFF0073EF, 0xFF233BEF, 0xFF8300F3,
	0xFFBF00BF, 0xFFE7005B, 0xFFDB2B00, 0xFFCB4F0F,
	0xFF8B7300, 0xFF009700, 0xFF00AB00, 0xFF00933B,
	0xFF00838B, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFFFF, 0xFF3FBFFF, 0xFF5F97FF, 0xFFA78BFD,
	0xFFF77BFF, 0xFFFF77B7, 0xFFFF7763, 0xFFFF9B3B,
	0xFFF3BF3F, 0xFF83D313, 0xFF4FDF4B, 0xFF58F898,
	0xFF00EBDB, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFFFF, 0xFFABE7FF, 0xFFC7D7FF, 0xFFD7CBFF,
	0xFFFFC7FF, 0xFFFFC7DB, 0xFFFFBFB3, 0xFFFFDBAB,
	0xFFFFE7A3, 0xFFE3FFA3, 0xFFABF3BF, 0xFFB3FFCF,
	0xFF9FFFF3, 0xFF000000, 0xFF000000, 0xFF000000,
}

// Frame is one rendered 256x240 ARGB8888 frame.
type Frame [256 * 240]uint32

// PPU is the pixel pipeline's private state: dot/scanline position,
// the two frame buffers rendering alternates between, and the
// background/sprite fetch latches that feed renderPixel.
type PPU struct {
	// Cycle and Scanline are the pipeline's current dot (0-340) and
	// line (0-261, 261 being the pre-render line). FrameCount counts
	// completed frames since reset. They are exported for hosts and
	// tests that need to observe where the pipeline is; only the ppu
	// package writes them.
	Cycle      int
	Scanline   int
	FrameCount uint64

	front   *Frame
	back    *Frame
	isFront bool

	nameByte uint8
	attrByte uint8
	lowByte  uint8
	highByte uint8
	tileData uint64

	frameParity uint8

	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]uint8
	spritePriorities [8]uint8
	spriteIndices    [8]uint8
}

// New returns a PPU with both frame buffers cleared to black.
func New() *PPU {
	p := &PPU{front: &Frame{}, back: &Frame{}, isFront: true}
	for i := range p.front {
		p.front[i] = 0xFF000000
		p.back[i] = 0xFF000000
	}
	return p
}

// Reset matches power-up: the pipeline parks at the last dot of the
// post-render line (240), and the register-backed PPU state on the bus
// is zeroed.
func (p *PPU) Reset(b *bus.Bus) {
	p.Cycle = 340
	p.Scanline = 240
	p.FrameCount = 0
	b.PPU = bus.PPUState{}
}

// Frame returns the most recently completed frame buffer.
func (p *PPU) Frame() *Frame {
	if p.isFront {
		return p.front
	}
	return p.back
}

// Step advances the pixel pipeline by one PPU dot (one third of a CPU
// cycle) and reports whether that dot completed a frame.
func (p *PPU) Step(b *bus.Bus) bool {
	frameDone := p.tick(b)

	rendering := b.PPU.ShowBackground || b.PPU.ShowSprites
	preline := p.Scanline == 261
	visibleLine := p.Scanline < 240
	renderLine := preline || visibleLine
	prefetchCycle := p.Cycle >= 321 && p.Cycle <= 336
	visibleCycle := p.Cycle >= 1 && p.Cycle <= 256
	fetchCycle := prefetchCycle || visibleCycle

	if rendering {
		if visibleLine && visibleCycle {
			p.renderPixel(b)
		}
		if renderLine && fetchCycle {
			p.tileData <<= 4
			switch p.Cycle % 8 {
			case 1:
				p.fetchNameByte(b)
			case 3:
				p.fetchAttrByte(b)
			case 5:
				p.fetchLowByte(b)
			case 7:
				p.fetchHighByte(b)
			case 0:
				p.storeTileData()
			}
		}
		if preline && p.Cycle >= 280 && p.Cycle <= 304 {
			copyY(b)
		}
		if renderLine {
			if fetchCycle && p.Cycle%8 == 0 {
				incrementX(b)
			}
			if p.Cycle == 256 {
				incrementY(b)
			}
			if p.Cycle == 257 {
				copyX(b)
			}
		}
		if p.Cycle == 257 {
			if visibleLine {
				p.evaluateSprites(b)
			} else {
				p.spriteCount = 0
			}
		}
	}

	if p.Scanline == 241 && p.Cycle == 1 {
		p.setVBlank(b)
	}
	if preline && p.Cycle == 1 {
		p.clearVBlank(b)
		b.PPU.Sprite0Hit = false
		b.PPU.SpriteOverflow = false
	}

	return frameDone
}

// tick advances the dot/scanline counters, folds the odd-frame skipped
// dot when rendering is on, and services the NMI delay countdown armed
// by bus.PPUState.NMIChange.
func (p *PPU) tick(b *bus.Bus) bool {
	if b.PPU.DecrementNMIDelay() {
		b.CPU.Pending = bus.NMI
	}

	if (b.PPU.ShowBackground || b.PPU.ShowSprites) &&
		p.frameParity == 1 && p.Scanline == 261 && p.Cycle == 339 {
		p.Cycle = 0
		p.Scanline = 0
		p.frameParity ^= 1
		p.FrameCount++
		return true
	}

	p.Cycle++
	if p.Cycle > 340 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline > 261 {
			p.Scanline = 0
			p.frameParity ^= 1
			p.FrameCount++
			return true
		}
	}
	return false
}

func (p *PPU) setVBlank(b *bus.Bus) {
	p.isFront = !p.isFront
	b.PPU.NMIOccurred = true
	b.PPU.NMIChange()
}

func (p *PPU) clearVBlank(b *bus.Bus) {
	b.PPU.NMIOccurred = false
	b.PPU.NMIChange()
}

func (p *PPU) fetchNameByte(b *bus.Bus) {
	v := b.PPU.V
	address := 0x2000 | (v & 0x0FFF)
	p.nameByte = b.PPURead(address)
}

func (p *PPU) fetchAttrByte(b *bus.Bus) {
	v := b.PPU.V
	address := 0x23C0 | (v & 0x0C00) | ((v >> 4) & 0x38) | ((v >> 2) & 0x07)
	shift := ((v >> 4) & 4) | (v & 2)
	value := b.PPURead(address)
	p.attrByte = ((value >> shift) & 3) << 2
}

func (p *PPU) fetchLowByte(b *bus.Bus) {
	fineY := (b.PPU.V >> 12) & 7
	table := uint16(b.PPU.BackgroundTable)
	tile := uint16(p.nameByte)
	address := 0x1000*table + tile*16 + fineY
	p.lowByte = b.PPURead(address)
}

func (p *PPU) fetchHighByte(b *bus.Bus) {
	fineY := (b.PPU.V >> 12) & 7
	table := uint16(b.PPU.BackgroundTable)
	tile := uint16(p.nameByte)
	address := 0x1000*table + tile*16 + fineY
	p.highByte = b.PPURead(address + 8)
}

func (p *PPU) storeTileData() {
	var data uint32
	for i := 0; i < 8; i++ {
		a := p.attrByte
		p1 := (p.lowByte & 0x80) >> 7
		p2 := (p.highByte & 0x80) >> 6
		p.lowByte <<= 1
		p.highByte <<= 1
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	p.tileData |= uint64(data)
}

func (p *PPU) backgroundTileData() uint32 {
	return uint32(p.tileData >> 32)
}

func (p *PPU) backgroundPixel(b *bus.Bus) uint8 {
	if !b.PPU.ShowBackground {
		return 0
	}
	data := p.backgroundTileData() >> ((7 - uint(b.PPU.X)) * 4)
	return uint8(data & 0x0F)
}

func (p *PPU) spritePixel(b *bus.Bus) (uint8, uint8) {
	if !b.PPU.ShowSprites {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := (p.Cycle - 1) - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		offset = 7 - offset
		shift := uint(offset * 4)
		color := uint8((p.spritePatterns[i] >> shift) & 0x0F)
		if color%4 == 0 {
			continue
		}
		return uint8(i), color
	}
	return 0, 0
}

func (p *PPU) renderPixel(b *bus.Bus) {
	x := p.Cycle - 1
	y := p.Scanline
	background := p.backgroundPixel(b)
	i, sprite := p.spritePixel(b)

	if x < 8 && !b.PPU.ShowLeftBG {
		background = 0
	}
	if x < 8 && !b.PPU.ShowLeftSprites {
		sprite = 0
	}

	hasBG := background%4 != 0
	hasSprite := sprite%4 != 0

	var color uint8
	switch {
	case !hasBG && !hasSprite:
		color = 0
	case !hasBG && hasSprite:
		color = sprite | 0x10
	case hasBG && !hasSprite:
		color = background
	default:
		if p.spriteIndices[i] == 0 && x < 255 {
			b.PPU.Sprite0Hit = true
		}
		if p.spritePriorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = background
		}
	}

	rgba := palette[b.PPURead(0x3F00+uint16(color))%64]
	pos := y*256 + x
	if p.isFront {
		p.back[pos] = rgba
	} else {
		p.front[pos] = rgba
	}
}

func (p *PPU) fetchSpritePattern(b *bus.Bus, index int, row int) uint32 {
	tile := uint16(b.PPU.OAM[index*4+1])
	attributes := b.PPU.OAM[index*4+2]

	var address uint16
	if !b.PPU.SpriteSize16 {
		if attributes&0x80 != 0 {
			row = 7 - row
		}
		table := uint16(b.PPU.SpriteTable)
		address = 0x1000*table + tile*16 + uint16(row)
	} else {
		if attributes&0x80 != 0 {
			row = 15 - row
		}
		table := tile & 1
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		address = 0x1000*table + tile*16 + uint16(row)
	}

	a := (attributes & 3) << 2
	low := b.PPURead(address)
	high := b.PPURead(address + 8)

	var data uint32
	for i := 0; i < 8; i++ {
		var p1, p2 uint8
		if attributes&0x40 != 0 {
			p1 = low & 1
			p2 = (high & 1) << 1
			low >>= 1
			high >>= 1
		} else {
			p1 = (low & 0x80) >> 7
			p2 = (high & 0x80) >> 6
			low <<= 1
			high <<= 1
		}
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	return data
}

func (p *PPU) evaluateSprites(b *bus.Bus) {
	height := 8
	if b.PPU.SpriteSize16 {
		height = 16
	}
	count := 0
	for i := 0; i < 64; i++ {
		y := int(b.PPU.OAM[i*4])
		a := b.PPU.OAM[i*4+2]
		x := b.PPU.OAM[i*4+3]
		row := p.Scanline - y
		if row < 0 || row >= height {
			continue
		}
		if count < 8 {
			p.spritePatterns[count] = p.fetchSpritePattern(b, i, row)
			p.spritePositions[count] = x
			p.spritePriorities[count] = (a >> 5) & 1
			p.spriteIndices[count] = uint8(i)
		}
		count++
	}
	if count > 8 {
		count = 8
		b.PPU.SpriteOverflow = true
	}
	p.spriteCount = count
}

func copyY(b *bus.Bus) {
	const mask = 0b0111_1011_1110_0000
	b.PPU.V = (b.PPU.V &^ mask) | (b.PPU.T & mask)
}

func incrementX(b *bus.Bus) {
	if b.PPU.V&0x001F == 31 {
		b.PPU.V &= 0xFFE0
		b.PPU.V ^= 0x0400
	} else {
		b.PPU.V++
	}
}

func incrementY(b *bus.Bus) {
	if b.PPU.V&0x7000 != 0x7000 {
		b.PPU.V += 0x1000
		return
	}
	b.PPU.V &= 0x8FFF
	y := (b.PPU.V & 0x03E0) >> 5
	switch y {
	case 29:
		b.PPU.V ^= 0x0800
		y = 0
	case 31:
		y = 0
	default:
		y++
	}
	b.PPU.V = (b.PPU.V & 0xFC1F) | (y << 5)
}

func copyX(b *bus.Bus) {
	const mask = 0b0000_0100_0001_1111
	b.PPU.V = (b.PPU.V &^ mask) | (b.PPU.T & mask)
}
