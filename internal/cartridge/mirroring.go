package cartridge

// Mirroring selects how the PPU's 4KiB logical nametable space folds
// down onto the 2KiB of physical nametable RAM.
type Mirroring uint8

const (
	Horizontal Mirroring = iota
	Vertical
	SingleLower
	SingleUpper
)

// mirrorTable maps (mode, logical table) to the representative table
// the fold emits. Every representative is a fixed point of its own row,
// so folding an already-folded address returns it unchanged. Tables of
// opposite parity land on distinct 1KiB banks under the bus's
// 2KiB-modulo indexing.
var mirrorTable = [4][4]uint16{
	Horizontal:  {0, 0, 3, 3},
	Vertical:    {0, 1, 0, 1},
	SingleLower: {0, 0, 0, 0},
	SingleUpper: {1, 1, 1, 1},
}

// MirrorNametable folds a PPU address in $2000-$3EFF onto the
// representative nametable address for this mirroring mode.
func (m Mirroring) MirrorNametable(address uint16) uint16 {
	address = (address - 0x2000) % 0x1000
	table := address / 0x0400
	offset := address % 0x0400
	return 0x2000 + mirrorTable[m][table]*0x0400 + offset
}
