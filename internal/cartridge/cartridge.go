// Package cartridge holds cartridge data and the mapper-side address
// translation that sits between the CPU/PPU address spaces and the
// underlying program and pattern images.
package cartridge

import (
	"errors"
	"fmt"
)

const (
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
	wramSize    = 8 * 1024
)

var magic = [4]byte{0x4E, 0x45, 0x53, 0x1A}

// ErrUnrecognisedFormat is returned when the input buffer does not begin
// with the iNES magic number.
var ErrUnrecognisedFormat = errors.New("cartridge: unrecognised ROM format")

// UnknownMapperError is returned when the header declares a mapper id this
// module does not implement.
type UnknownMapperError struct{ ID uint8 }

func (e UnknownMapperError) Error() string {
	return fmt.Sprintf("cartridge: unknown mapper %d", e.ID)
}

// Cartridge holds the static images an iNES file describes, plus the
// mutable work RAM a mapper may read and write at $6000-$7FFF.
type Cartridge struct {
	PRG       []byte
	CHR       []byte
	SRAM      [wramSize]byte
	MapperID  uint8
	Mirroring Mirroring
	Battery   bool
	// chrIsRAM is true when the header declared zero CHR banks, meaning
	// the "pattern image" is actually writable RAM.
	chrIsRAM bool
}

// Parse decodes an iNES-formatted ROM image.
func Parse(data []byte) (*Cartridge, error) {
	if len(data) < 16 || [4]byte(data[0:4]) != magic {
		return nil, ErrUnrecognisedFormat
	}

	prgBanks := int(data[4])
	chrBanks := int(data[5])
	flags6 := data[6]
	flags7 := data[7]

	mirroring := Horizontal
	if flags6&0x01 != 0 {
		mirroring = Vertical
	}
	battery := flags6&0x02 != 0
	hasTrainer := flags6&0x04 != 0
	mapperID := (flags6 >> 4) | (flags7 & 0xF0)

	switch mapperID {
	case 0, 1, 2:
	default:
		return nil, UnknownMapperError{ID: mapperID}
	}

	offset := 16
	if hasTrainer {
		offset += 512
	}

	prgLen := prgBanks * prgBankSize
	if offset+prgLen > len(data) {
		return nil, fmt.Errorf("cartridge: truncated PRG image (need %d bytes, have %d)", prgLen, len(data)-offset)
	}
	prg := make([]byte, prgLen)
	copy(prg, data[offset:offset+prgLen])
	offset += prgLen

	chrIsRAM := chrBanks == 0
	chrLen := chrBanks * chrBankSize
	if chrIsRAM {
		chrLen = chrBankSize
	}
	chr := make([]byte, chrLen)
	if !chrIsRAM {
		if offset+chrLen > len(data) {
			return nil, fmt.Errorf("cartridge: truncated CHR image (need %d bytes, have %d)", chrLen, len(data)-offset)
		}
		copy(chr, data[offset:offset+chrLen])
	}

	return &Cartridge{
		PRG:       prg,
		CHR:       chr,
		MapperID:  mapperID,
		Mirroring: mirroring,
		Battery:   battery,
		chrIsRAM:  chrIsRAM,
	}, nil
}

// NewMapper constructs the Mapper variant declared by the cartridge's
// header. Parse already rejects unsupported mapper ids, so this never
// returns an error for a cartridge it produced.
func NewMapper(cart *Cartridge) (Mapper, error) {
	switch cart.MapperID {
	case 0:
		return NewNROM(cart, false), nil
	case 2:
		return NewNROM(cart, true), nil
	case 1:
		return NewMMC1(cart), nil
	default:
		return nil, UnknownMapperError{ID: cart.MapperID}
	}
}

// PRGBankCount reports how many 16KiB program banks the cartridge holds.
func (c *Cartridge) PRGBankCount() int { return len(c.PRG) / prgBankSize }

// CHRBankCount reports how many 8KiB pattern banks the cartridge holds,
// or 1 when the pattern image is actually CHR RAM.
func (c *Cartridge) CHRBankCount() int {
	if c.chrIsRAM {
		return 1
	}
	return len(c.CHR) / chrBankSize
}
