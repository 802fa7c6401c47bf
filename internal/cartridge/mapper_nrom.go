package cartridge

// NROM implements mappers 0 (NROM) and 2 (UxROM). The two differ only in
// whether writes to $8000-$FFFF select the lower 16KiB program bank;
// NROM has no bank register at all and simply wraps addressing modulo
// the PRG image size, which is how the iNES mapper-0 convention encodes
// both 16KiB and 32KiB carts with one read path.
type NROM struct {
	cart       *Cartridge
	switchable bool
	prgBanks   int
	bank       int
}

// NewNROM constructs the combined NROM/UxROM mapper. switchable selects
// UxROM (mapper 2) behavior; false selects plain NROM (mapper 0).
func NewNROM(cart *Cartridge, switchable bool) *NROM {
	return &NROM{
		cart:       cart,
		switchable: switchable,
		prgBanks:   cart.PRGBankCount(),
		bank:       0,
	}
}

func (m *NROM) MirroringMode() Mirroring { return m.cart.Mirroring }

func (m *NROM) Read(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return m.cart.CHR[address]
	case address >= 0x8000:
		if m.switchable {
			return m.cart.PRG[m.prgIndex(address)]
		}
		// NROM has no bank register: wrap modulo the image size so a
		// 16KiB cart mirrors into both $8000-$BFFF and $C000-$FFFF.
		size := len(m.cart.PRG)
		return m.cart.PRG[int(address-0x8000)%size]
	case address >= 0x6000:
		return m.cart.SRAM[address-0x6000]
	default:
		return 0
	}
}

func (m *NROM) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.cart.CHR[address] = value
	case address >= 0x8000:
		if m.switchable {
			if m.prgBanks > 0 {
				m.bank = int(value) % m.prgBanks
			}
		}
	case address >= 0x6000:
		m.cart.SRAM[address-0x6000] = value
	}
}

// prgIndex resolves a UxROM CPU address to a PRG byte index: the lower
// window ($8000-$BFFF) is the switchable bank, the upper window
// ($C000-$FFFF) is always fixed to the last bank.
func (m *NROM) prgIndex(address uint16) int {
	if address >= 0xC000 {
		lastBank := m.prgBanks - 1
		return lastBank*prgBankSize + int(address-0xC000)
	}
	return m.bank*prgBankSize + int(address-0x8000)
}
