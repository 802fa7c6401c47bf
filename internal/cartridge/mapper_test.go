package cartridge

import "testing"

// testCart builds a parsed cartridge whose PRG banks are tagged so bank
// switching is observable: byte 0 of bank n reads back as n+1.
func testCart(t *testing.T, mapperID uint8, prgBanks, chrBanks uint8) *Cartridge {
	t.Helper()
	flags6 := (mapperID & 0x0F) << 4
	flags7 := mapperID & 0xF0
	cart, err := Parse(buildINES(prgBanks, chrBanks, flags6, flags7, false))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for bank := 0; bank < int(prgBanks); bank++ {
		cart.PRG[bank*prgBankSize] = uint8(bank + 1)
	}
	return cart
}

func TestNROM_FixedMapping(t *testing.T) {
	t.Run("16KiB mirrors into both windows", func(t *testing.T) {
		m := NewNROM(testCart(t, 0, 1, 0), false)
		if lo, hi := m.Read(0x8000), m.Read(0xC000); lo != hi {
			t.Errorf("$8000=%#02x and $C000=%#02x should mirror", lo, hi)
		}
	})
	t.Run("32KiB maps linearly", func(t *testing.T) {
		cart := testCart(t, 0, 2, 0)
		m := NewNROM(cart, false)
		if got := m.Read(0x8000); got != 1 {
			t.Errorf("$8000: want bank 0 tag, got %#02x", got)
		}
		if got := m.Read(0xC000); got != 2 {
			t.Errorf("$C000: want bank 1 tag, got %#02x", got)
		}
	})
	t.Run("writes to ROM space are ignored", func(t *testing.T) {
		m := NewNROM(testCart(t, 0, 2, 0), false)
		m.Write(0x8000, 1)
		if got := m.Read(0x8000); got != 1 {
			t.Errorf("mapper 0 switched banks on write: got %#02x", got)
		}
	})
}

func TestUxROM_BankSwitching(t *testing.T) {
	cart := testCart(t, 2, 4, 0)
	m := NewNROM(cart, true)

	// Upper window always holds the last bank.
	if got := m.Read(0xC000); got != 4 {
		t.Errorf("$C000: want last bank tag 4, got %#02x", got)
	}

	for bank := uint8(0); bank < 4; bank++ {
		m.Write(0x8000, bank)
		if got := m.Read(0x8000); got != bank+1 {
			t.Errorf("bank %d: $8000 want tag %d, got %#02x", bank, bank+1, got)
		}
		if got := m.Read(0xC000); got != 4 {
			t.Errorf("bank %d: $C000 moved to %#02x", bank, got)
		}
	}

	// Bank index reduces modulo the bank count.
	m.Write(0x8000, 6)
	if got := m.Read(0x8000); got != 3 {
		t.Errorf("bank 6 mod 4: want tag 3, got %#02x", got)
	}
}

func TestNROM_SRAMAndCHRRAM(t *testing.T) {
	m := NewNROM(testCart(t, 0, 1, 0), false)
	m.Write(0x6000, 0x5A)
	if got := m.Read(0x6000); got != 0x5A {
		t.Errorf("SRAM readback: want 0x5A, got %#02x", got)
	}
	m.Write(0x1234, 0xA5)
	if got := m.Read(0x1234); got != 0xA5 {
		t.Errorf("CHR RAM readback: want 0xA5, got %#02x", got)
	}
}

// mmc1SerialWrite drives value into the MMC1 shift register one bit at
// a time, LSB first, targeting the internal register addr selects.
func mmc1SerialWrite(m *MMC1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.Write(addr, value&1)
		value >>= 1
	}
}

func TestMMC1_PRGSwitching(t *testing.T) {
	cart := testCart(t, 1, 4, 1)
	m := NewMMC1(cart)

	// Power-up state is fix-last: $C000 pinned to the final bank.
	if got := m.Read(0xC000); got != 4 {
		t.Errorf("$C000 at power-up: want last bank tag 4, got %#02x", got)
	}

	mmc1SerialWrite(m, 0xE000, 2)
	if got := m.Read(0x8000); got != 3 {
		t.Errorf("$8000 after selecting bank 2: want tag 3, got %#02x", got)
	}
	if got := m.Read(0xC000); got != 4 {
		t.Errorf("$C000 must stay fixed in fix-last mode, got %#02x", got)
	}
}

func TestMMC1_PRGModes(t *testing.T) {
	cart := testCart(t, 1, 4, 1)
	m := NewMMC1(cart)

	// Control = fix-first (mode 2): $8000 pinned to bank 0, program
	// register switches $C000.
	mmc1SerialWrite(m, 0x8000, 0x08)
	mmc1SerialWrite(m, 0xE000, 1)
	if got := m.Read(0x8000); got != 1 {
		t.Errorf("fix-first $8000: want tag 1, got %#02x", got)
	}
	if got := m.Read(0xC000); got != 2 {
		t.Errorf("fix-first $C000: want tag 2, got %#02x", got)
	}

	// Control = 32KiB mode (0/1): bit 0 of the bank number is ignored
	// and both windows move together.
	mmc1SerialWrite(m, 0x8000, 0x00)
	mmc1SerialWrite(m, 0xE000, 2)
	if got := m.Read(0x8000); got != 3 {
		t.Errorf("32KiB $8000: want tag 3, got %#02x", got)
	}
	if got := m.Read(0xC000); got != 4 {
		t.Errorf("32KiB $C000: want tag 4, got %#02x", got)
	}
}

func TestMMC1_ResetBit(t *testing.T) {
	cart := testCart(t, 1, 4, 1)
	m := NewMMC1(cart)

	// Two bits in, then a bit-7 write: the partial load is discarded and
	// PRG mode snaps back to fix-last.
	m.Write(0x8000, 1)
	m.Write(0x8000, 0)
	m.Write(0x8000, 0x80)

	mmc1SerialWrite(m, 0xE000, 1)
	if got := m.Read(0x8000); got != 2 {
		t.Errorf("post-reset $8000: want tag 2, got %#02x", got)
	}
	if got := m.Read(0xC000); got != 4 {
		t.Errorf("post-reset $C000: want last bank tag 4, got %#02x", got)
	}
}

func TestMMC1_CHRSwitching(t *testing.T) {
	cart := testCart(t, 1, 2, 2) // 16KiB CHR = four 4KiB banks
	for bank := 0; bank < 4; bank++ {
		cart.CHR[bank*mmc1CHRBankSize] = uint8(0xC0 + bank)
	}
	m := NewMMC1(cart)

	// 4KiB mode: independent lower/upper banks.
	mmc1SerialWrite(m, 0x8000, 0x10)
	mmc1SerialWrite(m, 0xA000, 2)
	mmc1SerialWrite(m, 0xC000, 1)
	if got := m.Read(0x0000); got != 0xC2 {
		t.Errorf("lower CHR bank: want 0xC2, got %#02x", got)
	}
	if got := m.Read(0x1000); got != 0xC1 {
		t.Errorf("upper CHR bank: want 0xC1, got %#02x", got)
	}

	// 8KiB mode: lower register picks an even/odd pair.
	mmc1SerialWrite(m, 0x8000, 0x00)
	mmc1SerialWrite(m, 0xA000, 2)
	if got := m.Read(0x0000); got != 0xC2 {
		t.Errorf("8KiB lower half: want 0xC2, got %#02x", got)
	}
	if got := m.Read(0x1000); got != 0xC3 {
		t.Errorf("8KiB upper half: want 0xC3, got %#02x", got)
	}
}

func TestMMC1_MirroringControl(t *testing.T) {
	tests := []struct {
		control uint8
		want    Mirroring
	}{
		{0x00, SingleLower},
		{0x01, SingleUpper},
		{0x02, Vertical},
		{0x03, Horizontal},
	}
	for _, tt := range tests {
		m := NewMMC1(testCart(t, 1, 2, 1))
		mmc1SerialWrite(m, 0x8000, tt.control)
		if got := m.MirroringMode(); got != tt.want {
			t.Errorf("control %#02x: want mirroring %d, got %d", tt.control, tt.want, got)
		}
	}
}

func TestNewMapper_Selection(t *testing.T) {
	tests := []struct {
		mapperID uint8
		wantNROM bool
	}{
		{0, true},
		{1, false},
		{2, true},
	}
	for _, tt := range tests {
		mapper, err := NewMapper(testCart(t, tt.mapperID, 2, 1))
		if err != nil {
			t.Fatalf("mapper %d: %v", tt.mapperID, err)
		}
		_, isNROM := mapper.(*NROM)
		if isNROM != tt.wantNROM {
			t.Errorf("mapper %d: NROM variant = %v, want %v", tt.mapperID, isNROM, tt.wantNROM)
		}
	}
}
