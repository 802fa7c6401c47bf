package cartridge

import (
	"errors"
	"testing"
)

// buildINES assembles an iNES image in memory for parser tests.
func buildINES(prgBanks, chrBanks, flags6, flags7 uint8, trainer bool) []byte {
	header := make([]byte, 16)
	copy(header, []byte{0x4E, 0x45, 0x53, 0x1A})
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = flags6
	header[7] = flags7
	if trainer {
		header[6] |= 0x04
	}

	rom := header
	if trainer {
		rom = append(rom, make([]byte, 512)...)
	}

	prg := make([]byte, int(prgBanks)*prgBankSize)
	for i := range prg {
		prg[i] = uint8(i)
	}
	rom = append(rom, prg...)

	chr := make([]byte, int(chrBanks)*chrBankSize)
	for i := range chr {
		chr[i] = uint8(i + 128)
	}
	return append(rom, chr...)
}

func TestParse_ValidImages(t *testing.T) {
	tests := []struct {
		name     string
		prgBanks uint8
		chrBanks uint8
		wantPRG  int
		wantCHR  int
	}{
		{"16KiB PRG, 8KiB CHR", 1, 1, 16384, 8192},
		{"32KiB PRG, 8KiB CHR", 2, 1, 32768, 8192},
		{"16KiB PRG, CHR RAM", 1, 0, 16384, 8192},
		{"32KiB PRG, 16KiB CHR", 2, 2, 32768, 16384},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := Parse(buildINES(tt.prgBanks, tt.chrBanks, 0, 0, false))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(cart.PRG) != tt.wantPRG {
				t.Errorf("PRG size: want %d, got %d", tt.wantPRG, len(cart.PRG))
			}
			if len(cart.CHR) != tt.wantCHR {
				t.Errorf("CHR size: want %d, got %d", tt.wantCHR, len(cart.CHR))
			}
		})
	}
}

func TestParse_BadMagic(t *testing.T) {
	rom := buildINES(1, 1, 0, 0, false)
	rom[0] = 'R'
	if _, err := Parse(rom); !errors.Is(err, ErrUnrecognisedFormat) {
		t.Errorf("want ErrUnrecognisedFormat, got %v", err)
	}
	if _, err := Parse([]byte{0x4E, 0x45}); !errors.Is(err, ErrUnrecognisedFormat) {
		t.Errorf("short buffer: want ErrUnrecognisedFormat, got %v", err)
	}
}

func TestParse_UnknownMapper(t *testing.T) {
	rom := buildINES(1, 1, 0x40, 0, false) // mapper 4
	_, err := Parse(rom)
	var unknown UnknownMapperError
	if !errors.As(err, &unknown) {
		t.Fatalf("want UnknownMapperError, got %v", err)
	}
	if unknown.ID != 4 {
		t.Errorf("mapper id: want 4, got %d", unknown.ID)
	}
}

func TestParse_MapperNibbles(t *testing.T) {
	// Mapper 2: low nibble from flags 6's high nibble, high nibble (zero)
	// from flags 7's high nibble.
	cart, err := Parse(buildINES(1, 1, 0x20, 0x00, false))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cart.MapperID != 2 {
		t.Errorf("mapper id: want 2, got %d", cart.MapperID)
	}
}

func TestParse_TrainerSkipped(t *testing.T) {
	cart, err := Parse(buildINES(1, 1, 0, 0, true))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// PRG starts with the pattern buildINES wrote, not trainer zeros.
	if cart.PRG[1] != 1 || cart.PRG[2] != 2 {
		t.Errorf("PRG misaligned after trainer: got % X", cart.PRG[:4])
	}
}

func TestParse_TruncatedImage(t *testing.T) {
	rom := buildINES(2, 1, 0, 0, false)
	if _, err := Parse(rom[:len(rom)-100]); err == nil {
		t.Error("truncated CHR accepted")
	}
	if _, err := Parse(rom[:16+1000]); err == nil {
		t.Error("truncated PRG accepted")
	}
}

func TestParse_HeaderFlags(t *testing.T) {
	tests := []struct {
		name          string
		flags6        uint8
		wantMirroring Mirroring
		wantBattery   bool
	}{
		{"horizontal", 0x00, Horizontal, false},
		{"vertical", 0x01, Vertical, false},
		{"battery", 0x02, Horizontal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := Parse(buildINES(1, 1, tt.flags6, 0, false))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if cart.Mirroring != tt.wantMirroring {
				t.Errorf("mirroring: want %d, got %d", tt.wantMirroring, cart.Mirroring)
			}
			if cart.Battery != tt.wantBattery {
				t.Errorf("battery: want %v, got %v", tt.wantBattery, cart.Battery)
			}
		})
	}
}

func TestBankCounts(t *testing.T) {
	cart, err := Parse(buildINES(2, 0, 0, 0, false))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := cart.PRGBankCount(); got != 2 {
		t.Errorf("PRG bank count: want 2, got %d", got)
	}
	// Zero declared CHR banks means 8KiB of CHR RAM, reported as one bank.
	if got := cart.CHRBankCount(); got != 1 {
		t.Errorf("CHR bank count: want 1, got %d", got)
	}
}
