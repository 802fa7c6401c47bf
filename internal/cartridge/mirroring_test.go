package cartridge

import "testing"

func TestMirrorNametable_Folding(t *testing.T) {
	tests := []struct {
		name string
		mode Mirroring
		addr uint16
		want uint16
	}{
		{"vertical table 0", Vertical, 0x2000, 0x2000},
		{"vertical table 1", Vertical, 0x2400, 0x2400},
		{"vertical table 2 folds to 0", Vertical, 0x2800, 0x2000},
		{"vertical table 3 folds to 1", Vertical, 0x2C00, 0x2400},
		{"horizontal table 0", Horizontal, 0x2000, 0x2000},
		{"horizontal table 1 shares table 0", Horizontal, 0x2400, 0x2000},
		{"horizontal table 2 shares table 3", Horizontal, 0x2800, 0x2C00},
		{"horizontal table 3", Horizontal, 0x2C00, 0x2C00},
		{"single lower", SingleLower, 0x2C33, 0x2033},
		{"single upper", SingleUpper, 0x2833, 0x2433},
		{"offset preserved", Vertical, 0x2A17, 0x2217},
		{"$3000 mirror of $2000", Vertical, 0x3000, 0x2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.MirrorNametable(tt.addr); got != tt.want {
				t.Errorf("mirror(%#04x): want %#04x, got %#04x", tt.addr, tt.want, got)
			}
		})
	}
}

func TestMirrorNametable_Idempotent(t *testing.T) {
	modes := []Mirroring{Horizontal, Vertical, SingleLower, SingleUpper}
	for _, mode := range modes {
		for addr := uint16(0x2000); addr < 0x3F00; addr += 0x93 {
			once := mode.MirrorNametable(addr)
			twice := mode.MirrorNametable(once)
			if once != twice {
				t.Fatalf("mode %d: mirror(mirror(%#04x))=%#04x, mirror(%#04x)=%#04x",
					mode, addr, twice, addr, once)
			}
		}
	}
}
