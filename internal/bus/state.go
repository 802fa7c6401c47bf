package bus

// InterruptKind identifies the interrupt pending for the CPU, if any.
type InterruptKind uint8

const (
	NoInterrupt InterruptKind = iota
	NMI
	IRQ
)

// CPUState is the slice of CPU state other components legitimately poke
// during bus traffic: the PPU raises NMI, the APU raises IRQ, and DMA
// adds stall cycles. Everything else about the CPU (registers, flags,
// program counter) is private to the cpu package.
type CPUState struct {
	Pending InterruptKind
	Stall   int
}

// RaiseIRQ marks an IRQ pending unless an NMI already is; NMI always
// wins the race to the next instruction boundary.
func (c *CPUState) RaiseIRQ() {
	if c.Pending != NMI {
		c.Pending = IRQ
	}
}

// PPUState is the register-backed half of the PPU's state: the bits a
// CPU bus access reads or writes directly, plus the handful of internal
// latches ($2005/$2006 share) the register writes feed into. The pixel
// pipeline's own working state (scanline/dot counters, fetch latches,
// sprite buffers, frame buffers) lives in the ppu package instead, since
// nothing outside the PPU interpreter ever touches it.
type PPUState struct {
	// $2000 PPUCTRL fields.
	NametableSelect  uint8 // 0-3: base nametable
	Increment32      bool  // false: +1, true: +32
	SpriteTable      uint8 // 0 or 1: pattern table for 8x8 sprites
	BackgroundTable  uint8 // 0 or 1
	SpriteSize16     bool
	NMIOutput        bool

	// $2001 PPUMASK fields.
	Grayscale        bool
	ShowLeftBG       bool
	ShowLeftSprites  bool
	ShowBackground   bool
	ShowSprites      bool
	EmphasizeRed     bool
	EmphasizeGreen   bool
	EmphasizeBlue    bool

	// $2002 PPUSTATUS fields.
	SpriteOverflow bool
	Sprite0Hit     bool
	NMIOccurred    bool
	nmiPrevious    bool
	nmiDelay       uint8

	// Internal scroll/address latches, shared by $2005/$2006/$2007.
	V uint16 // current VRAM address (15 bit)
	T uint16 // temporary VRAM address (15 bit)
	X uint8  // fine X scroll (3 bit)
	W bool   // write toggle

	OAM        [256]byte
	OAMAddress uint8
	ReadBuffer uint8

	Palette   [32]byte
	Nametable [2048]byte

	lastRegisterWrite uint8 // open-bus value returned by write-only registers
}

// NMIChange re-evaluates the NMI line on any event that could change it
// (NMIOutput or NMIOccurred toggling). A rising edge arms a 15-cycle
// delay before the CPU's pending-interrupt field is actually set,
// matching real hardware's NMI latch timing.
func (p *PPUState) NMIChange() {
	nmi := p.NMIOutput && p.NMIOccurred
	if nmi && !p.nmiPrevious {
		p.nmiDelay = 15
	}
	p.nmiPrevious = nmi
}

// DecrementNMIDelay ticks the armed NMI delay down by one dot and
// reports whether it just reached zero with the NMI line still asserted
// - the signal for the caller (the ppu package's per-dot tick) to raise
// CPUState.Pending.
func (p *PPUState) DecrementNMIDelay() bool {
	if p.nmiDelay == 0 {
		return false
	}
	p.nmiDelay--
	return p.nmiDelay == 0 && p.NMIOutput && p.NMIOccurred
}

// PulseState is the register-backed state of one square-wave generator.
type PulseState struct {
	FirstChannel bool // the hardware sweep-unit quirk only applies to square 1

	Enabled bool

	LengthEnabled bool
	LengthValue   uint8

	TimerPeriod uint16
	TimerValue  uint16

	DutyMode  uint8
	DutyValue uint8

	SweepReload bool
	SweepEnable bool
	SweepNegate bool
	SweepShift  uint8
	SweepPeriod uint8
	SweepValue  uint8

	EnvelopeEnabled bool
	EnvelopeLoop    bool
	EnvelopeStart   bool
	EnvelopePeriod  uint8
	EnvelopeValue   uint8
	EnvelopeVolume  uint8
	ConstantVolume  uint8
}

// TriangleState is the register-backed state of the triangle generator.
type TriangleState struct {
	Enabled bool

	LengthEnabled bool
	LengthValue   uint8

	TimerPeriod uint16
	TimerValue  uint16

	DutyValue uint8

	CounterPeriod uint8
	CounterValue  uint8
	CounterReload bool
}

// NoiseState is the register-backed state of the noise generator.
type NoiseState struct {
	Enabled bool

	Mode          bool
	ShiftRegister uint16

	LengthEnabled bool
	LengthValue   uint8

	TimerPeriod uint16
	TimerValue  uint16

	EnvelopeEnabled bool
	EnvelopeLoop    bool
	EnvelopeStart   bool
	EnvelopePeriod  uint8
	EnvelopeValue   uint8
	EnvelopeVolume  uint8
	ConstantVolume  uint8
}

// DMCState is the register-backed state of the delta-modulation channel.
type DMCState struct {
	Enabled bool

	Value uint8

	SampleAddress uint16
	SampleLength  uint16
	CurrentAddr   uint16
	CurrentLength uint16

	ShiftRegister uint8
	BitCount      uint8

	TickPeriod uint16
	TickValue  uint16

	Loop       bool
	IRQEnabled bool
	IRQ        bool
}

// APUState is the register-backed half of the APU: the fields a CPU bus
// write to $4000-$4017 lands in directly, and $4015 summarizes. The
// frame/sample-tick counters and filter chain are private to the apu
// interpreter.
type APUState struct {
	Square1  PulseState
	Square2  PulseState
	Triangle TriangleState
	Noise    NoiseState
	DMC      DMCState

	FramePeriod    uint8 // 4 or 5
	FrameIRQEnable bool
	FrameIRQFlag   bool
	FrameReset     bool // set by a $4017 write; the apu package clears it after resyncing
}
