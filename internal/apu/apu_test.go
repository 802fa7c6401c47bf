package apu

import (
	"math"
	"testing"

	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/cartridge"
)

// collectorSink records every pushed sample.
type collectorSink struct {
	samples []float32
}

func (c *collectorSink) PushSample(s float32) { c.samples = append(c.samples, s) }

func newTestAPU(t *testing.T, sampleRate int) (*APU, *bus.Bus) {
	t.Helper()
	header := make([]byte, 16)
	copy(header, []byte{0x4E, 0x45, 0x53, 0x1A})
	header[4] = 1
	cart, err := cartridge.Parse(append(header, make([]byte, 16*1024)...))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mapper, err := cartridge.NewMapper(cart)
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	b := bus.New(mapper)
	a := New(sampleRate)
	a.Reset(b)
	return a, b
}

func TestReset_PowerUpState(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	if b.APU.Noise.ShiftRegister != 1 {
		t.Errorf("noise LFSR: want 1, got %d", b.APU.Noise.ShiftRegister)
	}
	if b.APU.FramePeriod != 4 {
		t.Errorf("frame period: want 4-step, got %d", b.APU.FramePeriod)
	}
	if !b.APU.Square1.FirstChannel || b.APU.Square2.FirstChannel {
		t.Error("only square 1 carries the sweep-negate quirk")
	}
}

func TestMixerTables(t *testing.T) {
	a, _ := newTestAPU(t, 44100)
	if a.pulseTable[0] != 0 || a.tndTable[0] != 0 {
		t.Error("silent inputs must mix to zero")
	}
	for i := 1; i < len(a.pulseTable); i++ {
		if a.pulseTable[i] <= a.pulseTable[i-1] {
			t.Fatalf("pulse table not monotonic at %d", i)
		}
	}
	want := 95.52 / (8128.0/15.0 + 100.0)
	if got := float64(a.pulseTable[15]); math.Abs(got-want) > 1e-6 {
		t.Errorf("pulse_table[15]: want %f, got %f", want, got)
	}
	want = 163.37 / (24329.0/100.0 + 100.0)
	if got := float64(a.tndTable[100]); math.Abs(got-want) > 1e-6 {
		t.Errorf("tnd_table[100]: want %f, got %f", want, got)
	}
}

func TestOutput_SilentWhenDisabled(t *testing.T) {
	a, b := newTestAPU(t, 44100)
	if got := a.output(b); got != 0 {
		t.Errorf("all channels disabled: want 0, got %f", got)
	}
}

func TestSamplePacing(t *testing.T) {
	a, b := newTestAPU(t, 44100)
	sink := &collectorSink{}

	// cap = 1790000/44100 = 40 CPU ticks per sample.
	for i := 0; i < 400; i++ {
		a.Step(b, sink)
	}
	if len(sink.samples) != 10 {
		t.Errorf("samples after 400 ticks at 44.1kHz: want 10, got %d", len(sink.samples))
	}
}

func TestFrameCounter_FourStepIRQ(t *testing.T) {
	a, b := newTestAPU(t, 44100)
	b.APU.FrameIRQEnable = true

	for i := 0; i < 3; i++ {
		a.stepFrameCounter(b)
		if b.APU.FrameIRQFlag {
			t.Fatalf("frame IRQ fired early at sequencer step %d", i)
		}
	}
	a.stepFrameCounter(b)
	if !b.APU.FrameIRQFlag {
		t.Error("frame IRQ must fire on the fourth sequencer step")
	}
	if b.CPU.Pending != bus.IRQ {
		t.Error("frame IRQ must raise the CPU's pending interrupt")
	}
}

func TestFrameCounter_FiveStepNoIRQ(t *testing.T) {
	a, b := newTestAPU(t, 44100)
	b.APU.FramePeriod = 5
	b.APU.FrameIRQEnable = true

	for i := 0; i < 10; i++ {
		a.stepFrameCounter(b)
	}
	if b.APU.FrameIRQFlag {
		t.Error("5-step mode never fires the frame IRQ")
	}
}

func TestFrameCounter_ModeWriteCatchUp(t *testing.T) {
	a, b := newTestAPU(t, 44100)
	b.APU.Square1.Enabled = true
	b.APU.Square1.LengthEnabled = true
	b.APU.Square1.LengthValue = 10

	// A $4017 write selecting 5-step mode clocks lengths immediately.
	b.Write(0x4017, 0x80)
	a.Step(b, nil)
	if b.APU.Square1.LengthValue != 9 {
		t.Errorf("length after 5-step catch-up: want 9, got %d", b.APU.Square1.LengthValue)
	}
}

func TestLengthCounter_HaltAndCount(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	sq := &b.APU.Square1
	sq.LengthEnabled = true
	sq.LengthValue = 2

	stepSquareLength(sq)
	if sq.LengthValue != 1 {
		t.Errorf("length: want 1, got %d", sq.LengthValue)
	}
	sq.LengthEnabled = false // halted
	stepSquareLength(sq)
	if sq.LengthValue != 1 {
		t.Errorf("halted length must not count, got %d", sq.LengthValue)
	}
}

func TestEnvelope_DecayAndLoop(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	sq := &b.APU.Square1
	sq.EnvelopeStart = true
	sq.EnvelopePeriod = 0

	stepSquareEnvelope(sq)
	if sq.EnvelopeVolume != 15 {
		t.Errorf("envelope restart: want volume 15, got %d", sq.EnvelopeVolume)
	}
	for i := 0; i < 15; i++ {
		stepSquareEnvelope(sq)
	}
	if sq.EnvelopeVolume != 0 {
		t.Errorf("decayed envelope: want 0, got %d", sq.EnvelopeVolume)
	}
	stepSquareEnvelope(sq)
	if sq.EnvelopeVolume != 0 {
		t.Error("non-looping envelope must hold at 0")
	}

	sq.EnvelopeLoop = true
	stepSquareEnvelope(sq)
	if sq.EnvelopeVolume != 15 {
		t.Errorf("looping envelope: want 15, got %d", sq.EnvelopeVolume)
	}
}

func TestSweep_NegateQuirk(t *testing.T) {
	_, b := newTestAPU(t, 44100)

	sq1 := &b.APU.Square1
	sq1.TimerPeriod = 0x100
	sq1.SweepNegate = true
	sq1.SweepShift = 2
	squareSweep(sq1)
	// 0x100 - 0x40 - 1: square 1 subtracts one extra.
	if sq1.TimerPeriod != 0x0BF {
		t.Errorf("square 1 negated sweep: want 0x0BF, got %#03x", sq1.TimerPeriod)
	}

	sq2 := &b.APU.Square2
	sq2.TimerPeriod = 0x100
	sq2.SweepNegate = true
	sq2.SweepShift = 2
	squareSweep(sq2)
	if sq2.TimerPeriod != 0x0C0 {
		t.Errorf("square 2 negated sweep: want 0x0C0, got %#03x", sq2.TimerPeriod)
	}
}

func TestSweep_PeriodWraps(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	sq := &b.APU.Square2
	sq.TimerPeriod = 0xFFF0
	sq.SweepNegate = false
	sq.SweepShift = 0
	squareSweep(sq)
	// Two's-complement wrap, no saturation.
	if sq.TimerPeriod != 0xFFE0 {
		t.Errorf("wrapped sweep: want 0xFFE0, got %#04x", sq.TimerPeriod)
	}
}

func TestNoise_LFSRSequence(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	n := &b.APU.Noise
	n.TimerPeriod = 0
	n.ShiftRegister = 1

	stepNoiseTimer(n) // feedback = bit0 ^ bit1 = 1
	if n.ShiftRegister != 0x4000 {
		t.Errorf("LFSR step 1: want 0x4000, got %#04x", n.ShiftRegister)
	}
	stepNoiseTimer(n) // feedback = 0
	if n.ShiftRegister != 0x2000 {
		t.Errorf("LFSR step 2: want 0x2000, got %#04x", n.ShiftRegister)
	}
}

func TestNoise_ModeSixTap(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	n := &b.APU.Noise
	n.TimerPeriod = 0
	n.Mode = true
	n.ShiftRegister = 1 << 6

	stepNoiseTimer(n) // bit0=0, bit6=1 -> feedback 1
	if n.ShiftRegister != 0x4020 {
		t.Errorf("mode-1 LFSR: want 0x4020, got %#04x", n.ShiftRegister)
	}
}

func TestTriangle_Gating(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	tr := &b.APU.Triangle
	tr.TimerPeriod = 0

	stepTriangleTimer(tr)
	if tr.DutyValue != 0 {
		t.Error("triangle must not advance with zero counters")
	}
	tr.LengthValue = 1
	tr.CounterValue = 1
	stepTriangleTimer(tr)
	if tr.DutyValue != 1 {
		t.Errorf("triangle step: want duty 1, got %d", tr.DutyValue)
	}
}

func TestTriangle_LinearCounterReload(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	tr := &b.APU.Triangle
	tr.CounterPeriod = 5
	tr.CounterReload = true
	tr.LengthEnabled = true

	stepTriangleCounter(tr)
	if tr.CounterValue != 5 {
		t.Errorf("linear counter reload: want 5, got %d", tr.CounterValue)
	}
	if tr.CounterReload {
		t.Error("reload flag must clear when the control flag allows")
	}
	stepTriangleCounter(tr)
	if tr.CounterValue != 4 {
		t.Errorf("linear counter: want 4, got %d", tr.CounterValue)
	}
}

func TestDMC_Shifter(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	d := &b.APU.DMC
	d.Value = 64
	d.BitCount = 2
	d.ShiftRegister = 0x01 // one up, one down

	stepDMCShifter(d)
	if d.Value != 66 {
		t.Errorf("delta up: want 66, got %d", d.Value)
	}
	stepDMCShifter(d)
	if d.Value != 64 {
		t.Errorf("delta down: want 64, got %d", d.Value)
	}

	d.Value = 126
	d.BitCount = 1
	d.ShiftRegister = 0x01
	stepDMCShifter(d)
	if d.Value != 126 {
		t.Errorf("delta clamps high: want 126, got %d", d.Value)
	}
}

func TestDMC_FetchStallsAndWraps(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	d := &b.APU.DMC
	d.Enabled = true
	d.TickPeriod = 428
	d.CurrentAddr = 0xFFFF
	d.CurrentLength = 2

	if !stepDMCTimer(d, b) {
		t.Fatal("an empty shift register must trigger a fetch and stall")
	}
	if d.BitCount != 8 {
		t.Errorf("bit count after fetch: want 8, got %d", d.BitCount)
	}
	if d.CurrentAddr != 0x8000 {
		t.Errorf("address after $FFFF: want wrap to $8000, got %#04x", d.CurrentAddr)
	}
}

func TestDMC_LoopAndIRQ(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	d := &b.APU.DMC
	d.Enabled = true
	d.SampleAddress = 0xC000
	d.SampleLength = 4
	d.CurrentAddr = 0xC003
	d.CurrentLength = 1

	t.Run("loop rewinds", func(t *testing.T) {
		d.Loop = true
		stepDMCTimer(d, b)
		if d.CurrentAddr != 0xC000 || d.CurrentLength != 4 {
			t.Errorf("loop restart: got addr %#04x length %d", d.CurrentAddr, d.CurrentLength)
		}
	})

	t.Run("IRQ on exhaustion", func(t *testing.T) {
		d.Loop = false
		d.IRQEnabled = true
		d.CurrentLength = 1
		d.BitCount = 0
		stepDMCTimer(d, b)
		if !d.IRQ {
			t.Error("exhausted sample with IRQ enabled must flag the interrupt")
		}
	})
}

func TestFilterChain_Response(t *testing.T) {
	t.Run("high-pass rejects DC", func(t *testing.T) {
		f := highPassFilter(44100, 90)
		var y float32
		for i := 0; i < 44100; i++ {
			y = f.step(1.0)
		}
		if y > 0.01 {
			t.Errorf("DC through high-pass after 1s: want ~0, got %f", y)
		}
	})
	t.Run("low-pass passes DC", func(t *testing.T) {
		f := lowPassFilter(44100, 14000)
		var y float32
		for i := 0; i < 1000; i++ {
			y = f.step(1.0)
		}
		if y < 0.99 {
			t.Errorf("DC through low-pass: want ~1, got %f", y)
		}
	})
}

func TestSquareOutput_Gates(t *testing.T) {
	_, b := newTestAPU(t, 44100)
	sq := &b.APU.Square1
	sq.Enabled = true
	sq.LengthValue = 10
	sq.TimerPeriod = 0x100
	sq.DutyMode = 2
	sq.DutyValue = 1 // duty 2 has a 1 at index 1
	sq.EnvelopeEnabled = false
	sq.ConstantVolume = 9

	if got := squareOutput(sq); got != 9 {
		t.Errorf("output: want constant volume 9, got %d", got)
	}

	sq.TimerPeriod = 4 // ultrasonic periods are muted
	if got := squareOutput(sq); got != 0 {
		t.Errorf("period < 8 must mute, got %d", got)
	}

	sq.TimerPeriod = 0x100
	sq.LengthValue = 0
	if got := squareOutput(sq); got != 0 {
		t.Errorf("empty length counter must mute, got %d", got)
	}
}
