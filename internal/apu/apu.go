// Package apu implements the audio processing unit's five sound
// generators, frame sequencer, and output mixer. As with cpu and ppu,
// only the interpreter's private timing state lives here; the
// register-backed generator state lives in bus.APUState.
package apu

import "github.com/rng999/nescore/internal/bus"

// AudioSink receives one mixed, filtered sample per call. Sample rate
// is whatever was passed to New.
type AudioSink interface {
	PushSample(sample float32)
}

// dutyTable and triangleTable are the NES's fixed lookup tables for the
// square duty waveforms and the triangle's 32-step staircase. The
// length-counter and noise-period tables live with the register decoding
// in package bus.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// APU is the audio interpreter: the frame sequencer and sample-rate
// divider counters, the mixer lookup tables, and the output filter
// chain. sampleCap derives from the host sample rate and divides the
// roughly 1.79MHz NTSC CPU clock down to it.
type APU struct {
	filter     filterChain
	pulseTable [31]float32
	tndTable   [203]float32

	frameTick  uint16
	sampleTick uint16
	sampleCap  uint16
	frameValue uint8
}

// New returns an APU that emits samples at sampleRate Hz.
func New(sampleRate int) *APU {
	a := &APU{
		filter:    newFilterChain(sampleRate),
		sampleCap: uint16(1790000 / sampleRate),
	}
	for i := range a.pulseTable {
		a.pulseTable[i] = 95.52 / (8128.0/float32(i) + 100.0)
	}
	a.pulseTable[0] = 0
	for i := range a.tndTable {
		a.tndTable[i] = 163.37 / (24329.0/float32(i) + 100.0)
	}
	a.tndTable[0] = 0
	return a
}

// Reset clears the register-backed generator state and restarts the
// frame sequencer. The noise LFSR powers up holding 1 (an all-zero
// register would never produce feedback) and the sequencer in 4-step
// mode.
func (a *APU) Reset(b *bus.Bus) {
	b.APU = bus.APUState{}
	b.APU.Noise.ShiftRegister = 1
	b.APU.FramePeriod = 4
	b.APU.Square1.FirstChannel = true
	a.frameTick, a.sampleTick, a.frameValue = 0, 0, 0
}

// Step advances the APU by one CPU cycle: channel timers tick at half
// the CPU rate (all but the triangle, which ticks every cycle), the
// frame sequencer fires at ~240Hz, and a filtered sample is pushed to
// sink whenever the sample-rate divider rolls over.
func (a *APU) Step(b *bus.Bus, sink AudioSink) {
	if b.APU.FrameReset {
		b.APU.FrameReset = false
		a.frameTick, a.frameValue = 0, 0
		if b.APU.FramePeriod == 5 {
			stepEnvelopes(b)
			stepSweeps(b)
			stepLengths(b)
		}
	}

	a.frameTick++
	if a.frameTick&1 == 0 {
		stepSquareTimer(&b.APU.Square1)
		stepSquareTimer(&b.APU.Square2)
		stepNoiseTimer(&b.APU.Noise)
		if stepDMCTimer(&b.APU.DMC, b) {
			b.CPU.Stall += 4
		}
	}
	stepTriangleTimer(&b.APU.Triangle)

	if a.frameTick >= 7458 {
		a.frameTick = 0
		a.stepFrameCounter(b)
	}

	a.sampleTick++
	if a.sampleTick >= a.sampleCap {
		a.sampleTick = 0
		sample := a.filter.step(a.output(b))
		if sink != nil {
			sink.PushSample(sample)
		}
	}
}

func (a *APU) output(b *bus.Bus) float32 {
	p1 := squareOutput(&b.APU.Square1)
	p2 := squareOutput(&b.APU.Square2)
	t := triangleOutput(&b.APU.Triangle)
	n := noiseOutput(&b.APU.Noise)
	d := b.APU.DMC.Value

	pulseOut := a.pulseTable[p1+p2]
	tndOut := a.tndTable[3*t+2*n+d]
	return pulseOut + tndOut
}

// stepFrameCounter advances the 4- or 5-step frame sequencer, clocking
// envelopes/linear counter on every step except the 5-step sequence's
// idle step and length counters/sweep units on the half-frame steps,
// and raising the frame IRQ on the last step of the 4-step sequence.
func (a *APU) stepFrameCounter(b *bus.Bus) {
	switch b.APU.FramePeriod {
	case 4:
		step := a.frameValue
		a.frameValue = (a.frameValue + 1) % 4
		switch step {
		case 0, 2:
			stepEnvelopes(b)
		case 1:
			stepEnvelopes(b)
			stepSweeps(b)
			stepLengths(b)
		case 3:
			stepEnvelopes(b)
			stepSweeps(b)
			stepLengths(b)
			if b.APU.FrameIRQEnable {
				b.APU.FrameIRQFlag = true
				b.CPU.RaiseIRQ()
			}
		}
	case 5:
		a.frameValue = (a.frameValue + 1) % 5
		switch a.frameValue {
		case 1, 3:
			stepEnvelopes(b)
		case 0, 2:
			stepEnvelopes(b)
			stepSweeps(b)
			stepLengths(b)
		}
	}
}

func stepEnvelopes(b *bus.Bus) {
	stepSquareEnvelope(&b.APU.Square1)
	stepSquareEnvelope(&b.APU.Square2)
	stepTriangleCounter(&b.APU.Triangle)
	stepNoiseEnvelope(&b.APU.Noise)
}

func stepSweeps(b *bus.Bus) {
	stepSquareSweep(&b.APU.Square1)
	stepSquareSweep(&b.APU.Square2)
}

func stepLengths(b *bus.Bus) {
	stepSquareLength(&b.APU.Square1)
	stepSquareLength(&b.APU.Square2)
	stepTriangleLength(&b.APU.Triangle)
	stepNoiseLength(&b.APU.Noise)
}
