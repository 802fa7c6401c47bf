// Package console wires the bus, CPU, PPU and APU interpreters into a
// single driveable machine and owns the clock ratio that ties them
// together: three PPU dots per CPU cycle, one APU tick per CPU cycle.
package console

import (
	"github.com/rng999/nescore/internal/apu"
	"github.com/rng999/nescore/internal/bus"
	"github.com/rng999/nescore/internal/cartridge"
	"github.com/rng999/nescore/internal/cpu"
	"github.com/rng999/nescore/internal/input"
	"github.com/rng999/nescore/internal/ppu"
)

// dotsPerCPUCycle is the PPU/CPU clock ratio on NTSC hardware.
const dotsPerCPUCycle = 3

// cyclesPerMicrosecond approximates the 1.789773MHz NTSC CPU clock for
// StepMicros' wall-clock budgeting, expressed as a ratio of integers.
const (
	cyclesPerMicrosecondNum = 179
	cyclesPerMicrosecondDen = 100
)

// AudioSink receives one mixed, filtered sample per call at the sample
// rate the Console was constructed with. A nil sink discards samples.
type AudioSink = apu.AudioSink

// VideoSink receives each completed 256x240 ARGB frame. The frame
// buffer is loaned read-only for the duration of the call; implementers
// that keep pixels past the call must copy them. A nil sink discards
// frames.
type VideoSink interface {
	BlitPixels(frame *ppu.Frame)
}

// Console is a fully wired machine: a cartridge-backed Bus and the
// three processor interpreters that take turns mutating it.
type Console struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	PPU *ppu.PPU
	APU *apu.APU
}

// New constructs a Console for cart, reset and ready to step.
// sampleRate sizes the APU's output divider and filter coefficients; it
// has no bearing on CPU or PPU timing.
func New(cart *cartridge.Cartridge, sampleRate int) (*Console, error) {
	mapper, err := cartridge.NewMapper(cart)
	if err != nil {
		return nil, err
	}
	c := &Console{
		Bus: bus.New(mapper),
		CPU: cpu.New(),
		PPU: ppu.New(),
		APU: apu.New(sampleRate),
	}
	c.Reset()
	return c, nil
}

// Reset restores the console to its power-on state.
func (c *Console) Reset() {
	c.Bus.Reset()
	c.CPU.Reset(c.Bus)
	c.PPU.Reset(c.Bus)
	c.APU.Reset(c.Bus)
}

// UpdateController records the host's current button state for
// controller idx (0 or 1).
func (c *Console) UpdateController(idx int, b input.Buttons) {
	c.Bus.Controllers[idx].SetButtons(b)
}

// Step executes exactly one CPU instruction, ticking the PPU three
// times and the APU once for every CPU cycle consumed so register
// writes take effect synchronously. A completed frame is blitted to
// video before Step returns.
func (c *Console) Step(audio AudioSink, video VideoSink) int {
	cpuCycles := c.CPU.Step(c.Bus)
	frameDone := false
	for i := 0; i < cpuCycles; i++ {
		for d := 0; d < dotsPerCPUCycle; d++ {
			if c.PPU.Step(c.Bus) {
				frameDone = true
			}
		}
		c.APU.Step(c.Bus, audio)
	}
	if frameDone && video != nil {
		video.BlitPixels(c.PPU.Frame())
	}
	return cpuCycles
}

// StepMicros runs Step until roughly micros microseconds of emulated
// time have elapsed, returning the CPU cycles actually consumed. The
// last instruction may overshoot the budget by its own length.
func (c *Console) StepMicros(audio AudioSink, video VideoSink, micros int) int {
	budget := micros * cyclesPerMicrosecondNum / cyclesPerMicrosecondDen
	total := 0
	for total < budget {
		total += c.Step(audio, video)
	}
	return total
}

// StepFrame runs Step until the PPU completes a frame, returning the
// completed frame buffer (the same one handed to video, if any).
func (c *Console) StepFrame(audio AudioSink, video VideoSink) *ppu.Frame {
	start := c.PPU.FrameCount
	for c.PPU.FrameCount == start {
		c.Step(audio, video)
	}
	return c.PPU.Frame()
}
