package apu

import "math"

// filter is a first-order IIR stage computing y[n] = b0*x[n] + b1*x[n-1]
// - a*y[n-1].
type filter struct {
	b0, b1, a    float32
	prevX, prevY float32
}

func frequencyConstants(sampleRate int, cutoff float32) (c, a0 float32) {
	c = float32(sampleRate) / float32(math.Pi) / cutoff
	a0 = 1.0 / (1.0 + c)
	return c, a0
}

func lowPassFilter(sampleRate int, cutoff float32) filter {
	c, a0 := frequencyConstants(sampleRate, cutoff)
	return filter{b0: a0, b1: a0, a: (1 - c) * a0}
}

func highPassFilter(sampleRate int, cutoff float32) filter {
	c, a0 := frequencyConstants(sampleRate, cutoff)
	return filter{b0: c * a0, b1: -c * a0, a: (1 - c) * a0}
}

func (f *filter) step(x float32) float32 {
	y := f.b0*x + f.b1*f.prevX - f.a*f.prevY
	f.prevY = y
	f.prevX = x
	return y
}

// filterChain is the three-stage chain real NES output passes through
// before it reaches the DAC: two high-pass stages (90Hz, 440Hz) that
// remove DC offset, then a 14kHz low-pass stage.
type filterChain struct {
	high1, high2, low filter
}

func newFilterChain(sampleRate int) filterChain {
	return filterChain{
		high1: highPassFilter(sampleRate, 90.0),
		high2: highPassFilter(sampleRate, 440.0),
		low:   lowPassFilter(sampleRate, 14000.0),
	}
}

func (c *filterChain) step(x float32) float32 {
	x1 := c.high1.step(x)
	x2 := c.high2.step(x1)
	return c.low.step(x2)
}
