package apu

import "github.com/rng999/nescore/internal/bus"

func stepSquareTimer(p *bus.PulseState) {
	if p.TimerValue == 0 {
		p.TimerValue = p.TimerPeriod
		p.DutyValue = (p.DutyValue + 1) % 8
	} else {
		p.TimerValue--
	}
}

func stepSquareEnvelope(p *bus.PulseState) {
	switch {
	case p.EnvelopeStart:
		p.EnvelopeVolume = 15
		p.EnvelopeValue = p.EnvelopePeriod
		p.EnvelopeStart = false
	case p.EnvelopeValue > 0:
		p.EnvelopeValue--
	default:
		if p.EnvelopeVolume > 0 {
			p.EnvelopeVolume--
		} else if p.EnvelopeLoop {
			p.EnvelopeVolume = 15
		}
		p.EnvelopeValue = p.EnvelopePeriod
	}
}

func squareSweep(p *bus.PulseState) {
	delta := p.TimerPeriod >> p.SweepShift
	if p.SweepNegate {
		p.TimerPeriod -= delta
		if p.FirstChannel {
			p.TimerPeriod--
		}
	} else {
		p.TimerPeriod += delta
	}
}

func stepSquareSweep(p *bus.PulseState) {
	switch {
	case p.SweepReload:
		if p.SweepEnable && p.SweepValue == 0 {
			squareSweep(p)
		}
		p.SweepValue = p.SweepPeriod
		p.SweepReload = false
	case p.SweepValue > 0:
		p.SweepValue--
	default:
		if p.SweepEnable {
			squareSweep(p)
		}
		p.SweepValue = p.SweepPeriod
	}
}

func stepSquareLength(p *bus.PulseState) {
	if p.LengthEnabled && p.LengthValue > 0 {
		p.LengthValue--
	}
}

func squareOutput(p *bus.PulseState) uint8 {
	if !p.Enabled || p.LengthValue == 0 {
		return 0
	}
	if dutyTable[p.DutyMode][p.DutyValue] == 0 {
		return 0
	}
	if p.TimerPeriod < 8 || p.TimerPeriod > 0x7FF {
		return 0
	}
	if p.EnvelopeEnabled {
		return p.EnvelopeVolume
	}
	return p.ConstantVolume
}

func stepTriangleTimer(t *bus.TriangleState) {
	if t.TimerValue == 0 {
		t.TimerValue = t.TimerPeriod
		if t.LengthValue > 0 && t.CounterValue > 0 {
			t.DutyValue = (t.DutyValue + 1) % 32
		}
	} else {
		t.TimerValue--
	}
}

func stepTriangleLength(t *bus.TriangleState) {
	if t.LengthEnabled && t.LengthValue > 0 {
		t.LengthValue--
	}
}

func stepTriangleCounter(t *bus.TriangleState) {
	if t.CounterReload {
		t.CounterValue = t.CounterPeriod
	} else if t.CounterValue > 0 {
		t.CounterValue--
	}
	if t.LengthEnabled {
		t.CounterReload = false
	}
}

func triangleOutput(t *bus.TriangleState) uint8 {
	if !t.Enabled || t.LengthValue == 0 || t.CounterValue == 0 {
		return 0
	}
	return triangleTable[t.DutyValue]
}

func stepNoiseTimer(n *bus.NoiseState) {
	if n.TimerValue == 0 {
		n.TimerValue = n.TimerPeriod
		shift := uint(1)
		if n.Mode {
			shift = 6
		}
		b1 := n.ShiftRegister & 1
		b2 := (n.ShiftRegister >> shift) & 1
		n.ShiftRegister >>= 1
		n.ShiftRegister |= (b1 ^ b2) << 14
	} else {
		n.TimerValue--
	}
}

func stepNoiseEnvelope(n *bus.NoiseState) {
	switch {
	case n.EnvelopeStart:
		n.EnvelopeVolume = 15
		n.EnvelopeValue = n.EnvelopePeriod
		n.EnvelopeStart = false
	case n.EnvelopeValue > 0:
		n.EnvelopeValue--
	default:
		if n.EnvelopeVolume > 0 {
			n.EnvelopeVolume--
		} else if n.EnvelopeLoop {
			n.EnvelopeVolume = 15
		}
		n.EnvelopeValue = n.EnvelopePeriod
	}
}

func stepNoiseLength(n *bus.NoiseState) {
	if n.LengthEnabled && n.LengthValue > 0 {
		n.LengthValue--
	}
}

func noiseOutput(n *bus.NoiseState) uint8 {
	if !n.Enabled || n.LengthValue == 0 || n.ShiftRegister&1 == 1 {
		return 0
	}
	if n.EnvelopeEnabled {
		return n.EnvelopeVolume
	}
	return n.ConstantVolume
}

// stepDMCTimer advances the delta-modulation channel's output timer,
// fetching a new sample byte from the bus through stepDMCReader whenever
// the reader's bit count empties. It returns whether that fetch should
// stall the CPU for four cycles, matching the real DMA contention.
func stepDMCTimer(d *bus.DMCState, b *bus.Bus) bool {
	if !d.Enabled {
		return false
	}
	stall := stepDMCReader(d, b)
	if d.TickValue == 0 {
		d.TickValue = d.TickPeriod
		stepDMCShifter(d)
	} else {
		d.TickValue--
	}
	return stall
}

func stepDMCReader(d *bus.DMCState, b *bus.Bus) bool {
	if d.CurrentLength == 0 || d.BitCount != 0 {
		return false
	}
	d.ShiftRegister = b.Read(d.CurrentAddr)
	d.BitCount = 8
	d.CurrentAddr++
	if d.CurrentAddr == 0 {
		d.CurrentAddr = 0x8000
	}
	d.CurrentLength--
	if d.CurrentLength == 0 {
		if d.Loop {
			d.CurrentAddr = d.SampleAddress
			d.CurrentLength = d.SampleLength
		} else if d.IRQEnabled {
			d.IRQ = true
			b.CPU.RaiseIRQ()
		}
	}
	return true
}

func stepDMCShifter(d *bus.DMCState) {
	if d.BitCount == 0 {
		return
	}
	if d.ShiftRegister&1 == 1 {
		if d.Value <= 125 {
			d.Value += 2
		}
	} else if d.Value >= 2 {
		d.Value -= 2
	}
	d.ShiftRegister >>= 1
	d.BitCount--
}
