package frontend

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// ringCapacity is generous enough that a slow consumer never blocks the
// emulation thread; PushSample drops the oldest samples instead.
const ringCapacity = 1 << 15

// AudioSink adapts the apu package's one-sample-at-a-time PushSample
// callback to an io.Reader that ebiten's audio.Player can stream from.
// Samples are stored as signed 16-bit stereo PCM, the format
// ebiten/v2/audio expects.
type AudioSink struct {
	mu     sync.Mutex
	ring   []byte
	read   int
	write  int
	filled int

	context *audio.Context
	player  *audio.Player
}

// NewAudioSink creates a sink and starts a looping ebiten audio player
// reading from it. sampleRate must match the rate the console's APU was
// constructed with.
func NewAudioSink(sampleRate int) (*AudioSink, error) {
	s := &AudioSink{
		ring:    make([]byte, ringCapacity),
		context: audio.NewContext(sampleRate),
	}
	player, err := s.context.NewPlayer(s)
	if err != nil {
		return nil, err
	}
	player.Play()
	s.player = player
	return s, nil
}

// PushSample implements apu.AudioSink. sample is in [-1, 1]; it is
// converted to 16-bit PCM and duplicated across both stereo channels.
func (s *AudioSink) PushSample(sample float32) {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	v := int16(sample * 32767)
	lo, hi := byte(v), byte(v>>8)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushByte(lo)
	s.pushByte(hi)
	s.pushByte(lo)
	s.pushByte(hi)
}

func (s *AudioSink) pushByte(b byte) {
	if s.filled == len(s.ring) {
		// Ring is full; drop the oldest byte to make room rather than
		// block the emulation thread on a slow audio consumer.
		s.read = (s.read + 1) % len(s.ring)
		s.filled--
	}
	s.ring[s.write] = b
	s.write = (s.write + 1) % len(s.ring)
	s.filled++
}

// Read implements io.Reader for the ebiten audio.Player, emitting
// silence when the ring is empty rather than blocking.
func (s *AudioSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p)
	if n > s.filled {
		n = s.filled
	}
	for i := 0; i < n; i++ {
		p[i] = s.ring[s.read]
		s.read = (s.read + 1) % len(s.ring)
	}
	s.filled -= n
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
