package lssim

import (
	"fmt"
	"math/bits"

	"github.com/pfcm/lssim/fix"
)

// Mixer time-multiplexes the channels onto one output bit, visiting one
// channel per clock. When the channel count isn't a power of two the counter
// still runs over the whole power of two, and the output holds through the
// unused slots.
type Mixer struct {
	n           uint32
	counterMask uint32
	counter     uint32

	AudioOut bool
}

// NewMixer returns a mixer over n channels.
func NewMixer(n int) (Mixer, error) {
	if n < 1 || n > MaxOscillators {
		return Mixer{}, fmt.Errorf("%w: mixer over %d channels", ErrInvalidParams, n)
	}
	return Mixer{
		n:           uint32(n),
		counterMask: uint32(fix.Mask(uint(bits.Len(uint(n - 1))))),
	}, nil
}

// StepInto reads chans, which must already hold this cycle's new oscillator
// outputs.
func (m *Mixer) StepInto(next *Mixer, chans []Chain) {
	next.n = m.n
	next.counterMask = m.counterMask
	next.counter = (m.counter + 1) & m.counterMask
	next.AudioOut = m.AudioOut
	if m.counter < m.n {
		next.AudioOut = chans[m.counter].Osc.Snd
	}
}
