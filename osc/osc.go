// package osc provides oscillators.
package osc

import (
	"fmt"
	"math"

	"github.com/pfcm/lssim/fix"
)

// NCO is a numerically controlled oscillator: a phase accumulator whose top
// bit is a square wave at freq·fclk/2^bits, where fclk is the rate at which
// it is stepped.
type NCO struct {
	bits uint
	mask uint64

	Phase uint64
	Snd   bool
}

// New returns an NCO with a bits wide phase accumulator at phase zero.
func New(bits uint) (NCO, error) {
	if bits == 0 || bits > 64 {
		return NCO{}, fmt.Errorf("osc: phase width %d outside [1, 64]", bits)
	}
	return NCO{bits: bits, mask: fix.Mask(bits)}, nil
}

// Bits returns the width of the phase accumulator.
func (o *NCO) Bits() uint { return o.bits }

// StepInto computes the oscillator's state after one clock edge into next.
// The phase only advances when step is set; the output always follows the
// new phase.
func (o *NCO) StepInto(next *NCO, step bool, freq uint64) {
	next.bits, next.mask = o.bits, o.mask
	p := o.Phase
	if step {
		p = (p + freq) & o.mask
	}
	next.Phase = p
	next.Snd = p>>(o.bits-1)&1 != 0
}

// FreqShift returns the right shift that takes a value with frac fractional
// bits to a frequency word for a phaseBits wide accumulator. The word always
// stays below 2^(phaseBits-1), so the output never passes half the step rate.
func FreqShift(frac, phaseBits uint) uint {
	if frac < phaseBits {
		return 0
	}
	return frac - phaseBits + 1
}

// Hz is the output frequency for a frequency word when stepped at rate.
func Hz(freq uint64, bits uint, rate float64) float64 {
	return math.Ldexp(float64(freq)*rate, -int(bits))
}
