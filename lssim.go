// package lssim simulates the logistic_snd sound generator one clock edge at
// a time and renders what it plays at audio rates.
//
// Each of NOsc channels is a clock divider gating a logistic map iterator,
// whose current value sets the frequency of a square wave oscillator. A mixer
// picks one channel's output bit per clock. Everything is clocked at ClockHz;
// a Pipeline brings the resulting bit stream down to SampleRate.
package lssim

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/pfcm/lssim/fix"
	"github.com/pfcm/lssim/logistic"
)

const (
	// ClockHz is the rate of the simulated hardware's clock.
	ClockHz = 25_200_000
	// SampleRate is the rate of rendered audio.
	SampleRate = 48_000
	// BitDepth and Channels describe the rendered PCM.
	BitDepth = 16
	Channels = 1

	// MaxOscillators bounds NOsc.
	MaxOscillators = 1 << 16
	// MaxFrac bounds Frac, see logistic.MaxFrac.
	MaxFrac = logistic.MaxFrac
	// MinPhaseBits and MaxPhaseBits bound the phase accumulator. A one bit
	// accumulator always gets a zero frequency word and never moves.
	MinPhaseBits = 2
	MaxPhaseBits = 64
)

var (
	// ErrInvalidParams is wrapped by every parameter validation failure.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrResamplerStalled means the resampler was handed a full buffer and
	// neither consumed nor produced anything.
	ErrResamplerStalled = errors.New("resampler made no progress on a full buffer")
	// ErrShortOutput means the stream ended before the expected number of
	// samples came out of the resampler.
	ErrShortOutput = errors.New("resampler produced too few samples")
)

// Params are the module parameters, fixed for a whole run.
type Params struct {
	// NOsc is the number of oscillator channels.
	NOsc uint64
	// RInc is how far, in units of 2^-Frac, each successive channel's growth
	// rate sits below 4.
	RInc uint64
	// Frac is the number of fractional bits in an iterate.
	Frac uint64
	// PhaseBits is the width of each oscillator's phase accumulator.
	PhaseBits uint64
	// FreqRes divides the clock for the iterators and oscillators.
	FreqRes uint64
}

func (p Params) String() string {
	return fmt.Sprintf("n_osc=%d r_inc=%d frac=%d phase_bits=%d freq_res=%d",
		p.NOsc, p.RInc, p.Frac, p.PhaseBits, p.FreqRes)
}

// Validate checks everything that would otherwise go wrong partway through a
// simulation.
func (p Params) Validate() error {
	var errs []error
	if p.NOsc == 0 || p.NOsc > MaxOscillators {
		errs = append(errs, fmt.Errorf("n_osc %d outside [1, %d]", p.NOsc, MaxOscillators))
	}
	if p.Frac == 0 || p.Frac > MaxFrac {
		errs = append(errs, fmt.Errorf("frac %d outside [1, %d]", p.Frac, MaxFrac))
	}
	if p.PhaseBits < MinPhaseBits || p.PhaseBits > MaxPhaseBits {
		errs = append(errs, fmt.Errorf("phase_bits %d outside [%d, %d]", p.PhaseBits, MinPhaseBits, MaxPhaseBits))
	}
	if p.FreqRes == 0 {
		errs = append(errs, errors.New("freq_res must be at least 1"))
	}
	if p.Frac != 0 && p.Frac <= MaxFrac {
		span, ok := fix.MulOK(p.NOsc, p.RInc)
		if four := uint64(4) << p.Frac; !ok || span > four {
			errs = append(errs, fmt.Errorf("n_osc*r_inc = %d*%d takes the growth rate below 0", p.NOsc, p.RInc))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
}

// GrowthRate is the logistic map's r for channel i, with Frac fractional
// bits. Only meaningful for valid params.
func (p Params) GrowthRate(i int) uint64 {
	return 4<<p.Frac - uint64(i+1)*p.RInc
}

// Format is the fixed-point format of an iterate.
func (p Params) Format() fix.Format { return fix.Q(uint(p.Frac)) }

// CycleCount is the number of clock edges in seconds of simulated time.
func CycleCount(seconds uint64) (uint64, error) {
	n, ok := fix.MulOK(seconds, ClockHz)
	if !ok {
		return 0, fmt.Errorf("%w: %d seconds is more than 2^64 clock cycles", ErrInvalidParams, seconds)
	}
	return n, nil
}

// SampleCount is the number of output samples covering cycles clock edges:
// ceil(cycles * SampleRate / ClockHz).
func SampleCount(cycles uint64) uint64 {
	hi, lo := bits.Mul64(cycles, SampleRate)
	q, r := bits.Div64(hi, lo, ClockHz)
	if r != 0 {
		q++
	}
	return q
}
