// package resample converts sample streams between rates with band-limited
// interpolation. Resamplers here take a fixed batch of input and report how
// much of it they are finished with, so the caller can carry the rest over to
// the next batch.
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/pfcm/lssim/interp"
)

// Config describes a windowed-sinc resampler.
type Config struct {
	InRate, OutRate uint64
	// SincLen is the number of input samples each output is computed from.
	// It must be even.
	SincLen int
	// Cutoff is the filter's corner as a fraction of the lower of the two
	// Nyquist frequencies.
	Cutoff float64
	// Oversample is the number of table entries per input sample.
	Oversample int
}

// DefaultConfig is a long, steep filter: 4096 taps, corner at 0.95 of the
// output Nyquist, 128x oversampled table, Blackman-Harris squared window.
func DefaultConfig(in, out uint64) Config {
	return Config{
		InRate:     in,
		OutRate:    out,
		SincLen:    4096,
		Cutoff:     0.95,
		Oversample: 128,
	}
}

func (c Config) validate() error {
	var errs []error
	if c.InRate == 0 || c.OutRate == 0 {
		errs = append(errs, fmt.Errorf("rates must be positive: in=%d, out=%d", c.InRate, c.OutRate))
	}
	if c.SincLen <= 0 || c.SincLen%2 != 0 {
		errs = append(errs, fmt.Errorf("sinc length %d must be even and positive", c.SincLen))
	}
	if !(c.Cutoff > 0 && c.Cutoff <= 1) {
		errs = append(errs, fmt.Errorf("cutoff %v outside (0, 1]", c.Cutoff))
	}
	if c.Oversample <= 0 {
		errs = append(errs, fmt.Errorf("oversampling factor %d must be positive", c.Oversample))
	}
	return errors.Join(errs...)
}

// Sinc is a windowed-sinc resampler with a fixed input batch. The read
// position is an exact fraction of the input rate, so output k is always
// centred on input time k·InRate/OutRate and long runs do not drift.
type Sinc struct {
	l, m       uint64 // each output advances m/l input samples
	half       int
	oversample int
	table      []float32 // h(|x|) in steps of 1/oversample, |x| <= half
	kernel     []float32 // taps for an output landing exactly on an input sample

	pos uint64 // next output position, in 1/l input samples from the batch start
}

// NewSinc builds the filter table for cfg.
func NewSinc(cfg Config) (*Sinc, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	g := gcd(cfg.InRate, cfg.OutRate)
	s := &Sinc{
		l:          cfg.OutRate / g,
		m:          cfg.InRate / g,
		half:       cfg.SincLen / 2,
		oversample: cfg.Oversample,
	}
	s.table, s.kernel = design(cfg)
	s.pos = uint64(s.half) * s.l
	return s, nil
}

// Delay is the number of zero samples to feed before the first real one: the
// filter looks back that far from the first output.
func (s *Sinc) Delay() int { return s.half }

// Tail is the number of zero samples to feed after the last real one so that
// every output it contributes to gets computed.
func (s *Sinc) Tail() int { return s.half }

// Process computes as many outputs as in has the inputs for, up to len(out).
// used is the number of leading inputs that no later output needs; the caller
// drops those and passes the rest again, followed by new samples.
func (s *Sinc) Process(in, out []float32) (used, written int) {
	n := len(in)
	span := 2 * s.half
	for written < len(out) {
		ci := int(s.pos / s.l)
		if ci+s.half >= n {
			break
		}
		win := in[ci-s.half+1 : ci+s.half+1]
		var acc float64
		if frac := s.pos % s.l; frac == 0 {
			k := s.kernel[:span]
			for i, x := range win {
				acc += float64(x) * float64(k[i])
			}
		} else {
			f := float64(frac) / float64(s.l)
			for i, x := range win {
				// distance from the output position to this input.
				d := math.Abs(float64(s.half-1-i) + f)
				acc += float64(x) * float64(interp.Table(s.table, s.oversample, d))
			}
		}
		out[written] = float32(acc)
		written++
		s.pos += s.m
	}
	next := int(s.pos/s.l) - s.half + 1
	used = min(max(next, 0), n)
	s.pos -= uint64(used) * s.l
	return used, written
}

// design computes the coefficient table, normalised to unity gain at DC, and
// the integer-offset kernel taken from it.
func design(cfg Config) (table, kernel []float32) {
	half := cfg.SincLen / 2
	os := cfg.Oversample
	fc := cfg.Cutoff * min(1, float64(cfg.OutRate)/float64(cfg.InRate))

	raw := make([]float64, half*os+1)
	for i := range raw {
		x := float64(i) / float64(os)
		raw[i] = fc * sinc(fc*x) * blackmanHarris2(x/float64(half))
	}
	sum := raw[0] + raw[half*os]
	for k := 1; k < half; k++ {
		sum += 2 * raw[k*os]
	}

	table = make([]float32, len(raw))
	for i, v := range raw {
		table[i] = float32(v / sum)
	}
	kernel = make([]float32, 2*half)
	for i := range kernel {
		d := half - 1 - i
		if d < 0 {
			d = -d
		}
		kernel[i] = table[d*os]
	}
	return table, kernel
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

// blackmanHarris2 is the square of the 4-term Blackman-Harris window,
// centred on zero with u in [-1, 1].
func blackmanHarris2(u float64) float64 {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	w := a0 + a1*math.Cos(math.Pi*u) + a2*math.Cos(2*math.Pi*u) + a3*math.Cos(3*math.Pi*u)
	return w * w
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
