// package analysis measures rendered audio.
package analysis

import (
	"fmt"
	"math"

	"github.com/ktye/fft"
)

// DefaultFrame is the FFT length used by the command line tool.
const DefaultFrame = 4096

// Meter is a sink that keeps running level statistics and an averaged power
// spectrum of everything written to it.
type Meter struct {
	rate int

	n      uint64
	sum    float64
	sumSq  float64
	peak   float64
	fft    fft.FFT
	window []float64
	frame  []complex128
	fill   int
	power  []float64
	frames int
}

// NewMeter returns a Meter for audio at rate, analysing frames of size
// samples. size must be a power of two.
func NewMeter(rate, size int) (*Meter, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("analysis: sample rate %d must be positive", rate)
	}
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("analysis: frame size %d is not a power of two", size)
	}
	f, err := fft.New(size)
	if err != nil {
		return nil, fmt.Errorf("analysis: frame size %d: %w", size, err)
	}
	window := make([]float64, size)
	for i := range window {
		window[i] = (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
	}
	return &Meter{
		rate:   rate,
		fft:    f,
		window: window,
		frame:  make([]complex128, size),
		power:  make([]float64, size/2+1),
	}, nil
}

// WriteSamples never fails.
func (m *Meter) WriteSamples(s []int16) error {
	for _, v := range s {
		x := float64(v) / math.MaxInt16
		m.n++
		m.sum += x
		m.sumSq += x * x
		m.peak = max(m.peak, math.Abs(x))

		m.frame[m.fill] = complex(x*m.window[m.fill], 0)
		m.fill++
		if m.fill == len(m.frame) {
			m.transform()
		}
	}
	return nil
}

func (m *Meter) transform() {
	m.frame = m.fft.Transform(m.frame)
	for k := range m.power {
		m.power[k] += real(m.frame[k])*real(m.frame[k]) + imag(m.frame[k])*imag(m.frame[k])
	}
	m.frames++
	m.fill = 0
}

// Summary describes the audio written so far, in units of full scale.
type Summary struct {
	Samples uint64
	RMS     float64
	Peak    float64
	DC      float64
	// DominantHz is the centre of the strongest non-DC bin of the averaged
	// spectrum, or zero before a whole frame has been seen.
	DominantHz float64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d samples, rms %.4f (%.1f dBFS), peak %.4f, dc %+.4f, dominant %.1f Hz",
		s.Samples, s.RMS, 20*math.Log10(s.RMS), s.Peak, s.DC, s.DominantHz)
}

func (m *Meter) Summary() Summary {
	if m.n == 0 {
		return Summary{}
	}
	s := Summary{
		Samples: m.n,
		RMS:     math.Sqrt(m.sumSq / float64(m.n)),
		Peak:    m.peak,
		DC:      m.sum / float64(m.n),
	}
	if m.frames > 0 {
		best := 1
		for k := 2; k < len(m.power); k++ {
			if m.power[k] > m.power[best] {
				best = k
			}
		}
		s.DominantHz = float64(best) * float64(m.rate) / float64(len(m.frame))
	}
	return s
}

// Spectrum returns the averaged power per bin, from DC to Nyquist.
func (m *Meter) Spectrum() []float64 {
	out := make([]float64, len(m.power))
	if m.frames == 0 {
		return out
	}
	for k, p := range m.power {
		out[k] = p / float64(m.frames)
	}
	return out
}
