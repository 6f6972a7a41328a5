package resample

import (
	"fmt"
	"math"

	"github.com/arl/blip"
)

// blipWidth is how many output samples a step spreads over, plus the slack
// blip keeps for deltas landing past the end of a frame.
const blipWidth = 2*8 + 2

// Blip resamples by treating its input as a piecewise constant level and
// synthesising each change of level as a band-limited step. It is much
// cheaper than Sinc for the 1-bit streams the synthesiser produces, since
// only transitions cost anything, at the price of a shorter filter and a
// built-in DC-blocking high-pass.
type Blip struct {
	buf   *blip.Buffer
	ratio float64
	level int32
	tmp   []int16
}

// NewBlip returns a Blip converting from in to out, accepting batches of up
// to maxBatch input samples.
func NewBlip(in, out uint64, maxBatch int) (*Blip, error) {
	if in == 0 || out == 0 {
		return nil, fmt.Errorf("resample: rates must be positive: in=%d, out=%d", in, out)
	}
	ratio := float64(in) / float64(out)
	if ratio > blip.MaxRatio {
		return nil, fmt.Errorf("resample: %d/%d is above blip's maximum ratio %d", in, out, blip.MaxRatio)
	}
	if maxBatch <= 0 {
		return nil, fmt.Errorf("resample: batch size %d must be positive", maxBatch)
	}
	size := int(math.Ceil(float64(maxBatch)/ratio)) + 2*blipWidth
	b := &Blip{
		buf:   blip.NewBuffer(size),
		ratio: ratio,
		tmp:   make([]int16, size),
	}
	b.buf.SetRates(float64(in), float64(out))
	return b, nil
}

// Delay is zero: blip starts its own steps at time zero.
func (b *Blip) Delay() int { return 0 }

// Tail is enough input to push the last step all the way out.
func (b *Blip) Tail() int { return int(math.Ceil(blipWidth * b.ratio)) }

// Process always uses all of in. Input levels are expected in [-1, 1].
func (b *Blip) Process(in, out []float32) (used, written int) {
	for i, x := range in {
		level := int32(math.Round(float64(x) * math.MaxInt16))
		if d := level - b.level; d != 0 {
			b.buf.AddDelta(uint64(i), d)
			b.level = level
		}
	}
	b.buf.EndFrame(len(in))
	n := min(b.buf.SamplesAvailable(), len(out), len(b.tmp))
	n = b.buf.ReadSamples(b.tmp, n, blip.Mono)
	for i, s := range b.tmp[:n] {
		out[i] = float32(s) / math.MaxInt16
	}
	return len(in), n
}
