package lssim

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/pfcm/lssim/internal/buffer"
)

// BufferSize is the number of clock-rate samples collected before they are
// handed to the resampler.
const BufferSize = 32768

// Resampler turns clock-rate samples into audio-rate samples.
type Resampler interface {
	// Process reads from in and writes to out, returning how much of each
	// it used. Inputs it didn't consume are offered again on the next call.
	Process(in, out []float32) (used, written int)
	// Delay is the number of zero inputs to prime with so the first output
	// lines up with the first input.
	Delay() int
	// Tail is the number of zero inputs needed after the last real input
	// before every output it affects has been produced.
	Tail() int
}

// Sink receives rendered PCM.
type Sink interface {
	WriteSamples([]int16) error
}

// SinkError is returned by Run when the sink fails.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "writing samples: " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

// Pipeline drives a Synth and feeds its output bit, as ±1, through a
// Resampler into a Sink.
type Pipeline struct {
	synth *Synth
	rs    Resampler
	sink  Sink

	buf *buffer.Carry
	out []float32
	pcm []int16

	want    uint64
	written uint64
	cycles  atomic.Uint64
}

func NewPipeline(s *Synth, rs Resampler, sink Sink) *Pipeline {
	buf := buffer.NewCarry(BufferSize)
	// downsampling never produces more outputs than a buffer of inputs.
	return &Pipeline{
		synth: s,
		rs:    rs,
		sink:  sink,
		buf:   buf,
		out:   make([]float32, buf.Cap()),
		pcm:   make([]int16, buf.Cap()),
	}
}

// Run simulates exactly cycles clock edges and writes SampleCount(cycles)
// samples to the sink.
func (p *Pipeline) Run(cycles uint64) error {
	p.want = SampleCount(cycles)
	if err := p.pad(p.rs.Delay()); err != nil {
		return err
	}
	for c := uint64(0); c < cycles; c++ {
		v := float32(-1)
		if p.synth.Step() {
			v = 1
		}
		p.buf.Push(v)
		if p.buf.Full() {
			if err := p.drainFull(); err != nil {
				return err
			}
			p.cycles.Store(c + 1)
		}
	}
	p.cycles.Store(cycles)

	if err := p.pad(p.rs.Tail()); err != nil {
		return err
	}
	for p.written < p.want {
		ok, err := p.drain()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	if p.written < p.want {
		return fmt.Errorf("%w: got %d of %d", ErrShortOutput, p.written, p.want)
	}
	return nil
}

// Cycles is the number of edges simulated so far. It may be called from any
// goroutine while Run is in progress.
func (p *Pipeline) Cycles() uint64 { return p.cycles.Load() }

// Written is the number of samples sent to the sink.
func (p *Pipeline) Written() uint64 { return p.written }

// pad appends n zeros, draining whenever the buffer fills.
func (p *Pipeline) pad(n int) error {
	for n > 0 {
		n -= p.buf.Fill(0, n)
		if p.buf.Full() {
			if err := p.drainFull(); err != nil {
				return err
			}
		}
	}
	return nil
}

// drainFull drains until there is room for another sample.
func (p *Pipeline) drainFull() error {
	for p.buf.Full() {
		ok, err := p.drain()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d samples buffered", ErrResamplerStalled, p.buf.Len())
		}
	}
	return nil
}

// drain runs the resampler once over the buffer and reports whether it did
// anything.
func (p *Pipeline) drain() (bool, error) {
	used, n := p.rs.Process(p.buf.Data(), p.out)
	if used == 0 && n == 0 {
		return false, nil
	}
	if err := p.emit(p.out[:n]); err != nil {
		return false, err
	}
	p.buf.Consume(used)
	return true, nil
}

func (p *Pipeline) emit(samples []float32) error {
	n := min(uint64(len(samples)), p.want-p.written)
	if n == 0 {
		return nil
	}
	for i, v := range samples[:n] {
		p.pcm[i] = Quantize(v)
	}
	if err := p.sink.WriteSamples(p.pcm[:n]); err != nil {
		return &SinkError{Err: err}
	}
	p.written += n
	return nil
}

// Quantize converts a sample in [-1, 1] to 16 bit PCM, clamping anything
// outside.
func Quantize(v float32) int16 {
	x := math.Round(float64(v) * math.MaxInt16)
	return int16(max(math.MinInt16, min(math.MaxInt16, x)))
}

type multiSink []Sink

// MultiSink writes to each sink in turn, stopping at the first error.
func MultiSink(sinks ...Sink) Sink { return multiSink(sinks) }

func (m multiSink) WriteSamples(s []int16) error {
	for _, k := range m {
		if err := k.WriteSamples(s); err != nil {
			return err
		}
	}
	return nil
}
