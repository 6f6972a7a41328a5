package lssim

import (
	"fmt"

	"github.com/pfcm/lssim/clock"
	"github.com/pfcm/lssim/logistic"
	"github.com/pfcm/lssim/osc"
)

// Chain is one channel: a divider gating an iterator that drives an
// oscillator.
type Chain struct {
	Div  clock.Divider
	Iter logistic.Iterator
	Osc  osc.NCO
}

// State is every register in the circuit.
type State struct {
	Chans []Chain
	Mix   Mixer
}

func (s *State) copyFrom(o *State) {
	copy(s.Chans, o.Chans)
	s.Mix = o.Mix
}

// Synth steps the circuit one clock edge at a time. Each step reads only the
// current state and writes only the next one, then the two swap, so every
// register sees the values from before the edge.
type Synth struct {
	params Params
	shift  uint

	cur, next *State
	cycles    uint64
}

// NewSynth builds the circuit in its reset state. Channel i's iterator starts
// at seeds[i]; pass Seeds(p) for the usual ones.
func NewSynth(p Params, seeds []uint64) (*Synth, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if uint64(len(seeds)) != p.NOsc {
		return nil, fmt.Errorf("%w: %d seeds for %d channels", ErrInvalidParams, len(seeds), p.NOsc)
	}
	mix, err := NewMixer(int(p.NOsc))
	if err != nil {
		return nil, err
	}
	cur := &State{
		Chans: make([]Chain, p.NOsc),
		Mix:   mix,
	}
	for i := range cur.Chans {
		c := &cur.Chans[i]
		if c.Div, err = clock.New(p.FreqRes); err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidParams, i, err)
		}
		if c.Iter, err = logistic.New(uint(p.Frac), p.GrowthRate(i), seeds[i]); err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidParams, i, err)
		}
		if c.Osc, err = osc.New(uint(p.PhaseBits)); err != nil {
			return nil, fmt.Errorf("%w: channel %d: %w", ErrInvalidParams, i, err)
		}
	}
	next := &State{Chans: make([]Chain, p.NOsc)}
	next.copyFrom(cur)
	return &Synth{
		params: p,
		shift:  osc.FreqShift(uint(p.Frac), uint(p.PhaseBits)),
		cur:    cur,
		next:   next,
	}, nil
}

// Params returns the parameters the synth was built with.
func (s *Synth) Params() Params { return s.params }

// Step advances one clock edge and returns the mixer's new output bit.
func (s *Synth) Step() bool {
	cur, next := s.cur, s.next
	for i := range cur.Chans {
		c, n := &cur.Chans[i], &next.Chans[i]
		c.Div.StepInto(&n.Div)
		c.Iter.StepInto(&n.Iter, c.Div.ModN)
		c.Osc.StepInto(&n.Osc, c.Div.ModN, c.Iter.X>>s.shift)
	}
	cur.Mix.StepInto(&next.Mix, next.Chans)
	s.cur, s.next = next, cur
	s.cycles++
	return s.cur.Mix.AudioOut
}

// Cycles is the number of edges stepped so far.
func (s *Synth) Cycles() uint64 { return s.cycles }

// Current is the state after the last edge. It is overwritten by the step
// after next, so callers must not hold on to it.
func (s *Synth) Current() *State { return s.cur }
