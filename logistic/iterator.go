// package logistic iterates the logistic map x' = r·x·(1-x) in unsigned fixed
// point, the way a small hardware block without a multiplier would: each
// product is built up by shift-and-add over several clock cycles.
package logistic

import (
	"fmt"

	"github.com/pfcm/lssim/fix"
)

// MaxFrac is the widest supported iterate. The accumulator holds up to
// 2^(frac+3) while multiplying by a growth rate close to 4.
const MaxFrac = 61

// Iterator is one logistic map engine. An update of X takes 2·frac+1 enabled
// cycles: one to consume the previous result and load the operands, frac to
// form x·(1-x) and frac more to scale it by r.
type Iterator struct {
	frac uint
	r    uint64

	X         uint64
	NextReady bool

	counter uint
	mult1   uint64 // multiplier, shifted right one bit per step
	mult2   uint64 // multiplicand
	accum   uint64
}

// New returns an iterator in its reset state with X = seed. The seed counts
// as a freshly produced value, so the first enabled cycle starts an update.
// r is the growth rate with frac fractional bits, at most 4.
func New(frac uint, r, seed uint64) (Iterator, error) {
	if frac == 0 || frac > MaxFrac {
		return Iterator{}, fmt.Errorf("logistic: fractional width %d outside [1, %d]", frac, MaxFrac)
	}
	if r > 4<<frac {
		return Iterator{}, fmt.Errorf("logistic: growth rate %s above 4", fix.Format{Int: 3, Frac: frac}.Sprint(r))
	}
	q := fix.Q(frac)
	if !q.Contains(seed) {
		return Iterator{}, fmt.Errorf("logistic: seed %#x not representable in %v", seed, q)
	}
	return Iterator{
		frac:      frac,
		r:         r,
		X:         seed,
		NextReady: true,
	}, nil
}

// Format is the fixed-point format of X.
func (it *Iterator) Format() fix.Format { return fix.Q(it.frac) }

// R returns the growth rate.
func (it *Iterator) R() uint64 { return it.r }

// Cycles is the number of enabled cycles one map iteration takes.
func (it *Iterator) Cycles() uint { return 2*it.frac + 1 }

// StepInto computes the iterator's state after one clock edge into next.
// It only reads it. When enable is false nothing moves.
func (it *Iterator) StepInto(next *Iterator, enable bool) {
	*next = *it
	if !enable {
		return
	}
	if it.NextReady {
		// consume: restart the multiply on the new value.
		next.NextReady = false
		next.counter = 0
		next.accum = 0
		next.mult1 = it.X
		next.mult2 = fix.SSub(it.Format().One(), it.X)
		return
	}

	acc := it.accum
	if it.mult1&1 != 0 {
		acc += it.mult2
	}
	acc >>= 1
	next.accum = acc
	next.mult1 = it.mult1 >> 1
	next.counter = it.counter + 1

	switch next.counter {
	case it.frac:
		// x·(1-x) is done, scale it by r.
		next.mult1 = acc
		next.mult2 = it.r
		next.accum = 0
	case 2 * it.frac:
		next.X = fix.Clamp(acc, it.Format().Max())
		next.NextReady = true
	}
}
