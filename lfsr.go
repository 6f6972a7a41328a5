package lssim

import "fmt"

// LFSR is a 16 bit Galois linear-feedback shift register. It seeds the
// iterators: zero is a fixed point of the logistic map, so channels can't all
// start from reset.
type LFSR struct {
	state uint16
	taps  uint16
}

const defaultTaps uint16 = 0xd008

// NewLFSR returns a maximal length LFSR in its reset state.
func NewLFSR() *LFSR {
	return &LFSR{
		state: 0xffff,
		taps:  defaultTaps,
	}
}

func (l *LFSR) String() string { return fmt.Sprintf("LFSR(%2x)", l.taps) }

// Next shifts once and returns the new state.
func (l *LFSR) Next() uint16 {
	fb := l.state & 1
	l.state >>= 1
	if fb == 1 {
		l.state ^= l.taps
	}
	return l.state
}

// Word shifts 16 times, so consecutive words share no bits.
func (l *LFSR) Word() uint16 {
	for i := 0; i < 15; i++ {
		l.Next()
	}
	return l.Next()
}

// Seeds returns one starting iterate per channel: Frac bits drawn from an
// LFSR, never zero.
func Seeds(p Params) []uint64 {
	l := NewLFSR()
	frac := uint(p.Frac)
	words := (frac + 15) / 16
	seeds := make([]uint64, p.NOsc)
	for i := range seeds {
		var v uint64
		for w := uint(0); w < words; w++ {
			v = v<<16 | uint64(l.Word())
		}
		// keep the top frac bits.
		v >>= 16*words - frac
		seeds[i] = max(v, 1)
	}
	return seeds
}
