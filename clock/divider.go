// package clock provides clock-enable generators.
package clock

import "errors"

// ErrZeroModulus is returned when asking for a divider that never pulses.
var ErrZeroModulus = errors.New("clock: divider modulus must be at least 1")

// Divider counts clock edges modulo N and raises ModN for the one edge in
// every N on which the count wraps back to zero.
type Divider struct {
	n       uint64
	counter uint64

	ModN bool
}

// New returns a Divider in its reset state: counter at zero, no pulse.
func New(n uint64) (Divider, error) {
	if n == 0 {
		return Divider{}, ErrZeroModulus
	}
	return Divider{n: n}, nil
}

// N returns the modulus.
func (d *Divider) N() uint64 { return d.n }

// StepInto computes the divider's state after one clock edge into next. It
// only reads d.
func (d *Divider) StepInto(next *Divider) {
	c := d.counter + 1
	if c == d.n {
		c = 0
	}
	next.n = d.n
	next.counter = c
	next.ModN = c == 0
}
