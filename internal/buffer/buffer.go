// package buffer provides some audio buffer primitives.
package buffer

import "fmt"

// Carry is a fixed-capacity buffer of high-rate samples waiting to be
// resampled. A resampler rarely consumes everything it is given; Consume
// moves the leftover tail back to the start so it is read again with the next
// batch instead of being dropped.
type Carry struct {
	buf []float32
	n   int
}

// NewCarry allocates a Carry holding at most size samples.
func NewCarry(size int) *Carry {
	return &Carry{buf: make([]float32, size)}
}

// Cap is the capacity in samples.
func (c *Carry) Cap() int { return len(c.buf) }

// Len is the number of samples held.
func (c *Carry) Len() int { return c.n }

// Full reports whether there's no room for another sample.
func (c *Carry) Full() bool { return c.n == len(c.buf) }

// Data returns the held samples. The slice is only valid until the next call
// to Push, Fill or Consume.
func (c *Carry) Data() []float32 { return c.buf[:c.n] }

// Push appends one sample. The caller checks Full first.
func (c *Carry) Push(s float32) {
	c.buf[c.n] = s
	c.n++
}

// Fill appends up to n copies of s, stopping when full. It returns how many
// were added.
func (c *Carry) Fill(s float32, n int) int {
	n = min(n, len(c.buf)-c.n)
	for i := range c.buf[c.n : c.n+n] {
		c.buf[c.n+i] = s
	}
	c.n += n
	return n
}

// Consume drops the first n samples, shifting the rest to the front.
func (c *Carry) Consume(n int) {
	if n < 0 || n > c.n {
		panic(fmt.Errorf("consume %d of %d samples", n, c.n))
	}
	c.n = copy(c.buf, c.buf[n:c.n])
}
