package fix

import "golang.org/x/exp/constraints"

// sat.go contains the unsigned saturating arithmetic. The simulated hardware
// clamps at the ends of a register rather than wrapping: a wrapped iterate
// would throw the trajectory somewhere unrelated.

// Mask returns a value with the low n bits set. Any n >= 64 gives all ones.
func Mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<n - 1
}

// SSub subtracts b from a, returning zero if the result would underflow.
func SSub[T constraints.Unsigned](a, b T) T {
	return a - min(a, b)
}

// Clamp limits a to hi.
func Clamp[T constraints.Unsigned](a, hi T) T {
	return min(a, hi)
}
