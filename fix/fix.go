// package fix provides unsigned fixed-point formats of any width up to 64
// bits, along with the saturating arithmetic the simulated hardware uses.
package fix

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Format is an unsigned fixed-point format with Int integer bits and Frac
// fractional bits. Values are carried in a uint64 with the binary point Frac
// bits from the bottom.
type Format struct {
	Int, Frac uint
}

// Q returns a purely fractional format: values in [0, 1).
func Q(frac uint) Format { return Format{Frac: frac} }

func (f Format) String() string { return fmt.Sprintf("UQ%d.%d", f.Int, f.Frac) }

// Bits is the total width of the format.
func (f Format) Bits() uint { return f.Int + f.Frac }

// Valid reports whether values of the format fit in a uint64.
func (f Format) Valid() bool { return f.Bits() <= 64 && f.Frac < 64 }

// One is the raw representation of 1.0. It may be out of range for a
// purely fractional format, which is the point of having it.
func (f Format) One() uint64 { return 1 << f.Frac }

// Max is the largest representable raw value.
func (f Format) Max() uint64 { return Mask(f.Bits()) }

// Contains reports whether v is representable.
func (f Format) Contains(v uint64) bool { return v <= f.Max() }

// Sprint formats a raw value as a decimal.
func (f Format) Sprint(v uint64) string {
	return fmt.Sprintf("%.*f", int(min(f.Frac, 20)), Float[float64](f, v))
}

// Float converts a raw value to a float.
func Float[T constraints.Float](f Format, v uint64) T {
	return T(v) / T(f.One())
}

// MulOK multiplies a and b, reporting false if the product does not fit in
// 64 bits.
func MulOK(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
