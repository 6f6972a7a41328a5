// package interp provides interpolation helpers.
package interp

import "golang.org/x/exp/constraints"

// L does linear interpolation:
//
//	L(a, b, c) = (1-c)*a + c*b
//		   = a + c*(b-a)
//
// The second form saves a multiply; both agree to within rounding for c in
// [0, 1].
func L[T constraints.Float](a, b, c T) T {
	return a + c*(b-a)
}

// Table looks up a function sampled at step 1/oversample, interpolating
// linearly between entries. x must lie within the table.
func Table[T constraints.Float](tab []T, oversample int, x float64) T {
	pos := x * float64(oversample)
	i := int(pos)
	if i >= len(tab)-1 {
		return tab[len(tab)-1]
	}
	return L(tab[i], tab[i+1], T(pos-float64(i)))
}
