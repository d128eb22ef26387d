package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MulDivRound returns round(v*mul/div) using 64-bit intermediates.
// div == 0 yields 0.
func MulDivRound[T constraints.Unsigned](v, mul, div T) T {
	if div == 0 {
		return 0
	}
	n := uint64(v)*uint64(mul) + uint64(div)/2
	return T(n / uint64(div))
}

// MulDivRoundSigned is MulDivRound for signed values; halves round away from zero.
func MulDivRoundSigned[T constraints.Signed](v, mul, div T) T {
	if div == 0 {
		return 0
	}
	n := int64(v) * int64(mul)
	d := int64(div)
	if (n < 0) != (d < 0) {
		return T((n - d/2) / d)
	}
	return T((n + d/2) / d)
}
