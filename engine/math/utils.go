package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// RoundUp rounds n up to the next multiple of `multiple`.
// `multiple` must be greater than zero.
func RoundUp[T constraints.Integer](n, multiple T) T {
	return ((n + multiple - 1) / multiple) * multiple
}
