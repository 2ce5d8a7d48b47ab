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

// Saturate clamps f to [0, 1].
func Saturate[T constraints.Float](f T) T {
	return Clamp(f, 0, 1)
}

// Lerp interpolates linearly between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// DivideCeil returns ceil(n / d) for positive integers.
func DivideCeil[T constraints.Unsigned](n, d T) T {
	return (n + d - 1) / d
}
