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

// MaxMipLevels returns the number of mip levels of a full chain for a
// width x height base image.
func MaxMipLevels(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		if width > 1 {
			width >>= 1
		}
		if height > 1 {
			height >>= 1
		}
		levels++
	}
	return levels
}
