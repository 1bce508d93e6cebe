package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(1.5), Clamp(float32(1.5), 1.0, 2.0))
	assert.Equal(t, uint32(640), Clamp(uint32(320), 640, 1920))
}

func TestMaxMipLevels(t *testing.T) {
	assert.Equal(t, uint32(1), MaxMipLevels(1, 1))
	assert.Equal(t, uint32(9), MaxMipLevels(256, 256))
	// Non-square: the chain runs until both axes reach 1.
	assert.Equal(t, uint32(9), MaxMipLevels(256, 64))
	assert.Equal(t, uint32(11), MaxMipLevels(1024, 768))
}

func TestExtents3DAccumulate(t *testing.T) {
	e := Extents3D{
		Min: Vec3{X: 0, Y: 0, Z: 0},
		Max: Vec3{X: 0, Y: 0, Z: 0},
	}
	e.Accumulate(Vec3{X: 1, Y: -2, Z: 3})
	e.Accumulate(Vec3{X: -1, Y: 2, Z: 0})

	assert.Equal(t, Vec3{X: -1, Y: -2, Z: 0}, e.Min)
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, e.Max)
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 3}, e.Size())
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{X: 3, Y: 0, Z: 4}.Normalized()
	assert.InDelta(t, 0.6, v.X, 1e-6)
	assert.InDelta(t, 0.8, v.Z, 1e-6)
	// The zero vector stays zero instead of dividing by zero.
	assert.Equal(t, Vec3{}, Vec3{}.Normalized())
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	assert.Equal(t, Vec3{Z: 1}, x.Cross(y))
}
