package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/math"
)

func TestApplyTransformFlipsYAndScales(t *testing.T) {
	v := Vertex{
		Position:  math.Vec3{X: 1, Y: 1, Z: 1},
		Normal:    math.Vec3{X: 0, Y: 1, Z: 0},
		Tangent:   math.Vec3{X: 0, Y: -1, Z: 0},
		Bitangent: math.Vec3{X: 0, Y: 0.5, Z: 0},
		UV:        math.Vec2{X: 0.5, Y: 0.25},
	}
	transform := DefaultImportTransform()
	transform.Scale = 2

	out := ApplyTransform(v, transform)
	assert.Equal(t, math.Vec3{X: 2, Y: -2, Z: 2}, out.Position)
	assert.Equal(t, math.Vec3{X: 0, Y: -1, Z: 0}, out.Normal)
	assert.Equal(t, math.Vec3{X: 0, Y: 1, Z: 0}, out.Tangent)
	assert.Equal(t, math.Vec3{X: 0, Y: -0.5, Z: 0}, out.Bitangent)
	assert.Equal(t, math.Vec2{X: 0.5, Y: 0.25}, out.UV)
}

func TestApplyTransformCenterAndUVScale(t *testing.T) {
	v := Vertex{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		UV:       math.Vec2{X: 0.5, Y: 0.5},
	}
	transform := ImportTransform{
		Scale:   1,
		UVScale: math.Vec2{X: 2, Y: 4},
		Center:  math.Vec3{X: 10, Y: 10, Z: 10},
	}

	out := ApplyTransform(v, transform)
	// Center is added after scale and flip.
	assert.Equal(t, math.Vec3{X: 11, Y: 8, Z: 13}, out.Position)
	assert.Equal(t, math.Vec2{X: 1, Y: 2}, out.UV)
}

func TestDefaultImportTransformIsIdentity(t *testing.T) {
	v := Vertex{
		Position: math.Vec3{X: 1, Y: -2, Z: 3},
		UV:       math.Vec2{X: 0.25, Y: 0.75},
	}
	out := ApplyTransform(v, DefaultImportTransform())
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, out.Position)
	assert.Equal(t, v.UV, out.UV)
}

func TestInterleave(t *testing.T) {
	layout := NewVertexLayout(
		VertexComponentPosition,
		VertexComponentUV,
		VertexComponentDummyFloat,
	)
	vertices := []Vertex{
		{Position: math.Vec3{X: 1, Y: 2, Z: 3}, UV: math.Vec2{X: 4, Y: 5}},
		{Position: math.Vec3{X: 6, Y: 7, Z: 8}, UV: math.Vec2{X: 9, Y: 10}},
	}

	out := Interleave(layout, vertices)
	assert.Len(t, out, 2*int(layout.Stride()/4))
	assert.Equal(t, []float32{
		1, 2, 3, 4, 5, 0,
		6, 7, 8, 9, 10, 0,
	}, out)
}

func TestInterleaveDummyVec4Padding(t *testing.T) {
	layout := NewVertexLayout(VertexComponentNormal, VertexComponentDummyVec4)
	out := Interleave(layout, []Vertex{{Normal: math.Vec3{X: 1, Y: 1, Z: 1}}})
	assert.Equal(t, []float32{1, 1, 1, 0, 0, 0, 0}, out)
}
