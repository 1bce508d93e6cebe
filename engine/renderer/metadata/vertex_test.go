package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVertexLayoutStride(t *testing.T) {
	layout := NewVertexLayout(
		VertexComponentPosition,
		VertexComponentNormal,
		VertexComponentUV,
	)
	// 12 + 12 + 8.
	assert.Equal(t, uint32(32), layout.Stride())

	padded := NewVertexLayout(
		VertexComponentPosition,
		VertexComponentDummyFloat,
		VertexComponentDummyVec4,
	)
	// 12 + 4 + 16.
	assert.Equal(t, uint32(32), padded.Stride())
}

func TestVertexLayoutOffsetsArePrefixSums(t *testing.T) {
	layout := NewVertexLayout(
		VertexComponentPosition,
		VertexComponentUV,
		VertexComponentNormal,
		VertexComponentTangent,
	)
	assert.Equal(t, uint32(0), layout.Offset(0))
	assert.Equal(t, uint32(12), layout.Offset(1))
	assert.Equal(t, uint32(20), layout.Offset(2))
	assert.Equal(t, uint32(32), layout.Offset(3))
}

func TestComponentSizes(t *testing.T) {
	assert.Equal(t, uint32(8), ComponentSize(VertexComponentUV))
	assert.Equal(t, uint32(4), ComponentSize(VertexComponentDummyFloat))
	assert.Equal(t, uint32(16), ComponentSize(VertexComponentDummyVec4))
	assert.Equal(t, uint32(12), ComponentSize(VertexComponentPosition))
	assert.Equal(t, uint32(12), ComponentSize(VertexComponentBitangent))
}

func TestVertexLayoutAttributes(t *testing.T) {
	layout := NewVertexLayout(
		VertexComponentPosition,
		VertexComponentUV,
		VertexComponentDummyVec4,
	)
	attributes := layout.Attributes()
	assert.Len(t, attributes, 3)

	assert.Equal(t, uint32(0), attributes[0].Location)
	assert.Equal(t, AttributeFormatVec3, attributes[0].Format)
	assert.Equal(t, uint32(0), attributes[0].Offset)

	assert.Equal(t, uint32(1), attributes[1].Location)
	assert.Equal(t, AttributeFormatVec2, attributes[1].Format)
	assert.Equal(t, uint32(12), attributes[1].Offset)

	assert.Equal(t, uint32(2), attributes[2].Location)
	assert.Equal(t, AttributeFormatVec4, attributes[2].Format)
	assert.Equal(t, uint32(20), attributes[2].Offset)
}
