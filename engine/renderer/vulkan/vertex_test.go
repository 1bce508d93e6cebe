package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestAttributeFormatToVulkan(t *testing.T) {
	assert.Equal(t, vk.FormatR32Sfloat, AttributeFormatToVulkan(metadata.AttributeFormatFloat))
	assert.Equal(t, vk.FormatR32g32Sfloat, AttributeFormatToVulkan(metadata.AttributeFormatVec2))
	assert.Equal(t, vk.FormatR32g32b32Sfloat, AttributeFormatToVulkan(metadata.AttributeFormatVec3))
	assert.Equal(t, vk.FormatR32g32b32a32Sfloat, AttributeFormatToVulkan(metadata.AttributeFormatVec4))
}

func TestVertexInputState(t *testing.T) {
	layout := metadata.NewVertexLayout(
		metadata.VertexComponentPosition,
		metadata.VertexComponentNormal,
		metadata.VertexComponentUV,
	)

	binding, attributes := VertexInputState(layout)
	assert.Equal(t, uint32(0), binding.Binding)
	assert.Equal(t, uint32(32), binding.Stride)
	assert.Equal(t, vk.VertexInputRateVertex, binding.InputRate)

	assert.Len(t, attributes, 3)
	assert.Equal(t, uint32(0), attributes[0].Location)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[0].Format)
	assert.Equal(t, uint32(0), attributes[0].Offset)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attributes[1].Format)
	assert.Equal(t, uint32(12), attributes[1].Offset)
	assert.Equal(t, uint32(2), attributes[2].Location)
	assert.Equal(t, vk.FormatR32g32Sfloat, attributes[2].Format)
	assert.Equal(t, uint32(24), attributes[2].Offset)
}

func TestPixelFormatToVulkan(t *testing.T) {
	cases := []struct {
		in  metadata.PixelFormat
		out vk.Format
	}{
		{metadata.PixelFormatR8G8B8A8Unorm, vk.FormatR8g8b8a8Unorm},
		{metadata.PixelFormatR8G8B8A8Srgb, vk.FormatR8g8b8a8Srgb},
		{metadata.PixelFormatB8G8R8A8Unorm, vk.FormatB8g8r8a8Unorm},
		{metadata.PixelFormatBC1RGBUnorm, vk.FormatBc1RgbUnormBlock},
		{metadata.PixelFormatBC2Unorm, vk.FormatBc2UnormBlock},
		{metadata.PixelFormatBC3Unorm, vk.FormatBc3UnormBlock},
		{metadata.PixelFormatETC2R8G8B8Unorm, vk.FormatEtc2R8g8b8UnormBlock},
	}
	for _, c := range cases {
		format, err := PixelFormatToVulkan(c.in)
		assert.NoError(t, err)
		assert.Equal(t, c.out, format)
	}

	_, err := PixelFormatToVulkan(metadata.PixelFormatUnknown)
	assert.Error(t, err)
}
