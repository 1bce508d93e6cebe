package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelByteSize(t *testing.T) {
	// Uncompressed: width * height * 4.
	assert.Equal(t, uint32(36), LevelByteSize(PixelFormatR8G8B8A8Unorm, 3, 3))
	// BC1 rounds partial blocks up to whole 4x4 blocks.
	assert.Equal(t, uint32(8), LevelByteSize(PixelFormatBC1RGBUnorm, 2, 2))
	// 8x4 BC1 is two 4x4 blocks of 8 bytes.
	assert.Equal(t, uint32(16), LevelByteSize(PixelFormatBC1RGBUnorm, 8, 4))
	// BC3 is 16 bytes per block.
	assert.Equal(t, uint32(16), LevelByteSize(PixelFormatBC3Unorm, 4, 4))
	assert.Equal(t, uint32(0), LevelByteSize(PixelFormatUnknown, 16, 16))
}

func TestMipExtent(t *testing.T) {
	assert.Equal(t, uint32(64), MipExtent(64, 0))
	assert.Equal(t, uint32(16), MipExtent(64, 2))
	// Mip extents never go below 1.
	assert.Equal(t, uint32(1), MipExtent(64, 7))
	assert.Equal(t, uint32(1), MipExtent(1, 3))
}

func TestRegionsWalkLayersOuterMipsInner(t *testing.T) {
	ic := &ImageContainer{
		Format:     PixelFormatBC3Unorm,
		Width:      16,
		Height:     16,
		MipLevels:  3,
		LayerCount: 2,
	}
	regions := ic.Regions()
	assert.Len(t, regions, 6)

	// 16x16 -> 4x4 blocks * 16B, 8x8 -> 2x2 blocks, 4x4 -> 1 block.
	sizes := []uint64{256, 64, 16}
	layerStride := uint64(256 + 64 + 16)

	offset := uint64(0)
	for i, r := range regions {
		layer := uint32(i / 3)
		mip := uint32(i % 3)
		assert.Equal(t, layer, r.Layer, "region %d layer", i)
		assert.Equal(t, mip, r.MipLevel, "region %d mip", i)
		assert.Equal(t, uint32(16>>mip), r.Width, "region %d width", i)
		assert.Equal(t, uint32(16>>mip), r.Height, "region %d height", i)
		assert.Equal(t, sizes[mip], r.Size, "region %d size", i)
		assert.Equal(t, offset, r.Offset, "region %d offset", i)
		offset += r.Size
	}
	assert.Equal(t, regions[3].Offset, layerStride)
	assert.Equal(t, 2*layerStride, ic.TotalByteSize())
}

func TestRegionsNonSquareExtents(t *testing.T) {
	ic := &ImageContainer{
		Format:     PixelFormatR8G8B8A8Unorm,
		Width:      8,
		Height:     2,
		MipLevels:  4,
		LayerCount: 1,
	}
	regions := ic.Regions()
	assert.Len(t, regions, 4)
	// Height floors at 1 while width keeps halving.
	assert.Equal(t, uint32(2), regions[2].Width)
	assert.Equal(t, uint32(1), regions[2].Height)
	assert.Equal(t, uint32(1), regions[3].Width)
	assert.Equal(t, uint32(1), regions[3].Height)
	assert.Equal(t, uint64(8*2*4+4*1*4+2*1*4), regions[3].Offset)
}

func TestValidate(t *testing.T) {
	valid := &ImageContainer{
		Format:     PixelFormatR8G8B8A8Unorm,
		Width:      2,
		Height:     2,
		MipLevels:  1,
		LayerCount: 1,
		Data:       make([]byte, 16),
	}
	assert.NoError(t, valid.Validate())

	zeroExtent := *valid
	zeroExtent.Width = 0
	assert.Error(t, zeroExtent.Validate())

	emptyChain := *valid
	emptyChain.MipLevels = 0
	assert.Error(t, emptyChain.Validate())

	badCube := *valid
	badCube.IsCube = true
	badCube.LayerCount = 4
	badCube.Data = make([]byte, 4*16)
	assert.Error(t, badCube.Validate())

	shortData := *valid
	shortData.Data = make([]byte, 15)
	assert.Error(t, shortData.Validate())
}
