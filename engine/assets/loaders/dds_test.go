package loaders

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func buildDDS(t *testing.T, header ddsHeader, dx10 *ddsHeaderDX10, pixels []byte) []byte {
	t.Helper()

	header.Size = ddsHeaderSize
	header.PixelFormat.Size = ddsPixelFormatSize

	buf := bytes.NewBuffer(nil)
	buf.Write(ddsMagic)
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	if dx10 != nil {
		if err := binary.Write(buf, binary.LittleEndian, *dx10); err != nil {
			t.Fatal(err)
		}
	}
	buf.Write(pixels)
	return buf.Bytes()
}

func TestParseDDSDXT1(t *testing.T) {
	header := ddsHeader{
		Width:  4,
		Height: 4,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: fourCCDXT1,
		},
	}
	pixels := solidImage(8, 0xD1)

	container, err := ParseDDS(buildDDS(t, header, nil, pixels))
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatBC1RGBUnorm, container.Format)
	assert.Equal(t, uint32(4), container.Width)
	assert.Equal(t, uint32(1), container.MipLevels)
	assert.Equal(t, uint32(1), container.LayerCount)
	assert.Equal(t, pixels, container.Data)
}

func TestParseDDSMipChain(t *testing.T) {
	header := ddsHeader{
		Flags:       ddsdMipmapCount,
		Width:       8,
		Height:      8,
		MipMapCount: 4,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: fourCCDXT5,
		},
	}
	// 8x8, 4x4, 2x2 and 1x1 BC3 levels are 64 + 16 + 16 + 16 bytes.
	container, err := ParseDDS(buildDDS(t, header, nil, solidImage(112, 0)))
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatBC3Unorm, container.Format)
	assert.Equal(t, uint32(4), container.MipLevels)
	assert.Equal(t, uint64(112), container.TotalByteSize())
}

func TestParseDDSCubemap(t *testing.T) {
	header := ddsHeader{
		Width:  4,
		Height: 4,
		Caps2:  ddsCaps2Cubemap | ddsCaps2CubemapAllFaces,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: fourCCDXT1,
		},
	}

	container, err := ParseDDS(buildDDS(t, header, nil, solidImage(6*8, 0)))
	assert.NoError(t, err)
	assert.True(t, container.IsCube)
	assert.Equal(t, uint32(6), container.LayerCount)

	partial := header
	partial.Caps2 = ddsCaps2Cubemap | 0x400
	_, err = ParseDDS(buildDDS(t, partial, nil, solidImage(6*8, 0)))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestParseDDSDX10Array(t *testing.T) {
	header := ddsHeader{
		Width:  2,
		Height: 2,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: fourCCDX10,
		},
	}
	dx10 := &ddsHeaderDX10{
		DXGIFormat: dxgiFormatR8G8B8A8Srgb,
		ArraySize:  2,
	}

	container, err := ParseDDS(buildDDS(t, header, dx10, solidImage(2*16, 0)))
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatR8G8B8A8Srgb, container.Format)
	assert.Equal(t, uint32(2), container.LayerCount)
}

func TestParseDDSUncompressedMasks(t *testing.T) {
	header := ddsHeader{
		Width:  2,
		Height: 2,
		PixelFormat: ddsPixelFormat{
			Flags:       ddpfRGB,
			RGBBitCount: 32,
			RBitMask:    0x000000FF,
		},
	}
	container, err := ParseDDS(buildDDS(t, header, nil, solidImage(16, 0)))
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatR8G8B8A8Unorm, container.Format)

	header.PixelFormat.RBitMask = 0x00FF0000
	container, err = ParseDDS(buildDDS(t, header, nil, solidImage(16, 0)))
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatB8G8R8A8Unorm, container.Format)
}

func TestParseDDSRejectsBadInput(t *testing.T) {
	_, err := ParseDDS([]byte("nope"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	header := ddsHeader{
		Width:  4,
		Height: 4,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: 0x12345678,
		},
	}
	_, err = ParseDDS(buildDDS(t, header, nil, nil))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	// Pixel blob shorter than the declared chain.
	short := ddsHeader{
		Width:  4,
		Height: 4,
		PixelFormat: ddsPixelFormat{
			Flags:  ddpfFourCC,
			FourCC: fourCCDXT1,
		},
	}
	_, err = ParseDDS(buildDDS(t, short, nil, solidImage(4, 0)))
	assert.Error(t, err)
}
