package loaders

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// buildKTX assembles a KTX 1.1 file from a header and the per-mip image
// payloads in file order (mip outer, layer inner).
func buildKTX(t *testing.T, header ktxHeader, mips [][][]byte) []byte {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	buf.Write(ktxMagic)
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	for _, layers := range mips {
		levelSize := uint32(0)
		for _, face := range layers {
			levelSize += uint32(len(face))
		}
		if header.NumberOfFaces == 6 && header.NumberOfArrayElements <= 1 {
			// Non-array cubemaps declare a single face's size.
			levelSize = uint32(len(layers[0]))
		}
		if err := binary.Write(buf, binary.LittleEndian, levelSize); err != nil {
			t.Fatal(err)
		}
		for _, face := range layers {
			buf.Write(face)
			for pad := 3 - (len(face)+3)%4; pad > 0; pad-- {
				buf.WriteByte(0)
			}
		}
	}
	return buf.Bytes()
}

func ktx2DHeader(width, height, mips uint32) ktxHeader {
	return ktxHeader{
		Endianness:           ktxEndiannessLE,
		GLInternalFormat:     glRGBA8,
		PixelWidth:           width,
		PixelHeight:          height,
		NumberOfFaces:        1,
		NumberOfMipmapLevels: mips,
	}
}

func solidImage(size int, value byte) []byte {
	img := make([]byte, size)
	for i := range img {
		img[i] = value
	}
	return img
}

func TestParseKTX2D(t *testing.T) {
	data := buildKTX(t, ktx2DHeader(4, 4, 2), [][][]byte{
		{solidImage(64, 0xA0)},
		{solidImage(16, 0xA1)},
	})

	container, err := ParseKTX(data)
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatR8G8B8A8Unorm, container.Format)
	assert.Equal(t, uint32(4), container.Width)
	assert.Equal(t, uint32(4), container.Height)
	assert.Equal(t, uint32(2), container.MipLevels)
	assert.Equal(t, uint32(1), container.LayerCount)
	assert.False(t, container.IsCube)
	assert.Equal(t, append(solidImage(64, 0xA0), solidImage(16, 0xA1)...), container.Data)
}

func TestParseKTXCubemapRelaysLayerOuter(t *testing.T) {
	header := ktx2DHeader(4, 4, 2)
	header.NumberOfFaces = 6

	// File order is mip outer, face inner; tag each face/mip uniquely.
	mip0 := make([][]byte, 6)
	mip1 := make([][]byte, 6)
	for face := 0; face < 6; face++ {
		mip0[face] = solidImage(64, byte(0x10+face))
		mip1[face] = solidImage(16, byte(0x20+face))
	}
	data := buildKTX(t, header, [][][]byte{mip0, mip1})

	container, err := ParseKTX(data)
	assert.NoError(t, err)
	assert.True(t, container.IsCube)
	assert.Equal(t, uint32(6), container.LayerCount)

	// The blob must come out layer outer, mip inner.
	want := make([]byte, 0)
	for face := 0; face < 6; face++ {
		want = append(want, mip0[face]...)
		want = append(want, mip1[face]...)
	}
	assert.Equal(t, want, container.Data)

	// And agree with the container's own region walk.
	regions := container.Regions()
	assert.Len(t, regions, 12)
	assert.Equal(t, byte(0x13), container.Data[regions[6].Offset])
	assert.Equal(t, byte(0x23), container.Data[regions[7].Offset])
}

func TestParseKTXCompressed(t *testing.T) {
	header := ktx2DHeader(8, 8, 1)
	header.GLInternalFormat = glCompressedRGBAS3TCDXT5

	// 8x8 BC3 is 2x2 blocks of 16 bytes.
	data := buildKTX(t, header, [][][]byte{{solidImage(64, 0xCC)}})

	container, err := ParseKTX(data)
	assert.NoError(t, err)
	assert.Equal(t, metadata.PixelFormatBC3Unorm, container.Format)
	assert.Len(t, container.Data, 64)
}

func TestParseKTXRejectsBadInput(t *testing.T) {
	_, err := ParseKTX([]byte("not a ktx file"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	bad := buildKTX(t, ktx2DHeader(4, 4, 1), [][][]byte{{solidImage(64, 0)}})
	bad[0] ^= 0xFF
	_, err = ParseKTX(bad)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	header := ktx2DHeader(4, 4, 1)
	header.GLInternalFormat = 0xDEAD
	_, err = ParseKTX(buildKTX(t, header, [][][]byte{{solidImage(64, 0)}}))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	// Declared image size disagreeing with the format is rejected.
	truncated := buildKTX(t, ktx2DHeader(4, 4, 1), [][][]byte{{solidImage(32, 0)}})
	_, err = ParseKTX(truncated)
	assert.Error(t, err)
}
