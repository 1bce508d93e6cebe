package loaders

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// KTX 1.1 file identifier.
var ktxMagic = []byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const ktxEndiannessLE = 0x04030201

// OpenGL internal format values as stored by KTX 1 containers.
const (
	glRGBA8                  = 0x8058
	glSRGB8Alpha8            = 0x8C43
	glCompressedRGBS3TCDXT1  = 0x83F0
	glCompressedRGBAS3TCDXT3 = 0x83F2
	glCompressedRGBAS3TCDXT5 = 0x83F3
	glCompressedRGB8ETC2     = 0x9274
)

type ktxHeader struct {
	Endianness            uint32
	GLType                uint32
	GLTypeSize            uint32
	GLFormat              uint32
	GLInternalFormat      uint32
	GLBaseInternalFormat  uint32
	PixelWidth            uint32
	PixelHeight           uint32
	PixelDepth            uint32
	NumberOfArrayElements uint32
	NumberOfFaces         uint32
	NumberOfMipmapLevels  uint32
	BytesOfKeyValueData   uint32
}

// ParseKTX parses a KTX 1.1 container. The container stores images mip
// outer, face/layer inner; the returned container re-lays the pixel blob
// layer outer, mip inner, which is the order the uploader walks.
func ParseKTX(data []byte) (*metadata.ImageContainer, error) {
	if len(data) < len(ktxMagic)+13*4 {
		return nil, fmt.Errorf("%w: file too small for a KTX header", core.ErrUnsupportedFormat)
	}
	if !bytes.Equal(data[:len(ktxMagic)], ktxMagic) {
		return nil, fmt.Errorf("%w: bad KTX identifier", core.ErrUnsupportedFormat)
	}

	var header ktxHeader
	reader := bytes.NewReader(data[len(ktxMagic):])
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Endianness != ktxEndiannessLE {
		return nil, fmt.Errorf("%w: big-endian KTX files are not supported", core.ErrUnsupportedFormat)
	}
	if header.PixelDepth > 1 {
		return nil, fmt.Errorf("%w: 3D KTX textures are not supported", core.ErrUnsupportedFormat)
	}

	format, err := ktxPixelFormat(header.GLInternalFormat)
	if err != nil {
		return nil, err
	}

	mipLevels := header.NumberOfMipmapLevels
	if mipLevels == 0 {
		mipLevels = 1
	}
	arrayElements := header.NumberOfArrayElements
	if arrayElements == 0 {
		arrayElements = 1
	}
	faces := header.NumberOfFaces
	if faces == 0 {
		faces = 1
	}
	layerCount := arrayElements * faces

	// Grid of images read in file order (mip outer), re-emitted layer outer.
	images := make([][][]byte, layerCount)
	for layer := range images {
		images[layer] = make([][]byte, mipLevels)
	}

	cursor := len(ktxMagic) + 13*4 + int(header.BytesOfKeyValueData)
	for mip := uint32(0); mip < mipLevels; mip++ {
		if cursor+4 > len(data) {
			return nil, fmt.Errorf("KTX file truncated at mip %d image size", mip)
		}
		// imageSize itself is validated against the size the format dictates.
		imageSize := binary.LittleEndian.Uint32(data[cursor:])
		cursor += 4

		w := metadata.MipExtent(header.PixelWidth, mip)
		h := metadata.MipExtent(header.PixelHeight, mip)
		faceSize := metadata.LevelByteSize(format, w, h)

		expected := faceSize
		if arrayElements > 1 || (arrayElements == 1 && faces == 1) {
			// For array (and plain 2D) textures imageSize covers the whole
			// level; for non-array cubemaps it covers a single face.
			expected = faceSize * layerCount
		}
		if imageSize != expected {
			return nil, fmt.Errorf("KTX mip %d image size %d does not match %d expected for %dx%d", mip, imageSize, expected, w, h)
		}

		for layer := uint32(0); layer < layerCount; layer++ {
			if cursor+int(faceSize) > len(data) {
				return nil, fmt.Errorf("KTX file truncated in mip %d layer %d", mip, layer)
			}
			images[layer][mip] = data[cursor : cursor+int(faceSize)]
			cursor += int(faceSize)
			// Cube face padding to 4 bytes.
			cursor += int(3-(faceSize+3)%4)
		}
		// Mip padding to 4 bytes.
		cursor += int(3 - (imageSize+3)%4)
	}

	blob := make([]byte, 0, cursor)
	for layer := uint32(0); layer < layerCount; layer++ {
		for mip := uint32(0); mip < mipLevels; mip++ {
			blob = append(blob, images[layer][mip]...)
		}
	}

	container := &metadata.ImageContainer{
		Format:     format,
		Width:      header.PixelWidth,
		Height:     header.PixelHeight,
		MipLevels:  mipLevels,
		LayerCount: layerCount,
		IsCube:     faces == 6,
		Data:       blob,
	}
	if err := container.Validate(); err != nil {
		return nil, err
	}
	return container, nil
}

func ktxPixelFormat(glInternalFormat uint32) (metadata.PixelFormat, error) {
	switch glInternalFormat {
	case glRGBA8:
		return metadata.PixelFormatR8G8B8A8Unorm, nil
	case glSRGB8Alpha8:
		return metadata.PixelFormatR8G8B8A8Srgb, nil
	case glCompressedRGBS3TCDXT1:
		return metadata.PixelFormatBC1RGBUnorm, nil
	case glCompressedRGBAS3TCDXT3:
		return metadata.PixelFormatBC2Unorm, nil
	case glCompressedRGBAS3TCDXT5:
		return metadata.PixelFormatBC3Unorm, nil
	case glCompressedRGB8ETC2:
		return metadata.PixelFormatETC2R8G8B8Unorm, nil
	default:
		return metadata.PixelFormatUnknown, fmt.Errorf("%w: KTX internal format 0x%X", core.ErrUnsupportedFormat, glInternalFormat)
	}
}
