package loaders

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var ddsMagic = []byte{'D', 'D', 'S', ' '}

const (
	ddsHeaderSize      = 124
	ddsPixelFormatSize = 32

	ddsdMipmapCount = 0x20000

	ddpfFourCC = 0x4
	ddpfRGB    = 0x40

	ddsCaps2Cubemap         = 0x200
	ddsCaps2CubemapAllFaces = 0xFC00

	fourCCDXT1 = 0x31545844
	fourCCDXT3 = 0x33545844
	fourCCDXT5 = 0x35545844
	fourCCDX10 = 0x30315844
)

// DXGI format values carried by the optional DX10 extension header.
const (
	dxgiFormatR8G8B8A8Unorm = 28
	dxgiFormatR8G8B8A8Srgb  = 29
	dxgiFormatBC1Unorm      = 71
	dxgiFormatBC2Unorm      = 74
	dxgiFormatBC3Unorm      = 77
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// ParseDDS parses a DDS container. DDS already stores images face/layer
// outer, mip inner, so the pixel blob is used as-is.
func ParseDDS(data []byte) (*metadata.ImageContainer, error) {
	if len(data) < len(ddsMagic)+ddsHeaderSize {
		return nil, fmt.Errorf("%w: file too small for a DDS header", core.ErrUnsupportedFormat)
	}
	if !bytes.Equal(data[:len(ddsMagic)], ddsMagic) {
		return nil, fmt.Errorf("%w: bad DDS identifier", core.ErrUnsupportedFormat)
	}

	var header ddsHeader
	reader := bytes.NewReader(data[len(ddsMagic):])
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header.Size != ddsHeaderSize || header.PixelFormat.Size != ddsPixelFormatSize {
		return nil, fmt.Errorf("%w: malformed DDS header", core.ErrUnsupportedFormat)
	}
	if header.Depth > 1 {
		return nil, fmt.Errorf("%w: volume DDS textures are not supported", core.ErrUnsupportedFormat)
	}

	cursor := len(ddsMagic) + ddsHeaderSize
	layerCount := uint32(1)

	var format metadata.PixelFormat
	switch {
	case header.PixelFormat.Flags&ddpfFourCC != 0 && header.PixelFormat.FourCC == fourCCDX10:
		if len(data) < cursor+20 {
			return nil, fmt.Errorf("%w: file too small for a DX10 header", core.ErrUnsupportedFormat)
		}
		var dx10 ddsHeaderDX10
		reader = bytes.NewReader(data[cursor:])
		if err := binary.Read(reader, binary.LittleEndian, &dx10); err != nil {
			return nil, err
		}
		cursor += 20
		if dx10.ArraySize > 1 {
			layerCount = dx10.ArraySize
		}
		var err error
		if format, err = dxgiPixelFormat(dx10.DXGIFormat); err != nil {
			return nil, err
		}
	case header.PixelFormat.Flags&ddpfFourCC != 0:
		switch header.PixelFormat.FourCC {
		case fourCCDXT1:
			format = metadata.PixelFormatBC1RGBUnorm
		case fourCCDXT3:
			format = metadata.PixelFormatBC2Unorm
		case fourCCDXT5:
			format = metadata.PixelFormatBC3Unorm
		default:
			return nil, fmt.Errorf("%w: DDS fourCC 0x%X", core.ErrUnsupportedFormat, header.PixelFormat.FourCC)
		}
	case header.PixelFormat.Flags&ddpfRGB != 0 && header.PixelFormat.RGBBitCount == 32:
		if header.PixelFormat.RBitMask == 0x000000FF {
			format = metadata.PixelFormatR8G8B8A8Unorm
		} else if header.PixelFormat.RBitMask == 0x00FF0000 {
			format = metadata.PixelFormatB8G8R8A8Unorm
		} else {
			return nil, fmt.Errorf("%w: DDS channel masks", core.ErrUnsupportedFormat)
		}
	default:
		return nil, fmt.Errorf("%w: DDS pixel format flags 0x%X", core.ErrUnsupportedFormat, header.PixelFormat.Flags)
	}

	isCube := header.Caps2&ddsCaps2Cubemap != 0
	if isCube {
		if header.Caps2&ddsCaps2CubemapAllFaces != ddsCaps2CubemapAllFaces {
			return nil, fmt.Errorf("%w: partial DDS cubemaps are not supported", core.ErrUnsupportedFormat)
		}
		layerCount *= 6
	}

	mipLevels := uint32(1)
	if header.Flags&ddsdMipmapCount != 0 && header.MipMapCount > 0 {
		mipLevels = header.MipMapCount
	}

	container := &metadata.ImageContainer{
		Format:     format,
		Width:      header.Width,
		Height:     header.Height,
		MipLevels:  mipLevels,
		LayerCount: layerCount,
		IsCube:     isCube,
		Data:       data[cursor:],
	}
	if err := container.Validate(); err != nil {
		return nil, err
	}
	return container, nil
}

func dxgiPixelFormat(dxgiFormat uint32) (metadata.PixelFormat, error) {
	switch dxgiFormat {
	case dxgiFormatR8G8B8A8Unorm:
		return metadata.PixelFormatR8G8B8A8Unorm, nil
	case dxgiFormatR8G8B8A8Srgb:
		return metadata.PixelFormatR8G8B8A8Srgb, nil
	case dxgiFormatBC1Unorm:
		return metadata.PixelFormatBC1RGBUnorm, nil
	case dxgiFormatBC2Unorm:
		return metadata.PixelFormatBC2Unorm, nil
	case dxgiFormatBC3Unorm:
		return metadata.PixelFormatBC3Unorm, nil
	default:
		return metadata.PixelFormatUnknown, fmt.Errorf("%w: DXGI format %d", core.ErrUnsupportedFormat, dxgiFormat)
	}
}
