package metadata

import "fmt"

/** @brief The pixel format of a parsed texture container. */
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	/** @brief 8 bits per channel RGBA, linear. */
	PixelFormatR8G8B8A8Unorm
	/** @brief 8 bits per channel RGBA, sRGB encoded. */
	PixelFormatR8G8B8A8Srgb
	/** @brief 8 bits per channel BGRA, linear. */
	PixelFormatB8G8R8A8Unorm
	/** @brief BC1 (DXT1) block compressed, no alpha. */
	PixelFormatBC1RGBUnorm
	/** @brief BC2 (DXT3) block compressed. */
	PixelFormatBC2Unorm
	/** @brief BC3 (DXT5) block compressed. */
	PixelFormatBC3Unorm
	/** @brief ETC2 RGB8 block compressed. */
	PixelFormatETC2R8G8B8Unorm
)

// blockInfo returns the block width/height and byte size per block of a
// pixel format. Uncompressed formats are 1x1 blocks.
func blockInfo(format PixelFormat) (uint32, uint32, uint32) {
	switch format {
	case PixelFormatR8G8B8A8Unorm, PixelFormatR8G8B8A8Srgb, PixelFormatB8G8R8A8Unorm:
		return 1, 1, 4
	case PixelFormatBC1RGBUnorm:
		return 4, 4, 8
	case PixelFormatBC2Unorm, PixelFormatBC3Unorm:
		return 4, 4, 16
	case PixelFormatETC2R8G8B8Unorm:
		return 4, 4, 8
	default:
		return 0, 0, 0
	}
}

// LevelByteSize returns the byte size of a single width x height image of
// the given format, accounting for block compression rounding.
func LevelByteSize(format PixelFormat, width, height uint32) uint32 {
	bw, bh, bytes := blockInfo(format)
	if bytes == 0 {
		return 0
	}
	return ((width + bw - 1) / bw) * ((height + bh - 1) / bh) * bytes
}

// MipExtent returns the extent of mip level `mip` of a base extent. Never
// returns less than 1.
func MipExtent(base uint32, mip uint32) uint32 {
	e := base >> mip
	if e < 1 {
		return 1
	}
	return e
}

/**
 * @brief One copy region of an image upload: a single (layer, mip) image
 * with its extent and byte offset into the container's pixel blob.
 */
type ImageRegion struct {
	MipLevel uint32
	Layer    uint32
	Width    uint32
	Height   uint32
	/** @brief Byte offset of this image's data within the container blob. */
	Offset uint64
	/** @brief Byte size of this image's data. */
	Size uint64
}

/**
 * @brief A parsed texture container (KTX, DDS): dimensions, format and the
 * raw pixel blob laid out layer-outer, mip-inner, which is the order the
 * container formats store cube faces and array slices in.
 */
type ImageContainer struct {
	Format PixelFormat
	Width  uint32
	Height uint32
	/** @brief Number of mip levels stored. At least 1. */
	MipLevels uint32
	/** @brief Total number of array layers; cube faces count as layers. */
	LayerCount uint32
	/** @brief True if the container is a cubemap (LayerCount multiple of 6). */
	IsCube bool
	/** @brief Pixel data, layer-outer mip-inner. */
	Data []byte
}

// Regions walks layers outer, mips inner and emits one copy region per
// (layer, mip) pair, accumulating each image's byte size into the next
// region's offset. The resulting slice has LayerCount * MipLevels entries.
func (ic *ImageContainer) Regions() []ImageRegion {
	regions := make([]ImageRegion, 0, ic.LayerCount*ic.MipLevels)
	offset := uint64(0)
	for layer := uint32(0); layer < ic.LayerCount; layer++ {
		for mip := uint32(0); mip < ic.MipLevels; mip++ {
			w := MipExtent(ic.Width, mip)
			h := MipExtent(ic.Height, mip)
			size := uint64(LevelByteSize(ic.Format, w, h))
			regions = append(regions, ImageRegion{
				MipLevel: mip,
				Layer:    layer,
				Width:    w,
				Height:   h,
				Offset:   offset,
				Size:     size,
			})
			offset += size
		}
	}
	return regions
}

// TotalByteSize returns the byte size of the full (layer, mip) chain.
func (ic *ImageContainer) TotalByteSize() uint64 {
	total := uint64(0)
	for layer := uint32(0); layer < ic.LayerCount; layer++ {
		for mip := uint32(0); mip < ic.MipLevels; mip++ {
			total += uint64(LevelByteSize(ic.Format, MipExtent(ic.Width, mip), MipExtent(ic.Height, mip)))
		}
	}
	return total
}

// Validate checks that the container's pixel blob is large enough for the
// declared dimension chain.
func (ic *ImageContainer) Validate() error {
	if ic.Width == 0 || ic.Height == 0 {
		return fmt.Errorf("image container has zero extent %dx%d", ic.Width, ic.Height)
	}
	if ic.MipLevels == 0 || ic.LayerCount == 0 {
		return fmt.Errorf("image container has empty chain: %d mips, %d layers", ic.MipLevels, ic.LayerCount)
	}
	if ic.IsCube && ic.LayerCount%6 != 0 {
		return fmt.Errorf("cube container layer count %d is not a multiple of 6", ic.LayerCount)
	}
	if need := ic.TotalByteSize(); uint64(len(ic.Data)) < need {
		return fmt.Errorf("image container holds %d bytes, chain needs %d", len(ic.Data), need)
	}
	return nil
}
