package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// VulkanTexture is the renderer-internal payload stored on
// metadata.Texture.InternalData.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
}

func PixelFormatToVulkan(format metadata.PixelFormat) (vk.Format, error) {
	switch format {
	case metadata.PixelFormatR8G8B8A8Unorm:
		return vk.FormatR8g8b8a8Unorm, nil
	case metadata.PixelFormatR8G8B8A8Srgb:
		return vk.FormatR8g8b8a8Srgb, nil
	case metadata.PixelFormatB8G8R8A8Unorm:
		return vk.FormatB8g8r8a8Unorm, nil
	case metadata.PixelFormatBC1RGBUnorm:
		return vk.FormatBc1RgbUnormBlock, nil
	case metadata.PixelFormatBC2Unorm:
		return vk.FormatBc2UnormBlock, nil
	case metadata.PixelFormatBC3Unorm:
		return vk.FormatBc3UnormBlock, nil
	case metadata.PixelFormatETC2R8G8B8Unorm:
		return vk.FormatEtc2R8g8b8UnormBlock, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("pixel format %d has no vulkan equivalent", format)
	}
}

// TextureCreateFromContainer materializes a parsed image container into a
// sampled device-local texture. All mips and layers upload in one submission:
// stage the blob, transition to TransferDstOptimal, copy every region, then
// transition to ShaderReadOnlyOptimal.
func TextureCreateFromContainer(context *VulkanContext, name string, container *metadata.ImageContainer) (*metadata.Texture, error) {
	if err := container.Validate(); err != nil {
		return nil, fmt.Errorf("texture '%s' container is not valid: %w", name, err)
	}

	format, err := PixelFormatToVulkan(container.Format)
	if err != nil {
		return nil, err
	}

	kind := metadata.KindOf(container)

	staging, err := NewVulkanBuffer(context, uint64(len(container.Data)),
		vk.BufferUsageTransferSrcBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, uint64(len(container.Data)), 0, container.Data); err != nil {
		return nil, err
	}

	image, err := ImageCreate(context, kind,
		container.Width, container.Height, container.MipLevels, container.LayerCount,
		format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	commandBuffer, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}

	if err := image.TransitionLayout(context, commandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		image.Destroy(context)
		return nil, err
	}
	if err := image.CopyFromBuffer(commandBuffer, staging.Handle, container.Regions()); err != nil {
		image.Destroy(context)
		return nil, err
	}
	if err := image.TransitionLayout(context, commandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		image.Destroy(context)
		return nil, err
	}

	if err := commandBuffer.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		image.Destroy(context)
		return nil, err
	}

	sampler, err := samplerCreate(context, kind, container.MipLevels)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}

	core.LogDebug("texture '%s' uploaded (%s, %dx%d, %d mips, %d layers)",
		name, kind.String(), container.Width, container.Height, container.MipLevels, container.LayerCount)

	return &metadata.Texture{
		Name:       name,
		Kind:       kind,
		Width:      container.Width,
		Height:     container.Height,
		MipLevels:  container.MipLevels,
		LayerCount: container.LayerCount,
		Format:     container.Format,
		InternalData: &VulkanTexture{
			Image:   image,
			Sampler: sampler,
		},
	}, nil
}

func samplerCreate(context *VulkanContext, kind metadata.TextureKind, mipLevels uint32) (vk.Sampler, error) {
	addressMode := vk.SamplerAddressModeRepeat
	if kind == metadata.TextureKindCube || kind == metadata.TextureKind2DArray {
		// Seams at layer and face edges are visible with repeat.
		addressMode = vk.SamplerAddressModeClampToEdge
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            addressMode,
		AddressModeV:            addressMode,
		AddressModeW:            addressMode,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0.0,
		MinLod:                  0.0,
		MaxLod:                  float32(mipLevels),
	}
	if context.AnisotropyEnabled && context.Device.Features.SamplerAnisotropy == vk.True {
		context.Device.Properties.Limits.Deref()
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = context.Device.Properties.Limits.MaxSamplerAnisotropy
	}

	var sampler vk.Sampler
	if err := lockPool.SafeCall(SamplerManagement, func() error {
		if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create sampler with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return vk.NullSampler, err
	}
	return sampler, nil
}

func TextureDestroy(context *VulkanContext, texture *metadata.Texture) {
	internal, ok := texture.InternalData.(*VulkanTexture)
	if !ok || internal == nil {
		return
	}
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	if internal.Sampler != vk.NullSampler {
		lockPool.SafeCall(SamplerManagement, func() error {
			vk.DestroySampler(context.Device.LogicalDevice, internal.Sampler, context.Allocator)
			return nil
		})
		internal.Sampler = vk.NullSampler
	}
	if internal.Image != nil {
		internal.Image.Destroy(context)
		internal.Image = nil
	}
	texture.InternalData = nil
}
