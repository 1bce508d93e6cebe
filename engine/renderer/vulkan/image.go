package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type VulkanImage struct {
	Handle     vk.Image
	Memory     vk.DeviceMemory
	View       vk.ImageView
	Width      uint32
	Height     uint32
	MipLevels  uint32
	LayerCount uint32
}

// ImageCreate creates a vk.Image with backing device memory and, optionally,
// a view. The kind determines the array layer count handling and the view
// type (2D, 2D array or cube).
func ImageCreate(context *VulkanContext, kind metadata.TextureKind, width, height, mipLevels, layerCount uint32,
	format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, memoryFlags vk.MemoryPropertyFlags,
	createView bool, viewAspect vk.ImageAspectFlags) (*VulkanImage, error) {

	if mipLevels < 1 {
		mipLevels = 1
	}
	if layerCount < 1 {
		layerCount = 1
	}

	image := &VulkanImage{
		Width:      width,
		Height:     height,
		MipLevels:  mipLevels,
		LayerCount: layerCount,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     mipLevels,
		ArrayLayers:   layerCount,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	if kind == metadata.TextureKindCube {
		imageCreateInfo.Flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	var handle vk.Image
	if err := lockPool.SafeCall(ImageManagement, func() error {
		if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create image with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	image.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, image.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryType == -1 {
		image.Destroy(context)
		return nil, fmt.Errorf("required memory type not found, image not valid")
	}

	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if err := lockPool.SafeCall(MemoryManagement, func() error {
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &memoryAllocateInfo, context.Allocator, &memory); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to allocate image memory with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		image.Destroy(context)
		return nil, err
	}
	image.Memory = memory

	if err := lockPool.SafeCall(ImageManagement, func() error {
		if res := vk.BindImageMemory(context.Device.LogicalDevice, image.Handle, image.Memory, 0); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to bind image memory with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		image.Destroy(context)
		return nil, err
	}

	if createView {
		if err := image.ViewCreate(context, kind, format, viewAspect); err != nil {
			image.Destroy(context)
			return nil, err
		}
	}
	return image, nil
}

func (image *VulkanImage) ViewCreate(context *VulkanContext, kind metadata.TextureKind, format vk.Format, aspectFlags vk.ImageAspectFlags) error {
	viewType := vk.ImageViewType2d
	switch kind {
	case metadata.TextureKind2DArray:
		viewType = vk.ImageViewType2dArray
	case metadata.TextureKindCube:
		viewType = vk.ImageViewTypeCube
	}

	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.Handle,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     image.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     image.LayerCount,
		},
	}

	var view vk.ImageView
	if err := lockPool.SafeCall(ImageManagement, func() error {
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &view); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create image view with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return err
	}
	image.View = view
	return nil
}

// TransitionLayout records a pipeline barrier moving every mip and layer of
// the image from oldLayout to newLayout.
func (image *VulkanImage) TransitionLayout(context *VulkanContext, commandBuffer *VulkanCommandBuffer, oldLayout, newLayout vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		DstQueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Image:               image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     image.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     image.LayerCount,
		},
	}

	var sourceStage, destStage vk.PipelineStageFlags

	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		// Don't care what stage the pipeline is in at the start.
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		// Transfer writes must complete before fragment reads.
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutTransferSrcOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferSrcOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		return fmt.Errorf("unsupported layout transition from %d to %d", oldLayout, newLayout)
	}

	vk.CmdPipelineBarrier(commandBuffer.Handle,
		sourceStage, destStage,
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier})
	return nil
}

// CopyFromBuffer records one vkCmdCopyBufferToImage covering every region of
// the container. The image must be in TransferDstOptimal layout.
func (image *VulkanImage) CopyFromBuffer(commandBuffer *VulkanCommandBuffer, buffer vk.Buffer, regions []metadata.ImageRegion) error {
	if len(regions) == 0 {
		return fmt.Errorf("no image regions to copy")
	}

	copies := make([]vk.BufferImageCopy, len(regions))
	for i, region := range regions {
		copies[i] = vk.BufferImageCopy{
			BufferOffset: vk.DeviceSize(region.Offset),
			// Tightly packed, dimensions come from the image extent.
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       region.MipLevel,
				BaseArrayLayer: region.Layer,
				LayerCount:     1,
			},
			ImageExtent: vk.Extent3D{
				Width:  region.Width,
				Height: region.Height,
				Depth:  1,
			},
		}
	}

	vk.CmdCopyBufferToImage(commandBuffer.Handle, buffer, image.Handle,
		vk.ImageLayoutTransferDstOptimal, uint32(len(copies)), copies)
	return nil
}

// Destroy releases the image in dependency order: view, then image, then
// the backing memory.
func (image *VulkanImage) Destroy(context *VulkanContext) {
	lockPool.SafeCall(ImageManagement, func() error {
		if image.View != vk.NullImageView {
			vk.DestroyImageView(context.Device.LogicalDevice, image.View, context.Allocator)
			image.View = vk.NullImageView
		}
		if image.Handle != vk.NullImage {
			vk.DestroyImage(context.Device.LogicalDevice, image.Handle, context.Allocator)
			image.Handle = vk.NullImage
		}
		if image.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(context.Device.LogicalDevice, image.Memory, context.Allocator)
			image.Memory = vk.NullDeviceMemory
		}
		return nil
	})
}
