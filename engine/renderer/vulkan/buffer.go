package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

type VulkanBuffer struct {
	TotalSize           uint64
	Handle              vk.Buffer
	Usage               vk.BufferUsageFlagBits
	IsLocked            bool
	Memory              vk.DeviceMemory
	MemoryIndex         int32
	MemoryPropertyFlags uint32
}

func NewVulkanBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlagBits, memoryPropertyFlags uint32, bindOnCreate bool) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		TotalSize:           size,
		Usage:               usage,
		MemoryPropertyFlags: memoryPropertyFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if err := lockPool.SafeCall(BufferManagement, func() error {
		if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create buffer with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	buffer.Handle = handle

	// Gather memory requirements.
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	buffer.MemoryIndex = context.FindMemoryIndex(requirements.MemoryTypeBits, memoryPropertyFlags)
	if buffer.MemoryIndex == -1 {
		buffer.Destroy(context)
		return nil, fmt.Errorf("unable to create buffer because the required memory type index was not found")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(buffer.MemoryIndex),
	}

	var memory vk.DeviceMemory
	if err := lockPool.SafeCall(MemoryManagement, func() error {
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("unable to create buffer because the required memory allocation failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if bindOnCreate {
		if err := buffer.Bind(context, 0); err != nil {
			buffer.Destroy(context)
			return nil, err
		}
	}
	return buffer, nil
}

func (b *VulkanBuffer) Bind(context *VulkanContext, offset uint64) error {
	return lockPool.SafeCall(BufferManagement, func() error {
		if res := vk.BindBufferMemory(context.Device.LogicalDevice, b.Handle, b.Memory, vk.DeviceSize(offset)); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to bind buffer memory with %s", VulkanResultString(res, true))
		}
		return nil
	})
}

// Destroy releases the buffer before freeing its backing memory.
func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	lockPool.SafeCall(BufferManagement, func() error {
		if b.Handle != vk.NullBuffer {
			vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
			b.Handle = vk.NullBuffer
		}
		if b.Memory != vk.NullDeviceMemory {
			vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
			b.Memory = vk.NullDeviceMemory
		}
		return nil
	})
	b.TotalSize = 0
	b.IsLocked = false
}

// Resize grows the buffer to newSize, copying the old contents over on the
// given queue. The old buffer and memory are destroyed.
func (b *VulkanBuffer) Resize(context *VulkanContext, newSize uint64, queue vk.Queue, pool vk.CommandPool) error {
	if newSize < b.TotalSize {
		return fmt.Errorf("buffers can only be resized upwards")
	}

	replacement, err := NewVulkanBuffer(context, newSize, b.Usage, b.MemoryPropertyFlags, true)
	if err != nil {
		return err
	}

	if err := CopyBufferRegion(context, pool, queue, b.Handle, 0, replacement.Handle, 0, b.TotalSize); err != nil {
		replacement.Destroy(context)
		return err
	}

	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	old := *b
	*b = *replacement
	old.Destroy(context)
	return nil
}

func (b *VulkanBuffer) Map(context *VulkanContext, offset, size uint64, flags vk.MemoryMapFlags) (unsafe.Pointer, error) {
	var data unsafe.Pointer
	if err := lockPool.SafeCall(MemoryManagement, func() error {
		if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, vk.DeviceSize(offset), vk.DeviceSize(size), flags, &data); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to map buffer memory with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return data, nil
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	lockPool.SafeCall(MemoryManagement, func() error {
		vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
		return nil
	})
}

// LoadData maps the buffer and copies the given bytes into it. Only valid on
// host-visible buffers.
func (b *VulkanBuffer) LoadData(context *VulkanContext, offset, size uint64, flags vk.MemoryMapFlags, data []byte) error {
	if uint64(len(data)) < size {
		return fmt.Errorf("buffer load of %d bytes requested but only %d bytes provided", size, len(data))
	}
	dst, err := b.Map(context, offset, size, flags)
	if err != nil {
		return err
	}
	vk.Memcopy(dst, data[:size])
	b.Unmap(context)
	return nil
}

// ReadBack maps the buffer and copies size bytes out of it. Only valid on
// host-visible buffers.
func (b *VulkanBuffer) ReadBack(context *VulkanContext, offset, size uint64) ([]byte, error) {
	src, err := b.Map(context, offset, size, 0)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(src), size))
	b.Unmap(context)
	return out, nil
}

// CopyBufferRegion records and submits a single-use transfer of size bytes
// between two buffers.
func CopyBufferRegion(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, source vk.Buffer, sourceOffset uint64, dest vk.Buffer, destOffset uint64, size uint64) error {
	commandBuffer, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(sourceOffset),
		DstOffset: vk.DeviceSize(destOffset),
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(commandBuffer.Handle, source, dest, 1, []vk.BufferCopy{copyRegion})

	return commandBuffer.EndSingleUse(context, pool, queue)
}

// StageToDeviceBuffer creates a device-local buffer with the given usage and
// fills it with data through a temporary host-visible staging buffer.
func StageToDeviceBuffer(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, usage vk.BufferUsageFlagBits, data []byte) (*VulkanBuffer, error) {
	size := uint64(len(data))
	if size == 0 {
		return nil, fmt.Errorf("cannot stage an empty buffer")
	}

	staging, err := NewVulkanBuffer(context, size,
		vk.BufferUsageTransferSrcBit,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		true)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, size, 0, data); err != nil {
		return nil, err
	}

	deviceBuffer, err := NewVulkanBuffer(context, size,
		usage|vk.BufferUsageTransferDstBit,
		uint32(vk.MemoryPropertyDeviceLocalBit),
		true)
	if err != nil {
		return nil, err
	}

	if err := CopyBufferRegion(context, pool, queue, staging.Handle, 0, deviceBuffer.Handle, 0, size); err != nil {
		deviceBuffer.Destroy(context)
		return nil, err
	}

	core.LogDebug("staged %d bytes to device-local buffer", size)
	return deviceBuffer, nil
}
