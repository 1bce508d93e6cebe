package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewVulkanFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		IsSignaled: createSignaled,
	}

	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if err := lockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.CreateFence(context.Device.LogicalDevice, &createInfo, context.Allocator, &pFence); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create fence with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	fence.Handle = pFence

	return fence, nil
}

func (f *VulkanFence) Destroy(context *VulkanContext) {
	if f.Handle != vk.NullFence {
		lockPool.SafeCall(SynchronizationManagement, func() error {
			vk.DestroyFence(context.Device.LogicalDevice, f.Handle, context.Allocator)
			return nil
		})
		f.Handle = vk.NullFence
	}
	f.IsSignaled = false
}

// Wait blocks until the fence signals or timeoutNs elapses.
func (f *VulkanFence) Wait(context *VulkanContext, timeoutNs uint64) bool {
	if f.IsSignaled {
		return true
	}

	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		f.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("fence wait timed out")
	case vk.ErrorDeviceLost:
		core.LogError("fence wait failed, device lost")
	case vk.ErrorOutOfHostMemory:
		core.LogError("fence wait failed, out of host memory")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("fence wait failed, out of device memory")
	default:
		core.LogError("fence wait failed with %s", VulkanResultString(result, true))
	}
	return false
}

func (f *VulkanFence) Reset(context *VulkanContext) error {
	if !f.IsSignaled {
		return nil
	}
	if err := lockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to reset fence with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return err
	}
	f.IsSignaled = false
	return nil
}
