package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFamilyInfoMeetsRequirements(t *testing.T) {
	requirements := &VulkanPhysicalDeviceRequirements{
		Graphics: true,
		Present:  true,
		Transfer: true,
	}

	complete := &VulkanPhysicalDeviceQueueFamilyInfo{
		GraphicsFamilyIndex: 0,
		PresentFamilyIndex:  0,
		ComputeFamilyIndex:  InvalidQueueFamilyIndex,
		TransferFamilyIndex: 1,
	}
	assert.True(t, complete.MeetsRequirements(requirements))

	// A device where the scan found nothing must not pass just because the
	// indexes default to family 0.
	empty := &VulkanPhysicalDeviceQueueFamilyInfo{
		GraphicsFamilyIndex: InvalidQueueFamilyIndex,
		PresentFamilyIndex:  InvalidQueueFamilyIndex,
		ComputeFamilyIndex:  InvalidQueueFamilyIndex,
		TransferFamilyIndex: InvalidQueueFamilyIndex,
	}
	assert.False(t, empty.MeetsRequirements(requirements))

	noPresent := *complete
	noPresent.PresentFamilyIndex = InvalidQueueFamilyIndex
	assert.False(t, noPresent.MeetsRequirements(requirements))

	noTransfer := *complete
	noTransfer.TransferFamilyIndex = InvalidQueueFamilyIndex
	assert.False(t, noTransfer.MeetsRequirements(requirements))

	withCompute := *requirements
	withCompute.Compute = true
	assert.False(t, complete.MeetsRequirements(&withCompute))

	// Families that are not required may be absent.
	assert.True(t, empty.MeetsRequirements(&VulkanPhysicalDeviceRequirements{}))
}
