package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

/**
 * @brief Represents a single shader stage ready for pipeline assembly.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage wraps SPIR-V bytecode into a shader module and the stage
// create info the pipeline builder consumes. Entry point is always "main".
func NewShaderStage(context *VulkanContext, bytecode []uint32, stageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("shader stage bytecode is empty")
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(bytecode) * 4),
		PCode:    bytecode,
	}

	var handle vk.ShaderModule
	if err := lockPool.SafeCall(ShaderManagement, func() error {
		if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("failed to create shader module with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &VulkanShaderStage{
		Handle: handle,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stageFlag,
			Module: handle,
			PName:  VulkanSafeString("main"),
		},
	}, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		lockPool.SafeCall(ShaderManagement, func() error {
			vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
			return nil
		})
		s.Handle = vk.NullShaderModule
	}
}
