package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32
	TransferQueueIndex int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	TransferQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	Compute              bool
	Transfer             bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
	DiscreteGPU          bool
}

/** @brief Marks a queue family the device scan did not find. */
const InvalidQueueFamilyIndex = ^uint32(0)

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex uint32
	PresentFamilyIndex  uint32
	ComputeFamilyIndex  uint32
	TransferFamilyIndex uint32
}

// MeetsRequirements reports whether every queue family the requirements ask
// for was found during the family scan.
func (info *VulkanPhysicalDeviceQueueFamilyInfo) MeetsRequirements(requirements *VulkanPhysicalDeviceRequirements) bool {
	if requirements.Graphics && info.GraphicsFamilyIndex == InvalidQueueFamilyIndex {
		return false
	}
	if requirements.Present && info.PresentFamilyIndex == InvalidQueueFamilyIndex {
		return false
	}
	if requirements.Compute && info.ComputeFamilyIndex == InvalidQueueFamilyIndex {
		return false
	}
	if requirements.Transfer && info.TransferFamilyIndex == InvalidQueueFamilyIndex {
		return false
	}
	return true
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	presentSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.PresentQueueIndex
	transferSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.TransferQueueIndex
	indexCount := 1

	if !presentSharesGraphicsQueue {
		indexCount++
	}
	if !transferSharesGraphicsQueue {
		indexCount++
	}
	indices := make([]uint32, indexCount)
	index := 0
	indices[index] = uint32(context.Device.GraphicsQueueIndex)
	index += 1

	if !presentSharesGraphicsQueue {
		indices[index] = uint32(context.Device.PresentQueueIndex)
		index += 1
	}
	if !transferSharesGraphicsQueue {
		indices[index] = uint32(context.Device.TransferQueueIndex)
		index += 1
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, indexCount)
	for i := 0; i < indexCount; i++ {
		queueCreateInfos[i].SType = vk.StructureTypeDeviceQueueCreateInfo
		queueCreateInfos[i].QueueFamilyIndex = indices[i]
		queueCreateInfos[i].QueueCount = 1
		queueCreateInfos[i].Flags = 0
		queueCreateInfos[i].PNext = nil
		queueCreateInfos[i].PQueuePriorities = []float32{1.0}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	if context.AnisotropyEnabled && context.Device.Features.SamplerAnisotropy == vk.True {
		deviceFeatures.SamplerAnisotropy = vk.True
	}

	portabilityRequired := false
	var availableExtensionCount uint32 = 0

	if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate device extension properties with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if availableExtensionCount != 0 {
		availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
		if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, availableExtensions); res != vk.Success {
			err := fmt.Errorf("failed to enumerate device extension properties with %s", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}

		for i := 0; i < int(availableExtensionCount); i++ {
			availableExtensions[i].Deref()
			name := string(availableExtensions[i].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])])
			if name == "VK_KHR_portability_subset" {
				core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
				portabilityRequired = true
				break
			}
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilityRequired {
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(indexCount),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("vkCreateDevice failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Logical device created.")

	// Get queues.
	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.PresentQueueIndex),
		0,
		&context.Device.PresentQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.TransferQueueIndex),
		0,
		&context.Device.TransferQueue)
	core.LogInfo("Queues obtained.")

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("vkCreateCommandPool failed with %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	// Unset queues
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil
	context.Device.TransferQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil

	context.Device.SwapchainSupport.Formats = nil
	context.Device.SwapchainSupport.FormatCount = 0
	context.Device.SwapchainSupport.PresentModes = nil
	context.Device.SwapchainSupport.PresentModeCount = 0
	context.Device.SwapchainSupport.Capabilities = vk.SurfaceCapabilities{}

	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
	context.Device.TransferQueueIndex = -1
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	// Surface capabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return fmt.Errorf("failed to get physical device surface capabilities")
	}
	supportInfo.Capabilities.Deref()

	// Surface formats
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		return fmt.Errorf("failed to get physical device surface formats")
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			return fmt.Errorf("failed to get physical device surface formats")
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface present modes")
		core.LogError(err.Error())
		return err
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface present modes")
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for _, candidate := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if (vk.FormatFeatureFlagBits(properties.LinearTilingFeatures) & flags) == flags {
			device.DepthFormat = candidate
			return true
		} else if (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices with %s", VulkanResultString(res, true))
	}

	if physicalDeviceCount == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices with %s", VulkanResultString(res, true))
	}

	for i := 0; i < int(physicalDeviceCount); i++ {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()

		features := vk.PhysicalDeviceFeatures{}
		vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)
		features.Deref()

		memory := vk.PhysicalDeviceMemoryProperties{}
		vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)
		memory.Deref()

		requirements := VulkanPhysicalDeviceRequirements{
			Graphics:             true,
			Present:              true,
			Transfer:             true,
			SamplerAnisotropy:    context.AnisotropyEnabled,
			DiscreteGPU:          true,
			DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
		}

		if runtime.GOOS == "darwin" {
			requirements.DiscreteGPU = false
		}

		queueInfo := VulkanPhysicalDeviceQueueFamilyInfo{}
		result := PhysicalDeviceMeetsRequirements(
			physicalDevices[i],
			context.Surface,
			&properties,
			&features,
			&requirements,
			&queueInfo,
			&context.Device.SwapchainSupport)

		if result {
			deviceName := string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])])
			core.LogInfo("Selected device: '%s'.", deviceName)
			switch properties.DeviceType {
			default:
				fallthrough
			case vk.PhysicalDeviceTypeOther:
				core.LogInfo("GPU type is Unknown.")
			case vk.PhysicalDeviceTypeIntegratedGpu:
				core.LogInfo("GPU type is Integrated.")
			case vk.PhysicalDeviceTypeDiscreteGpu:
				core.LogInfo("GPU type is Discrete.")
			case vk.PhysicalDeviceTypeVirtualGpu:
				core.LogInfo("GPU type is Virtual.")
			case vk.PhysicalDeviceTypeCpu:
				core.LogInfo("GPU type is CPU.")
			}

			core.LogInfo(
				"Vulkan API version: %d.%d.%d",
				vk.Version.Major(vk.Version(properties.ApiVersion)),
				vk.Version.Minor(vk.Version(properties.ApiVersion)),
				vk.Version.Patch(vk.Version(properties.ApiVersion)),
			)

			context.Device.PhysicalDevice = physicalDevices[i]
			context.Device.GraphicsQueueIndex = int32(queueInfo.GraphicsFamilyIndex)
			context.Device.PresentQueueIndex = int32(queueInfo.PresentFamilyIndex)
			context.Device.TransferQueueIndex = int32(queueInfo.TransferFamilyIndex)

			// Keep a copy of properties, features and memory info for later use.
			context.Device.Properties = properties
			context.Device.Features = features
			context.Device.Memory = memory
			break
		}
	}

	if context.Device.PhysicalDevice == nil {
		return fmt.Errorf("no physical devices were found which meet the requirements")
	}

	core.LogInfo("Physical device selected.")
	return nil
}

func PhysicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements, outQueueInfo *VulkanPhysicalDeviceQueueFamilyInfo, outSwapchainSupport *VulkanSwapchainSupportInfo) bool {
	outQueueInfo.GraphicsFamilyIndex = InvalidQueueFamilyIndex
	outQueueInfo.PresentFamilyIndex = InvalidQueueFamilyIndex
	outQueueInfo.ComputeFamilyIndex = InvalidQueueFamilyIndex
	outQueueInfo.TransferFamilyIndex = InvalidQueueFamilyIndex

	if requirements.DiscreteGPU {
		if properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
			core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
			return false
		}
	}

	var queueFamilyCount uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	// Look at each queue and see what queues it supports. Lowest-scoring
	// transfer family wins, which increases the likelihood that it is a
	// dedicated transfer queue.
	minTransferScore := 255
	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()
		currentTransferScore := 0

		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = uint32(i)
			currentTransferScore++
		}

		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueComputeBit) > 0 {
			outQueueInfo.ComputeFamilyIndex = uint32(i)
			currentTransferScore++
		}

		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueTransferBit > 0 {
			if currentTransferScore <= minTransferScore {
				minTransferScore = currentTransferScore
				outQueueInfo.TransferFamilyIndex = uint32(i)
			}
		}

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false
		}
		if supportsPresent == vk.True {
			outQueueInfo.PresentFamilyIndex = uint32(i)
		}
	}

	if !outQueueInfo.MeetsRequirements(requirements) {
		core.LogInfo("Device is missing a required queue family, skipping.")
		return false
	}

	core.LogDebug("Graphics Family Index: %d", outQueueInfo.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", outQueueInfo.PresentFamilyIndex)
	core.LogDebug("Transfer Family Index: %d", outQueueInfo.TransferFamilyIndex)
	core.LogDebug("Compute Family Index:  %d", outQueueInfo.ComputeFamilyIndex)

	// Query swapchain support.
	if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
		core.LogInfo("Swapchain support query failed, skipping device: %s", err.Error())
		return false
	}

	if outSwapchainSupport.FormatCount < 1 || outSwapchainSupport.PresentModeCount < 1 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return false
	}

	// Device extensions.
	if requirements.DeviceExtensionNames != nil {
		var availableExtensionCount uint32 = 0

		if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
			return false
		}

		if availableExtensionCount != 0 {
			availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
			if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
				return false
			}
			for _, required := range requirements.DeviceExtensionNames {
				found := false
				for j := 0; j < int(availableExtensionCount); j++ {
					availableExtensions[j].Deref()
					name := string(availableExtensions[j].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[j].ExtensionName[:])])
					if required == name {
						found = true
						break
					}
				}
				if !found {
					core.LogInfo("Required extension not found: '%s', skipping device.", required)
					return false
				}
			}
		}
	}

	// Sampler anisotropy
	if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return false
	}

	// Device meets all requirements.
	return true
}

func FindFirstZeroInByteArray(arr []byte) int {
	end := 0
	for i, b := range arr {
		if b == 0 {
			end = i
			break
		}
	}
	return end
}
