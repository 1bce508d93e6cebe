package vulkan

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
)

// ErrFrameSkipped is returned by BeginFrame when the frame must be dropped
// so the swapchain can settle after a resize. No commands were recorded;
// callers must not draw or call EndFrame for this frame.
var ErrFrameSkipped = errors.New("frame skipped")

type VulkanRenderer struct {
	platform                *platform.Platform
	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	debug bool
}

func New(p *platform.Platform, anisotropy bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			Allocator:         nil,
			Device:            &VulkanDevice{},
			AnisotropyEnabled: anisotropy,
		},
		debug: true,
	}
}

// Context exposes the shared Vulkan state to resource-upload helpers.
func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan loader: %w", err)
	}

	// TODO: custom allocator.
	vr.context.Allocator = nil

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Lumen Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugUtilsExtensionName, vk.ExtDebugReportExtensionName)
		core.LogInfo("Required extensions:")
		for i := 0; i < len(requiredExtensions); i++ {
			core.LogInfo(requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers should only be enabled on non-release builds.
	requiredValidationLayerNames := []string{}
	if vr.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}

		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		// Obtain a list of available validation layers.
		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layer properties")
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return fmt.Errorf("failed to enumerate instance layer properties")
		}

		// Verify all required layers are available.
		for i := range requiredValidationLayerNames {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayerNames[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("required validation layer is missing: %s", requiredValidationLayerNames[i])
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		return fmt.Errorf("failed to create the vulkan instance with %s", VulkanResultString(res, true))
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	// Debugger
	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			return fmt.Errorf("vkCreateDebugReportCallback failed: %w", err)
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderPassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	// Create sync objects.
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, vr.context.Swapchain.MaxFramesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, vr.context.Swapchain.MaxFramesInFlight)

	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create image-available semaphore")
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create queue-complete semaphore")
		}

		// Create the fence signaled, indicating that the first frame has
		// already been "rendered" so the loop does not wait forever.
		f, err := NewVulkanFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}

	// Actual fences are not owned by this list; entries are nil when an
	// image is not in use by a frame.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.ImageAvailableSemaphores[i],
				vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(
				vr.context.Device.LogicalDevice,
				vr.context.QueueCompleteSemaphores[i],
				vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].Destroy(vr.context)
	}

	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil
	vr.context.ImagesInFlight = nil

	// Command buffers
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	// Framebuffers
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	vr.context.MainRenderpass.Destroy(vr.context)
	vr.context.Swapchain.Destroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug {
		core.LogDebug("Destroying Vulkan debugger...")
		if vr.context.debugMessenger != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		}
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint16) error {
	// Bump the framebuffer size generation, a counter that tells BeginFrame
	// a new swapchain is needed.
	vr.cachedFramebufferWidth = uint32(width)
	vr.cachedFramebufferHeight = uint32(height)
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	device := vr.context.Device

	// Check if recreating swap chain and boot out.
	if vr.context.RecreatingSwapchain {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("BeginFrame vkDeviceWaitIdle (1) failed: '%s'", VulkanResultString(result, true))
		}
		core.LogInfo("Recreating swapchain, booting.")
		return fmt.Errorf("swapchain recreation in progress: %w", ErrFrameSkipped)
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		result := vk.DeviceWaitIdle(device.LogicalDevice)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("BeginFrame vkDeviceWaitIdle (2) failed: '%s'", VulkanResultString(result, true))
		}

		// If the swapchain recreation failed (because, for example, the
		// window was minimized), boot out before unsetting the flag.
		if !vr.recreateSwapchain() {
			return fmt.Errorf("failed to recreate the swapchain")
		}

		core.LogInfo("Resized, booting.")
		return fmt.Errorf("swapchain recreated after resize: %w", ErrFrameSkipped)
	}

	// Wait for the execution of the current frame to complete.
	if !vr.context.InFlightFences[vr.context.CurrentFrame].Wait(vr.context, math.MaxUint64) {
		return fmt.Errorf("in-flight fence wait failure")
	}

	// Acquire the next image from the swap chain. The semaphore that signals
	// when this completes is later waited on by the queue submission.
	imageIndex, ok := vr.context.Swapchain.AcquireNextImageIndex(vr.context, math.MaxUint64, vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], vk.NullFence)
	if !ok {
		return fmt.Errorf("failed to acquire next swapchain image index")
	}
	vr.context.ImageIndex = imageIndex

	// Begin recording commands.
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Dynamic state
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	vr.context.MainRenderpass.Begin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)
	return nil
}

// CurrentCommandBuffer returns the command buffer being recorded between
// BeginFrame and EndFrame.
func (vr *VulkanRenderer) CurrentCommandBuffer() *VulkanCommandBuffer {
	return vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]

	vr.context.MainRenderpass.End(commandBuffer)

	if err := commandBuffer.End(); err != nil {
		return err
	}

	// Make sure the previous frame is not using this image.
	if vr.context.ImagesInFlight[vr.context.ImageIndex] != nil {
		vr.context.ImagesInFlight[vr.context.ImageIndex].Wait(vr.context, math.MaxUint64)
	}

	// Mark the image fence as in-use by this frame.
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]

	// Reset the fence for use on the next frame.
	if err := vr.context.InFlightFences[vr.context.CurrentFrame].Reset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
		// The semaphore(s) to be signaled when the queue is complete.
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		// Color attachment writes must wait on the image-available signal so
		// only one frame is presented at a time.
		PWaitDstStageMask: []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[vr.context.CurrentFrame].Handle); result != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
	}

	commandBuffer.UpdateSubmitted()

	// Give the image back to the swapchain.
	vr.context.Swapchain.Present(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame],
		vr.context.ImageIndex)

	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	if len(vr.context.GraphicsCommandBuffers) == 0 {
		vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, vr.context.Swapchain.ImageCount)
	}
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		if vr.context.GraphicsCommandBuffers[i] != nil && vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
		cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers(swapchain *VulkanSwapchain, renderpass *VulkanRenderPass) error {
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		fb, err := FramebufferCreate(vr.context, renderpass, vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() bool {
	// If already being recreated, do not try again.
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating. Booting.")
		return false
	}

	// Detect if the window is too small to be drawn to.
	if vr.cachedFramebufferWidth == 0 || vr.cachedFramebufferHeight == 0 {
		core.LogDebug("recreateSwapchain called when window is < 1 in a dimension. Booting.")
		return false
	}

	vr.context.RecreatingSwapchain = true

	// Wait for any operations to complete.
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Clear these out just in case.
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.ImagesInFlight[i] = nil
	}

	// Requery support.
	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport)
	DeviceDetectDepthFormat(vr.context.Device)

	// Free resources tied to the outgoing swapchain image count.
	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}
	vr.context.GraphicsCommandBuffers = nil

	sc, err := vr.context.Swapchain.Recreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		core.LogError("swapchain recreation failed: %s", err.Error())
		vr.context.RecreatingSwapchain = false
		return false
	}
	vr.context.Swapchain = sc

	// Sync the framebuffer size with the cached sizes.
	vr.context.FramebufferWidth = vr.cachedFramebufferWidth
	vr.context.FramebufferHeight = vr.cachedFramebufferHeight
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)
	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		core.LogError("framebuffer regeneration failed: %s", err.Error())
		vr.context.RecreatingSwapchain = false
		return false
	}
	if err := vr.createCommandBuffers(); err != nil {
		core.LogError("command buffer recreation failed: %s", err.Error())
		vr.context.RecreatingSwapchain = false
		return false
	}

	vr.context.RecreatingSwapchain = false
	return true
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
