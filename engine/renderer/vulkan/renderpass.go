package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanRenderPass struct {
	Handle     vk.RenderPass
	X, Y, W, H float32
	R, G, B, A float32
	Depth      float32
	Stencil    uint32
}

// RenderPassCreate builds a single-subpass render pass with one color
// attachment (cleared, presented after) and one depth attachment.
func RenderPassCreate(context *VulkanContext, x, y, w, h, r, g, b, a, depth float32, stencil uint32) (*VulkanRenderPass, error) {
	outRenderpass := &VulkanRenderPass{
		X:       x,
		Y:       y,
		W:       w,
		H:       h,
		R:       r,
		G:       g,
		B:       b,
		A:       a,
		Depth:   depth,
		Stencil: stencil,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics,
	}

	attachmentDescriptions := make([]vk.AttachmentDescription, 2)

	colorAttachment := vk.AttachmentDescription{
		Format:         context.Swapchain.ImageFormat.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachment.Deref()
	attachmentDescriptions[0] = colorAttachment

	colorAttachmentReference := []vk.AttachmentReference{
		{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		},
	}
	subpass.ColorAttachmentCount = 1
	subpass.PColorAttachments = colorAttachmentReference

	depthAttachment := vk.AttachmentDescription{
		Format:         context.Device.DepthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachment.Deref()
	attachmentDescriptions[1] = depthAttachment

	depthAttachmentReference := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachmentReference.Deref()
	subpass.PDepthStencilAttachment = &depthAttachmentReference
	subpass.Deref()

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	dependency.Deref()

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	renderpassCreateInfo.Deref()

	var pRenderPass vk.RenderPass
	if err := lockPool.SafeCall(RenderpassManagement, func() error {
		if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &pRenderPass); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreateRenderPass failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	outRenderpass.Handle = pRenderPass
	return outRenderpass, nil
}

func (vr *VulkanRenderPass) Destroy(context *VulkanContext) {
	if vr.Handle != nil {
		lockPool.SafeCall(RenderpassManagement, func() error {
			vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
			return nil
		})
		vr.Handle = nil
	}
}

func (vr *VulkanRenderPass) Begin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(vr.X),
				Y: int32(vr.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(vr.W),
				Height: uint32(vr.H),
			},
		},
	}

	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{vr.R, vr.G, vr.B, vr.A})
	clearValues[1].SetDepthStencil(vr.Depth, vr.Stencil)

	beginInfo.ClearValueCount = 2
	beginInfo.PClearValues = clearValues
	beginInfo.Deref()

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderPass) End(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
