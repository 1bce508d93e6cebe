package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
}

// VulkanPipelineBuilder accumulates fixed-function state for graphics
// pipeline creation. Every block starts from a usable default and the caller
// overrides fields selectively before calling Build.
//
// Defaults: triangle-list topology, back-face culling with counter-clockwise
// front faces, fill mode with line width 1.0, a single color attachment with
// blending disabled, depth test and write enabled with less-or-equal compare,
// single-sampled, dynamic viewport and scissor.
type VulkanPipelineBuilder struct {
	context    *VulkanContext
	renderpass *VulkanRenderPass

	InputAssemblyState    vk.PipelineInputAssemblyStateCreateInfo
	RasterizationState    vk.PipelineRasterizationStateCreateInfo
	MultisampleState      vk.PipelineMultisampleStateCreateInfo
	DepthStencilState     vk.PipelineDepthStencilStateCreateInfo
	BlendAttachmentStates []vk.PipelineColorBlendAttachmentState
	DynamicStates         []vk.DynamicState
	VertexBindings        []vk.VertexInputBindingDescription
	VertexAttributes      []vk.VertexInputAttributeDescription
	DescriptorSetLayouts  []vk.DescriptorSetLayout
	PushConstantRanges    []vk.PushConstantRange

	shaderStages []*VulkanShaderStage
}

func NewPipelineBuilder(context *VulkanContext, renderpass *VulkanRenderPass) *VulkanPipelineBuilder {
	return &VulkanPipelineBuilder{
		context:    context,
		renderpass: renderpass,
		InputAssemblyState: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		RasterizationState: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			LineWidth:               1.0,
			CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:               vk.FrontFaceCounterClockwise,
			DepthBiasEnable:         vk.False,
		},
		MultisampleState: vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			SampleShadingEnable:  vk.False,
			MinSampleShading:     1.0,
		},
		DepthStencilState: vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vk.True,
			DepthWriteEnable:      vk.True,
			DepthCompareOp:        vk.CompareOpLessOrEqual,
			DepthBoundsTestEnable: vk.False,
			StencilTestEnable:     vk.False,
		},
		BlendAttachmentStates: []vk.PipelineColorBlendAttachmentState{
			{
				BlendEnable: vk.False,
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
					vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
			},
		},
		DynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}
}

// SetVertexLayout derives the binding and attribute descriptions from a
// semantic vertex layout, replacing any previously set vertex input state.
func (b *VulkanPipelineBuilder) SetVertexLayout(layout *metadata.VertexLayout) *VulkanPipelineBuilder {
	binding, attributes := VertexInputState(layout)
	b.VertexBindings = []vk.VertexInputBindingDescription{binding}
	b.VertexAttributes = attributes
	return b
}

// LoadShader reads a compiled SPIR-V binary from path and appends it as a
// stage. The builder owns the resulting module and destroys it after Build.
func (b *VulkanPipelineBuilder) LoadShader(path string, stageFlag vk.ShaderStageFlagBits) error {
	loader := &loaders.ShaderLoader{}
	resource, err := loader.Load(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		return fmt.Errorf("unable to read shader module %s: %w", path, err)
	}
	stage, err := NewShaderStage(b.context, resource.Data.([]uint32), stageFlag)
	if err != nil {
		return err
	}
	b.shaderStages = append(b.shaderStages, stage)
	return nil
}

// AddShaderStage appends an already created stage. The builder takes
// ownership of the module.
func (b *VulkanPipelineBuilder) AddShaderStage(stage *VulkanShaderStage) *VulkanPipelineBuilder {
	b.shaderStages = append(b.shaderStages, stage)
	return b
}

// DestroyShaderStages releases all modules the builder owns. Build calls
// this on success; callers only need it when abandoning a builder after
// loading shaders.
func (b *VulkanPipelineBuilder) DestroyShaderStages() {
	for _, stage := range b.shaderStages {
		stage.Destroy(b.context)
	}
	b.shaderStages = nil
}

// Build assembles the accumulated state and creates the pipeline. All counts
// are recomputed here from the backing slices so that late overrides are
// picked up. Shader modules are destroyed once the pipeline exists since
// they are not needed afterwards.
func (b *VulkanPipelineBuilder) Build(cache vk.PipelineCache) (*VulkanPipeline, error) {
	if len(b.shaderStages) == 0 {
		return nil, fmt.Errorf("cannot build a pipeline with no shader stages")
	}

	outPipeline := &VulkanPipeline{}

	stages := make([]vk.PipelineShaderStageCreateInfo, len(b.shaderStages))
	for i, stage := range b.shaderStages {
		stages[i] = stage.ShaderStageCreateInfo
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(b.VertexBindings)),
		PVertexBindingDescriptions:      b.VertexBindings,
		VertexAttributeDescriptionCount: uint32(len(b.VertexAttributes)),
		PVertexAttributeDescriptions:    b.VertexAttributes,
	}
	vertexInputInfo.Deref()

	// Viewport and scissor are dynamic, only the counts matter here.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	viewportState.Deref()

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(b.BlendAttachmentStates)),
		PAttachments:    b.BlendAttachmentStates,
	}
	colorBlendState.Deref()

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(b.DynamicStates)),
		PDynamicStates:    b.DynamicStates,
	}
	dynamicState.Deref()

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(b.DescriptorSetLayouts)),
		PSetLayouts:            b.DescriptorSetLayouts,
		PushConstantRangeCount: uint32(len(b.PushConstantRanges)),
		PPushConstantRanges:    b.PushConstantRanges,
	}
	pipelineLayoutCreateInfo.Deref()

	var pPipelineLayout vk.PipelineLayout
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreatePipelineLayout(
			b.context.Device.LogicalDevice,
			&pipelineLayoutCreateInfo,
			b.context.Allocator,
			&pPipelineLayout)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(result, true))
		}
		outPipeline.PipelineLayout = pPipelineLayout
		return nil
	}); err != nil {
		return nil, err
	}

	b.InputAssemblyState.Deref()
	b.RasterizationState.Deref()
	b.MultisampleState.Deref()
	b.DepthStencilState.Deref()

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &b.InputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &b.RasterizationState,
		PMultisampleState:   &b.MultisampleState,
		PDepthStencilState:  &b.DepthStencilState,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		PTessellationState:  nil,
		Layout:              outPipeline.PipelineLayout,
		RenderPass:          b.renderpass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelineCreateInfo.Deref()

	pPipelines := make([]vk.Pipeline, 1)
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(
			b.context.Device.LogicalDevice,
			cache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			b.context.Allocator,
			pPipelines)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		outPipeline.Destroy(b.context)
		return nil, err
	}

	outPipeline.Handle = pPipelines[0]

	// Modules are baked into the pipeline now.
	b.DestroyShaderStages()

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func (p *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, p.Handle)
}

func (p *VulkanPipeline) Destroy(context *VulkanContext) {
	lockPool.SafeCall(PipelineManagement, func() error {
		if p.Handle != vk.NullPipeline {
			vk.DestroyPipeline(context.Device.LogicalDevice, p.Handle, context.Allocator)
			p.Handle = vk.NullPipeline
		}
		if p.PipelineLayout != vk.NullPipelineLayout {
			vk.DestroyPipelineLayout(context.Device.LogicalDevice, p.PipelineLayout, context.Allocator)
			p.PipelineLayout = vk.NullPipelineLayout
		}
		return nil
	})
}
