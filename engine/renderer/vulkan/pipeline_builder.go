package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

const defaultEntryPoint = "main"

// PipelineBuilder accumulates the pieces of a graphics pipeline and the
// bindings of its single descriptor set, then turns them into native
// create calls. Every setter returns the builder so calls can be chained.
//
// Nothing is validated locally: duplicate binding indices or attributes
// that reference undeclared bindings are left to the driver. A builder
// is meant to be used by one goroutine, for one pipeline.
type PipelineBuilder struct {
	vertexBindings   []vk.VertexInputBindingDescription
	vertexAttributes []vk.VertexInputAttributeDescription
	layoutBindings   []vk.DescriptorSetLayoutBinding
	shaderStages     []vk.PipelineShaderStageCreateInfo

	inputAssembly vk.PipelineInputAssemblyStateCreateInfo
	rasterization vk.PipelineRasterizationStateCreateInfo
	multisample   vk.PipelineMultisampleStateCreateInfo
	depthStencil  vk.PipelineDepthStencilStateCreateInfo
	alphaBlend    bool

	resolved int
}

// NewPipelineBuilder returns a builder preloaded with the default fixed
// function state: triangle lists, filled polygons without culling, one
// sample, depth test and write with less-or-equal, no stencil and no
// blending.
func NewPipelineBuilder() *PipelineBuilder {
	keep := vk.StencilOpState{
		FailOp:    vk.StencilOpKeep,
		PassOp:    vk.StencilOpKeep,
		CompareOp: vk.CompareOpAlways,
	}
	return &PipelineBuilder{
		inputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		rasterization: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                vk.CullModeFlags(vk.CullModeNone),
			FrontFace:               vk.FrontFaceCounterClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		multisample: vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		depthStencil: vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vk.True,
			DepthWriteEnable:      vk.True,
			DepthCompareOp:        vk.CompareOpLessOrEqual,
			DepthBoundsTestEnable: vk.False,
			StencilTestEnable:     vk.False,
			Front:                 keep,
			Back:                  keep,
		},
	}
}

// Attrib adds a vertex attribute read from binding at offset bytes.
func (b *PipelineBuilder) Attrib(location, binding uint32, format vk.Format, offset uint32) *PipelineBuilder {
	b.vertexAttributes = append(b.vertexAttributes, vk.VertexInputAttributeDescription{
		Location: location,
		Binding:  binding,
		Format:   format,
		Offset:   offset,
	})
	return b
}

// Binding adds a vertex buffer binding advancing stride bytes per vertex
// or per instance.
func (b *PipelineBuilder) Binding(binding, stride uint32, inputRate vk.VertexInputRate) *PipelineBuilder {
	b.vertexBindings = append(b.vertexBindings, vk.VertexInputBindingDescription{
		Binding:   binding,
		Stride:    stride,
		InputRate: inputRate,
	})
	return b
}

// VertexBinding is Binding with a per-vertex input rate.
func (b *PipelineBuilder) VertexBinding(binding, stride uint32) *PipelineBuilder {
	return b.Binding(binding, stride, vk.VertexInputRateVertex)
}

// LayoutBinding adds a single descriptor of kind at binding, visible to
// the given stages.
func (b *PipelineBuilder) LayoutBinding(binding uint32, kind vk.DescriptorType, stages vk.ShaderStageFlags) *PipelineBuilder {
	b.layoutBindings = append(b.layoutBindings, vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  kind,
		DescriptorCount: 1,
		StageFlags:      stages,
	})
	return b
}

func (b *PipelineBuilder) UniformBuffer(binding uint32, stages vk.ShaderStageFlags) *PipelineBuilder {
	return b.LayoutBinding(binding, vk.DescriptorTypeUniformBuffer, stages)
}

func (b *PipelineBuilder) CombinedImageSampler(binding uint32, stages vk.ShaderStageFlags) *PipelineBuilder {
	return b.LayoutBinding(binding, vk.DescriptorTypeCombinedImageSampler, stages)
}

// Shader adds a stage running entryPoint of an already compiled module.
// An empty entryPoint means "main".
func (b *PipelineBuilder) Shader(module vk.ShaderModule, stage vk.ShaderStageFlagBits, entryPoint string) *PipelineBuilder {
	if entryPoint == "" {
		entryPoint = defaultEntryPoint
	}
	b.shaderStages = append(b.shaderStages, vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: module,
		PName:  entryPoint,
	})
	return b
}

func (b *PipelineBuilder) Topology(topology vk.PrimitiveTopology) *PipelineBuilder {
	b.inputAssembly.Topology = topology
	return b
}

func (b *PipelineBuilder) PrimitiveRestart(enable bool) *PipelineBuilder {
	b.inputAssembly.PrimitiveRestartEnable = boolean(enable)
	return b
}

func (b *PipelineBuilder) PolygonMode(mode vk.PolygonMode) *PipelineBuilder {
	b.rasterization.PolygonMode = mode
	return b
}

func (b *PipelineBuilder) CullMode(mode vk.CullModeFlagBits) *PipelineBuilder {
	b.rasterization.CullMode = vk.CullModeFlags(mode)
	return b
}

func (b *PipelineBuilder) FrontFace(face vk.FrontFace) *PipelineBuilder {
	b.rasterization.FrontFace = face
	return b
}

// LineWidth sets the rasterization line width, 1 by default.
func (b *PipelineBuilder) LineWidth(width float32) *PipelineBuilder {
	b.rasterization.LineWidth = width
	return b
}

func (b *PipelineBuilder) Samples(samples vk.SampleCountFlagBits) *PipelineBuilder {
	b.multisample.RasterizationSamples = samples
	return b
}

// DepthTest configures the depth test. Stencil testing stays off.
func (b *PipelineBuilder) DepthTest(test, write bool, op vk.CompareOp) *PipelineBuilder {
	b.depthStencil.DepthTestEnable = boolean(test)
	b.depthStencil.DepthWriteEnable = boolean(write)
	b.depthStencil.DepthCompareOp = op
	return b
}

// AlphaBlend turns source-alpha blending on the color attachment on or
// off. It is off by default.
func (b *PipelineBuilder) AlphaBlend(enable bool) *PipelineBuilder {
	b.alphaBlend = enable
	return b
}

func (b *PipelineBuilder) VertexBindings() []vk.VertexInputBindingDescription {
	return append([]vk.VertexInputBindingDescription(nil), b.vertexBindings...)
}

func (b *PipelineBuilder) VertexAttributes() []vk.VertexInputAttributeDescription {
	return append([]vk.VertexInputAttributeDescription(nil), b.vertexAttributes...)
}

func (b *PipelineBuilder) LayoutBindings() []vk.DescriptorSetLayoutBinding {
	return append([]vk.DescriptorSetLayoutBinding(nil), b.layoutBindings...)
}

// ShaderStages returns the stages in insertion order, entry points as
// given (without the NUL terminator added for the driver).
func (b *PipelineBuilder) ShaderStages() []vk.PipelineShaderStageCreateInfo {
	return append([]vk.PipelineShaderStageCreateInfo(nil), b.shaderStages...)
}

func (b *PipelineBuilder) InputTopology() vk.PrimitiveTopology {
	return b.inputAssembly.Topology
}

// CreateDescriptorSetLayout creates set 0 from every accumulated layout
// binding.
func (b *PipelineBuilder) CreateDescriptorSetLayout(device *Device) (*DescriptorSetLayout, error) {
	return createDescriptorSetLayout(device, b.LayoutBindings())
}

// CreatePipelineLayout creates a pipeline layout around setLayout.
func (b *PipelineBuilder) CreatePipelineLayout(device *Device, setLayout vk.DescriptorSetLayout) (*PipelineLayout, error) {
	return NewPipelineLayout(device, setLayout)
}

// GraphicsPipelineInfo resolves the accumulated state and the defaults
// into the request CreateGraphicsPipeline sends. Each call works on fresh
// copies, so the result does not change if the builder is modified later.
func (b *PipelineBuilder) GraphicsPipelineInfo(renderPass vk.RenderPass, layout vk.PipelineLayout) vk.GraphicsPipelineCreateInfo {
	stages := b.ShaderStages()
	for i := range stages {
		stages[i].PName = VulkanSafeString(stages[i].PName)
	}

	bindings := b.VertexBindings()
	attributes := b.VertexAttributes()
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   count(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: count(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := b.inputAssembly
	rasterization := b.rasterization
	multisample := b.multisample
	depthStencil := b.depthStencil

	// The viewport and scissor are dynamic, but the state block must
	// still declare one of each.
	viewport := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: count(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	attachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	if b.alphaBlend {
		attachment.BlendEnable = vk.True
		attachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		attachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		attachment.ColorBlendOp = vk.BlendOpAdd
		attachment.SrcAlphaBlendFactor = vk.BlendFactorSrcAlpha
		attachment.DstAlphaBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		attachment.AlphaBlendOp = vk.BlendOpAdd
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{attachment},
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          count(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewport,
		PRasterizationState: &rasterization,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamic,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
}

// CreateGraphicsPipeline issues a single graphics pipeline create call.
// renderPass, layout and cache must stay alive for the duration of the
// call; none of them is owned by the result. On failure no pipeline is
// produced and the builder is left untouched.
func (b *PipelineBuilder) CreateGraphicsPipeline(device *Device, renderPass vk.RenderPass, layout vk.PipelineLayout, cache vk.PipelineCache) (vk.Pipeline, error) {
	if b.resolved > 0 {
		core.LogDebug("pipeline builder resolved %d times before, builders are meant to be single use", b.resolved)
	}

	info := b.GraphicsPipelineInfo(renderPass, layout)
	pipelines, result := device.Driver.CreateGraphicsPipelines(device.Handle, cache, []vk.GraphicsPipelineCreateInfo{info})
	handle := vk.NullPipeline
	if len(pipelines) > 0 {
		handle = pipelines[0]
	}
	if err := checkCreated(device, PipelineKind, "vkCreateGraphicsPipelines", result, handle); err != nil {
		return vk.NullPipeline, err
	}

	b.resolved++
	core.LogDebug("graphics pipeline created with %d stages", info.StageCount)
	return pipelines[0], nil
}

func boolean(v bool) vk.Bool32 {
	if v {
		return vk.True
	}
	return vk.False
}
