package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineBuilderPreservesOrder(t *testing.T) {
	b := NewPipelineBuilder()
	vert := fakeHandle[vk.ShaderModule](0x1000)
	frag := fakeHandle[vk.ShaderModule](0x2000)

	for i := uint32(0); i < 5; i++ {
		before := len(b.VertexAttributes())
		got := b.Attrib(i, i%2, vk.FormatR32g32b32Sfloat, i*12)
		assert.Same(t, b, got)
		attrs := b.VertexAttributes()
		require.Len(t, attrs, before+1)
		assert.Equal(t, vk.VertexInputAttributeDescription{
			Location: i, Binding: i % 2, Format: vk.FormatR32g32b32Sfloat, Offset: i * 12,
		}, attrs[before])
	}

	b.Binding(1, 16, vk.VertexInputRateInstance).VertexBinding(0, 32)
	assert.Equal(t, []vk.VertexInputBindingDescription{
		{Binding: 1, Stride: 16, InputRate: vk.VertexInputRateInstance},
		{Binding: 0, Stride: 32, InputRate: vk.VertexInputRateVertex},
	}, b.VertexBindings())

	stages := vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	b.CombinedImageSampler(1, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)).
		UniformBuffer(0, stages).
		LayoutBinding(2, vk.DescriptorTypeStorageBuffer, stages)
	assert.Equal(t, []vk.DescriptorSetLayoutBinding{
		{Binding: 1, DescriptorType: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1, StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1, StageFlags: stages},
		{Binding: 2, DescriptorType: vk.DescriptorTypeStorageBuffer, DescriptorCount: 1, StageFlags: stages},
	}, b.LayoutBindings())

	b.Shader(vert, vk.ShaderStageVertexBit, "").Shader(frag, vk.ShaderStageFragmentBit, "fs_main")
	shaders := b.ShaderStages()
	require.Len(t, shaders, 2)
	assert.Equal(t, vert, shaders[0].Module)
	assert.Equal(t, vk.ShaderStageVertexBit, shaders[0].Stage)
	assert.Equal(t, "main", shaders[0].PName)
	assert.Equal(t, frag, shaders[1].Module)
	assert.Equal(t, "fs_main", shaders[1].PName)
}

func TestPipelineBuilderInspectionReturnsCopies(t *testing.T) {
	b := NewPipelineBuilder().VertexBinding(0, 8)
	bindings := b.VertexBindings()
	bindings[0].Stride = 99
	assert.Equal(t, uint32(8), b.VertexBindings()[0].Stride)
}

func TestPipelineBuilderDefaults(t *testing.T) {
	dev, drv := newTestDevice(t)
	b := NewPipelineBuilder().
		Shader(fakeHandle[vk.ShaderModule](0x1000), vk.ShaderStageVertexBit, "main").
		Shader(fakeHandle[vk.ShaderModule](0x2000), vk.ShaderStageFragmentBit, "main")

	renderPass := fakeHandle[vk.RenderPass](0x3000)
	layout := fakeHandle[vk.PipelineLayout](0x4000)
	cache := fakeHandle[vk.PipelineCache](0x5000)

	handle, err := b.CreateGraphicsPipeline(dev, renderPass, layout, cache)
	require.NoError(t, err)
	assert.NotEqual(t, vk.NullPipeline, handle)

	require.Len(t, drv.pipelineInfos, 1)
	assert.Equal(t, cache, drv.pipelineCaches[0])
	info := drv.pipelineInfos[0]

	assert.Equal(t, vk.StructureTypeGraphicsPipelineCreateInfo, info.SType)
	assert.Equal(t, renderPass, info.RenderPass)
	assert.Equal(t, layout, info.Layout)
	assert.Equal(t, uint32(0), info.Subpass)
	assert.Equal(t, int32(-1), info.BasePipelineIndex)

	require.Equal(t, uint32(2), info.StageCount)
	assert.Equal(t, "main\x00", info.PStages[0].PName)
	assert.Equal(t, "main\x00", info.PStages[1].PName)

	assert.Equal(t, vk.PrimitiveTopologyTriangleList, info.PInputAssemblyState.Topology)

	raster := info.PRasterizationState
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), raster.CullMode)
	assert.Equal(t, vk.PolygonModeFill, raster.PolygonMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, raster.FrontFace)
	assert.Equal(t, float32(1.0), raster.LineWidth)

	assert.Equal(t, vk.SampleCount1Bit, info.PMultisampleState.RasterizationSamples)

	blend := info.PColorBlendState
	require.Equal(t, uint32(1), blend.AttachmentCount)
	require.Len(t, blend.PAttachments, 1)
	assert.Equal(t, vk.Bool32(vk.False), blend.PAttachments[0].BlendEnable)
	assert.Equal(t, vk.ColorComponentFlags(0xf), blend.PAttachments[0].ColorWriteMask)

	depth := info.PDepthStencilState
	assert.Equal(t, vk.Bool32(vk.True), depth.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.True), depth.DepthWriteEnable)
	assert.Equal(t, vk.CompareOpLessOrEqual, depth.DepthCompareOp)
	assert.Equal(t, vk.Bool32(vk.False), depth.StencilTestEnable)

	assert.Equal(t, uint32(1), info.PViewportState.ViewportCount)
	assert.Equal(t, uint32(1), info.PViewportState.ScissorCount)

	assert.Equal(t, uint32(2), info.PDynamicState.DynamicStateCount)
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, info.PDynamicState.PDynamicStates)

	assert.Equal(t, uint32(0), info.PVertexInputState.VertexBindingDescriptionCount)
	assert.Equal(t, uint32(0), info.PVertexInputState.VertexAttributeDescriptionCount)
}

func TestPipelineBuilderOverrides(t *testing.T) {
	b := NewPipelineBuilder().
		Topology(vk.PrimitiveTopologyLineStrip).
		PrimitiveRestart(true).
		PolygonMode(vk.PolygonModeLine).
		CullMode(vk.CullModeBackBit).
		FrontFace(vk.FrontFaceClockwise).
		LineWidth(2).
		Samples(vk.SampleCount4Bit).
		DepthTest(true, false, vk.CompareOpLess).
		AlphaBlend(true)

	assert.Equal(t, vk.PrimitiveTopologyLineStrip, b.InputTopology())

	info := b.GraphicsPipelineInfo(fakeHandle[vk.RenderPass](0x10), fakeHandle[vk.PipelineLayout](0x20))
	assert.Equal(t, vk.PrimitiveTopologyLineStrip, info.PInputAssemblyState.Topology)
	assert.Equal(t, vk.Bool32(vk.True), info.PInputAssemblyState.PrimitiveRestartEnable)
	assert.Equal(t, vk.PolygonModeLine, info.PRasterizationState.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), info.PRasterizationState.CullMode)
	assert.Equal(t, vk.FrontFaceClockwise, info.PRasterizationState.FrontFace)
	assert.Equal(t, float32(2), info.PRasterizationState.LineWidth)
	assert.Equal(t, vk.SampleCount4Bit, info.PMultisampleState.RasterizationSamples)
	assert.Equal(t, vk.Bool32(vk.False), info.PDepthStencilState.DepthWriteEnable)
	assert.Equal(t, vk.CompareOpLess, info.PDepthStencilState.DepthCompareOp)

	att := info.PColorBlendState.PAttachments[0]
	assert.Equal(t, vk.Bool32(vk.True), att.BlendEnable)
	assert.Equal(t, vk.BlendFactorSrcAlpha, att.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorOneMinusSrcAlpha, att.DstColorBlendFactor)
	assert.Equal(t, uint32(2), info.PDynamicState.DynamicStateCount)
}

func TestPipelineBuilderInfoIsSnapshot(t *testing.T) {
	b := NewPipelineBuilder().VertexBinding(0, 32).Attrib(0, 0, vk.FormatR32g32Sfloat, 0)
	info := b.GraphicsPipelineInfo(nil, nil)

	b.Topology(vk.PrimitiveTopologyPointList).Attrib(1, 0, vk.FormatR32g32Sfloat, 8)

	assert.Equal(t, vk.PrimitiveTopologyTriangleList, info.PInputAssemblyState.Topology)
	assert.Equal(t, uint32(1), info.PVertexInputState.VertexAttributeDescriptionCount)
	assert.Len(t, info.PVertexInputState.PVertexAttributeDescriptions, 1)
}

func TestPipelineBuilderAttribBeforeBinding(t *testing.T) {
	dev, drv := newTestDevice(t)

	// Not validated locally: the driver decides whether this is legal.
	b := NewPipelineBuilder().Attrib(1, 0, vk.FormatR32g32b32Sfloat, 12)
	require.Len(t, b.VertexAttributes(), 1)
	b.VertexBinding(0, 32)

	_, err := b.CreateGraphicsPipeline(dev, nil, nil, vk.NullPipelineCache)
	require.NoError(t, err)

	vi := drv.pipelineInfos[0].PVertexInputState
	assert.Equal(t, uint32(1), vi.VertexBindingDescriptionCount)
	assert.Equal(t, uint32(1), vi.VertexAttributeDescriptionCount)
	assert.Equal(t, vk.VertexInputAttributeDescription{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		vi.PVertexAttributeDescriptions[0])
}

func TestPipelineBuilderDuplicateBindingsAccepted(t *testing.T) {
	b := NewPipelineBuilder().VertexBinding(0, 16).VertexBinding(0, 32).UniformBuffer(0, 0).UniformBuffer(0, 0)
	assert.Len(t, b.VertexBindings(), 2)
	assert.Len(t, b.LayoutBindings(), 2)
}

func TestPipelineBuilderUniformBufferLayout(t *testing.T) {
	dev, drv := newTestDevice(t)

	layout, err := NewPipelineBuilder().
		UniformBuffer(0, vk.ShaderStageFlags(vk.ShaderStageVertexBit)).
		CreateDescriptorSetLayout(dev)
	require.NoError(t, err)
	require.True(t, layout.Owns())

	require.Len(t, drv.setLayoutInfos, 1)
	info := drv.setLayoutInfos[0]
	assert.Equal(t, vk.StructureTypeDescriptorSetLayoutCreateInfo, info.SType)
	assert.Equal(t, uint32(1), info.BindingCount)
	require.Len(t, info.PBindings, 1)
	assert.Equal(t, uint32(0), info.PBindings[0].Binding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, info.PBindings[0].DescriptorType)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), info.PBindings[0].StageFlags)
	assert.Equal(t, uint32(1), info.PBindings[0].DescriptorCount)

	h := layout.Handle()
	layout.Destroy()
	assert.Equal(t, 1, drv.destroyed[h])
}

func TestPipelineBuilderDescriptorSetLayoutFailure(t *testing.T) {
	dev, drv := newTestDevice(t)
	drv.fail["CreateDescriptorSetLayout"] = vk.ErrorOutOfHostMemory

	b := NewPipelineBuilder().CombinedImageSampler(1, vk.ShaderStageFlags(vk.ShaderStageFragmentBit))
	layout, err := b.CreateDescriptorSetLayout(dev)
	assert.Nil(t, layout)

	var rce *ResourceCreationError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, vk.ErrorOutOfHostMemory, rce.Code)
	assert.Len(t, b.LayoutBindings(), 1)
}

func TestPipelineBuilderCreateFailure(t *testing.T) {
	dev, drv := newTestDevice(t)
	drv.fail["CreateGraphicsPipelines"] = vk.ErrorInvalidShaderNv

	b := NewPipelineBuilder().Shader(fakeHandle[vk.ShaderModule](0x1000), vk.ShaderStageVertexBit, "main")
	handle, err := b.CreateGraphicsPipeline(dev, fakeHandle[vk.RenderPass](0x10), fakeHandle[vk.PipelineLayout](0x20), vk.NullPipelineCache)
	assert.Equal(t, vk.NullPipeline, handle)

	var rce *ResourceCreationError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, vk.ErrorInvalidShaderNv, rce.Code)
	assert.Equal(t, "vkCreateGraphicsPipelines", rce.Op)
	assert.Equal(t, "pipeline_builder.go", rce.File)

	// retry with the same builder after the driver recovers
	delete(drv.fail, "CreateGraphicsPipelines")
	handle, err = b.CreateGraphicsPipeline(dev, fakeHandle[vk.RenderPass](0x10), fakeHandle[vk.PipelineLayout](0x20), vk.NullPipelineCache)
	require.NoError(t, err)
	assert.NotEqual(t, vk.NullPipeline, handle)
}

func TestPipelineBuilderReuseKeepsTwoDynamicStates(t *testing.T) {
	dev, drv := newTestDevice(t)
	b := NewPipelineBuilder()

	_, err := b.CreateGraphicsPipeline(dev, nil, nil, vk.NullPipelineCache)
	require.NoError(t, err)
	_, err = b.CreateGraphicsPipeline(dev, nil, nil, vk.NullPipelineCache)
	require.NoError(t, err)

	require.Len(t, drv.pipelineInfos, 2)
	for _, info := range drv.pipelineInfos {
		assert.Equal(t, uint32(2), info.PDynamicState.DynamicStateCount)
		assert.Len(t, info.PDynamicState.PDynamicStates, 2)
		assert.Equal(t, uint32(1), info.PColorBlendState.AttachmentCount)
	}
}
