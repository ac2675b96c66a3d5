package manifest

import (
	"fmt"
	"sort"
	"strings"

	vk "github.com/goki/vulkan"
)

var topologies = map[string]vk.PrimitiveTopology{
	"point_list":     vk.PrimitiveTopologyPointList,
	"line_list":      vk.PrimitiveTopologyLineList,
	"line_strip":     vk.PrimitiveTopologyLineStrip,
	"triangle_list":  vk.PrimitiveTopologyTriangleList,
	"triangle_strip": vk.PrimitiveTopologyTriangleStrip,
	"triangle_fan":   vk.PrimitiveTopologyTriangleFan,
}

var polygonModes = map[string]vk.PolygonMode{
	"fill":  vk.PolygonModeFill,
	"line":  vk.PolygonModeLine,
	"point": vk.PolygonModePoint,
}

var cullModes = map[string]vk.CullModeFlagBits{
	"none":           vk.CullModeNone,
	"front":          vk.CullModeFrontBit,
	"back":           vk.CullModeBackBit,
	"front_and_back": vk.CullModeFrontAndBack,
}

var frontFaces = map[string]vk.FrontFace{
	"counter_clockwise": vk.FrontFaceCounterClockwise,
	"ccw":               vk.FrontFaceCounterClockwise,
	"clockwise":         vk.FrontFaceClockwise,
	"cw":                vk.FrontFaceClockwise,
}

var compareOps = map[string]vk.CompareOp{
	"never":            vk.CompareOpNever,
	"less":             vk.CompareOpLess,
	"equal":            vk.CompareOpEqual,
	"less_or_equal":    vk.CompareOpLessOrEqual,
	"greater":          vk.CompareOpGreater,
	"not_equal":        vk.CompareOpNotEqual,
	"greater_or_equal": vk.CompareOpGreaterOrEqual,
	"always":           vk.CompareOpAlways,
}

var inputRates = map[string]vk.VertexInputRate{
	"vertex":   vk.VertexInputRateVertex,
	"instance": vk.VertexInputRateInstance,
}

var formats = map[string]vk.Format{
	"r32_sfloat":          vk.FormatR32Sfloat,
	"r32g32_sfloat":       vk.FormatR32g32Sfloat,
	"r32g32b32_sfloat":    vk.FormatR32g32b32Sfloat,
	"r32g32b32a32_sfloat": vk.FormatR32g32b32a32Sfloat,
	"r32_uint":            vk.FormatR32Uint,
	"r32_sint":            vk.FormatR32Sint,
	"r32g32b32a32_sint":   vk.FormatR32g32b32a32Sint,
	"r8g8b8a8_unorm":      vk.FormatR8g8b8a8Unorm,
}

var descriptorKinds = map[string]vk.DescriptorType{
	"sampler":                vk.DescriptorTypeSampler,
	"combined_image_sampler": vk.DescriptorTypeCombinedImageSampler,
	"sampled_image":          vk.DescriptorTypeSampledImage,
	"storage_image":          vk.DescriptorTypeStorageImage,
	"uniform_texel_buffer":   vk.DescriptorTypeUniformTexelBuffer,
	"storage_texel_buffer":   vk.DescriptorTypeStorageTexelBuffer,
	"uniform_buffer":         vk.DescriptorTypeUniformBuffer,
	"storage_buffer":         vk.DescriptorTypeStorageBuffer,
	"uniform_buffer_dynamic": vk.DescriptorTypeUniformBufferDynamic,
	"storage_buffer_dynamic": vk.DescriptorTypeStorageBufferDynamic,
	"input_attachment":       vk.DescriptorTypeInputAttachment,
}

var shaderStages = map[string]vk.ShaderStageFlagBits{
	"vertex":                  vk.ShaderStageVertexBit,
	"tessellation_control":    vk.ShaderStageTessellationControlBit,
	"tessellation_evaluation": vk.ShaderStageTessellationEvaluationBit,
	"geometry":                vk.ShaderStageGeometryBit,
	"fragment":                vk.ShaderStageFragmentBit,
	"compute":                 vk.ShaderStageComputeBit,
	"all_graphics":            vk.ShaderStageAllGraphics,
	"all":                     vk.ShaderStageAll,
}

var sampleCounts = map[int]vk.SampleCountFlagBits{
	1:  vk.SampleCount1Bit,
	2:  vk.SampleCount2Bit,
	4:  vk.SampleCount4Bit,
	8:  vk.SampleCount8Bit,
	16: vk.SampleCount16Bit,
	32: vk.SampleCount32Bit,
	64: vk.SampleCount64Bit,
}

// lookup resolves a manifest enum name, case-insensitively.
func lookup[T any](table map[string]T, what, name string) (T, error) {
	v, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q (want one of %s)", ErrUnknownName, what, name, strings.Join(names(table), ", "))
	}
	return v, nil
}

func names[T any](table map[string]T) []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func stageMask(list []string) (vk.ShaderStageFlags, error) {
	var mask vk.ShaderStageFlags
	for _, s := range list {
		bit, err := lookup(shaderStages, "shader stage", s)
		if err != nil {
			return 0, err
		}
		mask |= vk.ShaderStageFlags(bit)
	}
	return mask, nil
}
